package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sugat009/ecommerce-site-with-graphql/internal/domain"
	"github.com/sugat009/ecommerce-site-with-graphql/internal/schema"
	"github.com/sugat009/ecommerce-site-with-graphql/internal/store"
	apperrors "github.com/sugat009/ecommerce-site-with-graphql/pkg/errors"
	"github.com/sugat009/ecommerce-site-with-graphql/pkg/logger"
	"github.com/sugat009/ecommerce-site-with-graphql/pkg/tracing"
	"github.com/sugat009/ecommerce-site-with-graphql/pkg/validator"
)

// Argument upper bounds.
const (
	// MaxQuantityPerItem is the largest quantity accepted in a single addItemToCart call.
	MaxQuantityPerItem = 100
	// MaxPriceCents is the maximum item price in cents (100,000.00).
	MaxPriceCents = 100_000_00
)

// Listener is told about every committed mutation together with the state it
// produced. Listener errors are logged and never fail the mutation.
type Listener interface {
	OnMutation(ctx context.Context, m schema.Mutation, snap schema.Snapshot) error
}

// StateService runs the named mutations against the session store. Each
// mutation holds the service lock from its first read to its last listener
// call, so concurrent callers never interleave.
type StateService struct {
	mu        sync.Mutex
	store     *store.Store
	listeners []Listener
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewStateService creates a state service over an already seeded store.
func NewStateService(st *store.Store, logger *slog.Logger, listeners ...Listener) *StateService {
	return &StateService{
		store:     st,
		listeners: listeners,
		logger:    logger,
		tracer:    tracing.Tracer("github.com/sugat009/ecommerce-site-with-graphql/internal/service"),
	}
}

// ToggleCartHidden flips cart visibility and returns the new value.
func (s *StateService) ToggleCartHidden(ctx context.Context) (bool, error) {
	var hidden bool
	err := s.run(ctx, schema.ToggleCartHidden, func(ctx context.Context) error {
		return s.store.Update(func(tx *store.Tx) error {
			current, err := store.Read(tx, schema.CartHidden)
			if err != nil {
				return fmt.Errorf("read cart hidden: %w", err)
			}
			hidden = !current
			store.Write(tx, schema.CartHidden, hidden)
			return nil
		})
	})
	if err != nil {
		return false, err
	}
	return hidden, nil
}

// AddItemToCart merges item into the cart and returns the new cart items.
func (s *StateService) AddItemToCart(ctx context.Context, item domain.CartItem) (domain.CartItems, error) {
	if err := validateNewItem(item); err != nil {
		return nil, err
	}
	return s.updateCartItems(ctx, schema.AddItemToCart, func(items domain.CartItems) domain.CartItems {
		return domain.AddItem(items, item)
	})
}

// RemoveItemFromCart takes one unit of item out of the cart. Removing an item
// that is not in the cart leaves the cart unchanged.
func (s *StateService) RemoveItemFromCart(ctx context.Context, item domain.CartItem) (domain.CartItems, error) {
	if err := validateTarget(item); err != nil {
		return nil, err
	}
	return s.updateCartItems(ctx, schema.RemoveItemFromCart, func(items domain.CartItems) domain.CartItems {
		return domain.RemoveItem(items, item)
	})
}

// ClearItemFromCart removes every unit of item from the cart.
func (s *StateService) ClearItemFromCart(ctx context.Context, item domain.CartItem) (domain.CartItems, error) {
	if err := validateTarget(item); err != nil {
		return nil, err
	}
	return s.updateCartItems(ctx, schema.ClearItemFromCart, func(items domain.CartItems) domain.CartItems {
		return domain.ClearItem(items, item)
	})
}

// SetCurrentUser stores the signed-in user and returns it. A nil user signs
// the session out.
func (s *StateService) SetCurrentUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user != nil {
		if err := validator.Validate(user); err != nil {
			return nil, err
		}
	}
	err := s.run(ctx, schema.SetCurrentUser, func(ctx context.Context) error {
		store.Write(s.store, schema.CurrentUser, user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user.Clone(), nil
}

// updateCartItems is the single transaction every cart mutation goes through:
// it rewrites cartItems, itemCount and cartTotal together.
func (s *StateService) updateCartItems(ctx context.Context, m schema.Mutation, apply func(domain.CartItems) domain.CartItems) (domain.CartItems, error) {
	var next domain.CartItems
	err := s.run(ctx, m, func(ctx context.Context) error {
		return s.store.Update(func(tx *store.Tx) error {
			items, err := store.Read(tx, schema.CartItems)
			if err != nil {
				return fmt.Errorf("read cart items: %w", err)
			}
			next = apply(items)
			store.Write(tx, schema.CartItems, next)
			store.Write(tx, schema.ItemCount, domain.ItemCount(next))
			store.Write(tx, schema.CartTotal, domain.CartTotal(next))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "cart items updated",
		slog.String("mutation", string(m)),
		slog.Int("items", len(next)),
		slog.Int("item_count", domain.ItemCount(next)),
		slog.String("cart_total", domain.CartTotal(next).String()),
	)
	return next, nil
}

// run serializes a mutation, traces it and notifies listeners once it has
// committed.
func (s *StateService) run(ctx context.Context, m schema.Mutation, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx = logger.WithMutation(ctx, string(m))
	ctx, span := s.tracer.Start(ctx, "state."+string(m),
		trace.WithAttributes(attribute.String("state.mutation", string(m))),
	)
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		mutationsTotal.WithLabelValues(string(m), resultError).Inc()
		return err
	}
	mutationsTotal.WithLabelValues(string(m), resultOK).Inc()

	s.notify(ctx, m)
	return nil
}

func (s *StateService) notify(ctx context.Context, m schema.Mutation) {
	if len(s.listeners) == 0 {
		return
	}

	snap, err := s.store.Snapshot()
	if err != nil {
		logger.WithContext(ctx, s.logger).ErrorContext(ctx, "failed to snapshot state for listeners",
			slog.String("error", err.Error()),
		)
		return
	}

	for _, l := range s.listeners {
		if err := l.OnMutation(ctx, m, snap); err != nil {
			logger.WithContext(ctx, s.logger).ErrorContext(ctx, "mutation listener failed",
				slog.String("listener", fmt.Sprintf("%T", l)),
				slog.String("error", err.Error()),
			)
		}
	}
}

// State returns every query key at one instant.
func (s *StateService) State(ctx context.Context) (schema.Snapshot, error) {
	snap, err := s.store.Snapshot()
	if err != nil {
		return schema.Snapshot{}, fmt.Errorf("read state: %w", err)
	}
	return snap, nil
}

// Query returns the values of the requested keys, or of every key when none
// are named.
func (s *StateService) Query(ctx context.Context, names ...schema.Name) (map[schema.Name]any, error) {
	snap, err := s.State(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		names = schema.Names()
	}

	out := make(map[schema.Name]any, len(names))
	for _, n := range names {
		v, ok := snap.Value(n)
		if !ok {
			return nil, apperrors.NotFound("query key", string(n))
		}
		out[n] = v
	}
	return out, nil
}

// Restore replaces the whole state with a previously saved snapshot. Derived
// values are recomputed from the items rather than trusted.
func (s *StateService) Restore(ctx context.Context, snap schema.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items domain.CartItems
	for _, item := range snap.CartItems {
		if item.ID == "" || item.Quantity <= 0 || item.Price < 0 {
			s.logger.WarnContext(ctx, "dropping invalid cart item from saved state",
				slog.String("item_id", string(item.ID)),
				slog.Int("quantity", item.Quantity),
			)
			continue
		}
		items = domain.AddItem(items, item)
	}

	restored := schema.Snapshot{
		CartState:   domain.NewCartState(snap.CartHidden, items),
		CurrentUser: snap.CurrentUser.Clone(),
	}
	if !snap.CartState.Consistent() {
		s.logger.WarnContext(ctx, "saved state had stale derived values",
			slog.Int("saved_item_count", snap.ItemCount),
			slog.Int("item_count", restored.ItemCount),
		)
	}

	s.store.Seed(restored)
	s.logger.InfoContext(ctx, "state restored",
		slog.Int("items", len(restored.CartItems)),
		slog.Bool("signed_in", restored.CurrentUser != nil),
	)
	return nil
}

func validateNewItem(item domain.CartItem) error {
	if err := validator.Validate(item); err != nil {
		return err
	}
	if item.Quantity > MaxQuantityPerItem {
		return apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}
	if item.Price > MaxPriceCents {
		return apperrors.InvalidInput(fmt.Sprintf("price must not exceed %s", domain.Money(MaxPriceCents)))
	}
	return nil
}

func validateTarget(item domain.CartItem) error {
	if item.ID == "" {
		return apperrors.InvalidInput("item id is required")
	}
	return nil
}
