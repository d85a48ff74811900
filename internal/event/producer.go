package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sugat009/ecommerce-site-with-graphql/internal/domain"
	"github.com/sugat009/ecommerce-site-with-graphql/internal/schema"
	pkgkafka "github.com/sugat009/ecommerce-site-with-graphql/pkg/kafka"
	"github.com/sugat009/ecommerce-site-with-graphql/pkg/logger"
)

// Kafka topic constants for session state events.
var (
	TopicCartUpdated           = pkgkafka.Topic("cart", "updated")
	TopicCartVisibilityChanged = pkgkafka.Topic("cart", "visibility_changed")
	TopicUserChanged           = pkgkafka.Topic("session", "user_changed")
)

// Aggregate type constant.
const AggregateTypeSession = "session"

// SourceCartState identifies events originating from this service.
const SourceCartState = "cartstate"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	Mutation  string           `json:"mutation"`
	Items     domain.CartItems `json:"items"`
	ItemCount int              `json:"item_count"`
	CartTotal domain.Money     `json:"cart_total"`
}

// VisibilityChangedData is the payload for a cart.visibility_changed event.
type VisibilityChangedData struct {
	CartHidden bool `json:"cart_hidden"`
}

// UserChangedData is the payload for a session.user_changed event. User is
// null when the session signed out.
type UserChangedData struct {
	User *domain.User `json:"user"`
}

// Publisher is what the producer needs from pkg/kafka.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes session state events to Kafka after every committed
// mutation.
type Producer struct {
	kafka     Publisher
	sessionID string
	logger    *slog.Logger
}

// NewProducer creates a new event producer for one session.
func NewProducer(kafka Publisher, sessionID string, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:     kafka,
		sessionID: sessionID,
		logger:    logger,
	}
}

// OnMutation publishes the event matching m.
func (p *Producer) OnMutation(ctx context.Context, m schema.Mutation, snap schema.Snapshot) error {
	var (
		topic string
		data  any
	)
	switch m {
	case schema.ToggleCartHidden:
		topic, data = TopicCartVisibilityChanged, VisibilityChangedData{CartHidden: snap.CartHidden}
	case schema.SetCurrentUser:
		topic, data = TopicUserChanged, UserChangedData{User: snap.CurrentUser}
	case schema.AddItemToCart, schema.RemoveItemFromCart, schema.ClearItemFromCart:
		topic, data = TopicCartUpdated, CartUpdatedData{
			Mutation:  string(m),
			Items:     snap.CartItems,
			ItemCount: snap.ItemCount,
			CartTotal: snap.CartTotal,
		}
	default:
		return fmt.Errorf("no event for mutation %q", m)
	}

	event, err := pkgkafka.NewEvent(topic, p.sessionID, AggregateTypeSession, SourceCartState, data,
		pkgkafka.WithMetadata("mutation", string(m)),
		pkgkafka.WithCorrelationID(logger.CorrelationIDFromContext(ctx)),
	)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published state event",
		slog.String("topic", topic),
		slog.String("session_id", p.sessionID),
		slog.String("mutation", string(m)),
	)
	return nil
}
