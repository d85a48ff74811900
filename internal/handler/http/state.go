package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sugat009/ecommerce-site-with-graphql/internal/domain"
	"github.com/sugat009/ecommerce-site-with-graphql/internal/schema"
	"github.com/sugat009/ecommerce-site-with-graphql/internal/service"
	apperrors "github.com/sugat009/ecommerce-site-with-graphql/pkg/errors"
	"github.com/sugat009/ecommerce-site-with-graphql/pkg/httputil"
	"github.com/sugat009/ecommerce-site-with-graphql/pkg/validator"
)

// StateHandler handles HTTP requests for the session state endpoints.
type StateHandler struct {
	service *service.StateService
	logger  *slog.Logger
}

// NewStateHandler creates a new state HTTP handler.
func NewStateHandler(svc *service.StateService, logger *slog.Logger) *StateHandler {
	return &StateHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// ItemRequest is the body of the three cart mutations.
type ItemRequest struct {
	Item *domain.CartItem `json:"item" validate:"required"`
}

// UserRequest is the body of setCurrentUser. "user": null signs the session
// out; a missing "user" key is rejected.
type UserRequest struct {
	User json.RawMessage `json:"user"`
}

// --- Queries ---

// GetState handles GET /api/v1/state
func (h *StateHandler) GetState(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.State(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, snap)
}

// GetKey handles GET /api/v1/state/{key}
func (h *StateHandler) GetKey(w http.ResponseWriter, r *http.Request) {
	name, err := schema.ParseName(chi.URLParam(r, "key"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	values, err := h.service.Query(r.Context(), name)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, values)
}

// Query handles GET /api/v1/query?keys=cartHidden,currentUser
func (h *StateHandler) Query(w http.ResponseWriter, r *http.Request) {
	var names []schema.Name
	for _, raw := range strings.Split(r.URL.Query().Get("keys"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		name, err := schema.ParseName(raw)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		names = append(names, name)
	}

	values, err := h.service.Query(r.Context(), names...)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, values)
}

// --- Mutations ---

// Mutate handles POST /api/v1/mutations/{mutation}
func (h *StateHandler) Mutate(w http.ResponseWriter, r *http.Request) {
	m, err := schema.ParseMutation(chi.URLParam(r, "mutation"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	var result any
	switch m {
	case schema.ToggleCartHidden:
		result, err = h.service.ToggleCartHidden(r.Context())
	case schema.AddItemToCart, schema.RemoveItemFromCart, schema.ClearItemFromCart:
		result, err = h.mutateCart(w, r, m)
	case schema.SetCurrentUser:
		result, err = h.setCurrentUser(w, r)
	}
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, map[string]any{m.String(): result})
}

func (h *StateHandler) mutateCart(w http.ResponseWriter, r *http.Request, m schema.Mutation) (domain.CartItems, error) {
	var req ItemRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		return nil, err
	}
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	switch m {
	case schema.AddItemToCart:
		return h.service.AddItemToCart(r.Context(), *req.Item)
	case schema.RemoveItemFromCart:
		return h.service.RemoveItemFromCart(r.Context(), *req.Item)
	default:
		return h.service.ClearItemFromCart(r.Context(), *req.Item)
	}
}

func (h *StateHandler) setCurrentUser(w http.ResponseWriter, r *http.Request) (*domain.User, error) {
	var req UserRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		return nil, err
	}
	if len(req.User) == 0 {
		return nil, apperrors.InvalidInput("user is required; send null to sign out")
	}

	var user *domain.User
	if !bytes.Equal(bytes.TrimSpace(req.User), []byte("null")) {
		user = new(domain.User)
		if err := json.Unmarshal(req.User, user); err != nil {
			return nil, apperrors.InvalidInput("invalid user: " + err.Error())
		}
	}
	return h.service.SetCurrentUser(r.Context(), user)
}
