package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/sugat009/ecommerce-site-with-graphql/pkg/errors"
	"github.com/sugat009/ecommerce-site-with-graphql/pkg/logger"
	"github.com/sugat009/ecommerce-site-with-graphql/pkg/validator"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *ErrorResponse {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Error)
	return resp.Error
}

// --- WriteJSON ---

func TestWriteJSON_SetsContentTypeAndStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusTeapot, Response{Data: "hello"})

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestWriteData_WrapsInEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteData(rec, map[string]bool{"toggleCartHidden": false})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"toggleCartHidden":false}}`, rec.Body.String())
}

func TestResponse_OmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(Response{Error: &ErrorResponse{Code: "ERR", Message: "msg"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":{"code":"ERR","message":"msg"}}`, string(data))
}

// --- DecodeJSON ---

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Item struct {
			ID string `json:"id"`
		} `json:"item"`
	}

	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{name: "valid", payload: `{"item":{"id":"1"}}`},
		{name: "empty", payload: ``, wantErr: "request body is empty"},
		{name: "malformed", payload: `{"item":`, wantErr: "invalid request body"},
		{name: "trailing object", payload: `{"item":{}} {"item":{}}`, wantErr: "single JSON object"},
		{name: "too large", payload: `{"item":{"id":"` + strings.Repeat("x", MaxBodyBytes) + `"}}`, wantErr: "exceeds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(tt.payload))

			var dst body
			err := DecodeJSON(rec, req, &dst)

			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "1", dst.Item.ID)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// --- WriteError ---

func TestWriteError_Mapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"app not found", apperrors.NotFound("query key", "wishlist"), http.StatusNotFound, "NOT_FOUND"},
		{"app invalid input", apperrors.InvalidInput("quantity must not exceed 100"), http.StatusBadRequest, "INVALID_INPUT"},
		{"app unavailable", apperrors.Unavailable("redis", errors.New("down")), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"sentinel not found", fmt.Errorf("read: %w", apperrors.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"sentinel unavailable", fmt.Errorf("save: %w", apperrors.ErrServiceUnavail), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"sentinel invalid", fmt.Errorf("x: %w", apperrors.ErrInvalidInput), http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)

			WriteError(rec, req, tt.err, logger.Discard())

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
		})
	}
}

func TestWriteError_UnknownErrorHidesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	WriteError(rec, req, errors.New("secret dsn"), logger.Discard())

	assert.NotContains(t, rec.Body.String(), "secret dsn")
}

func TestWriteError_ValidationError(t *testing.T) {
	type item struct {
		ID string `json:"id" validate:"required"`
	}
	valErr := validator.Validate(item{})
	require.Error(t, valErr)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	WriteError(rec, req, fmt.Errorf("add item: %w", valErr), logger.Discard())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errResp := decodeError(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", errResp.Code)
	assert.Equal(t, "is required", errResp.Fields["id"])
}

func TestWriteError_IncludesRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx := logger.WithCorrelationID(context.Background(), "corr-123")
	req := httptest.NewRequest(http.MethodGet, "/test", nil).WithContext(ctx)

	WriteError(rec, req, apperrors.NotFound("query key", "x"), logger.Discard())

	assert.Equal(t, "corr-123", decodeError(t, rec).RequestID)
}

func TestWriteError_NoCorrelationID_OmitsRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	WriteError(rec, req, apperrors.ErrNotFound, logger.Discard())

	assert.NotContains(t, rec.Body.String(), "request_id")
}
