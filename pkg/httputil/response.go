// Package httputil writes the JSON envelope every storefront endpoint
// answers with: {"data": ...} on success, {"error": {...}} on failure.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/limosnd/Marketplace-go-grahpql/pkg/errors"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/logger"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/validator"
)

type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse carries a machine-readable code, a message safe to show,
// per-field messages for validation failures and the correlation ID.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON encodes v with status. Encoding errors are dropped since the
// header is already out.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes v under "data".
func WriteData(w http.ResponseWriter, status int, v any) {
	WriteJSON(w, status, Response{Data: v})
}

// WriteError renders err. Validation failures become a 400 with per-field
// messages; everything else goes through apperrors.From. 5xx errors are
// logged with the request logger, or fallback when the request has none.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	requestID := logger.CorrelationIDFromContext(r.Context())

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, Response{Error: &ErrorResponse{
			Code:      "VALIDATION_ERROR",
			Message:   "request validation failed",
			Fields:    valErr.Fields(),
			RequestID: requestID,
		}})
		return
	}

	appErr := apperrors.From(err)
	if appErr.Status >= http.StatusInternalServerError {
		l := logger.FromContext(r.Context())
		if l == slog.Default() && fallback != nil {
			l = fallback
		}
		l.ErrorContext(r.Context(), "request failed",
			slog.String("code", appErr.Code),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	WriteJSON(w, appErr.Status, Response{Error: &ErrorResponse{
		Code:      appErr.Code,
		Message:   appErr.Message,
		RequestID: requestID,
	}})
}
