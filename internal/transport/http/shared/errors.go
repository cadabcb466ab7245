// Package shared holds request decoding and error mapping used by every handler package.
package shared

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"gdp/internal/domain/ledger"
	"gdp/internal/platform/ai"
	"gdp/internal/platform/validate"
	"gdp/internal/transport/http/api"
	"gdp/internal/transport/http/middleware"
)

// Mapping turns a domain sentinel into a response status and code.
type Mapping struct {
	Err    error
	Status int
	Code   string
}

func NotFound(err error) Mapping {
	return Mapping{Err: err, Status: http.StatusNotFound, Code: "not_found"}
}

func Conflict(err error) Mapping {
	return Mapping{Err: err, Status: http.StatusConflict, Code: "conflict"}
}

var common = []Mapping{
	{Err: ledger.ErrInvalidMonth, Status: http.StatusBadRequest, Code: "invalid_month"},
	{Err: ai.ErrUnavailable, Status: http.StatusServiceUnavailable, Code: "ai_unavailable"},
	{Err: ai.ErrMalformed, Status: http.StatusUnprocessableEntity, Code: "no_data_extracted"},
}

// Fail writes err as the envelope. Validation errors become 400 with field details,
// mapped sentinels use their status, anything else is logged and reported as
// "failed to <action>".
func Fail(w http.ResponseWriter, r *http.Request, err error, action string, mappings ...Mapping) {
	requestID := middleware.GetRequestID(r.Context())
	if verr, ok := validate.AsError(err); ok {
		FailValidation(w, requestID, verr.Issues)
		return
	}
	for _, m := range append(mappings, common...) {
		if errors.Is(err, m.Err) {
			api.Fail(w, m.Status, m.Code, m.Err.Error(), requestID)
			return
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		slog.Warn("request timed out", "action", action, "err", err, "requestId", requestID)
		api.Fail(w, http.StatusGatewayTimeout, "timeout", "failed to "+action, requestID)
		return
	}
	slog.Error("request failed", "action", action, "err", err, "requestId", requestID)
	api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to "+action, requestID)
}

func FailValidation(w http.ResponseWriter, requestID string, issues []validate.Issue) {
	api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "payload validation failed",
		map[string]any{"fields": issues}, requestID)
}

// Decode reads a JSON body into dst, answering 400 itself when it cannot.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", middleware.GetRequestID(r.Context()))
			return false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

func RequestID(r *http.Request) string {
	return middleware.GetRequestID(r.Context())
}
