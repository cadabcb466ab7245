package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"gdp/internal/domain/audit"
)

type AuditRecorder interface {
	Record(ctx context.Context, evt audit.Event) error
}

var auditActions = map[string]string{
	http.MethodPost:   audit.ActionCreate,
	http.MethodPut:    audit.ActionUpdate,
	http.MethodPatch:  audit.ActionUpdate,
	http.MethodDelete: audit.ActionDelete,
}

// Audit records every successful authenticated write under prefix. The entity is taken
// from the path: /api/v1/loans/{id}/payments is entity "loans", id {id}.
func Audit(recorder AuditRecorder, prefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			action, write := auditActions[r.Method]
			if !write || !strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			user, ok := GetUser(r.Context())
			if !ok || rec.status >= http.StatusBadRequest {
				return
			}
			segments := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/"), "/")
			evt := audit.Event{
				ActorID:    user.UserID,
				ActorName:  user.Username,
				Action:     action,
				EntityType: segments[0],
				Path:       r.URL.Path,
				Status:     rec.status,
				RequestID:  GetRequestID(r.Context()),
				IP:         clientIPKey(r),
			}
			if len(segments) > 1 {
				evt.EntityID = segments[1]
			}
			if err := recorder.Record(context.WithoutCancel(r.Context()), evt); err != nil {
				slog.Warn("audit record failed", "err", err, "path", r.URL.Path, "requestId", evt.RequestID)
			}
		})
	}
}
