package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"gdp/internal/domain/audit"
	"gdp/internal/domain/auth"
)

type recordedEvents []audit.Event

func (r *recordedEvents) Record(_ context.Context, evt audit.Event) error {
	*r = append(*r, evt)
	return nil
}

func TestAuditRecordsSuccessfulWrites(t *testing.T) {
	var events recordedEvents
	status := http.StatusCreated
	handler := Audit(&events, "/api/v1")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	user := auth.UserContext{UserID: "u1", Username: "admin", Permission: auth.PermissionAll}

	send := func(method, path string, withUser bool) {
		req := httptest.NewRequest(method, path, nil)
		if withUser {
			req = req.WithContext(WithUser(req.Context(), user))
		}
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	send(http.MethodPost, "/api/v1/loans/l-1/payments", true)
	send(http.MethodGet, "/api/v1/loans", true)
	send(http.MethodPost, "/api/v1/auth/login", false)
	status = http.StatusBadRequest
	send(http.MethodDelete, "/api/v1/loans/l-1", true)

	if len(events) != 1 {
		t.Fatalf("expected one audit event, got %d", len(events))
	}
	evt := events[0]
	if evt.Action != audit.ActionCreate || evt.EntityType != "loans" || evt.EntityID != "l-1" || evt.ActorName != "admin" {
		t.Fatalf("unexpected event: %+v", evt)
	}
}
