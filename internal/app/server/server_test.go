package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdp/internal/platform/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func testConfig() config.Config {
	return config.Config{
		Addr:               ":0",
		JWTSecret:          "journey-secret",
		TokenTTL:           time.Hour,
		Environment:        "test",
		GeminiModel:        "gemini-2.5-flash",
		AITimeout:          time.Second,
		SeedAdminUser:      "admin",
		SeedAdminPassword:  "admin-pass-123",
		SeedHeladitoUser:   "heladito",
		SeedHeladitoPass:   "heladito-pass",
		RunSeed:            true,
		MaxBodyBytes:       1 << 20,
		RateLimitPerMinute: 1000,
		MetricsEnabled:     true,
		JobQueueSize:       8,
	}
}

func newApp(t *testing.T) *App {
	t.Helper()
	app, err := New(context.Background(), testConfig())
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app
}

func call(t *testing.T, app *App, method, path, token string, body any, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func login(t *testing.T, app *App, username, password string) string {
	t.Helper()
	rec, env := call(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var session struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &session))
	require.NotEmpty(t, session.Token)
	return session.Token
}

func TestHealthAndReadiness(t *testing.T) {
	app := newApp(t)
	rec, _ := call(t, app, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = call(t, app, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	app := newApp(t)
	rec, env := call(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "invalid_credentials", env.Error.Code)
}

func TestAreasFollowPermission(t *testing.T) {
	app := newApp(t)

	rec, _ := call(t, app, http.MethodGet, "/api/v1/employees", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	helper := login(t, app, "heladito", "heladito-pass")
	rec, _ = call(t, app, http.MethodGet, "/api/v1/payroll/runs", helper, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := call(t, app, http.MethodGet, "/api/v1/heladito/workers", helper, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var workers []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &workers))
	assert.Len(t, workers, 2)

	rec, _ = call(t, app, http.MethodGet, "/api/v1/auth/me", helper, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPayrollJourney(t *testing.T) {
	app := newApp(t)
	token := login(t, app, "admin", "admin-pass-123")

	rec, env := call(t, app, http.MethodPost, "/api/v1/employees", token, map[string]any{
		"cedula": "001-0000000-1",
		"name":   "Ana Pérez",
		"salary": 30000,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var emp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &emp))

	rec, env = call(t, app, http.MethodPost, "/api/v1/payroll/runs?wait=true", token, map[string]any{
		"period": map[string]int{"year": 2025, "month": 7, "fortnight": 1},
		"lines":  []map[string]any{{"employeeId": emp.ID, "overtimeHours": 0, "applyTss": true}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var run struct {
		ID                string  `json:"id"`
		Status            string  `json:"status"`
		TotalAmount       float64 `json:"totalAmount"`
		PayslipsGenerated []struct {
			ID string `json:"id"`
		} `json:"payslipsGenerated"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &run))
	assert.Equal(t, "Completed", run.Status)
	assert.InDelta(t, 14113.50, run.TotalAmount, 0.001)
	require.Len(t, run.PayslipsGenerated, 1)

	rec, _ = call(t, app, http.MethodGet, "/api/v1/payroll/runs/"+run.ID+"/payslips/"+run.PayslipsGenerated[0].ID+"/pdf", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec, env = call(t, app, http.MethodPost, "/api/v1/payroll/runs/"+run.ID+"/payslips/"+run.PayslipsGenerated[0].ID+"/send", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "no_recipient", env.Error.Code)
}

func TestAssistantWithoutKeyIsUnavailable(t *testing.T) {
	app := newApp(t)
	token := login(t, app, "admin", "admin-pass-123")
	rec, env := call(t, app, http.MethodPost, "/api/v1/assistant/chat", token, map[string]string{"question": "¿Qué es el SFS?"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ai_unavailable", env.Error.Code)
}

func TestIdempotentDebtorCreation(t *testing.T) {
	app := newApp(t)
	token := login(t, app, "admin", "admin-pass-123")
	body := map[string]string{"name": "Colmado Central"}

	first, _ := call(t, app, http.MethodPost, "/api/v1/receivables/debtors", token, body, "Idempotency-Key", "debtor-1")
	require.Equal(t, http.StatusCreated, first.Code)
	second, _ := call(t, app, http.MethodPost, "/api/v1/receivables/debtors", token, body, "Idempotency-Key", "debtor-1")
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replay"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	rec, env := call(t, app, http.MethodGet, "/api/v1/receivables/debtors", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var debtors []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &debtors))
	assert.Len(t, debtors, 2)
}
