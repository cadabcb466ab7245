package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"gdp/internal/platform/store"
	"gdp/internal/transport/http/api"
)

type idempotentResponse struct {
	RequestHash string          `json:"requestHash"`
	Status      int             `json:"status"`
	Body        json.RawMessage `json:"body"`
}

type bodyRecorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (b *bodyRecorder) WriteHeader(code int) {
	b.status = code
	b.ResponseWriter.WriteHeader(code)
}

func (b *bodyRecorder) Write(p []byte) (int, error) {
	b.buf.Write(p)
	return b.ResponseWriter.Write(p)
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Idempotency replays the stored response of a POST carrying an Idempotency-Key header
// the caller already used on the same path. Reusing a key with a different body is a
// conflict. Server errors are not stored.
func Idempotency(repo store.Repository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("Idempotency-Key")
			if r.Method != http.MethodPost || key == "" {
				next.ServeHTTP(w, r)
				return
			}
			requestID := GetRequestID(r.Context())
			payload, err := io.ReadAll(r.Body)
			if err != nil {
				api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(payload))

			actor := "anonymous"
			if user, ok := GetUser(r.Context()); ok {
				actor = user.UserID
			}
			entryKey := actor + " " + r.URL.Path + " " + key
			hash := RequestHash(payload)

			stored, err := repo.FetchObjectStore(r.Context(), store.IdempotencyKeys)
			if err != nil {
				api.Fail(w, http.StatusInternalServerError, "idempotency_error", "failed to check idempotency key", requestID)
				return
			}
			if raw, ok := stored[entryKey]; ok {
				var prev idempotentResponse
				if err := json.Unmarshal(raw, &prev); err == nil {
					if prev.RequestHash != hash {
						api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key already used with a different payload", requestID)
						return
					}
					w.Header().Set("Content-Type", "application/json")
					w.Header().Set("Idempotent-Replay", "true")
					w.WriteHeader(prev.Status)
					_, _ = w.Write(prev.Body)
					return
				}
			}

			recorder := &bodyRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)
			if recorder.status >= 500 || !json.Valid(recorder.buf.Bytes()) {
				return
			}
			body, _ := json.Marshal(idempotentResponse{RequestHash: hash, Status: recorder.status, Body: recorder.buf.Bytes()})
			if err := repo.PutObjectEntry(r.Context(), store.IdempotencyKeys, entryKey, body); err != nil {
				slog.Warn("store idempotency key failed", "err", err, "requestId", requestID)
			}
		})
	}
}
