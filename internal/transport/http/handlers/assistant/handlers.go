package assistanthandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gdp/internal/domain/assistant"
	"gdp/internal/transport/http/api"
	"gdp/internal/transport/http/shared"
)

type Handler struct {
	Service *assistant.Service
}

func NewHandler(service *assistant.Service) *Handler {
	return &Handler{Service: service}
}

type chatRequest struct {
	Question string `json:"question"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/assistant/chat", h.handleChat)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if !shared.Decode(w, r, &payload) {
		return
	}
	answer, err := h.Service.Chat(r.Context(), payload.Question)
	if err != nil {
		shared.Fail(w, r, err, "answer question")
		return
	}
	api.Success(w, map[string]string{"answer": answer}, shared.RequestID(r))
}
