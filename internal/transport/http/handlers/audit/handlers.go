package audithandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gdp/internal/domain/audit"
	"gdp/internal/transport/http/api"
	"gdp/internal/transport/http/shared"
)

type Handler struct {
	Service *audit.Service
}

func NewHandler(service *audit.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/audit/events", h.handleList)
}

// handleList filters by ?action, ?entityType and ?actor and pages with ?limit and ?offset.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	events, err := h.Service.List(r.Context(), audit.Filter{
		Action:     q.Get("action"),
		EntityType: q.Get("entityType"),
		ActorUser:  q.Get("actor"),
	})
	if err != nil {
		shared.Fail(w, r, err, "list audit events")
		return
	}
	api.Success(w, shared.Paginate(events, shared.ParsePagination(r, 50, 500)), shared.RequestID(r))
}
