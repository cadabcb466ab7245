package fuelhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gdp/internal/domain/fuel"
	"gdp/internal/transport/http/api"
	"gdp/internal/transport/http/shared"
)

type Handler struct {
	Service *fuel.Service
}

func NewHandler(service *fuel.Service) *Handler {
	return &Handler{Service: service}
}

var mappings = []shared.Mapping{
	shared.NotFound(fuel.ErrNotFound),
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/fuel", func(r chi.Router) {
		r.Route("/logs", func(r chi.Router) {
			r.Get("/", h.handleList)
			r.Post("/", h.handleCreate)
			r.Get("/{entryID}", h.handleGet)
			r.Put("/{entryID}", h.handleUpdate)
			r.Delete("/{entryID}", h.handleDelete)
		})
		r.Get("/reports/{month}", h.handleMonthReport)
		r.Get("/reports/{month}/pdf", h.handleMonthPDF)
	})
}

// handleList accepts ?month=YYYY-MM and pages with ?limit and ?offset.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Service.List(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		shared.Fail(w, r, err, "list fuel logs")
		return
	}
	api.Success(w, shared.Paginate(entries, shared.ParsePagination(r, 50, 500)), shared.RequestID(r))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	entry, err := h.Service.Get(r.Context(), chi.URLParam(r, "entryID"))
	if err != nil {
		shared.Fail(w, r, err, "load fuel log", mappings...)
		return
	}
	api.Success(w, entry, shared.RequestID(r))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload fuel.Entry
	if !shared.Decode(w, r, &payload) {
		return
	}
	entry, err := h.Service.Create(r.Context(), payload)
	if err != nil {
		shared.Fail(w, r, err, "save fuel log", mappings...)
		return
	}
	api.Created(w, entry, shared.RequestID(r))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload fuel.Entry
	if !shared.Decode(w, r, &payload) {
		return
	}
	entry, err := h.Service.Update(r.Context(), chi.URLParam(r, "entryID"), payload)
	if err != nil {
		shared.Fail(w, r, err, "save fuel log", mappings...)
		return
	}
	api.Success(w, entry, shared.RequestID(r))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "entryID")); err != nil {
		shared.Fail(w, r, err, "delete fuel log", mappings...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMonthReport(w http.ResponseWriter, r *http.Request) {
	totals, entries, err := h.Service.MonthReport(r.Context(), chi.URLParam(r, "month"))
	if err != nil {
		shared.Fail(w, r, err, "load fuel report")
		return
	}
	api.Success(w, map[string]any{"totals": totals, "entries": entries}, shared.RequestID(r))
}

func (h *Handler) handleMonthPDF(w http.ResponseWriter, r *http.Request) {
	totals, entries, err := h.Service.MonthReport(r.Context(), chi.URLParam(r, "month"))
	if err != nil {
		shared.Fail(w, r, err, "load fuel report")
		return
	}
	body, err := fuel.RenderMonthPDF(totals, entries)
	if err != nil {
		shared.Fail(w, r, err, "render fuel report")
		return
	}
	api.File(w, "application/pdf", "combustible-"+totals.Month+".pdf", body)
}
