package receivableshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gdp/internal/domain/receivables"
	"gdp/internal/platform/validate"
	"gdp/internal/transport/http/api"
	"gdp/internal/transport/http/shared"
)

type Handler struct {
	Service *receivables.Service
}

func NewHandler(service *receivables.Service) *Handler {
	return &Handler{Service: service}
}

var mappings = []shared.Mapping{
	shared.NotFound(receivables.ErrDebtorNotFound),
	shared.NotFound(receivables.ErrReceivableNotFound),
	shared.Conflict(receivables.ErrDebtorInUse),
}

type markRequest struct {
	IDs  []string `json:"ids" validate:"min=1"`
	Paid bool     `json:"paid"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/receivables", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Post("/mark-paid", h.handleMarkPaid)
		r.Get("/balances", h.handleBalances)
		r.Put("/{receivableID}", h.handleUpdate)
		r.Delete("/{receivableID}", h.handleDelete)
		r.Route("/debtors", func(r chi.Router) {
			r.Get("/", h.handleDebtors)
			r.Post("/", h.handleCreateDebtor)
			r.Put("/{debtorID}", h.handleUpdateDebtor)
			r.Delete("/{debtorID}", h.handleDeleteDebtor)
		})
	})
}

func (h *Handler) handleDebtors(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.Debtors(r.Context())
	if err != nil {
		shared.Fail(w, r, err, "list debtors")
		return
	}
	api.Success(w, list, shared.RequestID(r))
}

func (h *Handler) handleCreateDebtor(w http.ResponseWriter, r *http.Request) {
	var payload receivables.Debtor
	if !shared.Decode(w, r, &payload) {
		return
	}
	d, err := h.Service.CreateDebtor(r.Context(), payload)
	if err != nil {
		shared.Fail(w, r, err, "save debtor", mappings...)
		return
	}
	api.Created(w, d, shared.RequestID(r))
}

func (h *Handler) handleUpdateDebtor(w http.ResponseWriter, r *http.Request) {
	var payload receivables.Debtor
	if !shared.Decode(w, r, &payload) {
		return
	}
	d, err := h.Service.UpdateDebtor(r.Context(), chi.URLParam(r, "debtorID"), payload)
	if err != nil {
		shared.Fail(w, r, err, "save debtor", mappings...)
		return
	}
	api.Success(w, d, shared.RequestID(r))
}

func (h *Handler) handleDeleteDebtor(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteDebtor(r.Context(), chi.URLParam(r, "debtorID")); err != nil {
		shared.Fail(w, r, err, "delete debtor", mappings...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleList accepts an optional ?debtorId filter.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context(), r.URL.Query().Get("debtorId"))
	if err != nil {
		shared.Fail(w, r, err, "list receivables", mappings...)
		return
	}
	api.Success(w, list, shared.RequestID(r))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload receivables.Receivable
	if !shared.Decode(w, r, &payload) {
		return
	}
	rec, err := h.Service.Create(r.Context(), payload)
	if err != nil {
		shared.Fail(w, r, err, "save receivable", mappings...)
		return
	}
	api.Created(w, rec, shared.RequestID(r))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload receivables.Receivable
	if !shared.Decode(w, r, &payload) {
		return
	}
	rec, err := h.Service.Update(r.Context(), chi.URLParam(r, "receivableID"), payload)
	if err != nil {
		shared.Fail(w, r, err, "save receivable", mappings...)
		return
	}
	api.Success(w, rec, shared.RequestID(r))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "receivableID")); err != nil {
		shared.Fail(w, r, err, "delete receivable", mappings...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	var payload markRequest
	if !shared.Decode(w, r, &payload) {
		return
	}
	if err := validate.Struct(payload).Err(); err != nil {
		shared.Fail(w, r, err, "update receivables")
		return
	}
	if err := h.Service.SetPaid(r.Context(), payload.IDs, payload.Paid); err != nil {
		shared.Fail(w, r, err, "update receivables", mappings...)
		return
	}
	api.Success(w, map[string]int{"updated": len(payload.IDs)}, shared.RequestID(r))
}

func (h *Handler) handleBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.Service.Balances(r.Context())
	if err != nil {
		shared.Fail(w, r, err, "load balances")
		return
	}
	api.Success(w, balances, shared.RequestID(r))
}
