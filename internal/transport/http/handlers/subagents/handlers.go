package subagentshandler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gdp/internal/domain/assistant"
	"gdp/internal/domain/subagents"
	"gdp/internal/platform/validate"
	"gdp/internal/transport/http/api"
	"gdp/internal/transport/http/shared"
)

type Handler struct {
	Service   *subagents.Service
	Assistant *assistant.Service
}

func NewHandler(service *subagents.Service, assistantSvc *assistant.Service) *Handler {
	return &Handler{Service: service, Assistant: assistantSvc}
}

var mappings = []shared.Mapping{
	shared.NotFound(subagents.ErrNotFound),
	shared.NotFound(subagents.ErrConduceNotFound),
	shared.NotFound(subagents.ErrPaymentNotFound),
	shared.Conflict(subagents.ErrDuplicateCode),
	shared.Conflict(subagents.ErrSubagentInUse),
	shared.Conflict(subagents.ErrConducePaid),
	shared.Conflict(subagents.ErrAlreadyPaid),
	{Err: subagents.ErrNothingToPay, Status: http.StatusUnprocessableEntity, Code: "nothing_to_pay"},
	{Err: subagents.ErrWrongPaymentModel, Status: http.StatusUnprocessableEntity, Code: "wrong_payment_model"},
	{Err: assistant.ErrUnsupportedFile, Status: http.StatusUnsupportedMediaType, Code: "unsupported_file"},
}

type payConducesRequest struct {
	Month           string `json:"month" validate:"required"`
	VoucherFileName string `json:"voucherFileName"`
}

type payAggregateRequest struct {
	Month           string  `json:"month" validate:"required"`
	TotalWeight     float64 `json:"totalWeight" validate:"gt=0"`
	VoucherFileName string  `json:"voucherFileName"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/conduces/pending", h.handlePending)
	r.Route("/subagents", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Route("/{subagentID}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Put("/", h.handleUpdate)
			r.Delete("/", h.handleDelete)
			r.Get("/conduces", h.handleConduces)
			r.Post("/conduces", h.handleAddConduce)
			r.Post("/conduces/import", h.handleImportConduces)
			r.Delete("/conduces/{conduceID}", h.handleDeleteConduce)
			r.Get("/payments", h.handlePayments)
			r.Post("/payments/conduces", h.handlePayConduces)
			r.Post("/payments/aggregate", h.handlePayAggregate)
			r.Get("/statement/{month}", h.handleStatement)
			r.Get("/statement/{month}/pdf", h.handleStatementPDF)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context())
	if err != nil {
		shared.Fail(w, r, err, "list subagents")
		return
	}
	api.Success(w, list, shared.RequestID(r))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	sub, err := h.Service.Get(r.Context(), chi.URLParam(r, "subagentID"))
	if err != nil {
		shared.Fail(w, r, err, "load subagent", mappings...)
		return
	}
	api.Success(w, sub, shared.RequestID(r))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload subagents.Subagent
	if !shared.Decode(w, r, &payload) {
		return
	}
	sub, err := h.Service.Create(r.Context(), payload)
	if err != nil {
		shared.Fail(w, r, err, "save subagent", mappings...)
		return
	}
	api.Created(w, sub, shared.RequestID(r))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload subagents.Subagent
	if !shared.Decode(w, r, &payload) {
		return
	}
	sub, err := h.Service.Update(r.Context(), chi.URLParam(r, "subagentID"), payload)
	if err != nil {
		shared.Fail(w, r, err, "save subagent", mappings...)
		return
	}
	api.Success(w, sub, shared.RequestID(r))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "subagentID")); err != nil {
		shared.Fail(w, r, err, "delete subagent", mappings...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleConduces accepts an optional ?month=YYYY-MM.
func (h *Handler) handleConduces(w http.ResponseWriter, r *http.Request) {
	subagentID := chi.URLParam(r, "subagentID")
	if _, err := h.Service.Get(r.Context(), subagentID); err != nil {
		shared.Fail(w, r, err, "load subagent", mappings...)
		return
	}
	list, err := h.Service.Conduces(r.Context(), subagentID, r.URL.Query().Get("month"))
	if err != nil {
		shared.Fail(w, r, err, "list conduces", mappings...)
		return
	}
	api.Success(w, list, shared.RequestID(r))
}

func (h *Handler) handleAddConduce(w http.ResponseWriter, r *http.Request) {
	var payload subagents.Conduce
	if !shared.Decode(w, r, &payload) {
		return
	}
	c, err := h.Service.AddConduce(r.Context(), chi.URLParam(r, "subagentID"), payload)
	if err != nil {
		shared.Fail(w, r, err, "save conduce", mappings...)
		return
	}
	api.Created(w, c, shared.RequestID(r))
}

func (h *Handler) handleDeleteConduce(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteConduce(r.Context(), chi.URLParam(r, "subagentID"), chi.URLParam(r, "conduceID")); err != nil {
		shared.Fail(w, r, err, "delete conduce", mappings...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleImportConduces reads a scanned conduce report. ?year sets the year assumed for
// dates printed without one.
func (h *Handler) handleImportConduces(w http.ResponseWriter, r *http.Request) {
	subagentID := chi.URLParam(r, "subagentID")
	if _, err := h.Service.Get(r.Context(), subagentID); err != nil {
		shared.Fail(w, r, err, "load subagent", mappings...)
		return
	}
	upload, err := shared.ReadUpload(r)
	if err != nil {
		shared.Fail(w, r, err, "read upload")
		return
	}
	rows, err := h.Assistant.ExtractConduces(r.Context(), upload.Data, upload.MimeType)
	if err != nil {
		shared.Fail(w, r, err, "read conduce report", mappings...)
		return
	}
	year := shared.QueryInt(r, "year", time.Now().Year())
	result, err := h.Service.ImportConduces(r.Context(), subagentID, year, upload.Name, rows)
	if err != nil {
		shared.Fail(w, r, err, "import conduces", mappings...)
		return
	}
	api.Success(w, result, shared.RequestID(r))
}

func (h *Handler) handlePending(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Service.Pending(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		shared.Fail(w, r, err, "list pending conduces")
		return
	}
	api.Success(w, groups, shared.RequestID(r))
}

func (h *Handler) handlePayments(w http.ResponseWriter, r *http.Request) {
	subagentID := chi.URLParam(r, "subagentID")
	if _, err := h.Service.Get(r.Context(), subagentID); err != nil {
		shared.Fail(w, r, err, "load subagent", mappings...)
		return
	}
	list, err := h.Service.Payments(r.Context(), subagentID)
	if err != nil {
		shared.Fail(w, r, err, "list subagent payments")
		return
	}
	api.Success(w, list, shared.RequestID(r))
}

func (h *Handler) handlePayConduces(w http.ResponseWriter, r *http.Request) {
	var payload payConducesRequest
	if !shared.Decode(w, r, &payload) {
		return
	}
	if err := validate.Struct(payload).Err(); err != nil {
		shared.Fail(w, r, err, "pay conduces")
		return
	}
	payment, err := h.Service.PayConduces(r.Context(), chi.URLParam(r, "subagentID"), payload.Month, payload.VoucherFileName)
	if err != nil {
		shared.Fail(w, r, err, "pay conduces", mappings...)
		return
	}
	api.Created(w, payment, shared.RequestID(r))
}

func (h *Handler) handlePayAggregate(w http.ResponseWriter, r *http.Request) {
	var payload payAggregateRequest
	if !shared.Decode(w, r, &payload) {
		return
	}
	if err := validate.Struct(payload).Err(); err != nil {
		shared.Fail(w, r, err, "pay subagent month")
		return
	}
	payment, err := h.Service.PayAggregate(r.Context(), chi.URLParam(r, "subagentID"), payload.Month, payload.TotalWeight, payload.VoucherFileName)
	if err != nil {
		shared.Fail(w, r, err, "pay subagent month", mappings...)
		return
	}
	api.Created(w, payment, shared.RequestID(r))
}

func (h *Handler) handleStatement(w http.ResponseWriter, r *http.Request) {
	st, err := h.Service.Statement(r.Context(), chi.URLParam(r, "subagentID"), chi.URLParam(r, "month"))
	if err != nil {
		shared.Fail(w, r, err, "load statement", mappings...)
		return
	}
	api.Success(w, st, shared.RequestID(r))
}

func (h *Handler) handleStatementPDF(w http.ResponseWriter, r *http.Request) {
	st, err := h.Service.Statement(r.Context(), chi.URLParam(r, "subagentID"), chi.URLParam(r, "month"))
	if err != nil {
		shared.Fail(w, r, err, "load statement", mappings...)
		return
	}
	body, err := subagents.RenderStatementPDF(st)
	if err != nil {
		shared.Fail(w, r, err, "render statement")
		return
	}
	api.File(w, "application/pdf", subagents.StatementFileName(st), body)
}
