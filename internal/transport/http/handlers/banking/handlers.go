package bankinghandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gdp/internal/domain/assistant"
	"gdp/internal/domain/banking"
	"gdp/internal/platform/sheet"
	"gdp/internal/platform/validate"
	"gdp/internal/transport/http/api"
	"gdp/internal/transport/http/shared"
)

type Handler struct {
	Service   *banking.Service
	Assistant *assistant.Service
}

func NewHandler(service *banking.Service, assistantSvc *assistant.Service) *Handler {
	return &Handler{Service: service, Assistant: assistantSvc}
}

var mappings = []shared.Mapping{
	shared.NotFound(banking.ErrNotFound),
}

type pasteRequest struct {
	Text string `json:"text" validate:"required"`
}

type commentRequest struct {
	Description string   `json:"description"`
	Debit       *float64 `json:"debit"`
	Credit      *float64 `json:"credit"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/bank", func(r chi.Router) {
		r.Get("/categories", h.handleCategories)
		r.Get("/summary", h.handleSummary)
		r.Get("/xlsx", h.handleXLSX)
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", h.handleList)
			r.Post("/", h.handleCreate)
			r.Post("/paste", h.handlePaste)
			r.Post("/suggest-comment", h.handleSuggestComment)
			r.Get("/{transactionID}", h.handleGet)
			r.Put("/{transactionID}", h.handleUpdate)
			r.Delete("/{transactionID}", h.handleDelete)
		})
	})
}

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	api.Success(w, banking.Categories, shared.RequestID(r))
}

// handleList accepts ?month=YYYY-MM and pages with ?limit and ?offset.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	txs, err := h.Service.List(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		shared.Fail(w, r, err, "list bank transactions")
		return
	}
	api.Success(w, shared.Paginate(txs, shared.ParsePagination(r, 100, 1000)), shared.RequestID(r))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	t, err := h.Service.Get(r.Context(), chi.URLParam(r, "transactionID"))
	if err != nil {
		shared.Fail(w, r, err, "load bank transaction", mappings...)
		return
	}
	api.Success(w, t, shared.RequestID(r))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload banking.Transaction
	if !shared.Decode(w, r, &payload) {
		return
	}
	t, err := h.Service.Create(r.Context(), payload)
	if err != nil {
		shared.Fail(w, r, err, "save bank transaction", mappings...)
		return
	}
	api.Created(w, t, shared.RequestID(r))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload banking.Transaction
	if !shared.Decode(w, r, &payload) {
		return
	}
	t, err := h.Service.Update(r.Context(), chi.URLParam(r, "transactionID"), payload)
	if err != nil {
		shared.Fail(w, r, err, "save bank transaction", mappings...)
		return
	}
	api.Success(w, t, shared.RequestID(r))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "transactionID")); err != nil {
		shared.Fail(w, r, err, "delete bank transaction", mappings...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handlePaste(w http.ResponseWriter, r *http.Request) {
	var payload pasteRequest
	if !shared.Decode(w, r, &payload) {
		return
	}
	if err := validate.Struct(payload).Err(); err != nil {
		shared.Fail(w, r, err, "import bank statement")
		return
	}
	result, err := h.Service.ImportPaste(r.Context(), payload.Text)
	if err != nil {
		shared.Fail(w, r, err, "import bank statement")
		return
	}
	api.Success(w, result, shared.RequestID(r))
}

func (h *Handler) handleSuggestComment(w http.ResponseWriter, r *http.Request) {
	var payload commentRequest
	if !shared.Decode(w, r, &payload) {
		return
	}
	comment, err := h.Assistant.SuggestBankComment(r.Context(), payload.Description, payload.Debit, payload.Credit)
	if err != nil {
		shared.Fail(w, r, err, "suggest comment")
		return
	}
	api.Success(w, map[string]string{"comment": comment}, shared.RequestID(r))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	txs, err := h.Service.List(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		shared.Fail(w, r, err, "list bank transactions")
		return
	}
	api.Success(w, banking.Summarize(txs), shared.RequestID(r))
}

func (h *Handler) handleXLSX(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	txs, err := h.Service.List(r.Context(), month)
	if err != nil {
		shared.Fail(w, r, err, "list bank transactions")
		return
	}
	body, err := banking.ExportXLSX(txs)
	if err != nil {
		shared.Fail(w, r, err, "export bank transactions")
		return
	}
	name := "movimientos-bancarios.xlsx"
	if month != "" {
		name = "movimientos-bancarios-" + month + ".xlsx"
	}
	api.File(w, sheet.ContentType, name, body)
}
