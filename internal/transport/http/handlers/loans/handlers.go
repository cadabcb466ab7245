package loanshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gdp/internal/domain/loans"
	"gdp/internal/transport/http/api"
	"gdp/internal/transport/http/shared"
)

type Handler struct {
	Service *loans.Service
}

func NewHandler(service *loans.Service) *Handler {
	return &Handler{Service: service}
}

var mappings = []shared.Mapping{
	shared.NotFound(loans.ErrNotFound),
	shared.Conflict(loans.ErrLoanSettled),
	{Err: loans.ErrInvalidLoan, Status: http.StatusUnprocessableEntity, Code: "invalid_loan"},
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/loans", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Route("/{loanID}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Put("/", h.handleUpdate)
			r.Delete("/", h.handleDelete)
			r.Get("/payments", h.handlePayments)
			r.Post("/payments", h.handleRegisterPayment)
			r.Get("/payments/{paymentID}/receipt", h.handleReceipt)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context())
	if err != nil {
		shared.Fail(w, r, err, "list loans")
		return
	}
	api.Success(w, list, shared.RequestID(r))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	loan, err := h.Service.Get(r.Context(), chi.URLParam(r, "loanID"))
	if err != nil {
		shared.Fail(w, r, err, "load loan", mappings...)
		return
	}
	api.Success(w, loan, shared.RequestID(r))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload loans.Loan
	if !shared.Decode(w, r, &payload) {
		return
	}
	loan, err := h.Service.Create(r.Context(), payload)
	if err != nil {
		shared.Fail(w, r, err, "save loan", mappings...)
		return
	}
	api.Created(w, loan, shared.RequestID(r))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload loans.Loan
	if !shared.Decode(w, r, &payload) {
		return
	}
	loan, err := h.Service.Update(r.Context(), chi.URLParam(r, "loanID"), payload)
	if err != nil {
		shared.Fail(w, r, err, "save loan", mappings...)
		return
	}
	api.Success(w, loan, shared.RequestID(r))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "loanID")); err != nil {
		shared.Fail(w, r, err, "delete loan", mappings...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handlePayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.Service.Payments(r.Context(), chi.URLParam(r, "loanID"))
	if err != nil {
		shared.Fail(w, r, err, "list loan payments", mappings...)
		return
	}
	api.Success(w, payments, shared.RequestID(r))
}

func (h *Handler) handleRegisterPayment(w http.ResponseWriter, r *http.Request) {
	var payload loans.PaymentRequest
	if r.ContentLength != 0 && !shared.Decode(w, r, &payload) {
		return
	}
	payment, err := h.Service.RegisterPayment(r.Context(), chi.URLParam(r, "loanID"), payload)
	if err != nil {
		shared.Fail(w, r, err, "register loan payment", mappings...)
		return
	}
	api.Created(w, payment, shared.RequestID(r))
}

func (h *Handler) handleReceipt(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, "loanID")
	loan, err := h.Service.Get(r.Context(), loanID)
	if err != nil {
		shared.Fail(w, r, err, "load loan", mappings...)
		return
	}
	payment, err := h.Service.Payment(r.Context(), loanID, chi.URLParam(r, "paymentID"))
	if err != nil {
		shared.Fail(w, r, err, "load loan payment", mappings...)
		return
	}
	body, err := loans.RenderReceiptPDF(loan, payment)
	if err != nil {
		shared.Fail(w, r, err, "render loan receipt")
		return
	}
	api.File(w, "application/pdf", loans.ReceiptFileName(loan, payment), body)
}
