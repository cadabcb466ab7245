package payrollhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gdp/internal/domain/assistant"
	"gdp/internal/domain/payroll"
	"gdp/internal/platform/validate"
	"gdp/internal/transport/http/api"
	"gdp/internal/transport/http/shared"
)

type Handler struct {
	Service   *payroll.Service
	Assistant *assistant.Service
}

func NewHandler(service *payroll.Service, assistantSvc *assistant.Service) *Handler {
	return &Handler{Service: service, Assistant: assistantSvc}
}

var mappings = []shared.Mapping{
	shared.NotFound(payroll.ErrRunNotFound),
	shared.NotFound(payroll.ErrPayslipNotFound),
	shared.Conflict(payroll.ErrRunInProgress),
	{Err: payroll.ErrEmployeeNotFound, Status: http.StatusBadRequest, Code: "unknown_employee"},
	{Err: payroll.ErrNoRecipient, Status: http.StatusUnprocessableEntity, Code: "no_recipient"},
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.Get("/rules", h.handleRules)
		r.Post("/calculate", h.handleCalculate)
		r.Route("/runs", func(r chi.Router) {
			r.Get("/", h.handleListRuns)
			r.Post("/", h.handleCreateRun)
			r.Route("/{runID}", func(r chi.Router) {
				r.Get("/", h.handleGetRun)
				r.Put("/", h.handleReprocess)
				r.Delete("/", h.handleDeleteRun)
				r.Route("/payslips/{payslipID}", func(r chi.Router) {
					r.Get("/", h.handlePayslip)
					r.Get("/pdf", h.handlePayslipPDF)
					r.Post("/send", h.handleSendPayslip)
					r.Post("/explain", h.handleExplainPayslip)
				})
			})
		})
	})
}

func (h *Handler) handleRules(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Service.Calculator().Rules(), shared.RequestID(r))
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var payload payroll.PayslipInput
	if !shared.Decode(w, r, &payload) {
		return
	}
	if err := validate.Struct(payload).Err(); err != nil {
		shared.Fail(w, r, err, "calculate payslip")
		return
	}
	breakdown, payslip := h.Service.Preview(payload)
	api.Success(w, map[string]any{"breakdown": breakdown, "payslip": payslip}, shared.RequestID(r))
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Service.ListRuns(r.Context())
	if err != nil {
		shared.Fail(w, r, err, "list payroll runs")
		return
	}
	api.Success(w, runs, shared.RequestID(r))
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.Service.GetRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		shared.Fail(w, r, err, "load payroll run", mappings...)
		return
	}
	api.Success(w, run, shared.RequestID(r))
}

func (h *Handler) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var payload payroll.RunRequest
	if !shared.Decode(w, r, &payload) {
		return
	}
	run, err := h.Service.CreateRun(r.Context(), payload, shared.QueryBool(r, "wait"))
	if err != nil {
		shared.Fail(w, r, err, "create payroll run", mappings...)
		return
	}
	respondRun(w, r, run, true)
}

func (h *Handler) handleReprocess(w http.ResponseWriter, r *http.Request) {
	var payload payroll.RunRequest
	if !shared.Decode(w, r, &payload) {
		return
	}
	run, err := h.Service.Reprocess(r.Context(), chi.URLParam(r, "runID"), payload, shared.QueryBool(r, "wait"))
	if err != nil {
		shared.Fail(w, r, err, "reprocess payroll run", mappings...)
		return
	}
	respondRun(w, r, run, false)
}

// respondRun answers 202 while the run is still queued.
func respondRun(w http.ResponseWriter, r *http.Request, run payroll.Run, created bool) {
	switch {
	case run.Status == payroll.RunStatusPending || run.Status == payroll.RunStatusProcessing:
		api.Accepted(w, run, shared.RequestID(r))
	case created:
		api.Created(w, run, shared.RequestID(r))
	default:
		api.Success(w, run, shared.RequestID(r))
	}
}

func (h *Handler) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteRun(r.Context(), chi.URLParam(r, "runID")); err != nil {
		shared.Fail(w, r, err, "delete payroll run", mappings...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Payslip(r.Context(), chi.URLParam(r, "runID"), chi.URLParam(r, "payslipID"))
	if err != nil {
		shared.Fail(w, r, err, "load payslip", mappings...)
		return
	}
	api.Success(w, p, shared.RequestID(r))
}

func (h *Handler) handlePayslipPDF(w http.ResponseWriter, r *http.Request) {
	body, name, err := h.Service.PayslipPDF(r.Context(), chi.URLParam(r, "runID"), chi.URLParam(r, "payslipID"))
	if err != nil {
		shared.Fail(w, r, err, "render payslip", mappings...)
		return
	}
	api.File(w, "application/pdf", name, body)
}

func (h *Handler) handleSendPayslip(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.SendPayslip(r.Context(), chi.URLParam(r, "runID"), chi.URLParam(r, "payslipID")); err != nil {
		shared.Fail(w, r, err, "send payslip", mappings...)
		return
	}
	api.Success(w, map[string]bool{"sent": true}, shared.RequestID(r))
}

func (h *Handler) handleExplainPayslip(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Payslip(r.Context(), chi.URLParam(r, "runID"), chi.URLParam(r, "payslipID"))
	if err != nil {
		shared.Fail(w, r, err, "load payslip", mappings...)
		return
	}
	text, err := h.Assistant.ExplainPayslip(r.Context(), p)
	if err != nil {
		shared.Fail(w, r, err, "explain payslip")
		return
	}
	api.Success(w, map[string]string{"explanation": text}, shared.RequestID(r))
}
