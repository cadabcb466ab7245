package heladitohandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gdp/internal/domain/heladito"
	"gdp/internal/transport/http/api"
	"gdp/internal/transport/http/shared"
)

type Handler struct {
	Service *heladito.Service
}

func NewHandler(service *heladito.Service) *Handler {
	return &Handler{Service: service}
}

var mappings = []shared.Mapping{
	shared.NotFound(heladito.ErrWorkerNotFound),
	shared.NotFound(heladito.ErrRunNotFound),
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/heladito", func(r chi.Router) {
		r.Route("/report/{month}", func(r chi.Router) {
			r.Get("/", h.handleReport)
			r.Put("/", h.handleSaveReport)
			r.Get("/pdf", h.handleReportPDF)
		})
		r.Route("/workers", func(r chi.Router) {
			r.Get("/", h.handleListWorkers)
			r.Post("/", h.handleCreateWorker)
			r.Put("/{workerID}", h.handleUpdateWorker)
			r.Delete("/{workerID}", h.handleDeleteWorker)
		})
		r.Route("/payroll/runs", func(r chi.Router) {
			r.Get("/", h.handleListRuns)
			r.Post("/", h.handleCreateRun)
			r.Get("/{runID}", h.handleGetRun)
			r.Delete("/{runID}", h.handleDeleteRun)
			r.Get("/{runID}/pdf", h.handleRunPDF)
		})
	})
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.Report(r.Context(), chi.URLParam(r, "month"))
	if err != nil {
		shared.Fail(w, r, err, "load mi heladito report")
		return
	}
	api.Success(w, report, shared.RequestID(r))
}

func (h *Handler) handleSaveReport(w http.ResponseWriter, r *http.Request) {
	var payload heladito.ReportEntry
	if !shared.Decode(w, r, &payload) {
		return
	}
	report, err := h.Service.SaveReport(r.Context(), chi.URLParam(r, "month"), payload)
	if err != nil {
		shared.Fail(w, r, err, "save mi heladito report")
		return
	}
	api.Success(w, report, shared.RequestID(r))
}

func (h *Handler) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.Report(r.Context(), chi.URLParam(r, "month"))
	if err != nil {
		shared.Fail(w, r, err, "load mi heladito report")
		return
	}
	body, err := heladito.RenderReportPDF(report)
	if err != nil {
		shared.Fail(w, r, err, "render mi heladito report")
		return
	}
	api.File(w, "application/pdf", "mi-heladito-"+report.Month+".pdf", body)
}

func (h *Handler) handleListWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := h.Service.ListWorkers(r.Context())
	if err != nil {
		shared.Fail(w, r, err, "list workers")
		return
	}
	api.Success(w, workers, shared.RequestID(r))
}

func (h *Handler) handleCreateWorker(w http.ResponseWriter, r *http.Request) {
	var payload heladito.Worker
	if !shared.Decode(w, r, &payload) {
		return
	}
	worker, err := h.Service.CreateWorker(r.Context(), payload)
	if err != nil {
		shared.Fail(w, r, err, "save worker", mappings...)
		return
	}
	api.Created(w, worker, shared.RequestID(r))
}

func (h *Handler) handleUpdateWorker(w http.ResponseWriter, r *http.Request) {
	var payload heladito.Worker
	if !shared.Decode(w, r, &payload) {
		return
	}
	worker, err := h.Service.UpdateWorker(r.Context(), chi.URLParam(r, "workerID"), payload)
	if err != nil {
		shared.Fail(w, r, err, "save worker", mappings...)
		return
	}
	api.Success(w, worker, shared.RequestID(r))
}

func (h *Handler) handleDeleteWorker(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteWorker(r.Context(), chi.URLParam(r, "workerID")); err != nil {
		shared.Fail(w, r, err, "delete worker", mappings...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Service.ListRuns(r.Context())
	if err != nil {
		shared.Fail(w, r, err, "list mi heladito payroll runs")
		return
	}
	api.Success(w, runs, shared.RequestID(r))
}

func (h *Handler) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var payload heladito.RunRequest
	if !shared.Decode(w, r, &payload) {
		return
	}
	run, err := h.Service.CreateRun(r.Context(), payload)
	if err != nil {
		shared.Fail(w, r, err, "create mi heladito payroll run", mappings...)
		return
	}
	api.Created(w, run, shared.RequestID(r))
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.Service.GetRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		shared.Fail(w, r, err, "load mi heladito payroll run", mappings...)
		return
	}
	api.Success(w, run, shared.RequestID(r))
}

func (h *Handler) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteRun(r.Context(), chi.URLParam(r, "runID")); err != nil {
		shared.Fail(w, r, err, "delete mi heladito payroll run", mappings...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRunPDF(w http.ResponseWriter, r *http.Request) {
	run, err := h.Service.GetRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		shared.Fail(w, r, err, "load mi heladito payroll run", mappings...)
		return
	}
	body, err := heladito.RenderRunPDF(run)
	if err != nil {
		shared.Fail(w, r, err, "render mi heladito payroll run")
		return
	}
	api.File(w, "application/pdf", heladito.RunFileName(run), body)
}
