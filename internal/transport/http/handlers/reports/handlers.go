package reportshandler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gdp/internal/domain/assistant"
	"gdp/internal/domain/reports"
	"gdp/internal/platform/sheet"
	"gdp/internal/platform/validate"
	"gdp/internal/transport/http/api"
	"gdp/internal/transport/http/shared"
)

type Handler struct {
	Service   *reports.Service
	Assistant *assistant.Service
}

func NewHandler(service *reports.Service, assistantSvc *assistant.Service) *Handler {
	return &Handler{Service: service, Assistant: assistantSvc}
}

var mappings = []shared.Mapping{
	{Err: assistant.ErrUnsupportedFile, Status: http.StatusUnsupportedMediaType, Code: "unsupported_file"},
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/rules", h.handleRules)
		r.Get("/monthly/history", h.handleHistory)
		r.Route("/monthly/{month}", func(r chi.Router) {
			r.Get("/", h.handleMonthly)
			r.Put("/", h.handleSave)
			r.Get("/pdf", h.handlePDF)
			r.Get("/xlsx", h.handleXLSX)
			r.Post("/import-image", h.handleImportImage)
		})
		r.Get("/pounds/{year}", h.handleYearPounds)
		r.Put("/pounds/{year}", h.handleSaveYearPounds)
	})
}

func (h *Handler) handleRules(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Service.Rules(), shared.RequestID(r))
}

func (h *Handler) handleMonthly(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.Monthly(r.Context(), chi.URLParam(r, "month"))
	if err != nil {
		shared.Fail(w, r, err, "load monthly report")
		return
	}
	api.Success(w, report, shared.RequestID(r))
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	var payload reports.Entry
	if !shared.Decode(w, r, &payload) {
		return
	}
	report, err := h.Service.Save(r.Context(), chi.URLParam(r, "month"), payload)
	if err != nil {
		shared.Fail(w, r, err, "save monthly report")
		return
	}
	api.Success(w, report, shared.RequestID(r))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.Service.History(r.Context())
	if err != nil {
		shared.Fail(w, r, err, "load report history")
		return
	}
	api.Success(w, history, shared.RequestID(r))
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.Monthly(r.Context(), chi.URLParam(r, "month"))
	if err != nil {
		shared.Fail(w, r, err, "load monthly report")
		return
	}
	body, err := reports.RenderPDF(report)
	if err != nil {
		shared.Fail(w, r, err, "render monthly report")
		return
	}
	api.File(w, "application/pdf", reports.PDFFileName(report), body)
}

func (h *Handler) handleXLSX(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.Monthly(r.Context(), chi.URLParam(r, "month"))
	if err != nil {
		shared.Fail(w, r, err, "load monthly report")
		return
	}
	history, err := h.Service.History(r.Context())
	if err != nil {
		shared.Fail(w, r, err, "load report history")
		return
	}
	body, err := reports.RenderXLSX(report, history)
	if err != nil {
		shared.Fail(w, r, err, "export monthly report")
		return
	}
	api.File(w, sheet.ContentType, reports.XLSXFileName(report), body)
}

// handleImportImage reads a photographed report and replaces the month's manual lines.
func (h *Handler) handleImportImage(w http.ResponseWriter, r *http.Request) {
	upload, err := shared.ReadUpload(r)
	if err != nil {
		shared.Fail(w, r, err, "read upload")
		return
	}
	extracted, err := h.Assistant.ExtractFinancialReport(r.Context(), upload.Data, upload.MimeType)
	if err != nil {
		shared.Fail(w, r, err, "read report image", mappings...)
		return
	}
	report, err := h.Service.ImportExtracted(r.Context(), chi.URLParam(r, "month"), extracted)
	if err != nil {
		shared.Fail(w, r, err, "save monthly report")
		return
	}
	api.Success(w, report, shared.RequestID(r))
}

func (h *Handler) handleYearPounds(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(w, r)
	if !ok {
		return
	}
	pounds, err := h.Service.YearPounds(r.Context(), year)
	if err != nil {
		shared.Fail(w, r, err, "load pounds")
		return
	}
	api.Success(w, pounds, shared.RequestID(r))
}

func (h *Handler) handleSaveYearPounds(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(w, r)
	if !ok {
		return
	}
	var payload map[string]*float64
	if !shared.Decode(w, r, &payload) {
		return
	}
	pounds, err := h.Service.SaveYearPounds(r.Context(), year, payload)
	if err != nil {
		shared.Fail(w, r, err, "save pounds")
		return
	}
	api.Success(w, pounds, shared.RequestID(r))
}

func parseYear(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 2000 || year > 2100 {
		shared.FailValidation(w, shared.RequestID(r), []validate.Issue{{Field: "year", Reason: "must be a year between 2000 and 2100"}})
		return 0, false
	}
	return year, true
}
