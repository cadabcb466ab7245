package employeeshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gdp/internal/domain/employees"
	"gdp/internal/transport/http/api"
	"gdp/internal/transport/http/shared"
)

type Handler struct {
	Service *employees.Service
}

func NewHandler(service *employees.Service) *Handler {
	return &Handler{Service: service}
}

var mappings = []shared.Mapping{
	shared.NotFound(employees.ErrNotFound),
	shared.Conflict(employees.ErrDuplicate),
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{employeeID}", h.handleGet)
		r.Put("/{employeeID}", h.handleUpdate)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context())
	if err != nil {
		shared.Fail(w, r, err, "list employees")
		return
	}
	api.Success(w, list, shared.RequestID(r))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Service.Get(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		shared.Fail(w, r, err, "load employee", mappings...)
		return
	}
	api.Success(w, emp, shared.RequestID(r))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload employees.Employee
	if !shared.Decode(w, r, &payload) {
		return
	}
	emp, err := h.Service.Create(r.Context(), payload)
	if err != nil {
		shared.Fail(w, r, err, "save employee", mappings...)
		return
	}
	api.Created(w, emp, shared.RequestID(r))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload employees.Employee
	if !shared.Decode(w, r, &payload) {
		return
	}
	emp, err := h.Service.Update(r.Context(), chi.URLParam(r, "employeeID"), payload)
	if err != nil {
		shared.Fail(w, r, err, "save employee", mappings...)
		return
	}
	api.Success(w, emp, shared.RequestID(r))
}
