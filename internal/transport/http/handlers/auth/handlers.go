package authhandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gdp/internal/domain/auth"
	"gdp/internal/transport/http/api"
	"gdp/internal/transport/http/middleware"
	"gdp/internal/transport/http/shared"
)

type Handler struct {
	Service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{Service: service}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	MFACode  string `json:"mfaCode"`
}

type mfaCodeRequest struct {
	Code string `json:"code"`
}

var loginMappings = []shared.Mapping{
	{Err: auth.ErrMFARequired, Status: http.StatusUnauthorized, Code: "mfa_required"},
	{Err: auth.ErrMFAInvalid, Status: http.StatusUnauthorized, Code: "mfa_invalid"},
}

var mfaMappings = []shared.Mapping{
	{Err: auth.ErrMFAInvalid, Status: http.StatusBadRequest, Code: "mfa_invalid"},
	{Err: auth.ErrMFANotSetUp, Status: http.StatusBadRequest, Code: "mfa_missing"},
	{Err: auth.ErrMFAUnavailable, Status: http.StatusBadRequest, Code: "mfa_unavailable"},
	{Err: auth.ErrInvalidCredentials, Status: http.StatusUnauthorized, Code: "unauthorized"},
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/auth/me", h.handleMe)
		r.Post("/auth/mfa/setup", h.handleMFASetup)
		r.Post("/auth/mfa/enable", h.handleMFAEnable)
		r.Post("/auth/mfa/disable", h.handleMFADisable)
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if !shared.Decode(w, r, &payload) {
		return
	}
	session, err := h.Service.Login(r.Context(), payload.Username, payload.Password, payload.MFACode)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", shared.RequestID(r))
		return
	}
	if err != nil {
		shared.Fail(w, r, err, "log in", loginMappings...)
		return
	}
	api.Success(w, session, shared.RequestID(r))
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	profile, err := h.Service.Profile(r.Context(), user.UserID)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", shared.RequestID(r))
		return
	}
	if err != nil {
		shared.Fail(w, r, err, "load user")
		return
	}
	api.Success(w, profile, shared.RequestID(r))
}

func (h *Handler) handleMFASetup(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	setup, err := h.Service.SetupMFA(r.Context(), user.UserID)
	if err != nil {
		shared.Fail(w, r, err, "set up mfa", mfaMappings...)
		return
	}
	api.Success(w, setup, shared.RequestID(r))
}

func (h *Handler) handleMFAEnable(w http.ResponseWriter, r *http.Request) {
	var payload mfaCodeRequest
	if !shared.Decode(w, r, &payload) {
		return
	}
	user, _ := middleware.GetUser(r.Context())
	if err := h.Service.EnableMFA(r.Context(), user.UserID, payload.Code); err != nil {
		shared.Fail(w, r, err, "enable mfa", mfaMappings...)
		return
	}
	api.Success(w, map[string]string{"status": "enabled"}, shared.RequestID(r))
}

func (h *Handler) handleMFADisable(w http.ResponseWriter, r *http.Request) {
	var payload mfaCodeRequest
	if !shared.Decode(w, r, &payload) {
		return
	}
	user, _ := middleware.GetUser(r.Context())
	if err := h.Service.DisableMFA(r.Context(), user.UserID, payload.Code); err != nil {
		shared.Fail(w, r, err, "disable mfa", mfaMappings...)
		return
	}
	api.Success(w, map[string]string{"status": "disabled"}, shared.RequestID(r))
}
