package authhandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"worklog/internal/domain/identity"
	"worklog/internal/requestctx"
	"worklog/internal/transport/http/api"
	"worklog/internal/transport/http/middleware"
	"worklog/internal/transport/http/shared"
)

type Handler struct {
	Service *identity.Service
}

func NewHandler(service *identity.Service) *Handler {
	return &Handler{Service: service}
}

type loginRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	MFACode  string `json:"mfaCode"`
}

type codeRequest struct {
	Code string `json:"code" validate:"required"`
}

// RegisterRoutes mounts login and the authenticated account routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Route("/auth", func(r chi.Router) {
		r.Use(middleware.RequireAuth(true))
		r.Get("/me", h.handleMe)
		r.Post("/mfa/setup", h.handleMFASetup)
		r.Post("/mfa/enable", h.handleMFAEnable)
		r.Post("/mfa/disable", h.handleMFADisable)
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	var payload loginRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.FailErr(w, err, rid)
		return
	}
	identifier := payload.Email
	if identifier == "" {
		identifier = payload.Name
	}
	v := shared.NewValidator()
	v.Required("email", identifier, "is required")
	v.Required("password", payload.Password, "is required")
	if v.Reject(w, rid) {
		return
	}

	session, err := h.Service.Login(r.Context(), identifier, payload.Password, payload.MFACode)
	if err != nil {
		api.FailErr(w, err, rid)
		return
	}
	api.Success(w, session)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := requestctx.GetPrincipal(r.Context())
	api.Success(w, map[string]any{
		"id":    user.UserID,
		"email": user.Email,
		"name":  user.Name,
		"role":  user.Role,
	})
}

func (h *Handler) handleMFASetup(w http.ResponseWriter, r *http.Request) {
	user, _ := requestctx.GetPrincipal(r.Context())
	setup, err := h.Service.SetupMFA(r.Context(), user.UserID)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, setup)
}

func (h *Handler) handleMFAEnable(w http.ResponseWriter, r *http.Request) {
	h.withCode(w, r, h.Service.EnableMFA, "MFA enabled")
}

func (h *Handler) handleMFADisable(w http.ResponseWriter, r *http.Request) {
	h.withCode(w, r, h.Service.DisableMFA, "MFA disabled")
}

func (h *Handler) withCode(w http.ResponseWriter, r *http.Request, apply func(context.Context, string, string) error, message string) {
	rid := middleware.GetRequestID(r.Context())
	var payload codeRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.FailErr(w, err, rid)
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, rid) {
		return
	}
	user, _ := requestctx.GetPrincipal(r.Context())
	if err := apply(r.Context(), user.UserID, payload.Code); err != nil {
		api.FailErr(w, err, rid)
		return
	}
	api.Success(w, api.Message{Message: message})
}
