package usershandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"worklog/internal/domain/audit"
	"worklog/internal/domain/auth"
	"worklog/internal/domain/users"
	"worklog/internal/transport/http/api"
	"worklog/internal/transport/http/middleware"
	"worklog/internal/transport/http/shared"
)

type Handler struct {
	Service *users.Service
	Policy  middleware.Policy
	Audit   *audit.Service
}

func NewHandler(service *users.Service, policy middleware.Policy, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Policy: policy, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := h.Policy.Require(auth.ResUsers, auth.ActRead)
	write := h.Policy.Require(auth.ResUsers, auth.ActWrite)

	r.With(read).Get("/timesheet/showUser", h.handleDirectory)
	r.Route("/users", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write).Post("/", h.handleCreate)
		h.mountLookup(r, "/{id}", func(r *http.Request) users.Lookup { return users.ByID(chi.URLParam(r, "id")) })
		h.mountLookup(r, "/email/{email}", func(r *http.Request) users.Lookup { return users.ByEmail(chi.URLParam(r, "email")) })
		h.mountLookup(r, "/name/{name}", func(r *http.Request) users.Lookup { return users.ByName(chi.URLParam(r, "name")) })
	})
}

func (h *Handler) mountLookup(r chi.Router, pattern string, lookup func(*http.Request) users.Lookup) {
	r.With(h.Policy.Require(auth.ResUsers, auth.ActRead)).Get(pattern, func(w http.ResponseWriter, r *http.Request) {
		h.handleGet(w, r, lookup(r))
	})
	r.With(h.Policy.Require(auth.ResUsers, auth.ActWrite)).Put(pattern, func(w http.ResponseWriter, r *http.Request) {
		h.handleUpdate(w, r, lookup(r))
	})
	r.With(h.Policy.Require(auth.ResUsers, auth.ActWrite)).Delete(pattern, func(w http.ResponseWriter, r *http.Request) {
		h.handleDelete(w, r, lookup(r))
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context())
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"users": list})
}

func (h *Handler) handleDirectory(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context())
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"success": true, "data": list})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	var payload users.CreateInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.FailErr(w, err, rid)
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, rid) {
		return
	}
	created, err := h.Service.Create(r.Context(), payload)
	if err != nil {
		api.FailErr(w, err, rid)
		return
	}
	h.Audit.Log(r.Context(), shared.AuditEntry(r, "user.create", "user", created.ID, nil, created))
	api.Success(w, map[string]any{"message": "User added successfully", "user": created})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, lookup users.Lookup) {
	user, err := h.Service.Get(r.Context(), lookup)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"user": user})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request, lookup users.Lookup) {
	rid := middleware.GetRequestID(r.Context())
	patch := map[string]any{}
	if err := shared.DecodeJSON(r, &patch); err != nil {
		api.FailErr(w, err, rid)
		return
	}
	before, err := h.Service.Get(r.Context(), lookup)
	if err != nil {
		api.FailErr(w, err, rid)
		return
	}
	updated, err := h.Service.Update(r.Context(), lookup, patch)
	if err != nil {
		api.FailErr(w, err, rid)
		return
	}
	h.Audit.Log(r.Context(), shared.AuditEntry(r, "user.update", "user", updated.ID, before, updated))
	api.Success(w, map[string]any{"user": updated})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request, lookup users.Lookup) {
	rid := middleware.GetRequestID(r.Context())
	removed, err := h.Service.Delete(r.Context(), lookup)
	if err != nil {
		api.FailErr(w, err, rid)
		return
	}
	h.Audit.Log(r.Context(), shared.AuditEntry(r, "user.delete", "user", removed.ID, removed, nil))
	api.Success(w, map[string]any{"user": removed})
}
