package projectshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"worklog/internal/domain/audit"
	"worklog/internal/domain/auth"
	"worklog/internal/domain/projects"
	"worklog/internal/transport/http/api"
	"worklog/internal/transport/http/middleware"
	"worklog/internal/transport/http/shared"
)

type Handler struct {
	Service *projects.Service
	Policy  middleware.Policy
	Audit   *audit.Service
}

func NewHandler(service *projects.Service, policy middleware.Policy, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Policy: policy, Audit: auditSvc}
}

type updateMatchingRequest struct {
	Search projects.Criteria `json:"search"`
	Update map[string]any    `json:"update"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := h.Policy.Require(auth.ResProjects, auth.ActRead)
	write := h.Policy.Require(auth.ResProjects, auth.ActWrite)

	r.Route("/projects", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write).Post("/", h.handleCreate)
		r.With(write).Post("/update", h.handleUpdateMatching)
		r.With(read).Post("/search", h.handleSearch)
		r.With(write).Post("/delete", h.handleDelete)
		r.With(read).Get("/{id}", h.handleGet)
		r.With(write).Put("/{id}", h.handleUpdate)
		r.With(read).Get("/{id}/details", h.handleDetails)
		r.With(write).Post("/{id}/members", h.handleAddMember)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context())
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"success": true, "data": list})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	var payload projects.CreateInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.FailErr(w, err, rid)
		return
	}
	created, err := h.Service.Create(r.Context(), payload)
	if err != nil {
		api.FailErr(w, err, rid)
		return
	}
	h.Audit.Log(r.Context(), shared.AuditEntry(r, "project.create", "project", created.ID, nil, created))
	api.Success(w, map[string]any{
		"success": true,
		"message": "Project added successfully",
		"project": created,
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	project, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"project": project})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	id := chi.URLParam(r, "id")
	patch := map[string]any{}
	if err := shared.DecodeJSON(r, &patch); err != nil {
		api.FailErr(w, err, rid)
		return
	}
	before, err := h.Service.Get(r.Context(), id)
	if err != nil {
		api.FailErr(w, err, rid)
		return
	}
	updated, err := h.Service.Update(r.Context(), id, patch)
	if err != nil {
		api.FailErr(w, err, rid)
		return
	}
	h.updated(w, r, before, updated)
}

func (h *Handler) handleUpdateMatching(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	var payload updateMatchingRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.FailErr(w, err, rid)
		return
	}
	before, err := h.Service.Search(r.Context(), payload.Search)
	if err != nil {
		api.FailErr(w, err, rid)
		return
	}
	updated, err := h.Service.UpdateMatching(r.Context(), payload.Search, payload.Update)
	if err != nil {
		api.FailErr(w, err, rid)
		return
	}
	h.updated(w, r, before, updated)
}

func (h *Handler) updated(w http.ResponseWriter, r *http.Request, before, after projects.Project) {
	h.Audit.Log(r.Context(), shared.AuditEntry(r, "project.update", "project", after.ID, before, after))
	api.Success(w, map[string]any{
		"success": true,
		"message": "Project updated successfully",
		"project": after,
	})
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	var criteria projects.Criteria
	if err := shared.DecodeJSON(r, &criteria); err != nil {
		api.FailErr(w, err, rid)
		return
	}
	project, err := h.Service.Search(r.Context(), criteria)
	if err != nil {
		api.FailErr(w, err, rid)
		return
	}
	api.Success(w, map[string]any{"success": true, "project": project})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	var criteria projects.Criteria
	if err := shared.DecodeJSON(r, &criteria); err != nil {
		api.FailErr(w, err, rid)
		return
	}
	removed, err := h.Service.Delete(r.Context(), criteria)
	if err != nil {
		api.FailErr(w, err, rid)
		return
	}
	h.Audit.Log(r.Context(), shared.AuditEntry(r, "project.delete", "project", removed.ID, removed, nil))
	api.Success(w, map[string]any{"success": true, "message": "Project deleted successfully"})
}

func (h *Handler) handleDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.Service.Details(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{
		"success":     true,
		"project":     details.Project,
		"members":     details.Members,
		"total_hours": details.TotalHours,
	})
}

func (h *Handler) handleAddMember(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	var payload projects.AddMemberInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.FailErr(w, err, rid)
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, rid) {
		return
	}
	member, err := h.Service.AddMember(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		api.FailErr(w, err, rid)
		return
	}
	h.Audit.Log(r.Context(), shared.AuditEntry(r, "project.member.add", "project", member.ProjectID, nil, member))
	api.Created(w, map[string]any{"success": true, "member": member})
}
