package adminhandler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"worklog/internal/domain/audit"
	"worklog/internal/domain/auth"
	"worklog/internal/domain/reports"
	"worklog/internal/domain/settings"
	"worklog/internal/platform/jobs"
	"worklog/internal/platform/metrics"
	"worklog/internal/transport/http/api"
	"worklog/internal/transport/http/middleware"
	"worklog/internal/transport/http/shared"
)

type Handler struct {
	Settings *settings.Service
	Audit    *audit.Service
	Metrics  *metrics.Collector
	Jobs     *jobs.Service
	Reports  *reports.Service
	Policy   middleware.Policy
}

func NewHandler(settingsSvc *settings.Service, auditSvc *audit.Service, collector *metrics.Collector, jobsSvc *jobs.Service, policy middleware.Policy) *Handler {
	return &Handler{Settings: settingsSvc, Audit: auditSvc, Metrics: collector, Jobs: jobsSvc, Policy: policy}
}

func (h *Handler) WithReports(svc *reports.Service) *Handler {
	h.Reports = svc
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	if h.Reports != nil {
		r.With(h.Policy.Require(auth.ResLeave, auth.ActRead)).Get("/dashboard/{name}", h.handleEmployeeDashboard)
	}
	r.Route("/admin", func(r chi.Router) {
		r.With(h.Policy.Require(auth.ResSettings, auth.ActRead)).Get("/settings", h.handleGetSettings)
		r.With(h.Policy.Require(auth.ResSettings, auth.ActWrite)).Post("/settings", h.handleUpdateSettings)
		r.With(h.Policy.Require(auth.ResAudit, auth.ActRead)).Get("/audit", h.handleAudit)
		if h.Reports != nil {
			r.With(h.Policy.Require(auth.ResAudit, auth.ActRead)).Get("/dashboard", h.handleAdminDashboard)
		}
		if h.Metrics != nil {
			r.With(h.Policy.Require(auth.ResMetrics, auth.ActRead)).Get("/metrics", h.handleMetrics)
		}
		if h.Jobs != nil {
			r.With(h.Policy.Require(auth.ResMetrics, auth.ActRead)).Get("/jobs", h.handleJobs)
		}
	})
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	current, err := h.Settings.Get(r.Context())
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, current)
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	patch := map[string]any{}
	if err := shared.DecodeJSON(r, &patch); err != nil {
		api.FailErr(w, err, rid)
		return
	}
	before, err := h.Settings.Get(r.Context())
	if err != nil {
		api.FailErr(w, err, rid)
		return
	}
	updated, err := h.Settings.Update(r.Context(), patch)
	if err != nil {
		api.FailErr(w, err, rid)
		return
	}
	h.Audit.Log(r.Context(), shared.AuditEntry(r, "settings.update", "settings", "settings", before, updated))
	api.Success(w, map[string]any{"message": "Settings updated successfully", "settings": updated})
}

func (h *Handler) handleAudit(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	q := r.URL.Query()
	page := shared.ParsePagination(r, 50, 500)
	filter := audit.Filter{Action: q.Get("action"), EntityType: q.Get("entityType"), Actor: q.Get("actor")}
	details, _ := strconv.ParseBool(q.Get("details"))

	total, err := h.Audit.Count(r.Context(), filter)
	if err != nil {
		api.FailErr(w, err, rid)
		return
	}
	items, err := h.Audit.List(r.Context(), filter, details, page.Limit, page.Offset)
	if err != nil {
		api.FailErr(w, err, rid)
		return
	}
	api.Success(w, shared.NewPage(items, total, page))
}

func (h *Handler) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	api.Success(w, h.Metrics.Snapshot())
}

func (h *Handler) handleJobs(w http.ResponseWriter, r *http.Request) {
	runs := h.Jobs.Runs()
	page := shared.ParsePagination(r, 50, 200)
	api.Success(w, shared.NewPage(shared.Window(runs, page), len(runs), page))
}

func (h *Handler) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Reports.Admin(r.Context())
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summary)
}

func (h *Handler) handleEmployeeDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Reports.Employee(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summary)
}
