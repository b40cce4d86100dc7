package leavehandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"worklog/internal/domain/audit"
	"worklog/internal/domain/auth"
	"worklog/internal/domain/leave"
	"worklog/internal/requestctx"
	"worklog/internal/transport/http/api"
	"worklog/internal/transport/http/middleware"
	"worklog/internal/transport/http/shared"
)

// SubmitNotifier is told about new requests. Status changes reach the
// notifier through the leave service itself.
type SubmitNotifier interface {
	LeaveSubmitted(ctx context.Context, req leave.LeaveRequest)
}

type Handler struct {
	Service     *leave.Service
	Policy      middleware.Policy
	Audit       *audit.Service
	Notifier    SubmitNotifier
	Idempotency func(http.Handler) http.Handler
}

func NewHandler(service *leave.Service, policy middleware.Policy, auditSvc *audit.Service, notifier SubmitNotifier) *Handler {
	return &Handler{Service: service, Policy: policy, Audit: auditSvc, Notifier: notifier}
}

// WithIdempotency guards submissions with mw.
func (h *Handler) WithIdempotency(mw func(http.Handler) http.Handler) *Handler {
	h.Idempotency = mw
	return h
}

type statusRequest struct {
	Status    string `json:"status"`
	LeaveType string `json:"leave_type"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := h.Policy.Require(auth.ResLeave, auth.ActRead)
	write := h.Policy.Require(auth.ResLeave, auth.ActWrite)
	approve := h.Policy.Require(auth.ResLeaveAdmin, auth.ActWrite)

	submit := []func(http.Handler) http.Handler{write}
	if h.Idempotency != nil {
		submit = append(submit, h.Idempotency)
	}

	r.Route("/leave-request", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(submit...).Post("/", h.handleSubmit)
		r.With(read).Get("/available/{name}", h.handleAvailable)
		r.With(approve).Put("/by-name/{name}/status", h.handleStatusByName)
		r.With(read).Get("/{id}", h.handleGet)
		r.With(approve).Put("/{id}/status", h.handleStatus)
	})
	r.With(h.Policy.Require(auth.ResLeaveAdmin, auth.ActRead)).Get("/leave-balances", h.handleBalances)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	var payload leave.SubmitInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.FailErr(w, err, rid)
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.HasIssues() {
		base := leave.ErrInvalidInput
		if v.OnlyMissing() {
			base = leave.ErrMissingFields
		}
		api.FailErr(w, base.WithDetails(map[string]any{"fields": v.Issues()}), rid)
		return
	}
	created, err := h.Service.Submit(r.Context(), payload)
	if err != nil {
		api.FailErr(w, err, rid)
		return
	}
	if h.Notifier != nil {
		h.Notifier.LeaveSubmitted(r.Context(), created)
	}
	api.Created(w, map[string]any{"message": "Leave request submitted successfully", "data": created})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.Service.List(r.Context(), leave.Filter{Name: q.Get("name"), Status: q.Get("status")})
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	req, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, req)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, func(ctx context.Context, body statusRequest, actor string) (leave.StatusChange, error) {
		return h.Service.UpdateStatus(ctx, chi.URLParam(r, "id"), body.Status, actor)
	})
}

func (h *Handler) handleStatusByName(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, func(ctx context.Context, body statusRequest, actor string) (leave.StatusChange, error) {
		return h.Service.UpdateStatusByName(ctx, chi.URLParam(r, "name"), body.LeaveType, body.Status, actor)
	})
}

type statusUpdate func(ctx context.Context, body statusRequest, actor string) (leave.StatusChange, error)

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request, apply statusUpdate) {
	rid := middleware.GetRequestID(r.Context())
	var payload statusRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.FailErr(w, err, rid)
		return
	}
	change, err := apply(r.Context(), payload, requestctx.Actor(r.Context()))
	if err != nil {
		api.FailErr(w, err, rid)
		return
	}
	if change.Changed() {
		before := change.Request
		before.Status = change.Previous
		h.Audit.Log(r.Context(), shared.AuditEntry(r, "leave.status", "leave_request", change.Request.ID, before, change.Request))
	}
	api.Success(w, map[string]any{"message": "Status updated successfully", "leaveRequest": change.Request})
}

func (h *Handler) handleAvailable(w http.ResponseWriter, r *http.Request) {
	available, err := h.Service.Available(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, available)
}

func (h *Handler) handleBalances(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.Balances(r.Context())
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list)
}
