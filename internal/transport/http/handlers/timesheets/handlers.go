package timesheetshandler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"worklog/internal/domain/auth"
	"worklog/internal/domain/timesheets"
	"worklog/internal/platform/apperror"
	"worklog/internal/platform/events"
	"worklog/internal/platform/export"
	"worklog/internal/requestctx"
	"worklog/internal/transport/http/api"
	"worklog/internal/transport/http/middleware"
	"worklog/internal/transport/http/shared"
)

// Publisher receives submission events. A nil Publisher disables them.
type Publisher interface {
	Publish(ctx context.Context, event events.Event)
}

type Handler struct {
	Service *timesheets.Service
	Policy  middleware.Policy
	Events  Publisher
}

func NewHandler(service *timesheets.Service, policy middleware.Policy, pub Publisher) *Handler {
	return &Handler{Service: service, Policy: policy, Events: pub}
}

// submitRequest accepts the period explicitly or as an "AM"/"PM" payload key.
type submitRequest struct {
	timesheets.SubmitInput
	AM timesheets.Tasks     `json:"AM"`
	PM timesheets.PMEntries `json:"PM"`
}

func (s submitRequest) input() timesheets.SubmitInput {
	in := s.SubmitInput
	switch {
	case s.AM != nil && in.Period == "":
		in.Period = timesheets.PeriodAM
		in.Tasks = s.AM
	case s.PM != nil && in.Period == "":
		in.Period = timesheets.PeriodPM
		in.Hours = s.PM
	}
	return in
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := h.Policy.Require(auth.ResTimesheets, auth.ActRead)
	write := h.Policy.Require(auth.ResTimesheets, auth.ActWrite)

	r.With(write).Post("/AM", h.handleAM)
	r.With(write).Post("/PM", h.handlePM)
	r.Route("/timesheet", func(r chi.Router) {
		r.With(write).Post("/", h.handleSubmit)
		r.With(read).Get("/status", h.handleStatus)
		r.With(read).Get("/user/{username}/{date}", h.handleDay)
		r.With(read).Get("/am/{username}/{start}/{end}", h.rangeHandler(h.Service.RangeAM))
		r.With(read).Get("/pm/{username}/{start}/{end}", h.rangeHandler(h.Service.RangePM))
		r.With(read).Get("/export/{username}/{start}/{end}", h.handleExport)
	})
}

func (h *Handler) handleAM(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	var payload timesheets.AMInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.FailErr(w, err, rid)
		return
	}
	day, _, err := h.Service.SubmitAM(r.Context(), payload)
	if err != nil {
		api.FailErr(w, err, rid)
		return
	}
	h.publish(r, payload.EmployeeName, day, timesheets.PeriodAM)
	api.Success(w, api.Message{Message: "AM Timesheet saved successfully"})
}

func (h *Handler) handlePM(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	var payload timesheets.PMInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.FailErr(w, err, rid)
		return
	}
	day, _, err := h.Service.SubmitPM(r.Context(), payload)
	if err != nil {
		api.FailErr(w, err, rid)
		return
	}
	h.publish(r, payload.EmployeeName, day, timesheets.PeriodPM)
	api.Success(w, api.Message{Message: "PM Timesheet saved successfully"})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	var payload submitRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.FailErr(w, err, rid)
		return
	}
	in := payload.input()
	day, _, err := h.Service.Submit(r.Context(), in)
	if err != nil {
		api.FailErr(w, err, rid)
		return
	}
	h.publish(r, in.EmployeeName, day, in.Period)
	api.Success(w, api.Message{Message: "Timesheet saved successfully"})
}

// handleStatus defaults employee_name to the caller. An anonymous call with
// no employee reports nothing submitted.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	employee := strings.TrimSpace(q.Get("employee_name"))
	if employee == "" {
		if user, ok := requestctx.GetPrincipal(r.Context()); ok {
			employee = user.Name
		}
	}
	if employee == "" {
		api.Success(w, timesheets.Status{})
		return
	}
	status, err := h.Service.Status(r.Context(), employee, q.Get("date"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, status)
}

func (h *Handler) handleDay(w http.ResponseWriter, r *http.Request) {
	day, err := h.Service.Day(r.Context(), chi.URLParam(r, "username"), chi.URLParam(r, "date"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, day)
}

type rangeFunc func(ctx context.Context, employee, start, end string) ([]timesheets.RangeEntry, error)

func (h *Handler) rangeHandler(fetch rangeFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := fetch(r.Context(), chi.URLParam(r, "username"), chi.URLParam(r, "start"), chi.URLParam(r, "end"))
		if err != nil {
			api.FailErr(w, err, middleware.GetRequestID(r.Context()))
			return
		}
		message := "Timesheets fetched successfully"
		if len(entries) == 0 {
			message = timesheets.NoDataMessage
		}
		api.Success(w, map[string]any{"message": message, "data": entries})
	}
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	employee := chi.URLParam(r, "username")
	format := r.URL.Query().Get("format")
	mime, ext, err := export.ContentType(format)
	if err != nil {
		api.FailErr(w, apperror.Validation("format must be xlsx or pdf").WithErr(err), rid)
		return
	}
	table, err := h.Service.Report(r.Context(), employee, chi.URLParam(r, "start"), chi.URLParam(r, "end"))
	if err != nil {
		api.FailErr(w, err, rid)
		return
	}
	body, err := export.Render(ext, table)
	if err != nil {
		api.FailErr(w, apperror.Internal(err), rid)
		return
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "timesheet-"+employee+"."+ext))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *Handler) publish(r *http.Request, employee, day, period string) {
	if h.Events == nil {
		return
	}
	h.Events.Publish(r.Context(), events.Event{
		Type:        events.TypeTimesheetSubmitted,
		AggregateID: employee,
		OccurredAt:  time.Now().UTC(),
		RequestID:   middleware.GetRequestID(r.Context()),
		Data:        map[string]string{"employee": employee, "date": day, "period": period},
	})
}
