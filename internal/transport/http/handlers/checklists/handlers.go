package checklistshandler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"worklog/internal/domain/auth"
	"worklog/internal/domain/checklists"
	"worklog/internal/platform/apperror"
	"worklog/internal/requestctx"
	"worklog/internal/transport/http/api"
	"worklog/internal/transport/http/middleware"
	"worklog/internal/transport/http/shared"
)

const missingSafetyParams = "Missing required parameters: employee_name, start_date, and end_date are required"

type Handler struct {
	Performance *checklists.Book
	Safety      *checklists.Book
	Policy      middleware.Policy
}

func NewHandler(performance, safety *checklists.Book, policy middleware.Policy) *Handler {
	return &Handler{Performance: performance, Safety: safety, Policy: policy}
}

type safetyRequest struct {
	EmployeeName  string            `json:"employee_name"`
	Date          string            `json:"date"`
	SafetyRatings map[string]string `json:"safety_ratings"`
	Shift         string            `json:"shift"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := h.Policy.Require(auth.ResChecklists, auth.ActRead)
	write := h.Policy.Require(auth.ResChecklists, auth.ActWrite)

	r.With(write).Post("/matrices", h.handleSaveMatrix)
	r.With(read).Get("/matrices/{username}/{start}/{end}", h.handleMatrixRange)
	r.With(write).Post("/performance-matrix", h.handleSaveMatrix)
	r.With(read).Get("/performance-matrix/status", h.handleMatrixStatus)
	r.With(write).Post("/safety", h.handleSaveSafety)
	r.With(read).Get("/safety", h.handleSafetyRange)
}

// decodeMatrix reads {email, date, ratings} or a bare ratings map. The bare
// form takes the employee from ?email or the caller.
func decodeMatrix(r *http.Request) (checklists.SaveInput, error) {
	raw := map[string]json.RawMessage{}
	if err := shared.DecodeJSON(r, &raw); err != nil {
		return checklists.SaveInput{}, err
	}
	in := checklists.SaveInput{}
	if ratings, ok := raw["ratings"]; ok {
		if err := json.Unmarshal(ratings, &in.Ratings); err != nil {
			return in, checklists.ErrInvalidRating.WithErr(err)
		}
		_ = json.Unmarshal(raw["email"], &in.Employee)
		_ = json.Unmarshal(raw["date"], &in.Date)
		_ = json.Unmarshal(raw["shift"], &in.Shift)
		return in, nil
	}

	in.Ratings = make(map[string]string, len(raw))
	for question, value := range raw {
		var rating string
		if err := json.Unmarshal(value, &rating); err != nil {
			return in, checklists.ErrInvalidRating.WithDetails(map[string]string{"question": question})
		}
		in.Ratings[question] = rating
	}
	in.Employee = r.URL.Query().Get("email")
	if in.Employee == "" {
		if user, ok := requestctx.GetPrincipal(r.Context()); ok {
			in.Employee = user.Email
		}
	}
	in.Date = r.URL.Query().Get("date")
	return in, nil
}

func (h *Handler) handleSaveMatrix(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	in, err := decodeMatrix(r)
	if err != nil {
		api.FailErr(w, err, rid)
		return
	}
	if _, err := h.Performance.Save(r.Context(), in); err != nil {
		api.FailErr(w, err, rid)
		return
	}
	api.Success(w, api.Message{Message: "Matrices saved successfully"})
}

func (h *Handler) handleMatrixStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status, err := h.Performance.Status(r.Context(), q.Get("email"), q.Get("date"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, status)
}

func (h *Handler) handleMatrixRange(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Performance.Range(r.Context(), chi.URLParam(r, "username"), chi.URLParam(r, "start"), chi.URLParam(r, "end"))
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"success": true, "data": entries})
}

func (h *Handler) handleSaveSafety(w http.ResponseWriter, r *http.Request) {
	rid := middleware.GetRequestID(r.Context())
	var payload safetyRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.FailErr(w, err, rid)
		return
	}
	record, err := h.Safety.Save(r.Context(), checklists.SaveInput{
		Employee: payload.EmployeeName,
		Date:     payload.Date,
		Ratings:  payload.SafetyRatings,
		Shift:    payload.Shift,
	})
	if err != nil {
		api.FailErr(w, err, rid)
		return
	}
	api.Success(w, map[string]any{
		"success":      true,
		"message":      "Safety checklist received and processed successfully",
		"checklist_id": record.ID,
		"timestamp":    record.SubmittedAt,
	})
}

func (h *Handler) handleSafetyRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	employee := strings.TrimSpace(q.Get("employee_name"))
	start := strings.TrimSpace(q.Get("start_date"))
	end := strings.TrimSpace(q.Get("end_date"))
	if employee == "" || start == "" || end == "" {
		api.FailErr(w, apperror.Validation(missingSafetyParams), middleware.GetRequestID(r.Context()))
		return
	}
	entries, err := h.Safety.Range(r.Context(), employee, start, end)
	if err != nil {
		api.FailErr(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{
		"success": true,
		"message": "Safety checklist data retrieved successfully",
		"data":    entries,
	})
}
