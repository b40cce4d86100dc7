// Package api writes JSON responses. Successful payloads are written bare;
// failures share one error body.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"worklog/internal/platform/apperror"
)

// ErrorBody is the shape of every failed response.
type ErrorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// Message is the common {message, data} acknowledgement.
type Message struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Warn("write json failed", zap.Error(err))
	}
}

func Success(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, data)
}

func Created(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, data)
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, ErrorBody{Error: message, Code: code, RequestID: requestID})
}

func FailWithDetails(w http.ResponseWriter, status int, code, message string, details any, requestID string) {
	WriteJSON(w, status, ErrorBody{Error: message, Code: code, Details: details, RequestID: requestID})
}

// FailErr maps err onto its AppError status. Anything else is logged and
// reported as an internal error without leaking its text.
func FailErr(w http.ResponseWriter, err error, requestID string) {
	appErr := apperror.From(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		cause := err
		if inner := errors.Unwrap(appErr); inner != nil {
			cause = inner
		}
		zap.L().Error("request failed", zap.String("requestId", requestID), zap.Error(cause))
	}
	FailWithDetails(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details, requestID)
}
