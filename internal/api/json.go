package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/starford/mininotes/internal/apperr"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

// ErrorDetail is the payload of an error response.
type ErrorDetail struct {
	Code    string `json:"code" example:"VALIDATION_ERROR"`
	Message string `json:"message" example:"title: must not be empty."`
}

// ErrorResponse wraps every non-2xx response body.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

func errorBody(code, msg string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: msg}}
}

// writeError maps a classified error to its status and body.
// Unclassified errors are logged and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		slog.Error("unhandled error",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
	} else {
		slog.Warn("request failed",
			slog.String("code", apperr.Code(kind)),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
	}
	writeJSON(w, apperr.HTTPStatus(kind), errorBody(apperr.Code(kind), apperr.MessageOf(err)))
}
