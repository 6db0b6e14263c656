package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"youthpolicy/internal/types"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondJSON writes a JSON body with the given status.
func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// respondError maps an error to the standard error envelope. AppErrors map
// through their code; anything else is an opaque 500 so internal details
// never leak to clients.
func respondError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus()
		if status >= 500 {
			logger.ErrorContext(ctx, "request failed", "code", appErr.Code, "error", err)
		}
		respondJSON(w, status, errorResponse{Error: errorBody{
			Code:    string(appErr.Code),
			Message: appErr.Message,
		}})
		return
	}

	logger.ErrorContext(ctx, "request failed", "error", err)
	respondJSON(w, http.StatusInternalServerError, errorResponse{Error: errorBody{
		Code:    string(types.ErrCodeInternalUnexpected),
		Message: "internal server error",
	}})
}
