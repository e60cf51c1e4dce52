package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
)

func (s *HTTPServer) writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(ctx, "failed to encode response", "error", err.Error())
	}
}

func (s *HTTPServer) writeError(ctx context.Context, w http.ResponseWriter, status int, msg string) {
	s.writeJSON(ctx, w, status, map[string]string{"error": msg})
}

// writeServiceError maps service errors to HTTP statuses. Store errors are
// never retried here; they surface as request failures.
func (s *HTTPServer) writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidID):
		s.writeError(ctx, w, http.StatusBadRequest, "invalid identifier")
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrUnauthorized):
		s.writeError(ctx, w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, common.ErrNotAuthor):
		s.writeError(ctx, w, http.StatusForbidden, "you are not the author")
	case errors.Is(err, common.ErrPostNotFound):
		s.writeError(ctx, w, http.StatusNotFound, "post not found")
	case errors.Is(err, common.ErrAssetNotFound):
		s.writeError(ctx, w, http.StatusNotFound, "asset not found")
	case errors.Is(err, common.ErrAlreadyExists):
		s.writeError(ctx, w, http.StatusConflict, "already exists")
	default:
		s.logger.Error(ctx, "request failed", "error", err.Error())
		s.writeError(ctx, w, http.StatusInternalServerError, "internal error")
	}
}
