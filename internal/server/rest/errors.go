package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/tnyr/internal/common"
	"github.com/dmitrijs2005/tnyr/internal/cryptox"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps service errors to status codes. Only validation details
// reach the client; anything unexpected becomes a generic 500.
func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, msg := http.StatusInternalServerError, "internal error"

	switch {
	case errors.Is(err, common.ErrorValidation):
		status = http.StatusBadRequest
		msg = strings.TrimPrefix(err.Error(), common.ErrorValidation.Error()+": ")
	case errors.Is(err, common.ErrorNotFound):
		status, msg = http.StatusNotFound, "Link not found"
	case errors.Is(err, common.ErrorAlreadyExists):
		status, msg = http.StatusConflict, "Lookup hash already exists"
	case errors.Is(err, common.ErrorExhausted), errors.Is(err, common.ErrorConflict):
		status, msg = http.StatusServiceUnavailable, "Failed to generate unique ID"
	case errors.Is(err, common.ErrorDeletionDisabled):
		status, msg = http.StatusForbidden, "URL deletion is disabled"
	case errors.Is(err, common.ErrorUnauthorized):
		status, msg = http.StatusForbidden, "Invalid deletion token"
	case errors.Is(err, cryptox.ErrDecryptionFailed):
		msg = "Decryption failed"
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error(ctx, "request failed", "error", err.Error(), "status", status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
