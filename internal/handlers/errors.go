package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"akreditasi-jurnal/internal/apperrors"
	"akreditasi-jurnal/internal/middleware"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Code    string `json:"code"`
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// BlockedDetails explains a refused delete
type BlockedDetails struct {
	Reason    string   `json:"reason"`
	BlockedBy []string `json:"blocked_by,omitempty"`
}

func respondWithError(w http.ResponseWriter, status int, code, message string, details any) {
	_ = respondJSON(w, status, ErrorResponse{Code: code, Error: message, Details: details})
}

func respondBadRequest(w http.ResponseWriter, message string) {
	respondWithError(w, http.StatusBadRequest, CodeValidation, message, nil)
}

// statusFor maps a domain error onto a status, error code and details
func statusFor(err error) (int, string, any) {
	var (
		validationErr *apperrors.ValidationError
		notFoundErr   *apperrors.NotFoundError
		dupNameErr    *apperrors.DuplicateNameError
		dupCodeErr    *apperrors.DuplicateCodeError
		blockedErr    *apperrors.DeletionBlockedError
		mixedErr      *apperrors.MixedParentError
		cloneErr      *apperrors.CloneFailedError
	)

	switch {
	case errors.As(err, &cloneErr):
		// the clone wrapper hides duplicates raised while copying
		if errors.As(cloneErr.Err, &dupNameErr) || errors.As(cloneErr.Err, &dupCodeErr) {
			return http.StatusConflict, CodeCloneFailed, nil
		}
		return http.StatusInternalServerError, CodeCloneFailed, nil
	case errors.As(err, &validationErr):
		if len(validationErr.Fields) == 0 {
			return http.StatusBadRequest, CodeValidation, nil
		}
		return http.StatusBadRequest, CodeValidation, validationErr.Fields
	case errors.As(err, &mixedErr):
		return http.StatusBadRequest, CodeMixedParent, map[string]any{"parent_ids": mixedErr.ParentIDs}
	case errors.As(err, &notFoundErr):
		if len(notFoundErr.IDs) > 0 {
			return http.StatusNotFound, CodeNotFound, map[string]any{"ids": notFoundErr.IDs}
		}
		return http.StatusNotFound, CodeNotFound, nil
	case errors.As(err, &dupNameErr):
		return http.StatusConflict, CodeDuplicateName, nil
	case errors.As(err, &dupCodeErr):
		return http.StatusConflict, CodeDuplicateCode, nil
	case errors.As(err, &blockedErr):
		return http.StatusConflict, CodeDeletionBlocked, BlockedDetails{Reason: blockedErr.Reason, BlockedBy: blockedErr.BlockedBy}
	}
	return http.StatusInternalServerError, CodeInternal, nil
}

// writeError responds with the mapped status. Every 500 is logged and its
// text is not sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, details := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("Request failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		message = ErrMsgInternal
		var cloneErr *apperrors.CloneFailedError
		if errors.As(err, &cloneErr) {
			message = fmt.Sprintf(ErrMsgCloneFailed, cloneErr.SourceID, cloneErr.Name)
		}
	}
	respondWithError(w, status, code, message, details)
}
