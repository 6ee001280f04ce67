package httpx

import (
	"errors"
	"net/http"

	"github.com/meridianpos/meridian/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Insufficient stock and conflicts are surfaced as actionable statuses;
// anything unrecognised is an opaque 500.
func RespondError(w http.ResponseWriter, err error) {
	if stockErr, ok := shared.AsInsufficientStock(err); ok {
		Problem(w, http.StatusUnprocessableEntity, "Insufficient Stock", stockErr.Error())
		return
	}
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", shared.UserSafeMessage(err))
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
