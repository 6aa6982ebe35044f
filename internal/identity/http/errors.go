package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/identity/internal/identity/service"
	"github.com/aussiebroadwan/identity/pkg/authsdk"
	"github.com/aussiebroadwan/identity/pkg/jwtx"
)

// writeServiceError maps service and codec errors onto the wire taxonomy.
// Anything unrecognised is a 503: the caller did nothing wrong, the service
// could not answer.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		authsdk.ErrNotFound.WriteError(w)
	case errors.Is(err, service.ErrNotActive):
		authsdk.ErrNotActive.WriteError(w)
	case errors.Is(err, service.ErrNotValidated):
		authsdk.ErrNotValidated.WriteError(w)
	case errors.Is(err, service.ErrLocked):
		authsdk.ErrLocked.WriteError(w)
	case errors.Is(err, service.ErrNotAuthorized):
		authsdk.ErrNotAuthorized.WriteError(w)
	case errors.Is(err, service.ErrNotAuthenticated):
		authsdk.ErrNotAuthenticated.WriteError(w)
	case errors.Is(err, service.ErrPermissionDenied):
		authsdk.ErrPermissionDenied.WriteError(w)
	case errors.Is(err, service.ErrInvalidInput):
		authsdk.ErrInvalidRequest.WriteError(w)
	case errors.Is(err, jwtx.ErrExpired):
		authsdk.ErrTokenExpired.WriteError(w)
	case errors.Is(err, jwtx.ErrMalformed),
		errors.Is(err, jwtx.ErrInvalidSig),
		errors.Is(err, jwtx.ErrIssuer),
		errors.Is(err, jwtx.ErrWrongUse):
		authsdk.ErrTokenMalformed.WriteError(w)
	default:
		authsdk.ErrUnavailable.WriteError(w)
	}
}
