package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/chirp/internal/auth/service"
	"github.com/aussiebroadwan/chirp/pkg/authsdk"
	"github.com/aussiebroadwan/chirp/pkg/slogx"
)

// writeServiceError maps a service error onto the wire taxonomy. Anything
// unrecognised is logged and reported as a bare server_error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	var cerr *service.ConflictError

	switch {
	case errors.As(err, &verr):
		authsdk.ErrValidation.WithFields(verr.Fields).WriteError(w)
	case errors.As(err, &cerr):
		authsdk.ErrConflict.WithDescription(cerr.Error()).WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		authsdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrNoToken):
		authsdk.ErrNoToken.WriteError(w)
	case errors.Is(err, service.ErrTokenExpired):
		authsdk.ErrTokenExpired.WriteError(w)
	case errors.Is(err, service.ErrTokenInvalid):
		authsdk.ErrTokenInvalid.WriteError(w)
	case errors.Is(err, service.ErrUserNotFound):
		authsdk.ErrUserNotFound.WriteError(w)
	case errors.Is(err, service.ErrUpstreamUnavailable):
		authsdk.ErrUpstreamUnavailable.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "err", err)
		authsdk.ErrServerError.WriteError(w)
	}
}
