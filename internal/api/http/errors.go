package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/portfolio-builder/portfolio-backend/internal/editor"
	"github.com/portfolio-builder/portfolio-backend/internal/identity"
	"github.com/portfolio-builder/portfolio-backend/internal/profiles/domain"
)

// ErrorResponse maps a service error to a status code and the message shown
// to the user. Pages and the JSON API share it.
func ErrorResponse(err error) (int, string) {
	var authErr *identity.AuthError
	switch {
	case errors.As(err, &authErr):
		if authErr.Kind == identity.KindUnknown {
			return http.StatusBadGateway, authErr.Message()
		}
		if authErr.Kind == identity.KindEmailAlreadyInUse {
			return http.StatusConflict, authErr.Message()
		}
		return http.StatusBadRequest, authErr.Message()
	case errors.Is(err, identity.ErrUnauthenticated):
		return http.StatusUnauthorized, "user not authenticated"
	case errors.Is(err, domain.ErrProfileNotFound):
		return http.StatusNotFound, "portfolio not found"
	case errors.Is(err, domain.ErrUsernameTaken):
		return http.StatusConflict, "This username is already taken"
	case errors.Is(err, domain.ErrInvalidUsername),
		errors.Is(err, domain.ErrUsernameRequired),
		errors.Is(err, domain.ErrFullnameRequired),
		errors.Is(err, domain.ErrInvalidIdentity),
		errors.Is(err, domain.ErrReadOnlyField),
		errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrProjectIndex),
		errors.Is(err, domain.ErrInvalidLink):
		return http.StatusBadRequest, capitalize(err.Error())
	case errors.Is(err, editor.ErrSaveInProgress):
		return http.StatusConflict, capitalize(err.Error())
	case errors.Is(err, domain.ErrStoreWrite):
		return http.StatusServiceUnavailable, editor.SaveFailedMessage
	case errors.Is(err, domain.ErrStoreRead):
		return http.StatusServiceUnavailable, "Could not load the portfolio. Please try again."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "Request was cancelled"
	default:
		return http.StatusInternalServerError, "Something went wrong. Please try again."
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
