package handlers

import (
	"errors"

	"github.com/nfrund/kaashub/internal/auth"
	"github.com/nfrund/kaashub/internal/domain"
)

const genericErrorMessage = "Something went wrong. Please try again."

// userFacing are errors whose messages are written for the person at the
// browser and are shown as they are.
var userFacing = []error{
	auth.ErrMissingCredentials,
	auth.ErrConfirmationEmail,
	domain.ErrUserAlreadyExists,
	domain.ErrInvalidCredentials,
	domain.ErrEmailNotConfirmed,
	domain.ErrInvalidToken,
	domain.ErrInvalidOAuthState,
	domain.ErrUnknownProvider,
	domain.ErrNoSession,
}

// errorMessage returns the text shown for err. Infrastructure failures get a
// generic message; the caller logs the details.
func errorMessage(err error) string {
	for _, target := range userFacing {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return genericErrorMessage
}
