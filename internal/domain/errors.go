package domain

import "errors"

// Sentinel errors for the domain layer. Messages of the authentication errors
// are shown to users verbatim, so they read as sentences.
var (
	ErrUserAlreadyExists  = errors.New("User already registered")
	ErrInvalidCredentials = errors.New("Invalid login credentials")
	ErrEmailNotConfirmed  = errors.New("Email not confirmed")
	ErrInvalidToken       = errors.New("Confirmation link is invalid or has expired")
	ErrInvalidOAuthState  = errors.New("OAuth state is invalid or has expired")
	ErrUnknownProvider    = errors.New("Unsupported login provider")

	// ErrNoSession is returned when a token does not resolve to a live session.
	ErrNoSession = errors.New("No session found")

	ErrNotFound         = errors.New("requested resource not found")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrObjectNotFound   = errors.New("object not found")
	ErrObjectExists     = errors.New("object already exists")
	ErrFileTooLarge     = errors.New("file exceeds the maximum allowed size")
	ErrUnsupportedMedia = errors.New("file type is not allowed")
)
