package auth

// LoginData is the View Model (DTO) of the login/signup form. The form is
// always rendered with loading cleared; the submit button shows
// "Processing..." only while a request is in flight.
type LoginData struct {
	Email    string
	Password string
	// SignUp selects the "Create an Account" copy and action.
	SignUp bool
	// Error is the backend message shown verbatim.
	Error string
	// Message is shown after a successful sign-up.
	Message string
	// Providers lists the configured OAuth providers.
	Providers []string
}
