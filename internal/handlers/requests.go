package handlers

import (
	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the go-playground/validator library to implement Echo's Validator interface.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new CustomValidator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements the echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// Form modes of the login card.
const (
	modeLogin  = "login"
	modeSignup = "signup"
)

// LoginRequest is posted by every button of the login card. Field content is
// left to the browser's constraints and the session client.
type LoginRequest struct {
	Email    string `form:"email"`
	Password string `form:"password"`
	Mode     string `form:"mode" validate:"omitempty,oneof=login signup"`
}

func (r LoginRequest) signUp() bool { return r.Mode == modeSignup }

// ToggleRequest opens or closes a dashboard fragment.
type ToggleRequest struct {
	Open bool `query:"open"`
}

// OAuthCallbackRequest carries what a provider appends to the callback URL.
type OAuthCallbackRequest struct {
	Provider         string `param:"provider" validate:"required"`
	State            string `query:"state"`
	Code             string `query:"code"`
	Error            string `query:"error"`
	ErrorDescription string `query:"error_description"`
}

// ProfileRequest is the profile form. AvatarURL holds an uploaded but not yet
// saved avatar.
type ProfileRequest struct {
	FullName  string `form:"full_name"`
	AvatarURL string `form:"avatar_url"`
}
