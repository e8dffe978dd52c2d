package domain

// AuthEventType mirrors the auth state changes a session client reports.
type AuthEventType string

const (
	AuthSignedIn       AuthEventType = "SIGNED_IN"
	AuthSignedOut      AuthEventType = "SIGNED_OUT"
	AuthTokenRefreshed AuthEventType = "TOKEN_REFRESHED"
	AuthUserUpdated    AuthEventType = "USER_UPDATED"
)

// AuthStateChanged is published whenever a session starts, ends, is refreshed
// or its user changes.
type AuthStateChanged struct {
	Type      AuthEventType `json:"type"`
	SessionID string        `json:"session_id,omitempty"`
	UserID    string        `json:"user_id"`
}

// UserCreated is published once for every newly created user.
type UserCreated struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Provider  string `json:"provider"`
	FullName  string `json:"full_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}
