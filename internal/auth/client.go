// Package auth is the session client: it owns sign-up, sign-in, OAuth flows,
// email confirmation and the lifetime of session tokens.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/nfrund/kaashub/internal/auth/oauth"
	"github.com/nfrund/kaashub/internal/config"
	"github.com/nfrund/kaashub/internal/domain"
	"github.com/nfrund/kaashub/internal/pubsub"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrMissingCredentials is returned when sign-up or sign-in gets an empty field.
	ErrMissingCredentials = errors.New("Email and password are required")
	// ErrConfirmationEmail is returned when the sign-up mail could not be sent.
	ErrConfirmationEmail = errors.New("Error sending confirmation email")
)

// Client issues, validates and refreshes opaque session tokens.
type Client struct {
	users      domain.UserRepository
	sessions   domain.SessionRepository
	emailer    domain.EmailSender
	events     pubsub.Publisher
	providers  map[string]oauth.Provider
	tokens     *confirmationTokens
	states     *stateStore
	sessionTTL time.Duration
	baseURL    string
	bcryptCost int
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithProviders registers OAuth providers by name.
func WithProviders(providers ...oauth.Provider) Option {
	return func(c *Client) {
		for _, p := range providers {
			c.providers[p.Name()] = p
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithBcryptCost overrides the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(c *Client) { c.bcryptCost = cost }
}

// NewClient creates a session client.
func NewClient(
	users domain.UserRepository,
	sessions domain.SessionRepository,
	emailer domain.EmailSender,
	events pubsub.Publisher,
	cfg config.Provider,
	opts ...Option,
) *Client {
	c := &Client{
		users:      users,
		sessions:   sessions,
		emailer:    emailer,
		events:     events,
		providers:  make(map[string]oauth.Provider),
		tokens:     newConfirmationTokens(cfg.GetConfirmTokenSecret()),
		states:     newStateStore(),
		sessionTTL: cfg.GetSessionTTL(),
		baseURL:    strings.TrimRight(cfg.GetAppBaseURL(), "/"),
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasProvider reports whether an OAuth provider is configured under name.
func (c *Client) HasProvider(name string) bool {
	_, ok := c.providers[name]
	return ok
}

// Providers lists the configured OAuth providers in display order.
func (c *Client) Providers() []string {
	var names []string
	for _, name := range []string{domain.ProviderGoogle, domain.ProviderFacebook} {
		if c.HasProvider(name) {
			names = append(names, name)
		}
	}
	return names
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates an unconfirmed user and mails a confirmation link that lands
// on redirectTo once followed.
func (c *Client) SignUp(ctx context.Context, email, password, redirectTo string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	if _, err := c.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := hashPassword(password, c.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := c.users.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: hash,
		Provider:     domain.ProviderEmail,
		CreatedAt:    c.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	c.publishUserCreated(ctx, user)

	token, err := c.tokens.issue(user.ID, redirectTo, c.now())
	if err != nil {
		return nil, err
	}
	link := c.baseURL + "/auth/confirm?token=" + url.QueryEscape(token)
	body := fmt.Sprintf(`<h2>Confirm your signup</h2><p>Follow this link to confirm your KaasHub account:</p><p><a href="%s">Confirm your mail</a></p>`, link)
	if err := c.emailer.Send(user.Email, "Confirm your signup", body); err != nil {
		slog.ErrorContext(ctx, "Failed to send confirmation email", "user_id", user.ID, "error", err)
		return nil, ErrConfirmationEmail
	}

	slog.InfoContext(ctx, "User signed up", "user_id", user.ID)
	return user, nil
}

// ConfirmEmail marks the token's user confirmed and signs them in. It returns
// the redirect target that was requested at sign-up.
func (c *Client) ConfirmEmail(ctx context.Context, token string) (*domain.AuthSession, string, error) {
	userID, redirectTo, err := c.tokens.parse(token, c.now())
	if err != nil {
		return nil, "", err
	}

	user, err := c.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", domain.ErrInvalidToken
		}
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}

	if !user.Confirmed() {
		confirmedAt := c.now().UTC()
		user.ConfirmedAt = &confirmedAt
		if user, err = c.users.Update(ctx, user); err != nil {
			return nil, "", fmt.Errorf("failed to confirm user: %w", err)
		}
		c.publishState(ctx, domain.AuthUserUpdated, "", user.ID)
	}

	session, err := c.issueSession(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return session, redirectTo, nil
}

// SignInWithPassword starts a session for an email/password user.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := c.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user.PasswordHash == "" {
		return nil, domain.ErrInvalidCredentials
	}

	ok, err := checkPassword(user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Confirmed() {
		return nil, domain.ErrEmailNotConfirmed
	}

	return c.issueSession(ctx, user)
}

// SignInWithOAuth returns the consent URL the browser must visit. queryParams
// are forwarded to the provider.
func (c *Client) SignInWithOAuth(ctx context.Context, provider, redirectTo string, queryParams map[string]string) (string, error) {
	p, ok := c.providers[provider]
	if !ok {
		return "", domain.ErrUnknownProvider
	}

	state, err := oauth.GenerateState()
	if err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	now := c.now()
	c.states.put(state, pendingOAuth{
		provider:   provider,
		redirectTo: redirectTo,
		expiresAt:  now.Add(oauthStateTTL),
	}, now)

	slog.DebugContext(ctx, "Starting OAuth flow", "provider", provider)
	return p.GetConsentURL(state, queryParams), nil
}

// ExchangeOAuthCode finishes an OAuth flow. The user is created on first login
// and their provider name and avatar are refreshed on every later one.
func (c *Client) ExchangeOAuthCode(ctx context.Context, provider, state, code string) (*domain.AuthSession, string, error) {
	p, ok := c.providers[provider]
	if !ok {
		return nil, "", domain.ErrUnknownProvider
	}
	pending, ok := c.states.take(state, provider, c.now())
	if !ok {
		return nil, "", domain.ErrInvalidOAuthState
	}

	info, err := p.ExchangeCode(ctx, code)
	if err != nil {
		return nil, "", err
	}

	user, err := c.upsertOAuthUser(ctx, info)
	if err != nil {
		return nil, "", err
	}

	session, err := c.issueSession(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return session, pending.redirectTo, nil
}

func (c *Client) upsertOAuthUser(ctx context.Context, info *oauth.UserInfo) (*domain.User, error) {
	email := normalizeEmail(info.Email)
	now := c.now().UTC()

	user, err := c.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		user, err = c.users.Create(ctx, &domain.User{
			Email:       email,
			Provider:    info.Provider,
			ProviderID:  info.ID,
			Metadata:    domain.UserMetadata{FullName: info.Name, AvatarURL: info.AvatarURL},
			ConfirmedAt: &now,
			CreatedAt:   now,
		})
		if err != nil {
			return nil, err
		}
		c.publishUserCreated(ctx, user)
		return user, nil
	case err != nil:
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if info.Name != "" {
		user.Metadata.FullName = info.Name
	}
	if info.AvatarURL != "" {
		user.Metadata.AvatarURL = info.AvatarURL
	}
	if !user.Confirmed() {
		// The provider vouched for the address, so the account now belongs to
		// this identity. Whoever registered the unconfirmed password never
		// proved they own the address and loses it.
		user.PasswordHash = ""
		user.Provider = info.Provider
		user.ProviderID = info.ID
		user.ConfirmedAt = &now
	}
	if user.ProviderID == "" && user.Provider == info.Provider {
		user.ProviderID = info.ID
	}
	if user, err = c.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	c.publishState(ctx, domain.AuthUserUpdated, "", user.ID)
	return user, nil
}

// GetSession resolves token to a live session. It returns nil without error
// when the token is empty, unknown or expired. Sessions past half their
// lifetime are extended.
func (c *Client) GetSession(ctx context.Context, token string) (*domain.AuthSession, error) {
	if token == "" {
		return nil, nil
	}

	id := domain.SessionIDFromToken(token)
	session, err := c.sessions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	now := c.now()
	if !now.Before(session.ExpiresAt) {
		if err := c.sessions.Delete(ctx, id); err != nil {
			slog.WarnContext(ctx, "Failed to delete expired session", "error", err)
		}
		return nil, nil
	}

	user, err := c.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}

	expiresAt := session.ExpiresAt
	if expiresAt.Sub(now) < c.sessionTTL/2 {
		expiresAt = now.Add(c.sessionTTL)
		if err := c.sessions.UpdateExpiry(ctx, id, expiresAt); err != nil {
			return nil, fmt.Errorf("failed to refresh session: %w", err)
		}
		c.publishState(ctx, domain.AuthTokenRefreshed, id, user.ID)
	}

	return &domain.AuthSession{AccessToken: token, ExpiresAt: expiresAt, User: user}, nil
}

// GetUser returns the user of a live session or domain.ErrNoSession.
func (c *Client) GetUser(ctx context.Context, token string) (*domain.User, error) {
	session, err := c.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrNoSession
	}
	return session.User, nil
}

// SignOut ends the session. Unknown tokens are not an error.
func (c *Client) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	id := domain.SessionIDFromToken(token)

	session, err := c.sessions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load session: %w", err)
	}
	if err := c.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	c.publishState(ctx, domain.AuthSignedOut, id, session.UserID)
	return nil
}

func (c *Client) issueSession(ctx context.Context, user *domain.User) (*domain.AuthSession, error) {
	token, err := newSessionToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := c.now()
	session := &domain.Session{
		ID:        domain.SessionIDFromToken(token),
		UserID:    user.ID,
		ExpiresAt: now.Add(c.sessionTTL),
		CreatedAt: now,
	}
	if err := c.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	c.publishState(ctx, domain.AuthSignedIn, session.ID, user.ID)
	return &domain.AuthSession{AccessToken: token, ExpiresAt: session.ExpiresAt, User: user}, nil
}

func newSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (c *Client) publishState(ctx context.Context, typ domain.AuthEventType, sessionID, userID string) {
	ev := domain.AuthStateChanged{Type: typ, SessionID: sessionID, UserID: userID}
	if err := pubsub.AuthState.Publish(ctx, c.events, userID, ev); err != nil {
		slog.WarnContext(ctx, "Failed to publish auth state change", "type", typ, "error", err)
	}
}

func (c *Client) publishUserCreated(ctx context.Context, user *domain.User) {
	ev := domain.UserCreated{
		UserID:    user.ID,
		Email:     user.Email,
		Provider:  user.Provider,
		FullName:  user.Metadata.FullName,
		AvatarURL: user.Metadata.AvatarURL,
	}
	if err := pubsub.UserCreated.Publish(ctx, c.events, user.ID, ev); err != nil {
		slog.WarnContext(ctx, "Failed to publish user created", "user_id", user.ID, "error", err)
	}
}
