package handlers_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/kaashub/internal/auth"
	"github.com/nfrund/kaashub/internal/auth/oauth"
	"github.com/nfrund/kaashub/internal/domain"
	"github.com/nfrund/kaashub/internal/filestore"
	"github.com/nfrund/kaashub/internal/handlers"
	"github.com/nfrund/kaashub/internal/metrics"
	"github.com/nfrund/kaashub/internal/middleware"
	"github.com/nfrund/kaashub/internal/profile"
	"github.com/nfrund/kaashub/internal/rendering"
	kaassession "github.com/nfrund/kaashub/internal/session"
	"github.com/nfrund/kaashub/internal/storage"
	"github.com/nfrund/kaashub/internal/testutils"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSessionSecret = "a-very-secret-key-for-testing-!"

type fakeProvider struct {
	name string
	info *oauth.UserInfo
	err  error
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) GetConsentURL(state string, extra map[string]string) string {
	v := url.Values{"state": {state}}
	for k, val := range extra {
		v.Set(k, val)
	}
	return "https://idp.example.com/authorize?" + v.Encode()
}

func (f *fakeProvider) ExchangeCode(context.Context, string) (*oauth.UserInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.info, nil
}

// testEnv wires real services over in-memory stores behind an echo instance
// routed like the server.
type testEnv struct {
	e        *echo.Echo
	client   *auth.Client
	users    *testutils.MemoryUsers
	sessions *testutils.MemorySessions
	profiles *testutils.MemoryProfiles
	files    *filestore.Service
	mail     *testutils.RecordingSender
	metrics  *metrics.Metrics
}

func newTestEnv(t *testing.T, providers ...oauth.Provider) *testEnv {
	t.Helper()
	cfg := testutils.StaticConfig()

	env := &testEnv{
		users:    testutils.NewMemoryUsers(),
		sessions: testutils.NewMemorySessions(),
		profiles: testutils.NewMemoryProfiles(),
		mail:     &testutils.RecordingSender{},
		metrics:  metrics.NewNop(),
	}
	env.files = filestore.NewService(storage.NewAferoStore(afero.NewMemMapFs()), testutils.NewMemoryObjects(), cfg.GetStoragePublicURL())
	env.client = auth.NewClient(env.users, env.sessions, env.mail, testutils.NopPublisher{}, cfg,
		auth.WithProviders(providers...),
		auth.WithBcryptCost(bcrypt.MinCost),
	)
	// A zero TTL makes every lookup hit the session store.
	tracker := kaassession.NewTracker(env.client, nil, kaassession.WithCacheTTL(0))
	profiles := profile.NewService(env.profiles, env.files, cfg)
	renderer := rendering.NewNodeRenderer()

	authHandler := handlers.NewAuthHandler(env.client, tracker, renderer, env.metrics, cfg.GetAuthRedirectURL())
	dashboardHandler := handlers.NewDashboardHandler(profiles, renderer)
	profileHandler := handlers.NewProfileHandler(profiles, tracker, renderer, env.metrics, cfg.GetAvatarMaxSize())
	storageHandler := handlers.NewStorageHandler(env.files, cfg.GetAvatarBucket())

	e := echo.New()
	e.Validator = handlers.NewValidator()
	e.Use(session.Middleware(sessions.NewCookieStore([]byte(testSessionSecret))))

	e.GET("/", authHandler.LoginGet)
	e.GET("/auth/callback", authHandler.Callback)
	e.GET("/auth/confirm", authHandler.Confirm)
	e.POST("/auth/email", authHandler.EmailPost)
	e.POST("/auth/mode", authHandler.ModePost)
	e.POST("/auth/oauth/:provider", authHandler.OAuthStart)
	e.GET("/auth/oauth/:provider/callback", authHandler.OAuthCallback)
	e.POST("/auth/logout", authHandler.Logout)

	requireUser := middleware.Auth(tracker)
	e.GET("/dashboard", dashboardHandler.DashboardGet, requireUser)
	e.GET("/Dashboard", dashboardHandler.DashboardGet, requireUser)
	e.GET("/dashboard/sidebar", dashboardHandler.Sidebar, requireUser)
	e.GET("/dashboard/logout-dialog", dashboardHandler.LogoutDialog, requireUser)
	e.GET("/profile", profileHandler.ProfileGet, requireUser)
	e.POST("/profile", profileHandler.ProfilePost)
	e.POST("/profile/avatar", profileHandler.AvatarPost)
	e.GET("/storage/v1/object/public/:bucket/*", storageHandler.PublicObject)

	env.e = e
	return env
}

// addUser stores a confirmed email user.
func (env *testEnv) addUser(t *testing.T, email, password string, meta domain.UserMetadata) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	confirmed := time.Now().UTC()
	user, err := env.users.Create(context.Background(), &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Provider:     domain.ProviderEmail,
		Metadata:     meta,
		ConfirmedAt:  &confirmed,
	})
	require.NoError(t, err)
	return user
}

// signIn creates a user and returns a live session token for them.
func (env *testEnv) signIn(t *testing.T, meta domain.UserMetadata) (*domain.User, string) {
	t.Helper()
	user := env.addUser(t, "kaas@example.com", "password123", meta)
	s, err := env.client.SignInWithPassword(context.Background(), user.Email, "password123")
	require.NoError(t, err)
	return user, s.AccessToken
}

type reqOption func(*http.Request)

func withToken(token string) reqOption {
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: middleware.AuthCookieName, Value: token})
	}
}

func asHTMX() reqOption {
	return func(r *http.Request) { r.Header.Set("HX-Request", "true") }
}

func withCookies(cookies []*http.Cookie) reqOption {
	return func(r *http.Request) {
		for _, c := range cookies {
			r.AddCookie(c)
		}
	}
}

func (env *testEnv) do(method, target string, body io.Reader, contentType string, opts ...reqOption) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) get(target string, opts ...reqOption) *httptest.ResponseRecorder {
	return env.do(http.MethodGet, target, nil, "", opts...)
}

func (env *testEnv) postForm(target string, form url.Values, opts ...reqOption) *httptest.ResponseRecorder {
	return env.do(http.MethodPost, target, strings.NewReader(form.Encode()), echo.MIMEApplicationForm, opts...)
}

// postUpload sends the profile form with an avatar file.
func (env *testEnv) postUpload(t *testing.T, fields map[string]string, filename, contentType, content string, opts ...reqOption) *httptest.ResponseRecorder {
	t.Helper()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="avatar"; filename="`+filename+`"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return env.do(http.MethodPost, "/profile/avatar", body, w.FormDataContentType(), opts...)
}

// flashes decodes the flash messages stored by a response.
func flashes(t *testing.T, rec *httptest.ResponseRecorder, key string) []interface{} {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	sess, err := sessions.NewCookieStore([]byte(testSessionSecret)).Get(req, "flash-session")
	require.NoError(t, err)
	return sess.Flashes(key)
}

func authCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.AuthCookieName {
			return c
		}
	}
	return nil
}
