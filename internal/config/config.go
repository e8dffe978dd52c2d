package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultAuthRedirectURL is used when AUTH_REDIRECT_URL is not set.
	DefaultAuthRedirectURL = "http://localhost:8080/auth/callback"

	// ProfileStoreSurreal and ProfileStorePostgres select the profile row backend.
	ProfileStoreSurreal  = "surreal"
	ProfileStorePostgres = "postgres"

	// StorageMemory keeps uploaded objects in memory instead of on disk.
	StorageMemory = "memory"
)

// Provider exposes configuration values through getters so that consumers can
// depend on an interface and tests can stub only what they need.
type Provider interface {
	GetServerAddr() string
	GetAppBaseURL() string
	GetAuthRedirectURL() string

	GetSessionSecret() string
	GetSessionTTL() time.Duration
	GetConfirmTokenSecret() string

	GetDBURL() string
	GetDBUser() string
	GetDBPass() string
	GetDBNs() string
	GetDBDb() string
	GetDBQueryTimeout() time.Duration
	GetDBExecuteTimeout() time.Duration

	GetProfileStore() string
	GetPostgresURL() string

	GetStorageDir() string
	GetStoragePublicURL() string
	GetAvatarBucket() string
	GetAvatarMaxSize() int64

	GetGoogleClientID() string
	GetGoogleClientSecret() string
	GetFacebookClientID() string
	GetFacebookClientSecret() string

	GetEmailProvider() string
	GetEmailAPIKey() string
	GetEmailSender() string

	GetTracingEnabled() bool
	GetTracingServiceName() string
	GetZipkinURL() string
}

// Config holds all configuration for the application.
type Config struct {
	ServerAddr      string
	AppBaseURL      string
	AuthRedirectURL string

	SessionSecret      string
	SessionTTL         time.Duration
	ConfirmTokenSecret string

	DBUrl            string
	DBNs             string
	DBDb             string
	DBUser           string
	DBPass           string
	DBQueryTimeout   time.Duration
	DBExecuteTimeout time.Duration

	ProfileStore string
	PostgresURL  string

	StorageDir       string
	StoragePublicURL string
	AvatarBucket     string
	AvatarMaxSize    int64

	GoogleClientID       string
	GoogleClientSecret   string
	FacebookClientID     string
	FacebookClientSecret string

	EmailProvider string
	EmailAPIKey   string
	EmailSender   string

	TracingEnabled     bool
	TracingServiceName string
	ZipkinURL          string
}

var _ Provider = (*Config)(nil)

// Load reads a .env file into the process environment if one exists.
// Variables that are already set are left untouched.
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
}

// New builds a Config from environment variables. Call Load first when a .env
// file should be honoured.
func New() (*Config, error) {
	port := getEnv("PORT", "8080")
	baseURL := strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:"+port), "/")

	cfg := &Config{
		ServerAddr:      getEnv("SERVER_ADDR", ":"+port),
		AppBaseURL:      baseURL,
		AuthRedirectURL: getEnv("AUTH_REDIRECT_URL", DefaultAuthRedirectURL),

		SessionSecret:      os.Getenv("SESSION_SECRET"),
		ConfirmTokenSecret: os.Getenv("CONFIRM_TOKEN_SECRET"),

		DBUrl:  os.Getenv("SURREAL_URL"),
		DBUser: os.Getenv("SURREAL_USER"),
		DBPass: os.Getenv("SURREAL_PASS"),
		DBNs:   os.Getenv("SURREAL_NS"),
		DBDb:   os.Getenv("SURREAL_DB"),

		ProfileStore: strings.ToLower(getEnv("PROFILE_STORE", ProfileStoreSurreal)),
		PostgresURL:  os.Getenv("DATABASE_URL"),

		StorageDir:       getEnv("STORAGE_DIR", "data/objects"),
		StoragePublicURL: strings.TrimRight(getEnv("STORAGE_PUBLIC_URL", baseURL), "/"),
		AvatarBucket:     getEnv("AVATAR_BUCKET", "avatars"),

		GoogleClientID:       os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:   os.Getenv("GOOGLE_CLIENT_SECRET"),
		FacebookClientID:     os.Getenv("FACEBOOK_CLIENT_ID"),
		FacebookClientSecret: os.Getenv("FACEBOOK_CLIENT_SECRET"),

		EmailProvider: getEnv("EMAIL_PROVIDER", "log"),
		EmailAPIKey:   os.Getenv("EMAIL_API_KEY"),
		EmailSender:   os.Getenv("EMAIL_SENDER"),

		TracingServiceName: getEnv("TRACING_SERVICE_NAME", "kaashub"),
		ZipkinURL:          getEnv("ZIPKIN_URL", "http://localhost:9411/api/v2/spans"),
	}

	var err error
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.DBQueryTimeout, err = getDuration("DB_QUERY_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.DBExecuteTimeout, err = getDuration("DB_EXECUTE_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.AvatarMaxSize, err = getInt64("AVATAR_MAX_SIZE", 5<<20); err != nil {
		return nil, err
	}
	if v := os.Getenv("TRACING_ENABLED"); v != "" {
		if cfg.TracingEnabled, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("invalid TRACING_ENABLED %q: %w", v, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DBUrl == "" || c.DBNs == "" || c.DBDb == "" {
		return fmt.Errorf("required environment variables SURREAL_URL, SURREAL_NS, or SURREAL_DB are not set")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET must be set")
	}
	if c.ConfirmTokenSecret == "" {
		// Falling back keeps local setups to a single secret.
		c.ConfirmTokenSecret = c.SessionSecret
	}
	switch c.ProfileStore {
	case ProfileStoreSurreal:
	case ProfileStorePostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("PROFILE_STORE is 'postgres' but DATABASE_URL is not set")
		}
	default:
		return fmt.Errorf("unknown profile store: %s", c.ProfileStore)
	}
	if c.AvatarMaxSize <= 0 {
		return fmt.Errorf("AVATAR_MAX_SIZE must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration", key)
	}
	return d, nil
}

func getInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func (c *Config) GetServerAddr() string      { return c.ServerAddr }
func (c *Config) GetAppBaseURL() string      { return c.AppBaseURL }
func (c *Config) GetAuthRedirectURL() string { return c.AuthRedirectURL }

func (c *Config) GetSessionSecret() string      { return c.SessionSecret }
func (c *Config) GetSessionTTL() time.Duration  { return c.SessionTTL }
func (c *Config) GetConfirmTokenSecret() string { return c.ConfirmTokenSecret }

func (c *Config) GetDBURL() string                   { return c.DBUrl }
func (c *Config) GetDBUser() string                  { return c.DBUser }
func (c *Config) GetDBPass() string                  { return c.DBPass }
func (c *Config) GetDBNs() string                    { return c.DBNs }
func (c *Config) GetDBDb() string                    { return c.DBDb }
func (c *Config) GetDBQueryTimeout() time.Duration   { return c.DBQueryTimeout }
func (c *Config) GetDBExecuteTimeout() time.Duration { return c.DBExecuteTimeout }

func (c *Config) GetProfileStore() string { return c.ProfileStore }
func (c *Config) GetPostgresURL() string  { return c.PostgresURL }

func (c *Config) GetStorageDir() string       { return c.StorageDir }
func (c *Config) GetStoragePublicURL() string { return c.StoragePublicURL }
func (c *Config) GetAvatarBucket() string     { return c.AvatarBucket }
func (c *Config) GetAvatarMaxSize() int64     { return c.AvatarMaxSize }

func (c *Config) GetGoogleClientID() string       { return c.GoogleClientID }
func (c *Config) GetGoogleClientSecret() string   { return c.GoogleClientSecret }
func (c *Config) GetFacebookClientID() string     { return c.FacebookClientID }
func (c *Config) GetFacebookClientSecret() string { return c.FacebookClientSecret }

func (c *Config) GetEmailProvider() string { return c.EmailProvider }
func (c *Config) GetEmailAPIKey() string   { return c.EmailAPIKey }
func (c *Config) GetEmailSender() string   { return c.EmailSender }

func (c *Config) GetTracingEnabled() bool       { return c.TracingEnabled }
func (c *Config) GetTracingServiceName() string { return c.TracingServiceName }
func (c *Config) GetZipkinURL() string          { return c.ZipkinURL }
