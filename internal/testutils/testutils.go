package testutils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/nfrund/kaashub/internal/config"
	"github.com/nfrund/kaashub/internal/logging"
)

// ConfigForTests loads the .env.test file and returns a valid config.Provider.
// Tests are skipped when the project has no .env.test.
func ConfigForTests(t *testing.T) config.Provider {
	t.Helper()

	// Find the project root by looking for go.mod.
	path, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(path, "go.mod")); err == nil {
			break
		}
		if path == filepath.Dir(path) {
			t.Fatalf("could not find project root with go.mod")
		}
		path = filepath.Dir(path)
	}

	env, err := godotenv.Read(filepath.Join(path, ".env.test"))
	if err != nil {
		t.Skipf("no .env.test file: %v", err)
	}
	for key, value := range env {
		t.Setenv(key, value)
	}

	logging.New()

	cfg, err := config.New()
	if err != nil {
		t.Fatalf("invalid test configuration: %v", err)
	}
	return cfg
}

// StaticConfig returns a complete configuration that needs no environment.
func StaticConfig() *config.Config {
	return &config.Config{
		ServerAddr:         ":0",
		AppBaseURL:         "http://localhost:8080",
		AuthRedirectURL:    config.DefaultAuthRedirectURL,
		SessionSecret:      "a-very-secret-key-for-testing-!",
		SessionTTL:         time.Hour,
		ConfirmTokenSecret: "confirm-secret-for-testing",
		DBUrl:              "ws://localhost:8000/rpc",
		DBNs:               "test",
		DBDb:               "test",
		DBQueryTimeout:     time.Second,
		DBExecuteTimeout:   time.Second,
		ProfileStore:       config.ProfileStoreSurreal,
		StorageDir:         config.StorageMemory,
		StoragePublicURL:   "http://localhost:8080",
		AvatarBucket:       "avatars",
		AvatarMaxSize:      1 << 20,
		EmailProvider:      "log",
	}
}
