package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nfrund/kaashub/internal/config"
	"github.com/nfrund/kaashub/internal/domain"
	"github.com/nfrund/kaashub/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to the database named in .env.test and applies the schema.
func setupTestDB(t *testing.T) (*Connection, config.Provider) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	cfg := testutils.ConfigForTests(t)
	if os.Getenv("SURREAL_URL") == "" {
		t.Skip("SURREAL_URL not set")
	}

	conn := NewConnection(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := conn.Connect(ctx); err != nil {
		t.Skipf("database unavailable: %v", err)
	}
	require.NoError(t, Migrate(ctx, conn))

	t.Cleanup(func() { _ = conn.Close(context.Background()) })
	return conn, cfg
}

func TestIntegration_ProfileLifecycle(t *testing.T) {
	conn, cfg := setupTestDB(t)
	ctx := context.Background()

	users, err := NewUserStore(conn, cfg)
	require.NoError(t, err)
	profiles, err := NewProfileStore(conn, cfg)
	require.NoError(t, err)

	email := "it-" + uuid.NewString() + "@example.com"
	user, err := users.Create(ctx, &domain.User{Email: email, Provider: domain.ProviderEmail})
	require.NoError(t, err)

	_, err = users.Create(ctx, &domain.User{Email: email, Provider: domain.ProviderEmail})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	_, err = profiles.FindByUserID(ctx, user.ID)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)

	wrote, err := profiles.SetAvatarIfEmpty(ctx, user.ID, "https://provider/a.png")
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = profiles.SetAvatarIfEmpty(ctx, user.ID, "https://provider/b.png")
	require.NoError(t, err)
	assert.False(t, wrote)

	name := "Integration Kaas"
	require.NoError(t, profiles.Save(ctx, &domain.Profile{UserID: user.ID, FullName: &name}))

	p, err := profiles.FindByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, name, p.Name())
	assert.Equal(t, "", p.Avatar())
}
