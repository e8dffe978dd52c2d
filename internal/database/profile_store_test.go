package database

import (
	"context"
	"strings"
	"testing"

	"github.com/nfrund/kaashub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

func newProfileStoreWith(t *testing.T, exec *fakeExecutor[profileRecord]) *ProfileStore {
	t.Helper()
	store, err := NewProfileStore(nil, newTestConfig(), WithExecutor[profileRecord](exec))
	require.NoError(t, err)
	return store
}

func profileRow(userID string, name, avatar *string) profileRecord {
	id := models.NewRecordID(profilesTable, userID)
	return profileRecord{ID: &id, FullName: name, AvatarURL: avatar}
}

func TestProfileStore_FindByUserID(t *testing.T) {
	ctx := context.Background()

	t.Run("missing row maps to ErrProfileNotFound", func(t *testing.T) {
		store := newProfileStoreWith(t, &fakeExecutor[profileRecord]{})
		_, err := store.FindByUserID(ctx, "u1")
		assert.ErrorIs(t, err, domain.ErrProfileNotFound)
	})

	t.Run("returns the stored fields", func(t *testing.T) {
		exec := &fakeExecutor[profileRecord]{respond: func(string, map[string]any) ([]profileRecord, error) {
			return []profileRecord{profileRow("u1", strPtr("Kaas Fan"), nil)}, nil
		}}
		p, err := newProfileStoreWith(t, exec).FindByUserID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "u1", p.UserID)
		assert.Equal(t, "Kaas Fan", p.Name())
		assert.Nil(t, p.AvatarURL)
	})
}

func TestProfileStore_Save(t *testing.T) {
	exec := &fakeExecutor[profileRecord]{respond: func(string, map[string]any) ([]profileRecord, error) {
		return []profileRecord{profileRow("u1", strPtr("New"), strPtr("https://x/y.png"))}, nil
	}}
	store := newProfileStoreWith(t, exec)

	err := store.Save(context.Background(), &domain.Profile{UserID: "u1", FullName: strPtr("New"), AvatarURL: strPtr("https://x/y.png")})
	require.NoError(t, err)

	call := exec.last()
	assert.True(t, strings.HasPrefix(call.query, "UPSERT"))
	data := call.params["data"].(map[string]any)
	assert.Equal(t, "New", *data["full_name"].(*string))
	assert.Equal(t, "https://x/y.png", *data["avatar_url"].(*string))

	assert.Error(t, store.Save(context.Background(), &domain.Profile{}))
}

func TestProfileStore_SetAvatarIfEmpty(t *testing.T) {
	ctx := context.Background()
	url := "https://lh3.example.com/photo.jpg"

	t.Run("updates an empty avatar", func(t *testing.T) {
		exec := &fakeExecutor[profileRecord]{respond: func(q string, _ map[string]any) ([]profileRecord, error) {
			if strings.HasPrefix(q, "UPDATE") {
				return []profileRecord{profileRow("u1", nil, &url)}, nil
			}
			return nil, nil
		}}
		wrote, err := newProfileStoreWith(t, exec).SetAvatarIfEmpty(ctx, "u1", url)
		require.NoError(t, err)
		assert.True(t, wrote)
		assert.Len(t, exec.queries(), 1)
	})

	t.Run("leaves an existing avatar alone", func(t *testing.T) {
		exec := &fakeExecutor[profileRecord]{respond: func(q string, _ map[string]any) ([]profileRecord, error) {
			if strings.HasPrefix(q, "SELECT") {
				return []profileRecord{profileRow("u1", nil, strPtr("https://mine.png"))}, nil
			}
			return nil, nil
		}}
		wrote, err := newProfileStoreWith(t, exec).SetAvatarIfEmpty(ctx, "u1", url)
		require.NoError(t, err)
		assert.False(t, wrote)
		for _, q := range exec.queries() {
			assert.False(t, strings.HasPrefix(q, "CREATE"))
		}
	})

	t.Run("creates a missing row", func(t *testing.T) {
		exec := &fakeExecutor[profileRecord]{respond: func(q string, _ map[string]any) ([]profileRecord, error) {
			if strings.HasPrefix(q, "CREATE") {
				return []profileRecord{profileRow("u1", nil, &url)}, nil
			}
			return nil, nil
		}}
		wrote, err := newProfileStoreWith(t, exec).SetAvatarIfEmpty(ctx, "u1", url)
		require.NoError(t, err)
		assert.True(t, wrote)
	})

	t.Run("empty url is a no-op", func(t *testing.T) {
		exec := &fakeExecutor[profileRecord]{}
		wrote, err := newProfileStoreWith(t, exec).SetAvatarIfEmpty(ctx, "u1", "")
		require.NoError(t, err)
		assert.False(t, wrote)
		assert.Empty(t, exec.queries())
	})
}

func TestProfileStore_Ensure(t *testing.T) {
	ctx := context.Background()

	t.Run("named row is untouched", func(t *testing.T) {
		exec := &fakeExecutor[profileRecord]{respond: func(q string, _ map[string]any) ([]profileRecord, error) {
			if strings.HasPrefix(q, "SELECT") {
				return []profileRecord{profileRow("u1", strPtr("Old"), nil)}, nil
			}
			return nil, nil
		}}
		require.NoError(t, newProfileStoreWith(t, exec).Ensure(ctx, "u1", strPtr("New")))
		for _, q := range exec.queries() {
			assert.False(t, strings.HasPrefix(q, "CREATE"))
		}
	})

	t.Run("unnamed row gets the seed name", func(t *testing.T) {
		exec := &fakeExecutor[profileRecord]{respond: func(q string, _ map[string]any) ([]profileRecord, error) {
			if strings.HasPrefix(q, "UPDATE") {
				return []profileRecord{profileRow("u1", strPtr("Seed"), strPtr("https://x/y.png"))}, nil
			}
			return nil, nil
		}}
		require.NoError(t, newProfileStoreWith(t, exec).Ensure(ctx, "u1", strPtr("Seed")))

		require.Len(t, exec.queries(), 1)
		call := exec.last()
		assert.Contains(t, call.query, "WHERE full_name IS NONE OR full_name IS NULL")
		assert.Equal(t, "Seed", call.params["name"])
	})

	t.Run("missing row is created with the seed name", func(t *testing.T) {
		exec := &fakeExecutor[profileRecord]{respond: func(q string, _ map[string]any) ([]profileRecord, error) {
			if strings.HasPrefix(q, "CREATE") {
				return []profileRecord{profileRow("u1", strPtr("Seed"), nil)}, nil
			}
			return nil, nil
		}}
		require.NoError(t, newProfileStoreWith(t, exec).Ensure(ctx, "u1", strPtr("Seed")))
		rec := exec.last().params["data"].(profileRecord)
		assert.Equal(t, "Seed", *rec.FullName)
	})

	t.Run("nil name skips the update", func(t *testing.T) {
		exec := &fakeExecutor[profileRecord]{respond: func(string, map[string]any) ([]profileRecord, error) {
			return []profileRecord{profileRow("u1", nil, nil)}, nil
		}}
		require.NoError(t, newProfileStoreWith(t, exec).Ensure(ctx, "u1", nil))
		assert.Len(t, exec.queries(), 1)
		assert.True(t, strings.HasPrefix(exec.queries()[0], "SELECT"))
	})
}
