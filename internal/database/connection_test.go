package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go"
)

func fastRetryer(maxRetries int) *ExponentialBackoffRetryer {
	return &ExponentialBackoffRetryer{
		maxRetries: maxRetries,
		baseDelay:  time.Millisecond,
		maxDelay:   5 * time.Millisecond,
		multiplier: 2,
	}
}

func TestExponentialBackoffRetryer(t *testing.T) {
	t.Run("succeeds after transient failures", func(t *testing.T) {
		attempts := 0
		err := fastRetryer(3).Retry(context.Background(), func() error {
			attempts++
			if attempts < 3 {
				return errors.New("connection refused")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		attempts := 0
		boom := errors.New("boom")
		err := fastRetryer(2).Retry(context.Background(), func() error {
			attempts++
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 3, attempts)
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := fastRetryer(5).Retry(ctx, func() error { return errors.New("unreachable") })
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("delay is capped", func(t *testing.T) {
		r := NewExponentialBackoffRetryer()
		r.jitter = false
		assert.Equal(t, 100*time.Millisecond, r.calculateDelay(0))
		assert.Equal(t, 30*time.Second, r.calculateDelay(20))
	})
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("write: broken pipe"), true},
		{errors.New("unexpected EOF"), true},
		{NewDBError(ErrNotConnected, "database not connected"), true},
		{errors.New("There was a problem with the database: field already exists"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isConnectionError(tt.err), "%v", tt.err)
	}
}

func TestRedactDBURL(t *testing.T) {
	assert.Equal(t, "ws://root:xxxxx@localhost:8000/rpc", redactDBURL("ws://root:secret@localhost:8000/rpc"))
	assert.Equal(t, "invalid-url", redactDBURL("://bad"))
}

func TestConnection_NotConnected(t *testing.T) {
	conn := NewConnection(newTestConfig())

	err := conn.WithConnection(context.Background(), func(*surrealdb.DB) error { return nil })
	assert.ErrorIs(t, err, ErrNotConnected)

	_, err = conn.DB()
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.False(t, conn.IsHealthy())

	require.NoError(t, conn.Close(context.Background()))
	require.NoError(t, conn.Close(context.Background()), "closing twice is safe")
}
