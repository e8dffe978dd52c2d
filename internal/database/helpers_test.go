package database

import (
	"context"
	"sync"
	"time"

	"github.com/nfrund/kaashub/internal/config"
)

// testConfig stubs only the timeouts the client reads.
type testConfig struct {
	config.Provider
	queryTimeout   time.Duration
	executeTimeout time.Duration
}

func (c testConfig) GetDBQueryTimeout() time.Duration   { return c.queryTimeout }
func (c testConfig) GetDBExecuteTimeout() time.Duration { return c.executeTimeout }

func newTestConfig() testConfig {
	return testConfig{queryTimeout: time.Second, executeTimeout: 2 * time.Second}
}

type recordedCall struct {
	query    string
	params   map[string]any
	deadline time.Time
}

// fakeExecutor records every statement and answers through respond.
type fakeExecutor[T any] struct {
	mu      sync.Mutex
	calls   []recordedCall
	respond func(query string, params map[string]any) ([]T, error)
}

func (f *fakeExecutor[T]) record(ctx context.Context, query string, params map[string]any) ([]T, error) {
	f.mu.Lock()
	deadline, _ := ctx.Deadline()
	f.calls = append(f.calls, recordedCall{query: query, params: params, deadline: deadline})
	respond := f.respond
	f.mu.Unlock()
	if respond == nil {
		return nil, nil
	}
	return respond(query, params)
}

func (f *fakeExecutor[T]) Query(ctx context.Context, query string, params map[string]any) ([]T, error) {
	return f.record(ctx, query, params)
}

func (f *fakeExecutor[T]) QueryOne(ctx context.Context, query string, params map[string]any) (*T, error) {
	rows, err := f.record(ctx, query, params)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

func (f *fakeExecutor[T]) Execute(ctx context.Context, query string, params map[string]any) error {
	_, err := f.record(ctx, query, params)
	return err
}

func (f *fakeExecutor[T]) queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.query)
	}
	return out
}

func (f *fakeExecutor[T]) last() recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func strPtr(s string) *string { return &s }
