package database

import (
	"context"
	"time"

	"github.com/nfrund/kaashub/internal/config"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

type client[T any] struct {
	executor       QueryExecutor[T]
	queryTimeout   time.Duration
	executeTimeout time.Duration
}

// NewClient creates a new type-safe database client. conn may be nil only when
// WithExecutor supplies the executor.
func NewClient[T any](conn Conn, cfg config.Provider, opts ...ClientOption[T]) (Client[T], error) {
	if cfg == nil {
		return nil, NewDBError(ErrInvalidInput, "config provider cannot be nil")
	}

	queryTimeout := cfg.GetDBQueryTimeout()
	if queryTimeout <= 0 {
		return nil, NewDBError(ErrInvalidInput, "DB_QUERY_TIMEOUT must be a positive duration")
	}
	executeTimeout := cfg.GetDBExecuteTimeout()
	if executeTimeout <= 0 {
		return nil, NewDBError(ErrInvalidInput, "DB_EXECUTE_TIMEOUT must be a positive duration")
	}

	c := &client[T]{
		queryTimeout:   queryTimeout,
		executeTimeout: executeTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.executor == nil {
		if conn == nil {
			return nil, NewDBError(ErrInvalidInput, "connection cannot be nil")
		}
		c.executor = newSurrealExecutor[T](conn)
	}
	return c, nil
}

func recordParams(id models.RecordID) map[string]any {
	return map[string]any{"tb": id.Table, "id": id.ID}
}

func validRecordID(id models.RecordID) bool {
	if id.Table == "" || id.ID == nil {
		return false
	}
	if s, ok := id.ID.(string); ok && s == "" {
		return false
	}
	return true
}

// Query implements the Client interface
func (c *client[T]) Query(ctx context.Context, query string, params map[string]any) ([]T, error) {
	ctx, cancel := getTimeoutFromContext(ctx, c.queryTimeout, ContextKeyQueryTimeout)
	defer cancel()
	return c.executor.Query(ctx, query, params)
}

// QueryOne implements the Client interface
func (c *client[T]) QueryOne(ctx context.Context, query string, params map[string]any) (*T, error) {
	ctx, cancel := getTimeoutFromContext(ctx, c.queryTimeout, ContextKeyQueryTimeout)
	defer cancel()
	return c.executor.QueryOne(ctx, query, params)
}

// Execute implements the Client interface
func (c *client[T]) Execute(ctx context.Context, query string, params map[string]any) error {
	ctx, cancel := getTimeoutFromContext(ctx, c.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()
	return c.executor.Execute(ctx, query, params)
}

// Create implements the Client interface
func (c *client[T]) Create(ctx context.Context, id models.RecordID, data any) (*T, error) {
	if !validRecordID(id) {
		return nil, NewDBError(ErrInvalidInput, "record id cannot be empty")
	}
	if data == nil {
		return nil, NewDBError(ErrInvalidInput, "data cannot be nil")
	}

	ctx, cancel := getTimeoutFromContext(ctx, c.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()

	query := "CREATE type::thing($tb, $id) CONTENT $data"
	params := recordParams(id)
	params["data"] = data
	result, err := c.executor.QueryOne(ctx, query, params)
	if err != nil {
		return nil, NewDBError(err, "create operation failed").WithQuery(query)
	}
	if result == nil {
		return nil, NewDBError(ErrQueryFailed, "create returned no record").WithQuery(query)
	}
	return result, nil
}

// Select implements the Client interface
func (c *client[T]) Select(ctx context.Context, id models.RecordID) (*T, error) {
	if !validRecordID(id) {
		return nil, NewDBError(ErrInvalidInput, "record id cannot be empty")
	}

	ctx, cancel := getTimeoutFromContext(ctx, c.queryTimeout, ContextKeyQueryTimeout)
	defer cancel()

	query := "SELECT * FROM type::thing($tb, $id)"
	result, err := c.executor.QueryOne(ctx, query, recordParams(id))
	if err != nil {
		return nil, NewDBError(err, "select operation failed").WithQuery(query)
	}
	if result == nil {
		return nil, NewDBError(ErrNotFound, "record not found")
	}
	return result, nil
}

// Upsert implements the Client interface
func (c *client[T]) Upsert(ctx context.Context, id models.RecordID, data any) (*T, error) {
	if !validRecordID(id) {
		return nil, NewDBError(ErrInvalidInput, "record id cannot be empty")
	}
	if data == nil {
		return nil, NewDBError(ErrInvalidInput, "data cannot be nil")
	}

	ctx, cancel := getTimeoutFromContext(ctx, c.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()

	query := "UPSERT type::thing($tb, $id) MERGE $data"
	params := recordParams(id)
	params["data"] = data
	result, err := c.executor.QueryOne(ctx, query, params)
	if err != nil {
		return nil, NewDBError(err, "upsert operation failed").WithQuery(query)
	}
	if result == nil {
		return nil, NewDBError(ErrQueryFailed, "upsert returned no record").WithQuery(query)
	}
	return result, nil
}

// Delete implements the Client interface
func (c *client[T]) Delete(ctx context.Context, id models.RecordID) error {
	if !validRecordID(id) {
		return NewDBError(ErrInvalidInput, "record id cannot be empty")
	}

	ctx, cancel := getTimeoutFromContext(ctx, c.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()

	query := "DELETE type::thing($tb, $id)"
	if err := c.executor.Execute(ctx, query, recordParams(id)); err != nil {
		return NewDBError(err, "delete operation failed").WithQuery(query)
	}
	return nil
}
