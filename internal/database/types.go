package database

import (
	"context"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// Client is a type-safe SurrealDB client for records decoded into T.
type Client[T any] interface {
	// Create inserts a record with the given ID. The data can be a struct or a map.
	Create(ctx context.Context, id models.RecordID, data any) (*T, error)

	// Select returns the record or ErrNotFound.
	Select(ctx context.Context, id models.RecordID) (*T, error)

	// Upsert merges data into the record, creating it when missing.
	Upsert(ctx context.Context, id models.RecordID, data any) (*T, error)

	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id models.RecordID) error

	// Query executes a raw query and returns the results of its first statement.
	Query(ctx context.Context, query string, params map[string]any) ([]T, error)

	// QueryOne returns (nil, nil) when the query yields no rows.
	QueryOne(ctx context.Context, query string, params map[string]any) (*T, error)

	// Execute runs a statement whose result is not needed.
	Execute(ctx context.Context, query string, params map[string]any) error
}

// QueryExecutor handles the execution of database queries.
// This interface is used internally by the Client implementation.
type QueryExecutor[T any] interface {
	Query(ctx context.Context, query string, params map[string]any) ([]T, error)
	QueryOne(ctx context.Context, query string, params map[string]any) (*T, error)
	Execute(ctx context.Context, query string, params map[string]any) error
}

// Conn is the subset of *Connection that executors need.
type Conn interface {
	WithConnection(ctx context.Context, fn func(*surrealdb.DB) error) error
}

// ClientOption defines a function that configures a Client.
type ClientOption[T any] func(*client[T])

// WithExecutor configures the client to use a custom QueryExecutor.
// This is useful for testing or for adding middleware to the executor.
func WithExecutor[T any](executor QueryExecutor[T]) ClientOption[T] {
	return func(c *client[T]) {
		c.executor = executor
	}
}
