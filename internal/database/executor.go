package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
)

// Query executes a raw SurrealQL query with parameters and returns the rows of
// the first statement decoded into T.
//
// Example:
//
//	query := "SELECT * FROM users WHERE email = $email"
//	users, err := Query[userRecord](ctx, db, query, map[string]any{"email": email})
func Query[T any](ctx context.Context, db *surrealdb.DB, query string, params map[string]any) ([]T, error) {
	queryResults, err := surrealdb.Query[[]T](ctx, db, query, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	if queryResults == nil || len(*queryResults) == 0 {
		return nil, nil
	}
	first := (*queryResults)[0]
	if first.Status != "" && first.Status != "OK" {
		return nil, fmt.Errorf("%w: statement status %s", ErrQueryFailed, first.Status)
	}
	return first.Result, nil
}

// QueryOne executes a query and returns a single result.
// If no results are found, it returns nil, nil.
func QueryOne[T any](ctx context.Context, db *surrealdb.DB, query string, params map[string]any) (*T, error) {
	// CREATE/UPDATE/DELETE statements don't support LIMIT.
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "SELECT") && !hasLimitClause(query) {
		query += " LIMIT 1"
	}

	results, err := Query[T](ctx, db, query, params)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// Execute runs a query whose rows are discarded.
func Execute(ctx context.Context, db *surrealdb.DB, query string, params map[string]any) error {
	results, err := surrealdb.Query[any](ctx, db, query, params)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	if results != nil {
		for _, r := range *results {
			if r.Status != "" && r.Status != "OK" {
				return fmt.Errorf("%w: statement status %s", ErrQueryFailed, r.Status)
			}
		}
	}
	return nil
}

func hasLimitClause(query string) bool {
	query = " " + strings.ToUpper(query) + " "
	return strings.Contains(query, " LIMIT ")
}

// surrealExecutor runs queries through a managed Connection so that dropped
// connections are re-established transparently.
type surrealExecutor[T any] struct {
	conn Conn
}

func newSurrealExecutor[T any](conn Conn) *surrealExecutor[T] {
	return &surrealExecutor[T]{conn: conn}
}

func (e *surrealExecutor[T]) Query(ctx context.Context, query string, params map[string]any) ([]T, error) {
	var out []T
	err := e.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		rows, err := Query[T](ctx, db, query, params)
		out = rows
		return err
	})
	return out, err
}

func (e *surrealExecutor[T]) QueryOne(ctx context.Context, query string, params map[string]any) (*T, error) {
	var out *T
	err := e.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		row, err := QueryOne[T](ctx, db, query, params)
		out = row
		return err
	})
	return out, err
}

func (e *surrealExecutor[T]) Execute(ctx context.Context, query string, params map[string]any) error {
	return e.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		return Execute(ctx, db, query, params)
	})
}
