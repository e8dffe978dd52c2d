package database

import (
	"context"
	"log/slog"

	"github.com/surrealdb/surrealdb.go"
)

// schemaStatements define the tables the stores rely on. Every statement is
// idempotent so Migrate can run on every deploy.
var schemaStatements = []string{
	"DEFINE TABLE IF NOT EXISTS users SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS users_email ON TABLE users FIELDS email UNIQUE",
	"DEFINE TABLE IF NOT EXISTS sessions SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS sessions_user ON TABLE sessions FIELDS user_id",
	"DEFINE TABLE IF NOT EXISTS profiles SCHEMALESS",
	"DEFINE TABLE IF NOT EXISTS objects SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS objects_location ON TABLE objects FIELDS bucket, path UNIQUE",
}

// Migrate applies the schema through conn.
func Migrate(ctx context.Context, conn Conn) error {
	for _, stmt := range schemaStatements {
		err := conn.WithConnection(ctx, func(db *surrealdb.DB) error {
			return Execute(ctx, db, stmt, nil)
		})
		if err != nil {
			return NewDBError(err, "apply schema statement").WithQuery(stmt)
		}
	}
	slog.InfoContext(ctx, "Database schema applied", "event", "db_migrate", "statements", len(schemaStatements))
	return nil
}
