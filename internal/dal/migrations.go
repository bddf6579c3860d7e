package dal

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// Migrate applies all pending schema migrations for the given database type.
func Migrate(ctx context.Context, db *sql.DB, dbType DBType) error {
	var dialect goose.Dialect
	switch dbType {
	case DBTypeSQLite:
		dialect = goose.DialectSQLite3
	case DBTypePostgres:
		dialect = goose.DialectPostgres
	default:
		return fmt.Errorf("migrate: unsupported db type %q", dbType)
	}

	dir, err := fs.Sub(migrations, "migrations/"+string(dbType))
	if err != nil {
		return fmt.Errorf("open migrations dir: %w", err)
	}

	provider, err := goose.NewProvider(dialect, db, dir)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	if _, err = provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}
