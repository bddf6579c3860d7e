package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx driver
	_ "modernc.org/sqlite"             // registers the sqlite driver

	"github.com/Roma7-7-7/tagalog-flashcards/internal/dal"
)

type (
	Client interface {
		ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
		QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	}

	Repository struct {
		client  Client
		queries *dal.Queries
		now     func() time.Time
		log     *slog.Logger
	}
)

// Open connects to the database and applies pending migrations.
func Open(ctx context.Context, dbType dal.DBType, url string) (*sql.DB, error) {
	var driver string
	switch dbType {
	case dal.DBTypeSQLite:
		driver = "sqlite"
	case dal.DBTypePostgres:
		driver = "pgx"
	default:
		return nil, fmt.Errorf("open database: unsupported db type %q", dbType)
	}

	db, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbType == dal.DBTypeSQLite {
		// sqlite allows a single writer, serialize through one connection
		db.SetMaxOpenConns(1)
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err = dal.Migrate(ctx, db, dbType); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func NewRepository(client Client, dbType dal.DBType, log *slog.Logger) *Repository {
	return &Repository{
		client:  client,
		queries: dal.NewQueries(dbType),
		now:     time.Now,
		log:     log,
	}
}

func (r *Repository) Get(ctx context.Context, key string) (string, error) {
	query := r.queries.GetValueQuery(key)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return "", fmt.Errorf("build query: %w", err)
	}

	var value string
	if err = r.client.QueryRowContext(ctx, sqlQuery, args...).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", dal.ErrNotFound
		}
		return "", fmt.Errorf("get value %s: %w", key, err)
	}

	return value, nil
}

func (r *Repository) Set(ctx context.Context, key, value string) error {
	query := r.queries.SetValueQuery(key, value, r.now())

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err = r.client.ExecContext(ctx, sqlQuery, args...); err != nil {
		return fmt.Errorf("set value %s: %w", key, err)
	}
	r.log.DebugContext(ctx, "value stored", "key", key, "size", len(value))

	return nil
}
