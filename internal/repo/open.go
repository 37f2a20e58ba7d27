package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers "sqlite" driver for database/sql

	"github.com/pkordes/transit-bot/migrations"
)

// Store is an opened favorites backend with its schema migrated.
type Store struct {
	Favorites FavoriteRepo
	// Backend is "postgres" or "sqlite".
	Backend string

	close func()
}

// Close releases the underlying connections.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// Open connects to the database named by databaseURL, applies all pending
// migrations and returns the favorites store.
//
// Supported forms:
//   - postgres://… or postgresql://…: Postgres via pgxpool
//   - sqlite://path/to/file.db or file:…: SQLite via modernc.org/sqlite
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return openPostgres(ctx, databaseURL)
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return openSQLite(ctx, strings.TrimPrefix(databaseURL, "sqlite://"))
	case strings.HasPrefix(databaseURL, "file:"):
		return openSQLite(ctx, databaseURL)
	default:
		return nil, fmt.Errorf("repo.Open: unsupported database url scheme in %q", redact(databaseURL))
	}
}

func openPostgres(ctx context.Context, dsn string) (*Store, error) {
	// goose needs database/sql; the repo itself uses the pgx pool.
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("repo.Open: open postgres: %w", err)
	}
	defer sqlDB.Close()

	if err := Migrate(ctx, goose.DialectPostgres, sqlDB); err != nil {
		return nil, err
	}

	// pgxpool.New does not open connections immediately; the first query does.
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("repo.Open: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("repo.Open: ping: %w", err)
	}

	return &Store{
		Favorites: NewPostgresFavoriteRepo(pool),
		Backend:   "postgres",
		close:     pool.Close,
	}, nil
}

func openSQLite(ctx context.Context, path string) (*Store, error) {
	db, err := OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, goose.DialectSQLite3, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{
		Favorites: NewSQLiteFavoriteRepo(db),
		Backend:   "sqlite",
		close:     func() { _ = db.Close() },
	}, nil
}

// OpenSQLite opens a SQLite database at path with WAL journaling.
// The pool is limited to one connection so writers never contend.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("repo.OpenSQLite: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("repo.OpenSQLite: enable WAL: %w", err)
	}
	return db, nil
}

// Migrate applies all pending embedded migrations using the given dialect.
func Migrate(ctx context.Context, dialect goose.Dialect, db *sql.DB) error {
	provider, err := goose.NewProvider(dialect, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("repo.Migrate: create goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("repo.Migrate: run migrations: %w", err)
	}
	return nil
}

// redact hides everything after the scheme so credentials never reach logs.
func redact(u string) string {
	if scheme, _, ok := strings.Cut(u, "://"); ok {
		return scheme + "://…"
	}
	if len(u) > 8 {
		return u[:8] + "…"
	}
	return u
}
