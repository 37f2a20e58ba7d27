// Package repo contains all database access logic for the transit bot.
// The favorites store has a Postgres implementation (pgx) and a SQLite
// implementation (database/sql + modernc.org/sqlite) behind one interface.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/transit-bot/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// FavoriteRepo defines the persistence operations for favorites.
// All operations are scoped by chat ID.
type FavoriteRepo interface {
	// Add inserts the favorite unless a row for the same (chat, route, stop)
	// already exists. created reports whether a row was inserted. The check
	// and the insert are a single statement.
	Add(ctx context.Context, fav domain.Favorite) (created bool, err error)

	// Exists reports whether the chat has a favorite for routeID at stopID.
	Exists(ctx context.Context, chatID int64, routeID, stopID int) (bool, error)

	// ListByChat returns the chat's favorites in insertion order.
	ListByChat(ctx context.Context, chatID int64) ([]domain.Favorite, error)

	// DeleteByChat removes all favorites of the chat and returns the count.
	DeleteByChat(ctx context.Context, chatID int64) (int64, error)
}

// pgFavoriteRepo is the Postgres implementation of FavoriteRepo.
type pgFavoriteRepo struct {
	db db
}

// NewPostgresFavoriteRepo constructs a FavoriteRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPostgresFavoriteRepo(db db) FavoriteRepo {
	return &pgFavoriteRepo{db: db}
}

// Add relies on the unique index over (chat_id, route_id, stop_id): a
// conflicting insert affects zero rows instead of failing.
func (r *pgFavoriteRepo) Add(ctx context.Context, fav domain.Favorite) (bool, error) {
	const q = `
		INSERT INTO favorites (label, chat_id, stop_id, route_id)
		VALUES (@label, @chat_id, @stop_id, @route_id)
		ON CONFLICT (chat_id, route_id, stop_id) DO NOTHING`

	args := pgx.NamedArgs{
		"label":    fav.Label,
		"chat_id":  fav.ChatID,
		"stop_id":  fav.StopID,
		"route_id": fav.RouteID,
	}

	tag, err := r.db.Exec(ctx, q, args)
	if err != nil {
		return false, fmt.Errorf("repo.FavoriteRepo.Add: %w: %w", domain.ErrStore, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *pgFavoriteRepo) Exists(ctx context.Context, chatID int64, routeID, stopID int) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM favorites
			WHERE chat_id = @chat_id AND route_id = @route_id AND stop_id = @stop_id
		)`

	var exists bool
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"chat_id":  chatID,
		"route_id": routeID,
		"stop_id":  stopID,
	}).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("repo.FavoriteRepo.Exists: %w: %w", domain.ErrStore, err)
	}
	return exists, nil
}

// ListByChat returns favorites ordered by creation time, then label.
func (r *pgFavoriteRepo) ListByChat(ctx context.Context, chatID int64) ([]domain.Favorite, error) {
	const q = `
		SELECT label, chat_id, stop_id, route_id
		FROM favorites
		WHERE chat_id = @chat_id
		ORDER BY created_at, label`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"chat_id": chatID})
	if err != nil {
		return nil, fmt.Errorf("repo.FavoriteRepo.ListByChat: %w: %w", domain.ErrStore, err)
	}
	defer rows.Close()

	favs := []domain.Favorite{}
	for rows.Next() {
		f, err := scanFavorite(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.FavoriteRepo.ListByChat: scan: %w: %w", domain.ErrStore, err)
		}
		favs = append(favs, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.FavoriteRepo.ListByChat: rows: %w: %w", domain.ErrStore, err)
	}
	return favs, nil
}

func (r *pgFavoriteRepo) DeleteByChat(ctx context.Context, chatID int64) (int64, error) {
	const q = `DELETE FROM favorites WHERE chat_id = @chat_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"chat_id": chatID})
	if err != nil {
		return 0, fmt.Errorf("repo.FavoriteRepo.DeleteByChat: %w: %w", domain.ErrStore, err)
	}
	return tag.RowsAffected(), nil
}

// scanner is satisfied by pgx.Row, pgx.Rows and *sql.Rows, allowing
// scanFavorite to be shared by both implementations.
type scanner interface {
	Scan(dest ...any) error
}

// scanFavorite maps a single (label, chat_id, stop_id, route_id) row.
func scanFavorite(s scanner) (domain.Favorite, error) {
	var (
		f       domain.Favorite
		stopID  int64
		routeID int64
	)
	if err := s.Scan(&f.Label, &f.ChatID, &stopID, &routeID); err != nil {
		return domain.Favorite{}, err
	}
	f.StopID = int(stopID)
	f.RouteID = int(routeID)
	return f, nil
}
