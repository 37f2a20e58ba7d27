package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkordes/transit-bot/internal/domain"
)

// sqliteFavoriteRepo is the SQLite implementation of FavoriteRepo.
type sqliteFavoriteRepo struct {
	db *sql.DB
}

// NewSQLiteFavoriteRepo constructs a FavoriteRepo backed by a SQLite database
// opened with the "sqlite" driver. The schema must already be migrated.
func NewSQLiteFavoriteRepo(db *sql.DB) FavoriteRepo {
	return &sqliteFavoriteRepo{db: db}
}

func (r *sqliteFavoriteRepo) Add(ctx context.Context, fav domain.Favorite) (bool, error) {
	const q = `
		INSERT INTO favorites (label, chat_id, stop_id, route_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (chat_id, route_id, stop_id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, q, fav.Label, fav.ChatID, fav.StopID, fav.RouteID)
	if err != nil {
		return false, fmt.Errorf("repo.FavoriteRepo.Add: %w: %w", domain.ErrStore, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("repo.FavoriteRepo.Add: rows affected: %w: %w", domain.ErrStore, err)
	}
	return n == 1, nil
}

func (r *sqliteFavoriteRepo) Exists(ctx context.Context, chatID int64, routeID, stopID int) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM favorites
			WHERE chat_id = ? AND route_id = ? AND stop_id = ?
		)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, q, chatID, routeID, stopID).Scan(&exists); err != nil {
		return false, fmt.Errorf("repo.FavoriteRepo.Exists: %w: %w", domain.ErrStore, err)
	}
	return exists, nil
}

// ListByChat orders by rowid, which follows insertion order in SQLite.
func (r *sqliteFavoriteRepo) ListByChat(ctx context.Context, chatID int64) ([]domain.Favorite, error) {
	const q = `
		SELECT label, chat_id, stop_id, route_id
		FROM favorites
		WHERE chat_id = ?
		ORDER BY rowid`

	rows, err := r.db.QueryContext(ctx, q, chatID)
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

func (r *sqliteFavoriteRepo) DeleteByChat(ctx context.Context, chatID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE chat_id = ?`, chatID)
	if err != nil {
		return 0, fmt.Errorf("repo.FavoriteRepo.DeleteByChat: %w: %w", domain.ErrStore, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("repo.FavoriteRepo.DeleteByChat: rows affected: %w: %w", domain.ErrStore, err)
	}
	return n, nil
}
