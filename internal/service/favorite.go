package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkordes/transit-bot/internal/domain"
	"github.com/pkordes/transit-bot/internal/repo"
)

// MaxLabelLength is the longest favorite label accepted, in runes.
const MaxLabelLength = 64

// FavoriteService implements business logic for saved (route, stop) pairs.
type FavoriteService struct {
	favorites repo.FavoriteRepo
}

// NewFavoriteService constructs a FavoriteService backed by the provided repo.
func NewFavoriteService(favorites repo.FavoriteRepo) *FavoriteService {
	return &FavoriteService{favorites: favorites}
}

// Exists reports whether chatID already saved routeID at stopID.
func (s *FavoriteService) Exists(ctx context.Context, chatID int64, routeID, stopID int) (bool, error) {
	ok, err := s.favorites.Exists(ctx, chatID, routeID, stopID)
	if err != nil {
		return false, fmt.Errorf("service.FavoriteService.Exists: %w", err)
	}
	return ok, nil
}

// Save validates the label and stores the favorite unless the chat already
// has one for the same route and stop. created is false in that case.
// Returns domain.ErrValidation for an empty or over-long label.
func (s *FavoriteService) Save(ctx context.Context, fav domain.Favorite) (bool, error) {
	fav.Label = strings.TrimSpace(fav.Label)
	if err := validateFavorite(fav); err != nil {
		return false, err
	}

	exists, err := s.favorites.Exists(ctx, fav.ChatID, fav.RouteID, fav.StopID)
	if err != nil {
		return false, fmt.Errorf("service.FavoriteService.Save: %w", err)
	}
	if exists {
		return false, nil
	}

	// Add is itself conditional, so a concurrent save of the same triple
	// between Exists and Add still yields a single row.
	created, err := s.favorites.Add(ctx, fav)
	if err != nil {
		return false, fmt.Errorf("service.FavoriteService.Save: %w", err)
	}
	return created, nil
}

// List returns the chat's favorites in the order they were saved.
// Always returns a non-nil slice so callers can safely range over it.
func (s *FavoriteService) List(ctx context.Context, chatID int64) ([]domain.Favorite, error) {
	favs, err := s.favorites.ListByChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("service.FavoriteService.List: %w", err)
	}
	if favs == nil {
		return []domain.Favorite{}, nil
	}
	return favs, nil
}

// Clear deletes every favorite of the chat and returns how many were removed.
func (s *FavoriteService) Clear(ctx context.Context, chatID int64) (int64, error) {
	n, err := s.favorites.DeleteByChat(ctx, chatID)
	if err != nil {
		return 0, fmt.Errorf("service.FavoriteService.Clear: %w", err)
	}
	return n, nil
}

// validateFavorite enforces the label rules.
//   - Label must be non-empty after trimming.
//   - Label must be at most MaxLabelLength runes.
func validateFavorite(fav domain.Favorite) error {
	if fav.Label == "" {
		return fmt.Errorf("%w: label is required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(fav.Label) > MaxLabelLength {
		return fmt.Errorf("%w: label must be at most %d characters", domain.ErrValidation, MaxLabelLength)
	}
	return nil
}
