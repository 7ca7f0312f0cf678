package watchlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cinelog/cinelog/internal/domain"
	"github.com/cinelog/cinelog/internal/repository"
)

// ErrAlreadyInWatchlist indicates the movie is already on the user's list.
var ErrAlreadyInWatchlist = errors.New("watchlist: movie already in watchlist")

// ErrNotInWatchlist indicates the movie is not on the user's list.
var ErrNotInWatchlist = errors.New("watchlist: movie not in watchlist")

// ExpandedEntry is a watchlist entry with its movie reference resolved for
// display.
type ExpandedEntry struct {
	Movie     domain.Movie
	DateAdded time.Time
}

// Manager maintains the unique-by-movie watchlist set embedded in each user
// record.
type Manager struct {
	repo *repository.Repository
}

// NewManager constructs a watchlist manager.
func NewManager(repo *repository.Repository) *Manager {
	return &Manager{repo: repo}
}

// Add appends a movie to the user's watchlist. The movie must exist and must
// not already be listed.
func (m *Manager) Add(ctx context.Context, userID, movieID string) ([]ExpandedEntry, error) {
	exists, err := m.repo.Movies.Exists(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("check movie: %w", err)
	}
	if !exists {
		return nil, repository.ErrNotFound
	}

	user, err := m.repo.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, entry := range user.Watchlist {
		if entry.MovieID == movieID {
			return nil, ErrAlreadyInWatchlist
		}
	}

	entries := append(user.Watchlist, domain.WatchlistEntry{
		MovieID:   movieID,
		DateAdded: time.Now().UTC(),
	})
	if err := m.repo.Users.SetWatchlist(ctx, userID, entries); err != nil {
		return nil, err
	}

	return m.expand(ctx, entries)
}

// Remove deletes the entry for the given movie from the user's watchlist.
func (m *Manager) Remove(ctx context.Context, userID, movieID string) ([]ExpandedEntry, error) {
	user, err := m.repo.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	index := -1
	for i, entry := range user.Watchlist {
		if entry.MovieID == movieID {
			index = i
			break
		}
	}
	if index == -1 {
		return nil, ErrNotInWatchlist
	}

	entries := append(user.Watchlist[:index:index], user.Watchlist[index+1:]...)
	if err := m.repo.Users.SetWatchlist(ctx, userID, entries); err != nil {
		return nil, err
	}

	return m.expand(ctx, entries)
}

// Get returns the user's watchlist with movie details resolved.
func (m *Manager) Get(ctx context.Context, userID string) ([]ExpandedEntry, error) {
	user, err := m.repo.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return m.expand(ctx, user.Watchlist)
}

// expand resolves each entry's movie reference. Entries whose movie has been
// deleted are skipped for display; the stale reference stays stored on the
// user record.
func (m *Manager) expand(ctx context.Context, entries []domain.WatchlistEntry) ([]ExpandedEntry, error) {
	expanded := make([]ExpandedEntry, 0, len(entries))
	for _, entry := range entries {
		movie, err := m.repo.Movies.GetByID(ctx, entry.MovieID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		expanded = append(expanded, ExpandedEntry{Movie: movie, DateAdded: entry.DateAdded})
	}
	return expanded, nil
}
