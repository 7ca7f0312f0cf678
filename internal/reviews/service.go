package reviews

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/cinelog/cinelog/internal/domain"
	"github.com/cinelog/cinelog/internal/repository"
)

// ErrInvalidRating indicates a rating outside the 1..5 range.
var ErrInvalidRating = errors.New("reviews: rating must be between 1 and 5")

// ErrEmptyText indicates a missing or blank review text.
var ErrEmptyText = errors.New("reviews: review text must not be empty")

// Patch describes a partial review update. Nil fields were not supplied by
// the caller and stay untouched; a supplied-but-blank ReviewText is rejected
// rather than silently skipped.
type Patch struct {
	Rating     *int
	ReviewText *string
}

// Service owns the review lifecycle and keeps each movie's stored average
// rating consistent with its review set. Every mutation recomputes the
// affected movie's average synchronously; there is no lazy or background
// reconciliation.
type Service struct {
	repo   *repository.Repository
	logger *log.Logger

	// locks serializes recomputes per movie so two concurrent review
	// mutations on the same movie cannot interleave their read-then-write.
	locks sync.Map // movie id -> *sync.Mutex
}

// NewService constructs the review service.
func NewService(repo *repository.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Create validates and stores a new review, then recomputes the movie's
// average. The movie must exist; multiple reviews by the same user for the
// same movie are permitted.
func (s *Service) Create(ctx context.Context, userID, movieID string, rating int, reviewText string) (domain.Review, error) {
	if rating < 1 || rating > 5 {
		return domain.Review{}, ErrInvalidRating
	}
	if strings.TrimSpace(reviewText) == "" {
		return domain.Review{}, ErrEmptyText
	}

	exists, err := s.repo.Movies.Exists(ctx, movieID)
	if err != nil {
		return domain.Review{}, fmt.Errorf("check movie: %w", err)
	}
	if !exists {
		return domain.Review{}, repository.ErrNotFound
	}

	review, err := s.repo.Reviews.Insert(ctx, repository.ReviewCreateParams{
		UserID:     userID,
		MovieID:    movieID,
		Rating:     rating,
		ReviewText: reviewText,
	})
	if err != nil {
		return domain.Review{}, err
	}

	s.recomputeBestEffort(ctx, movieID)
	return review, nil
}

// Update applies a partial patch to an existing review and recomputes the
// review's movie. Fields absent from the patch are left unchanged.
func (s *Service) Update(ctx context.Context, reviewID string, patch Patch) (domain.Review, error) {
	if patch.Rating != nil && (*patch.Rating < 1 || *patch.Rating > 5) {
		return domain.Review{}, ErrInvalidRating
	}
	if patch.ReviewText != nil && strings.TrimSpace(*patch.ReviewText) == "" {
		return domain.Review{}, ErrEmptyText
	}

	review, err := s.repo.Reviews.Update(ctx, reviewID, patch.Rating, patch.ReviewText)
	if err != nil {
		return domain.Review{}, err
	}

	s.recomputeBestEffort(ctx, review.MovieID)
	return review, nil
}

// Delete removes a review. The owning movie's id is captured before the
// delete so the recompute excludes the removed rating.
func (s *Service) Delete(ctx context.Context, reviewID string) error {
	review, err := s.repo.Reviews.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if err := s.repo.Reviews.Delete(ctx, reviewID); err != nil {
		return err
	}

	s.recomputeBestEffort(ctx, review.MovieID)
	return nil
}

// DeleteAllByUser removes every review a user owns, used when an account is
// deleted. Each affected movie's average is recomputed afterwards.
func (s *Service) DeleteAllByUser(ctx context.Context, userID string) error {
	movieIDs, err := s.repo.Reviews.DeleteByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, movieID := range movieIDs {
		s.recomputeBestEffort(ctx, movieID)
	}
	return nil
}

// Recompute derives a movie's average rating from its current review set and
// persists it: the arithmetic mean of all ratings, or 0 when no reviews
// remain. A movie that has vanished mid-flight is tolerated, not an error.
func (s *Service) Recompute(ctx context.Context, movieID string) error {
	mu := s.lockFor(movieID)
	mu.Lock()
	defer mu.Unlock()

	ratings, err := s.repo.Reviews.RatingsByMovie(ctx, movieID)
	if err != nil {
		return fmt.Errorf("fetch ratings: %w", err)
	}

	var average float64
	if len(ratings) > 0 {
		sum := 0
		for _, rating := range ratings {
			sum += rating
		}
		average = float64(sum) / float64(len(ratings))
	}

	if err := s.repo.Movies.SetAverageRating(ctx, movieID, average); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// The movie was deleted while a review still referenced it.
			return nil
		}
		return fmt.Errorf("persist average: %w", err)
	}
	return nil
}

// recomputeBestEffort never fails the primary operation: a recompute error
// leaves a stale average that heals on the next successful write.
func (s *Service) recomputeBestEffort(ctx context.Context, movieID string) {
	if err := s.Recompute(ctx, movieID); err != nil {
		s.logger.Printf("reviews: recompute average for movie %s: %v", movieID, err)
	}
}

func (s *Service) lockFor(movieID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(movieID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
