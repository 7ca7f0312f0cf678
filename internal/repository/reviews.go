package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cinelog/cinelog/internal/domain"
)

// ReviewsRepository provides persistence helpers for reviews.
type ReviewsRepository struct {
	pool *pgxpool.Pool
}

const reviewColumns = `
    id,
    user_id,
    movie_id,
    rating,
    review_text,
    created_at
`

// ReviewCreateParams bundles the fields required to insert a review.
// Validation (rating range, non-empty text, movie existence) happens in the
// review service before this is called.
type ReviewCreateParams struct {
	UserID     string
	MovieID    string
	Rating     int
	ReviewText string
}

// Insert stores a new review and returns it.
func (r *ReviewsRepository) Insert(ctx context.Context, params ReviewCreateParams) (domain.Review, error) {
	query := fmt.Sprintf(`
        INSERT INTO reviews (id, user_id, movie_id, rating, review_text)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING %s
    `, reviewColumns)

	return scanReview(r.pool.QueryRow(ctx, query,
		uuid.NewString(), params.UserID, params.MovieID, params.Rating, params.ReviewText))
}

// GetByID fetches a single review.
func (r *ReviewsRepository) GetByID(ctx context.Context, id string) (domain.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE id = $1`, reviewColumns)
	review, err := scanReview(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Review{}, ErrNotFound
		}
		return domain.Review{}, err
	}
	return review, nil
}

// Update patches rating and/or review text. Nil fields stay unchanged.
func (r *ReviewsRepository) Update(ctx context.Context, id string, rating *int, reviewText *string) (domain.Review, error) {
	query := fmt.Sprintf(`
        UPDATE reviews
        SET rating = COALESCE($2, rating),
            review_text = COALESCE($3, review_text)
        WHERE id = $1
        RETURNING %s
    `, reviewColumns)

	review, err := scanReview(r.pool.QueryRow(ctx, query, id, rating, reviewText))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Review{}, ErrNotFound
		}
		return domain.Review{}, err
	}
	return review, nil
}

// Delete removes a single review.
func (r *ReviewsRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByUser removes every review owned by a user and returns the distinct
// movie ids that were affected, so the caller can recompute their averages.
func (r *ReviewsRepository) DeleteByUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `DELETE FROM reviews WHERE user_id = $1 RETURNING movie_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	movieIDs := make([]string, 0)
	for rows.Next() {
		var movieID string
		if err := rows.Scan(&movieID); err != nil {
			return nil, err
		}
		if _, ok := seen[movieID]; !ok {
			seen[movieID] = struct{}{}
			movieIDs = append(movieIDs, movieID)
		}
	}
	return movieIDs, rows.Err()
}

// RatingsByMovie returns the raw rating values of every review for a movie.
// The rating aggregator derives the stored average from this set.
func (r *ReviewsRepository) RatingsByMovie(ctx context.Context, movieID string) ([]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT rating FROM reviews WHERE movie_id = $1`, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := make([]int, 0)
	for rows.Next() {
		var rating int
		if err := rows.Scan(&rating); err != nil {
			return nil, err
		}
		ratings = append(ratings, rating)
	}
	return ratings, rows.Err()
}

// ListByMovie returns a movie's reviews newest first, with each reviewer's
// username resolved. Reviews whose user has been deleted come back with an
// empty username.
func (r *ReviewsRepository) ListByMovie(ctx context.Context, movieID string) ([]domain.Review, error) {
	const query = `
        SELECT r.id, r.user_id, r.movie_id, r.rating, r.review_text, r.created_at,
               COALESCE(u.username, '') AS username
        FROM reviews r
        LEFT JOIN users u ON u.id = r.user_id
        WHERE r.movie_id = $1
        ORDER BY r.created_at DESC, r.id DESC
    `
	return r.listExpanded(ctx, query, movieID)
}

// ListAll returns every review newest first, usernames resolved. Used by the
// admin dashboard.
func (r *ReviewsRepository) ListAll(ctx context.Context) ([]domain.Review, error) {
	const query = `
        SELECT r.id, r.user_id, r.movie_id, r.rating, r.review_text, r.created_at,
               COALESCE(u.username, '') AS username
        FROM reviews r
        LEFT JOIN users u ON u.id = r.user_id
        ORDER BY r.created_at DESC, r.id DESC
    `
	return r.listExpanded(ctx, query)
}

func (r *ReviewsRepository) listExpanded(ctx context.Context, query string, args ...interface{}) ([]domain.Review, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		var review domain.Review
		err := rows.Scan(
			&review.ID,
			&review.UserID,
			&review.MovieID,
			&review.Rating,
			&review.ReviewText,
			&review.CreatedAt,
			&review.Username,
		)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

func scanReview(row pgx.Row) (domain.Review, error) {
	var review domain.Review
	err := row.Scan(
		&review.ID,
		&review.UserID,
		&review.MovieID,
		&review.Rating,
		&review.ReviewText,
		&review.CreatedAt,
	)
	if err != nil {
		return domain.Review{}, err
	}
	return review, nil
}
