package repository

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cinelog/cinelog/internal/domain"
)

// MoviesRepository provides persistence helpers for movie entities.
type MoviesRepository struct {
	pool *pgxpool.Pool
}

const movieColumns = `
    id,
    title,
    genres,
    release_year,
    director,
    cast_members,
    synopsis,
    poster_url,
    average_rating,
    created_at,
    updated_at
`

// MovieCreateParams bundles the fields required to create a movie.
type MovieCreateParams struct {
	Title       string
	Genres      []string
	ReleaseYear int
	Director    string
	Cast        []string
	Synopsis    string
	PosterURL   string
}

// MovieListFilters encapsulates catalog search and pagination options. Page
// and PageSize are 1-based; genre matches exact membership in the movie's
// genre list and Search matches a case-insensitive title substring.
type MovieListFilters struct {
	Genre    *string
	Search   *string
	Page     int
	PageSize int
}

// MovieListResult returns one catalog page plus the total page count.
type MovieListResult struct {
	Items      []domain.Movie
	TotalPages int
}

// Create inserts a new movie row and returns the stored entity.
func (r *MoviesRepository) Create(ctx context.Context, params MovieCreateParams) (domain.Movie, error) {
	query := fmt.Sprintf(`
        INSERT INTO movies (id, title, genres, release_year, director, cast_members, synopsis, poster_url)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING %s
    `, movieColumns)

	row := r.pool.QueryRow(ctx, query,
		uuid.NewString(), params.Title, normalizeList(params.Genres), params.ReleaseYear,
		params.Director, normalizeList(params.Cast), params.Synopsis, params.PosterURL)
	return scanMovie(row)
}

// GetByID fetches a movie by its identifier.
func (r *MoviesRepository) GetByID(ctx context.Context, id string) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE id = $1`, movieColumns)
	movie, err := scanMovie(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

// Exists reports whether a movie with the given id is stored.
func (r *MoviesRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM movies WHERE id = $1`, id).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateMetadata fills optional descriptive fields that were missing at
// create time. Nil arguments leave the stored value untouched.
func (r *MoviesRepository) UpdateMetadata(ctx context.Context, id string, director, synopsis, posterURL *string, cast []string) (domain.Movie, error) {
	query := fmt.Sprintf(`
        UPDATE movies
        SET director = COALESCE($2, director),
            synopsis = COALESCE($3, synopsis),
            poster_url = COALESCE($4, poster_url),
            cast_members = COALESCE($5, cast_members),
            updated_at = now()
        WHERE id = $1
        RETURNING %s
    `, movieColumns)

	var castArg interface{}
	if cast != nil {
		castArg = cast
	}
	movie, err := scanMovie(r.pool.QueryRow(ctx, query, id, director, synopsis, posterURL, castArg))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

// SetAverageRating persists a recomputed average rating. Only the rating
// aggregator calls this. ErrNotFound is returned when the movie row has
// vanished so the caller can tolerate the orphaned recompute.
func (r *MoviesRepository) SetAverageRating(ctx context.Context, id string, average float64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE movies SET average_rating = $2, updated_at = now() WHERE id = $1`, id, average)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a movie row. Reviews referencing it are left in place.
func (r *MoviesRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns one page of movies matching the provided filters, plus the
// total page count for the match set.
func (r *MoviesRepository) List(ctx context.Context, filters MovieListFilters) (MovieListResult, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 10
	}

	where := make([]string, 0, 2)
	args := make([]interface{}, 0, 2)
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.Genre != nil && strings.TrimSpace(*filters.Genre) != "" {
		where = append(where, fmt.Sprintf("%s = ANY(genres)", arg(strings.TrimSpace(*filters.Genre))))
	}
	if filters.Search != nil && strings.TrimSpace(*filters.Search) != "" {
		where = append(where, fmt.Sprintf("title ILIKE %s", arg("%"+strings.TrimSpace(*filters.Search)+"%")))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var count int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM movies"+clause, args...).Scan(&count); err != nil {
		return MovieListResult{}, fmt.Errorf("count movies: %w", err)
	}

	offset := (filters.Page - 1) * filters.PageSize
	query := fmt.Sprintf("SELECT %s FROM movies%s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d",
		movieColumns, clause, filters.PageSize, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return MovieListResult{}, err
	}
	defer rows.Close()

	items := make([]domain.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return MovieListResult{}, err
		}
		items = append(items, movie)
	}
	if err := rows.Err(); err != nil {
		return MovieListResult{}, err
	}

	return MovieListResult{
		Items:      items,
		TotalPages: int(math.Ceil(float64(count) / float64(filters.PageSize))),
	}, nil
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var movie domain.Movie
	err := row.Scan(
		&movie.ID,
		&movie.Title,
		&movie.Genres,
		&movie.ReleaseYear,
		&movie.Director,
		&movie.Cast,
		&movie.Synopsis,
		&movie.PosterURL,
		&movie.AverageRating,
		&movie.CreatedAt,
		&movie.UpdatedAt,
	)
	if err != nil {
		return domain.Movie{}, err
	}
	return movie, nil
}

func normalizeList(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
