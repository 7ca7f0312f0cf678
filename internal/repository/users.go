package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cinelog/cinelog/internal/domain"
)

// UsersRepository provides persistence helpers for user accounts. The
// watchlist is stored as a JSON document embedded in the user row, so
// watchlist mutations follow a read-document, mutate, write-document cycle.
type UsersRepository struct {
	pool *pgxpool.Pool
}

const userColumns = `
    id,
    username,
    email,
    password_hash,
    profile_picture,
    role,
    join_date,
    watchlist
`

// UserCreateParams bundles the fields required at registration.
type UserCreateParams struct {
	Username     string
	Email        string
	PasswordHash string
}

// Create inserts a new user with the default role and an empty watchlist.
// ErrConflict is returned when the username or email is already taken.
func (r *UsersRepository) Create(ctx context.Context, params UserCreateParams) (domain.User, error) {
	query := fmt.Sprintf(`
        INSERT INTO users (id, username, email, password_hash)
        VALUES ($1,$2,$3,$4)
        RETURNING %s
    `, userColumns)

	user, err := scanUser(r.pool.QueryRow(ctx, query, uuid.NewString(), params.Username, params.Email, params.PasswordHash))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, ErrConflict
		}
		return domain.User{}, err
	}
	return user, nil
}

// GetByID fetches a user by identifier.
func (r *UsersRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return r.getOne(ctx, query, id)
}

// GetByEmail fetches a user by email, used during login.
func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	return r.getOne(ctx, query, email)
}

func (r *UsersRepository) getOne(ctx context.Context, query string, arg interface{}) (domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// List returns all users, newest joiners first.
func (r *UsersRepository) List(ctx context.Context) ([]domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY join_date DESC`, userColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateProfile patches username and/or email. Nil fields are left untouched.
func (r *UsersRepository) UpdateProfile(ctx context.Context, id string, username, email *string) (domain.User, error) {
	query := fmt.Sprintf(`
        UPDATE users
        SET username = COALESCE($2, username),
            email = COALESCE($3, email)
        WHERE id = $1
        RETURNING %s
    `, userColumns)

	user, err := scanUser(r.pool.QueryRow(ctx, query, id, username, email))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.User{}, ErrNotFound
		}
		if isUniqueViolation(err) {
			return domain.User{}, ErrConflict
		}
		return domain.User{}, err
	}
	return user, nil
}

// SetRole updates a user's role. Role validity is checked by the caller.
func (r *UsersRepository) SetRole(ctx context.Context, id, role string) (domain.User, error) {
	query := fmt.Sprintf(`UPDATE users SET role = $2 WHERE id = $1 RETURNING %s`, userColumns)
	user, err := scanUser(r.pool.QueryRow(ctx, query, id, role))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// SetWatchlist writes back the full watchlist document for a user.
func (r *UsersRepository) SetWatchlist(ctx context.Context, id string, entries []domain.WatchlistEntry) error {
	if entries == nil {
		entries = []domain.WatchlistEntry{}
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal watchlist: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `UPDATE users SET watchlist = $2 WHERE id = $1`, id, payload)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user row. The caller is responsible for cascading the
// user's reviews.
func (r *UsersRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		user          domain.User
		watchlistJSON []byte
	)
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.ProfilePicture,
		&user.Role,
		&user.JoinDate,
		&watchlistJSON,
	)
	if err != nil {
		return domain.User{}, err
	}
	if len(watchlistJSON) > 0 {
		if err := json.Unmarshal(watchlistJSON, &user.Watchlist); err != nil {
			return domain.User{}, fmt.Errorf("unmarshal watchlist: %w", err)
		}
	}
	return user, nil
}
