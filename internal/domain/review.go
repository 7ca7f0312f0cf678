package domain

import "time"

// Review is a single user's rating and write-up for a movie. It holds weak
// references to its owning user and movie: either side may be deleted later
// without cascading here, so consumers must not assume both still resolve.
type Review struct {
	ID         string
	UserID     string
	MovieID    string
	Rating     int
	ReviewText string
	CreatedAt  time.Time

	// Username is populated from the users table when reviews are listed.
	// Empty when the owning user has been deleted.
	Username string
}
