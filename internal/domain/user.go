package domain

import "time"

// Roles a user account can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole reports whether the given role is one the platform recognises.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// WatchlistEntry is a (movie reference, dateAdded) pair embedded in a User.
// Entries are unique by MovieID within one user's watchlist.
type WatchlistEntry struct {
	MovieID   string    `json:"movieId"`
	DateAdded time.Time `json:"dateAdded"`
}

// User is a registered account. The watchlist is embedded in the user record
// and is only mutated through the watchlist manager.
type User struct {
	ID             string
	Username       string
	Email          string
	PasswordHash   string
	ProfilePicture string
	JoinDate       time.Time
	Role           string
	Watchlist      []WatchlistEntry
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
