package domain

import "time"

// Movie represents the canonical movie entity in the database/service.
// AverageRating is derived from the movie's review set and is written only
// by the rating aggregator, never directly by API clients.
type Movie struct {
	ID            string
	Title         string
	Genres        []string
	ReleaseYear   int
	Director      string
	Cast          []string
	Synopsis      string
	PosterURL     string
	AverageRating float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
