package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cinelog/cinelog/internal/domain"
	"github.com/cinelog/cinelog/internal/metadata"
	"github.com/cinelog/cinelog/internal/repository"
)

type movieCreateRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=300"`
	Genre       []string `json:"genre" validate:"omitempty,dive,min=1"`
	ReleaseYear int      `json:"releaseYear" validate:"omitempty,gte=1878"`
	Director    string   `json:"director"`
	Cast        []string `json:"cast"`
	Synopsis    string   `json:"synopsis"`
	PosterURL   string   `json:"posterUrl" validate:"omitempty,url"`
}

type movieResponse struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Genre         []string `json:"genre"`
	ReleaseYear   int      `json:"releaseYear,omitempty"`
	Director      string   `json:"director,omitempty"`
	Cast          []string `json:"cast,omitempty"`
	Synopsis      string   `json:"synopsis,omitempty"`
	PosterURL     string   `json:"posterUrl,omitempty"`
	AverageRating float64  `json:"averageRating"`
}

type movieListResponse struct {
	Movies      []movieResponse `json:"movies"`
	TotalPages  int             `json:"totalPages"`
	CurrentPage int             `json:"currentPage"`
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	filters, err := buildCatalogFilters(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	result, err := s.repo.Movies.List(r.Context(), filters)
	if err != nil {
		s.logger.Printf("list movies error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list movies")
		return
	}

	items := make([]movieResponse, 0, len(result.Items))
	for _, movie := range result.Items {
		items = append(items, toMovieResponse(movie))
	}

	s.respondJSON(w, http.StatusOK, movieListResponse{
		Movies:      items,
		TotalPages:  result.TotalPages,
		CurrentPage: filters.Page,
	})
}

// buildCatalogFilters parses page/pageSize/genre/search query parameters.
// Page and pageSize must be positive integers when supplied; pageSize has no
// upper bound.
func buildCatalogFilters(query url.Values) (repository.MovieListFilters, error) {
	filters := repository.MovieListFilters{Page: 1, PageSize: 10}

	if val := strings.TrimSpace(query.Get("page")); val != "" {
		page, err := strconv.Atoi(val)
		if err != nil || page < 1 {
			return filters, fmt.Errorf("invalid page value")
		}
		filters.Page = page
	}
	if val := strings.TrimSpace(query.Get("pageSize")); val != "" {
		size, err := strconv.Atoi(val)
		if err != nil || size < 1 {
			return filters, fmt.Errorf("invalid pageSize value")
		}
		filters.PageSize = size
	}
	if val := strings.TrimSpace(query.Get("genre")); val != "" {
		filters.Genre = &val
	}
	if val := strings.TrimSpace(query.Get("search")); val != "" {
		filters.Search = &val
	}
	return filters, nil
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	movie, err := s.repo.Movies.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Movie not found")
			return
		}
		s.logger.Printf("get movie error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch movie")
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieResponse(movie))
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	var req movieCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if !s.validateStruct(w, req) {
		return
	}

	movie, err := s.repo.Movies.Create(r.Context(), repository.MovieCreateParams{
		Title:       strings.TrimSpace(req.Title),
		Genres:      req.Genre,
		ReleaseYear: req.ReleaseYear,
		Director:    strings.TrimSpace(req.Director),
		Cast:        req.Cast,
		Synopsis:    req.Synopsis,
		PosterURL:   req.PosterURL,
	})
	if err != nil {
		s.logger.Printf("create movie error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create movie")
		return
	}

	enriched := s.enrichMovieMetadata(r.Context(), movie)

	w.Header().Set("Location", fmt.Sprintf("/api/movies/%s", url.PathEscape(enriched.ID)))
	s.respondJSON(w, http.StatusCreated, toMovieResponse(enriched))
}

// enrichMovieMetadata asks the upstream metadata service for fields the admin
// left blank. Enrichment is best-effort: any failure returns the movie as
// created.
func (s *Server) enrichMovieMetadata(ctx context.Context, movie domain.Movie) domain.Movie {
	if movie.Director != "" && movie.Synopsis != "" && movie.PosterURL != "" && len(movie.Cast) > 0 {
		return movie
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.MetadataTimeoutSecs)*time.Second)
	defer cancel()

	result, err := s.metadata.Fetch(ctx, movie.Title)
	if err != nil {
		if !errors.Is(err, metadata.ErrNotFound) {
			s.logger.Printf("metadata fetch failed for %s: %v", movie.Title, err)
		}
		return movie
	}

	var director, synopsis, poster *string
	if movie.Director == "" {
		director = result.Director
	}
	if movie.Synopsis == "" {
		synopsis = result.Synopsis
	}
	if movie.PosterURL == "" {
		poster = result.PosterURL
	}
	var cast []string
	if len(movie.Cast) == 0 && len(result.Cast) > 0 {
		cast = result.Cast
	}
	if director == nil && synopsis == nil && poster == nil && cast == nil {
		return movie
	}

	updated, err := s.repo.Movies.UpdateMetadata(ctx, movie.ID, director, synopsis, poster, cast)
	if err != nil {
		s.logger.Printf("update movie metadata failed: %v", err)
		return movie
	}
	return updated
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	err := s.repo.Movies.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Movie not found")
			return
		}
		s.logger.Printf("delete movie error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete movie")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Movie removed"})
}

func toMovieResponse(movie domain.Movie) movieResponse {
	return movieResponse{
		ID:            movie.ID,
		Title:         movie.Title,
		Genre:         movie.Genres,
		ReleaseYear:   movie.ReleaseYear,
		Director:      movie.Director,
		Cast:          movie.Cast,
		Synopsis:      movie.Synopsis,
		PosterURL:     movie.PosterURL,
		AverageRating: movie.AverageRating,
	}
}
