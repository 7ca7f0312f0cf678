package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cinelog/cinelog/internal/domain"
	"github.com/cinelog/cinelog/internal/repository"
	"github.com/cinelog/cinelog/internal/watchlist"
)

type userResponse struct {
	ID             string                  `json:"id"`
	Username       string                  `json:"username"`
	Email          string                  `json:"email"`
	ProfilePicture string                  `json:"profilePicture,omitempty"`
	JoinDate       time.Time               `json:"joinDate"`
	Role           string                  `json:"role"`
	Watchlist      []domain.WatchlistEntry `json:"watchlist"`
}

type userUpdateRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=50"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

type watchlistEntryResponse struct {
	Movie     movieResponse `json:"movie"`
	DateAdded time.Time     `json:"dateAdded"`
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.repo.Users.GetByID(r.Context(), callerID(r))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
		s.logger.Printf("profile lookup error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch profile")
		return
	}
	s.respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.repo.Users.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
		s.logger.Printf("get user error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch user")
		return
	}
	s.respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "id")
	if targetID != callerID(r) {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "User not authorized")
		return
	}

	var req userUpdateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if !s.validateStruct(w, req) {
		return
	}

	if req.Email != nil {
		lowered := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &lowered
	}

	user, err := s.repo.Users.UpdateProfile(r.Context(), targetID, req.Username, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		case errors.Is(err, repository.ErrConflict):
			s.respondError(w, http.StatusConflict, "CONFLICT", "Username or email already in use")
		default:
			s.logger.Printf("update user error: %v", err)
			s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update user")
		}
		return
	}
	s.respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleGetWatchlist(w http.ResponseWriter, r *http.Request) {
	entries, err := s.watchlist.Get(r.Context(), callerID(r))
	if err != nil {
		s.respondWatchlistError(w, err, "Failed to fetch watchlist")
		return
	}
	s.respondJSON(w, http.StatusOK, toWatchlistResponse(entries))
}

func (s *Server) handleAddToWatchlist(w http.ResponseWriter, r *http.Request) {
	entries, err := s.watchlist.Add(r.Context(), callerID(r), chi.URLParam(r, "movieId"))
	if err != nil {
		s.respondWatchlistError(w, err, "Failed to update watchlist")
		return
	}
	s.respondJSON(w, http.StatusOK, toWatchlistResponse(entries))
}

func (s *Server) handleRemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	entries, err := s.watchlist.Remove(r.Context(), callerID(r), chi.URLParam(r, "movieId"))
	if err != nil {
		s.respondWatchlistError(w, err, "Failed to update watchlist")
		return
	}
	s.respondJSON(w, http.StatusOK, toWatchlistResponse(entries))
}

func (s *Server) respondWatchlistError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, watchlist.ErrAlreadyInWatchlist):
		s.respondError(w, http.StatusConflict, "CONFLICT", "Movie already in watchlist")
	case errors.Is(err, watchlist.ErrNotInWatchlist):
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Movie not found in watchlist")
	case errors.Is(err, repository.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	default:
		s.logger.Printf("watchlist operation error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}

func toWatchlistResponse(entries []watchlist.ExpandedEntry) []watchlistEntryResponse {
	items := make([]watchlistEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, watchlistEntryResponse{
			Movie:     toMovieResponse(entry.Movie),
			DateAdded: entry.DateAdded,
		})
	}
	return items
}

func toUserResponse(user domain.User) userResponse {
	watchlistEntries := user.Watchlist
	if watchlistEntries == nil {
		watchlistEntries = []domain.WatchlistEntry{}
	}
	return userResponse{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		ProfilePicture: user.ProfilePicture,
		JoinDate:       user.JoinDate,
		Role:           user.Role,
		Watchlist:      watchlistEntries,
	}
}
