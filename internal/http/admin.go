package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cinelog/cinelog/internal/domain"
	"github.com/cinelog/cinelog/internal/repository"
)

type roleUpdateRequest struct {
	Role string `json:"role" validate:"required"`
}

func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.repo.Users.List(r.Context())
	if err != nil {
		s.logger.Printf("admin list users error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list users")
		return
	}

	items := make([]userResponse, 0, len(users))
	for _, user := range users {
		items = append(items, toUserResponse(user))
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleAdminListReviews(w http.ResponseWriter, r *http.Request) {
	list, err := s.repo.Reviews.ListAll(r.Context())
	if err != nil {
		s.logger.Printf("admin list reviews error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list reviews")
		return
	}

	items := make([]reviewResponse, 0, len(list))
	for _, review := range list {
		items = append(items, toReviewResponse(review))
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleSetUserRole(w http.ResponseWriter, r *http.Request) {
	var req roleUpdateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if !s.validateStruct(w, req) {
		return
	}
	if !domain.ValidRole(req.Role) {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "role must be one of user, admin")
		return
	}

	user, err := s.repo.Users.SetRole(r.Context(), chi.URLParam(r, "id"), req.Role)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
		s.logger.Printf("set user role error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update role")
		return
	}
	s.respondJSON(w, http.StatusOK, toUserResponse(user))
}

// handleAdminDeleteUser removes the account and cascades to the user's
// reviews, recomputing each affected movie's average.
func (s *Server) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	if err := s.repo.Users.Delete(r.Context(), userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
		s.logger.Printf("delete user error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete user")
		return
	}

	if err := s.reviews.DeleteAllByUser(r.Context(), userID); err != nil {
		s.logger.Printf("cascade delete reviews for user %s: %v", userID, err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete user's reviews")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}
