package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cinelog/cinelog/internal/domain"
	"github.com/cinelog/cinelog/internal/repository"
	"github.com/cinelog/cinelog/internal/reviews"
)

type reviewCreateRequest struct {
	Rating     int    `json:"rating" validate:"required,gte=1,lte=5"`
	ReviewText string `json:"reviewText" validate:"required,min=1,max=5000"`
}

// reviewUpdateRequest uses pointers so an absent field is distinguishable
// from one explicitly set: only supplied fields are patched.
type reviewUpdateRequest struct {
	Rating     *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
	ReviewText *string `json:"reviewText" validate:"omitempty,max=5000"`
}

type reviewResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user"`
	MovieID    string    `json:"movie"`
	Rating     int       `json:"rating"`
	ReviewText string    `json:"reviewText"`
	Username   string    `json:"username,omitempty"`
	CreatedAt  time.Time `json:"timestamp"`
}

func (s *Server) handleListMovieReviews(w http.ResponseWriter, r *http.Request) {
	movieID := chi.URLParam(r, "id")

	list, err := s.repo.Reviews.ListByMovie(r.Context(), movieID)
	if err != nil {
		s.logger.Printf("list reviews error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list reviews")
		return
	}

	items := make([]reviewResponse, 0, len(list))
	for _, review := range list {
		items = append(items, toReviewResponse(review))
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	movieID := chi.URLParam(r, "id")

	var req reviewCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if !s.validateStruct(w, req) {
		return
	}

	review, err := s.reviews.Create(r.Context(), callerID(r), movieID, req.Rating, req.ReviewText)
	if err != nil {
		s.respondReviewError(w, err, "Failed to create review")
		return
	}
	if user, err := s.repo.Users.GetByID(r.Context(), review.UserID); err == nil {
		review.Username = user.Username
	}
	s.respondJSON(w, http.StatusCreated, toReviewResponse(review))
}

func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	reviewID := chi.URLParam(r, "id")

	if !s.authorizeReviewOwner(w, r, reviewID) {
		return
	}

	var req reviewUpdateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if !s.validateStruct(w, req) {
		return
	}

	review, err := s.reviews.Update(r.Context(), reviewID, reviews.Patch{
		Rating:     req.Rating,
		ReviewText: req.ReviewText,
	})
	if err != nil {
		s.respondReviewError(w, err, "Failed to update review")
		return
	}
	if user, err := s.repo.Users.GetByID(r.Context(), review.UserID); err == nil {
		review.Username = user.Username
	}
	s.respondJSON(w, http.StatusOK, toReviewResponse(review))
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	reviewID := chi.URLParam(r, "id")

	if !s.authorizeReviewOwner(w, r, reviewID) {
		return
	}

	if err := s.reviews.Delete(r.Context(), reviewID); err != nil {
		s.respondReviewError(w, err, "Failed to delete review")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Review removed"})
}

// authorizeReviewOwner answers the request itself when the review is missing
// or the caller neither owns it nor is an admin.
func (s *Server) authorizeReviewOwner(w http.ResponseWriter, r *http.Request, reviewID string) bool {
	if callerRole(r) == domain.RoleAdmin {
		return true
	}

	review, err := s.repo.Reviews.GetByID(r.Context(), reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Review not found")
			return false
		}
		s.logger.Printf("fetch review for authorization: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch review")
		return false
	}
	if review.UserID != callerID(r) {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Not authorized to modify this review")
		return false
	}
	return true
}

func (s *Server) respondReviewError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, reviews.ErrInvalidRating):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "rating must be between 1 and 5")
	case errors.Is(err, reviews.ErrEmptyText):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "reviewText must not be empty")
	case errors.Is(err, repository.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	default:
		s.logger.Printf("review operation error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}

func toReviewResponse(review domain.Review) reviewResponse {
	username := review.Username
	if username == "" && review.UserID != "" {
		username = "deleted user"
	}
	return reviewResponse{
		ID:         review.ID,
		UserID:     review.UserID,
		MovieID:    review.MovieID,
		Rating:     review.Rating,
		ReviewText: review.ReviewText,
		Username:   username,
		CreatedAt:  review.CreatedAt,
	}
}
