package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/communityshop/internal/domain"
	"github.com/utafrali/communityshop/pkg/httputil"
)

// ReviewService is the review use-case surface the handlers call.
type ReviewService interface {
	AddReview(ctx context.Context, callerID, productID string, input domain.AddReviewInput) (*domain.Product, error)
	ListReviews(ctx context.Context, productID string) (*domain.ProductReviews, error)
}

// ReviewHandler handles HTTP requests for product review endpoints.
type ReviewHandler struct {
	service ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: svc,
		logger:  logger,
	}
}

// ListReviews handles GET /api/products/{id}/reviews
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	reviews, err := h.service.ListReviews(r.Context(), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, reviews)
}

// AddReview handles POST /api/products/{id}/reviews and responds with the
// product including its refreshed reviews and aggregates.
func (h *ReviewHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var input domain.AddReviewInput
	if !decodeJSON(w, r, &input) {
		return
	}

	product, err := h.service.AddReview(r.Context(), callerID(r), productID, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, product)
}
