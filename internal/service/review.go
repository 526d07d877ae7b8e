package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/communityshop/internal/domain"
	"github.com/utafrali/communityshop/internal/repository"
	apperrors "github.com/utafrali/communityshop/pkg/errors"
)

// ReviewService implements the business logic for product reviews.
type ReviewService struct {
	products repository.ProductRepository
	reviews  repository.ReviewRepository
	users    repository.UserRepository
	cache    ProductCache
	events   ProductEvents
	logger   *slog.Logger
	now      func() time.Time
}

// NewReviewService creates a new review service.
func NewReviewService(
	products repository.ProductRepository,
	reviews repository.ReviewRepository,
	users repository.UserRepository,
	cache ProductCache,
	events ProductEvents,
	logger *slog.Logger,
) *ReviewService {
	if cache == nil {
		cache = noCache{}
	}
	return &ReviewService{
		products: products,
		reviews:  reviews,
		users:    users,
		cache:    cache,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// AddReview records the caller's review of a product and returns the product
// with its refreshed review list and aggregates. The reviewer's username is
// copied from their profile.
func (s *ReviewService) AddReview(ctx context.Context, callerID, productID string, input domain.AddReviewInput) (*domain.Product, error) {
	if callerID == "" {
		return nil, apperrors.Unauthorized("authentication required")
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	existing, err := s.reviews.ListByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}
	product.Reviews = existing

	reviewer, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("user no longer exists")
		}
		return nil, fmt.Errorf("get reviewer: %w", err)
	}

	review, err := domain.NewReview(uuid.New().String(), reviewer, input, s.now().UTC())
	if err != nil {
		return nil, err
	}

	if err := product.AddReview(review); err != nil {
		return nil, err
	}
	last := len(product.Reviews) - 1
	added := product.Reviews[last]

	if err := s.reviews.Create(ctx, &added, product); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	// Keep the newest-first order the repository returns.
	product.Reviews = append([]domain.Review{added}, product.Reviews[:last]...)

	if err := s.cache.Invalidate(ctx, productID); err != nil {
		s.logger.WarnContext(ctx, "failed to evict product from cache",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.events.PublishProductReviewed(ctx, product, &added); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.reviewed event",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review added",
		slog.String("review_id", added.ID),
		slog.String("product_id", productID),
		slog.Int("rating", added.Rating),
	)

	return product, nil
}

// ListReviews returns a product's reviews, newest first, with their summary.
func (s *ReviewService) ListReviews(ctx context.Context, productID string) (*domain.ProductReviews, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	reviews, err := s.reviews.ListByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	return &domain.ProductReviews{
		Reviews:       reviews,
		ReviewSummary: domain.Summarize(reviews),
	}, nil
}
