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
	"github.com/utafrali/communityshop/pkg/pagination"
	"github.com/utafrali/communityshop/pkg/validator"
)

// ProductEvents publishes product domain events.
type ProductEvents interface {
	PublishProductCreated(ctx context.Context, product *domain.Product) error
	PublishProductUpdated(ctx context.Context, product *domain.Product) error
	PublishProductDeleted(ctx context.Context, id string) error
	PublishProductReviewed(ctx context.Context, product *domain.Product, review *domain.Review) error
}

// ProductCache is a read-through cache for product details.
type ProductCache interface {
	GetOrLoad(ctx context.Context, id string, load func(ctx context.Context) (*domain.Product, error)) (*domain.Product, error)
	Invalidate(ctx context.Context, id string) error
}

// ProductService implements the business logic for product operations.
type ProductService struct {
	products repository.ProductRepository
	reviews  repository.ReviewRepository
	cache    ProductCache
	events   ProductEvents
	logger   *slog.Logger
	now      func() time.Time
}

// NewProductService creates a new product service. A nil cache reads
// straight from the repositories.
func NewProductService(
	products repository.ProductRepository,
	reviews repository.ReviewRepository,
	cache ProductCache,
	events ProductEvents,
	logger *slog.Logger,
) *ProductService {
	if cache == nil {
		cache = noCache{}
	}
	return &ProductService{
		products: products,
		reviews:  reviews,
		cache:    cache,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateProduct lists a new product owned by the caller.
func (s *ProductService) CreateProduct(ctx context.Context, callerID string, input domain.CreateProductInput) (*domain.Product, error) {
	if callerID == "" {
		return nil, apperrors.Unauthorized("authentication required")
	}

	input.Normalize()
	if err := validate(input); err != nil {
		return nil, err
	}

	product := domain.NewProduct(uuid.New().String(), callerID, input, s.now().UTC())

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if err := s.events.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("added_by", callerID),
	)

	return product, nil
}

// GetProduct returns a product with its owner and reviews.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.cache.GetOrLoad(ctx, id, func(ctx context.Context) (*domain.Product, error) {
		return s.loadProduct(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

func (s *ProductService) loadProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviews.ListByProductID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}
	product.Reviews = reviews

	return product, nil
}

// ListProducts returns one page of products matching q. With an origin,
// every product carries its distance in kilometers; MaxDistance and the
// nearest ordering apply to the fetched page only, and Total still counts
// every stored match.
func (s *ProductService) ListProducts(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error) {
	q.Params = q.Params.Normalize()
	if err := q.Validate(); err != nil {
		return nil, err
	}

	products, total, err := s.products.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	return &domain.ProductPage{
		Products:    rankByDistance(products, q),
		TotalPages:  pagination.TotalPages(total, q.Limit),
		CurrentPage: q.Page,
		Total:       total,
	}, nil
}

// UpdateProduct applies a partial update. Only the owner may update. decode
// fills in the payload and runs only after ownership is confirmed, so a
// non-owner is refused whatever they sent.
func (s *ProductService) UpdateProduct(ctx context.Context, callerID, id string, decode func(*domain.UpdateProductInput) error) (*domain.Product, error) {
	product, err := s.ownedProduct(ctx, callerID, id, "update")
	if err != nil {
		return nil, err
	}

	var input domain.UpdateProductInput
	if err := decode(&input); err != nil {
		return nil, err
	}
	input.Normalize()
	if err := validate(input); err != nil {
		return nil, err
	}

	product.Apply(input, s.now().UTC())

	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.evict(ctx, id)

	reviews, err := s.reviews.ListByProductID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}
	product.Reviews = reviews

	if err := s.events.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", product.ID),
	)

	return product, nil
}

// DeleteProduct removes a product and its reviews. Only the owner may delete.
func (s *ProductService) DeleteProduct(ctx context.Context, callerID, id string) error {
	if _, err := s.ownedProduct(ctx, callerID, id, "delete"); err != nil {
		return err
	}

	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.evict(ctx, id)

	if err := s.events.PublishProductDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
	)

	return nil
}

// ownedProduct loads id and checks that callerID owns it.
func (s *ProductService) ownedProduct(ctx context.Context, callerID, id, action string) (*domain.Product, error) {
	if callerID == "" {
		return nil, apperrors.Unauthorized("authentication required")
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	if !product.IsOwnedBy(callerID) {
		s.logger.WarnContext(ctx, "product ownership check failed",
			slog.String("product_id", id),
			slog.String("action", action),
		)
		return nil, apperrors.Forbidden(fmt.Sprintf("Not authorized to %s this product", action))
	}

	return product, nil
}

// evict drops a product from the cache. A failure is only logged; the
// cache-invalidation consumer evicts again when the event arrives.
func (s *ProductService) evict(ctx context.Context, id string) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "failed to evict product from cache",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}
}

// validate runs struct validation and converts failures to a ValidationError.
func validate(v any) error {
	err := validator.Validate(v)
	if err == nil {
		return nil
	}
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		return valErr.AppError()
	}
	return apperrors.InvalidInput(err.Error())
}

type noCache struct{}

func (noCache) GetOrLoad(ctx context.Context, _ string, load func(ctx context.Context) (*domain.Product, error)) (*domain.Product, error) {
	return load(ctx)
}

func (noCache) Invalidate(context.Context, string) error { return nil }
