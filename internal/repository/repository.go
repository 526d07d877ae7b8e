package repository

import (
	"context"

	"github.com/utafrali/communityshop/internal/domain"
)

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product into the store.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product with its owner summary. Reviews are not loaded.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns one page of products matching q along with the total
	// number of matches before pagination.
	List(ctx context.Context, q domain.ProductQuery) ([]domain.Product, int, error)

	// Update writes the mutable fields of an existing product.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product and, by cascade, its reviews.
	Delete(ctx context.Context, id string) error
}

// ReviewRepository defines the interface for review persistence operations.
type ReviewRepository interface {
	// ListByProductID returns all reviews of a product, newest first.
	ListByProductID(ctx context.Context, productID string) ([]domain.Review, error)

	// Create inserts the review and stores the product's recomputed
	// aggregates in one transaction.
	Create(ctx context.Context, review *domain.Review, product *domain.Product) error
}

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}
