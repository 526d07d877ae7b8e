package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/communityshop/internal/domain"
	"github.com/utafrali/communityshop/pkg/database"
	apperrors "github.com/utafrali/communityshop/pkg/errors"
)

// ReviewRepository implements review persistence operations using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts the review and recomputes the product's aggregate columns in
// the same transaction, writing the stored values back into p. A second review by the same user violates
// product_reviews_product_id_user_id_key and maps to DuplicateReview.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review, p *domain.Product) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateReview", "INSERT INTO product_reviews")
	defer func() { end(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin review tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	insert := `
		INSERT INTO product_reviews (id, product_id, user_id, username, rating, comment, service_rating, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = tx.Exec(ctx, insert,
		review.ID,
		review.ProductID,
		review.UserID,
		review.Username,
		review.Rating,
		review.Comment,
		review.ServiceRating,
		review.CreatedAt,
	)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return apperrors.DuplicateReview(review.ProductID)
		}
		return fmt.Errorf("insert review: %w", err)
	}

	// Aggregates are derived from the stored rows so concurrent reviews
	// cannot overwrite each other's counts.
	update := `
		UPDATE products
		SET average_rating = (
				SELECT COALESCE(AVG(rating), 0)::double precision
				FROM product_reviews WHERE product_id = $1),
			review_count = (
				SELECT count(*) FROM product_reviews WHERE product_id = $1),
			updated_at = $2
		WHERE id = $1
		RETURNING average_rating, review_count`

	err = tx.QueryRow(ctx, update, p.ID, p.UpdatedAt).Scan(&p.AverageRating, &p.ReviewCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("product", p.ID)
		}
		return fmt.Errorf("update product aggregates: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit review tx: %w", err)
	}

	return nil
}

// ListByProductID returns every review of a product, newest first.
func (r *ReviewRepository) ListByProductID(ctx context.Context, productID string) (_ []domain.Review, err error) {
	query := `
		SELECT id, product_id, user_id, username, rating, comment, service_rating, created_at
		FROM product_reviews
		WHERE product_id = $1
		ORDER BY created_at DESC, id DESC`

	ctx, end := database.TraceQuery(ctx, "ListReviews", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Review, error) {
		var rv domain.Review
		err := row.Scan(
			&rv.ID,
			&rv.ProductID,
			&rv.UserID,
			&rv.Username,
			&rv.Rating,
			&rv.Comment,
			&rv.ServiceRating,
			&rv.CreatedAt,
		)
		return rv, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, nil
}
