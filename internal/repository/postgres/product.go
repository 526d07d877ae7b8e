package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/utafrali/communityshop/internal/domain"
	"github.com/utafrali/communityshop/pkg/database"
	apperrors "github.com/utafrali/communityshop/pkg/errors"
)

const productColumns = `
		p.id, p.category, p.brand, p.model, p.name, p.price, p.warranty, p.customer_service,
		p.added_by, COALESCE(u.username, ''), p.shop_name, p.shop_address, p.shop_town,
		p.shop_latitude, p.shop_longitude, p.images, p.average_rating, p.review_count,
		p.created_at, p.updated_at`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create inserts a new product into the database.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	query := `
		INSERT INTO products (id, category, brand, model, name, price, warranty, customer_service,
			added_by, shop_name, shop_address, shop_town, shop_latitude, shop_longitude, images,
			average_rating, review_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	ctx, end := database.TraceQuery(ctx, "CreateProduct", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query,
		p.ID,
		p.Category,
		p.Brand,
		p.Model,
		p.Name,
		p.Price,
		p.Warranty,
		p.CustomerService,
		p.AddedBy,
		p.ShopName,
		p.ShopAddress,
		p.ShopTown,
		p.ShopLatitude,
		p.ShopLongitude,
		p.Images,
		p.AverageRating,
		p.ReviewCount,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return apperrors.AlreadyExists("product", "id", p.ID)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product and its owner's username.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (_ *domain.Product, err error) {
	query := `SELECT` + productColumns + `
		FROM products p
		LEFT JOIN users u ON u.id = p.added_by
		WHERE p.id = $1`

	ctx, end := database.TraceQuery(ctx, "GetProduct", query)
	defer func() { end(err) }()

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return p, nil
}

// List returns the page of products selected by q with the pre-pagination total.
func (r *ProductRepository) List(ctx context.Context, q domain.ProductQuery) (_ []domain.Product, _ int, err error) {
	where, args := buildProductFilter(q)
	params := q.Params.Normalize()
	argIndex := len(args) + 1

	query := fmt.Sprintf(`SELECT`+productColumns+`,
		       count(*) OVER() AS total_count
		FROM products p
		LEFT JOIN users u ON u.id = p.added_by
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		where, orderBy(q.SortOrder()), argIndex, argIndex+1,
	)
	args = append(args, params.Limit, params.Offset())

	ctx, end := database.TraceQuery(ctx, "ListProducts", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var (
		products   []domain.Product
		totalCount int
	)

	for rows.Next() {
		p, err := scanProduct(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	if products == nil {
		products = []domain.Product{}
		// A page past the end carries no window count.
		if params.Offset() > 0 {
			totalCount, err = r.count(ctx, where, args[:len(args)-2])
			if err != nil {
				return nil, 0, err
			}
		}
	}

	return products, totalCount, nil
}

func (r *ProductRepository) count(ctx context.Context, where string, args []any) (int, error) {
	query := "SELECT count(*) FROM products p " + where

	var total int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

// Update writes the mutable fields of a product. Owner, aggregates and
// created_at are left untouched.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (err error) {
	query := `
		UPDATE products
		SET category = $1, brand = $2, model = $3, name = $4, price = $5, warranty = $6,
		    customer_service = $7, shop_name = $8, shop_address = $9, shop_town = $10,
		    shop_latitude = $11, shop_longitude = $12, images = $13, updated_at = $14
		WHERE id = $15`

	ctx, end := database.TraceQuery(ctx, "UpdateProduct", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query,
		p.Category,
		p.Brand,
		p.Model,
		p.Name,
		p.Price,
		p.Warranty,
		p.CustomerService,
		p.ShopName,
		p.ShopAddress,
		p.ShopTown,
		p.ShopLatitude,
		p.ShopLongitude,
		p.Images,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}

	return nil
}

// Delete removes a product. Its reviews are removed by ON DELETE CASCADE.
func (r *ProductRepository) Delete(ctx context.Context, id string) (err error) {
	query := `DELETE FROM products WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteProduct", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}

	return nil
}

// buildProductFilter translates q into a WHERE clause with positional args.
func buildProductFilter(q domain.ProductQuery) (string, []any) {
	var (
		conditions []string
		args       []any
	)

	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if q.Category != "" {
		add("p.category = $%d", q.Category)
	}
	if q.Brand != "" {
		add("p.brand ILIKE $%d", contains(q.Brand))
	}
	if q.Model != "" {
		add("p.model ILIKE $%d", contains(q.Model))
	}
	if q.Town != "" {
		add("p.shop_town ILIKE $%d", contains(q.Town))
	}
	if q.MinPrice != nil {
		add("p.price >= $%d", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		add("p.price <= $%d", *q.MaxPrice)
	}
	if q.MinWarranty != nil {
		add("p.warranty >= $%d", *q.MinWarranty)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func contains(s string) string {
	return "%" + domain.EscapeLike(s) + "%"
}

// orderBy returns a deterministic ORDER BY for o; id breaks remaining ties.
func orderBy(o domain.SortOrder) string {
	switch o {
	case domain.SortPriceAsc:
		return "p.price ASC, p.created_at DESC, p.id DESC"
	case domain.SortWarrantyDesc:
		return "p.warranty DESC, p.created_at DESC, p.id DESC"
	default:
		return "p.created_at DESC, p.id DESC"
	}
}

// scanProduct reads one product row. Extra destinations, such as a window
// count, are scanned after the product columns.
func scanProduct(row pgx.Row, extra ...any) (*domain.Product, error) {
	var (
		p        domain.Product
		username string
	)

	dest := []any{
		&p.ID,
		&p.Category,
		&p.Brand,
		&p.Model,
		&p.Name,
		&p.Price,
		&p.Warranty,
		&p.CustomerService,
		&p.AddedBy,
		&username,
		&p.ShopName,
		&p.ShopAddress,
		&p.ShopTown,
		&p.ShopLatitude,
		&p.ShopLongitude,
		&p.Images,
		&p.AverageRating,
		&p.ReviewCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	p.ProductID = p.ID
	p.Owner = &domain.Owner{ID: p.AddedBy, Username: username}
	if p.Images == nil {
		p.Images = []string{}
	}
	p.Reviews = []domain.Review{}
	return &p, nil
}

// uniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505) and returns the violated constraint's name.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName, true
	}
	return "", false
}
