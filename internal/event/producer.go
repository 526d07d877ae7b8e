package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/communityshop/internal/domain"
	pkgkafka "github.com/utafrali/communityshop/pkg/kafka"
	"github.com/utafrali/communityshop/pkg/logger"
)

// Kafka topics for product domain events.
var (
	TopicProductCreated  = pkgkafka.Topic("product", "created")
	TopicProductUpdated  = pkgkafka.Topic("product", "updated")
	TopicProductDeleted  = pkgkafka.Topic("product", "deleted")
	TopicProductReviewed = pkgkafka.Topic("product", "reviewed")
)

// ProductTopics lists every topic a product change is announced on.
func ProductTopics() []string {
	return []string{TopicProductCreated, TopicProductUpdated, TopicProductDeleted, TopicProductReviewed}
}

// AggregateTypeProduct is the aggregate type of all product events.
const AggregateTypeProduct = "product"

// SourceAPI identifies events emitted by this service.
const SourceAPI = "communityshop-api"

// ProductData is the payload for product.created and product.updated events.
type ProductData struct {
	ID       string  `json:"id"`
	Category string  `json:"category"`
	Brand    string  `json:"brand"`
	Model    string  `json:"model"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ShopTown string  `json:"shop_town"`
	AddedBy  string  `json:"added_by"`
}

// ProductDeletedData is the payload for a product.deleted event.
type ProductDeletedData struct {
	ID string `json:"id"`
}

// ProductReviewedData is the payload for a product.reviewed event.
type ProductReviewedData struct {
	ProductID     string  `json:"product_id"`
	ReviewID      string  `json:"review_id"`
	UserID        string  `json:"user_id"`
	Rating        int     `json:"rating"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

// Publisher is the Kafka producer surface used by Producer.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes product domain events to Kafka.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func productData(p *domain.Product) ProductData {
	return ProductData{
		ID:       p.ID,
		Category: p.Category,
		Brand:    p.Brand,
		Model:    p.Model,
		Name:     p.Name,
		Price:    p.Price,
		ShopTown: p.ShopTown,
		AddedBy:  p.AddedBy,
	}
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductCreated, product.ID, productData(product))
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductUpdated, product.ID, productData(product))
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, id string) error {
	return p.publish(ctx, TopicProductDeleted, id, ProductDeletedData{ID: id})
}

// PublishProductReviewed publishes a product.reviewed event carrying the new aggregates.
func (p *Producer) PublishProductReviewed(ctx context.Context, product *domain.Product, review *domain.Review) error {
	return p.publish(ctx, TopicProductReviewed, product.ID, ProductReviewedData{
		ProductID:     product.ID,
		ReviewID:      review.ID,
		UserID:        review.UserID,
		Rating:        review.Rating,
		AverageRating: product.AverageRating,
		ReviewCount:   product.ReviewCount,
	})
}

func (p *Producer) publish(ctx context.Context, topic, productID string, data any) error {
	event, err := pkgkafka.NewEvent(topic, productID, AggregateTypeProduct, SourceAPI, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	event.CorrelationID = logger.CorrelationIDFromContext(ctx)

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published product event",
		slog.String("topic", topic),
		slog.String("product_id", productID),
	)

	return nil
}
