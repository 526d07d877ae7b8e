package domain

import (
	"math"
	"strings"
	"time"

	apperrors "github.com/utafrali/communityshop/pkg/errors"
)

// Rating bounds for both rating and serviceRating.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is a user's rating of a product. Username is copied from the
// reviewer's profile when the review is written.
type Review struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"productId"`
	UserID        string    `json:"userId"`
	Username      string    `json:"username"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment"`
	ServiceRating *int      `json:"serviceRating,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// AddReviewInput carries the fields a reviewer submits. Ratings arrive as
// JSON numbers and must be whole.
type AddReviewInput struct {
	Rating        float64  `json:"rating"`
	Comment       string   `json:"comment"`
	ServiceRating *float64 `json:"serviceRating,omitempty"`
}

// ReviewSummary contains aggregate review statistics for a product.
type ReviewSummary struct {
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int     `json:"reviewCount"`
}

// ProductReviews is the response for listing a product's reviews.
type ProductReviews struct {
	Reviews []Review `json:"reviews"`
	ReviewSummary
}

func validRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

func wholeRating(field string, v float64) (int, error) {
	if v != math.Trunc(v) || v < MinRating || v > MaxRating {
		return 0, apperrors.InvalidRating(field, v)
	}
	return int(v), nil
}

// NewReview builds reviewer's review from in. Fractional or out-of-range
// ratings fail with an InvalidRating error.
func NewReview(id string, reviewer *User, in AddReviewInput, now time.Time) (Review, error) {
	rating, err := wholeRating("rating", in.Rating)
	if err != nil {
		return Review{}, err
	}
	r := Review{
		ID:        id,
		UserID:    reviewer.ID,
		Username:  reviewer.Username,
		Rating:    rating,
		Comment:   in.Comment,
		CreatedAt: now,
	}
	if in.ServiceRating != nil {
		service, err := wholeRating("serviceRating", *in.ServiceRating)
		if err != nil {
			return Review{}, err
		}
		r.ServiceRating = &service
	}
	return r, nil
}

// AddReview validates r and attaches it to the product, then recomputes the
// aggregates. A rejected review leaves the product unchanged.
func (p *Product) AddReview(r Review) error {
	if !validRating(r.Rating) {
		return apperrors.InvalidRating("rating", float64(r.Rating))
	}
	if r.ServiceRating != nil && !validRating(*r.ServiceRating) {
		return apperrors.InvalidRating("serviceRating", float64(*r.ServiceRating))
	}
	r.Comment = strings.TrimSpace(r.Comment)
	if r.Comment == "" {
		return apperrors.MissingField("comment")
	}
	if p.HasReviewFrom(r.UserID) {
		return apperrors.DuplicateReview(p.ID)
	}

	r.ProductID = p.ID
	p.Reviews = append(p.Reviews, r)
	p.RecomputeAggregates()
	p.UpdatedAt = r.CreatedAt
	return nil
}

// HasReviewFrom reports whether userID already reviewed the product.
func (p *Product) HasReviewFrom(userID string) bool {
	for _, r := range p.Reviews {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// RecomputeAggregates derives ReviewCount and AverageRating from Reviews.
// serviceRating does not contribute to the average.
func (p *Product) RecomputeAggregates() {
	s := Summarize(p.Reviews)
	p.ReviewCount = s.ReviewCount
	p.AverageRating = s.AverageRating
}

// Summarize returns the arithmetic mean of ratings and the review count.
// The mean of an empty list is 0.
func Summarize(reviews []Review) ReviewSummary {
	if len(reviews) == 0 {
		return ReviewSummary{}
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return ReviewSummary{
		AverageRating: float64(sum) / float64(len(reviews)),
		ReviewCount:   len(reviews),
	}
}
