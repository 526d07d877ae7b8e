package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/communityshop/pkg/errors"
)

func review(userID string, rating int) Review {
	return Review{
		ID:        "r-" + userID,
		UserID:    userID,
		Username:  "user " + userID,
		Rating:    rating,
		Comment:   "works fine",
		CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestAddReview_RecomputesAggregates(t *testing.T) {
	p := newTestProduct()

	require.NoError(t, p.AddReview(review("u1", 5)))
	require.NoError(t, p.AddReview(review("u2", 4)))
	require.NoError(t, p.AddReview(review("u3", 3)))

	assert.Equal(t, 3, p.ReviewCount)
	assert.InDelta(t, 4.0, p.AverageRating, 1e-9)
	assert.Equal(t, "p1", p.Reviews[0].ProductID)
	assert.Equal(t, p.Reviews[2].CreatedAt, p.UpdatedAt)
}

func TestAddReview_ServiceRatingIgnoredInAverage(t *testing.T) {
	p := newTestProduct()
	r := review("u1", 2)
	r.ServiceRating = ptr(5)

	require.NoError(t, p.AddReview(r))
	assert.Equal(t, 2.0, p.AverageRating)
}

func TestAddReview_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Review)
		sentinel error
		code     string
	}{
		{"rating too low", func(r *Review) { r.Rating = 0 }, apperrors.ErrInvalidRating, "INVALID_RATING"},
		{"rating too high", func(r *Review) { r.Rating = 6 }, apperrors.ErrInvalidRating, "INVALID_RATING"},
		{"service rating out of range", func(r *Review) { r.ServiceRating = ptr(9) }, apperrors.ErrInvalidRating, "INVALID_RATING"},
		{"blank comment", func(r *Review) { r.Comment = "   " }, apperrors.ErrMissingField, "MISSING_FIELD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProduct()
			require.NoError(t, p.AddReview(review("u1", 4)))
			before := *p
			before.Reviews = append([]Review{}, p.Reviews...)

			r := review("u2", 3)
			tt.mutate(&r)
			err := p.AddReview(r)

			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel))
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, before, *p)
		})
	}
}

func TestAddReview_DuplicateReviewer(t *testing.T) {
	p := newTestProduct()
	require.NoError(t, p.AddReview(review("u1", 5)))

	err := p.AddReview(review("u1", 1))

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateReview)
	assert.Equal(t, 1, p.ReviewCount)
	assert.Equal(t, 5.0, p.AverageRating)
}

func TestRecomputeAggregates_Empty(t *testing.T) {
	p := newTestProduct()
	p.ReviewCount = 7
	p.AverageRating = 3.3

	p.RecomputeAggregates()

	assert.Zero(t, p.ReviewCount)
	assert.Zero(t, p.AverageRating)
}

func TestSummarize_MeanStaysInRange(t *testing.T) {
	reviews := []Review{review("a", 1), review("b", 5), review("c", 5), review("d", 2)}
	s := Summarize(reviews)

	assert.Equal(t, 4, s.ReviewCount)
	assert.InDelta(t, 3.25, s.AverageRating, 1e-9)
	assert.GreaterOrEqual(t, s.AverageRating, 0.0)
	assert.LessOrEqual(t, s.AverageRating, 5.0)
}

func TestNewReview(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	reviewer := &User{ID: "u7", Username: "deniz"}

	r, err := NewReview("r1", reviewer, AddReviewInput{Rating: 4, Comment: "fine", ServiceRating: ptr(2.0)}, now)
	require.NoError(t, err)

	assert.Equal(t, Review{
		ID:            "r1",
		UserID:        "u7",
		Username:      "deniz",
		Rating:        4,
		Comment:       "fine",
		ServiceRating: ptr(2),
		CreatedAt:     now,
	}, r)
}

func TestNewReview_RejectsFractionalRatings(t *testing.T) {
	reviewer := &User{ID: "u7", Username: "deniz"}

	tests := []struct {
		name  string
		in    AddReviewInput
		field string
	}{
		{"rating", AddReviewInput{Rating: 4.5, Comment: "ok"}, "rating"},
		{"service rating", AddReviewInput{Rating: 4, Comment: "ok", ServiceRating: ptr(2.5)}, "serviceRating"},
		{"service rating above range", AddReviewInput{Rating: 4, Comment: "ok", ServiceRating: ptr(5.0001)}, "serviceRating"},
		{"rating below range", AddReviewInput{Rating: 0.9, Comment: "ok"}, "rating"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReview("r1", reviewer, tt.in, time.Now())

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "INVALID_RATING", appErr.Code)
			assert.Contains(t, appErr.Fields, tt.field)
		})
	}
}
