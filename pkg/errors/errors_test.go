package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Sentinel error identity ---

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrAlreadyExists, ErrInvalidInput, ErrValidation, ErrUnauthorized,
		ErrForbidden, ErrInternal, ErrConflict, ErrDuplicateReview,
		ErrInvalidRating, ErrMissingField,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

// --- AppError behavior ---

func TestAppError_ErrorString_WithWrappedError(t *testing.T) {
	inner := fmt.Errorf("db connection lost")
	appErr := &AppError{Code: "INTERNAL_ERROR", Message: "something broke", Err: inner}
	assert.Contains(t, appErr.Error(), "INTERNAL_ERROR")
	assert.Contains(t, appErr.Error(), "something broke")
	assert.Contains(t, appErr.Error(), "db connection lost")
}

func TestAppError_ErrorString_WithoutWrappedError(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "user not found"}
	assert.Equal(t, "NOT_FOUND: user not found", appErr.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "nope", Err: ErrNotFound}
	assert.True(t, errors.Is(appErr, ErrNotFound))
}

func TestAppError_Details_SortedByField(t *testing.T) {
	appErr := ValidationFailed(map[string]string{
		"price": "must be greater than 0",
		"brand": "is required",
	})

	assert.Equal(t, []string{"brand: is required", "price: must be greater than 0"}, appErr.Details())
}

func TestAppError_Details_NoFields(t *testing.T) {
	assert.Nil(t, NotFound("product", "p-1").Details())
}

// --- Constructor functions ---

func TestNotFound(t *testing.T) {
	err := NotFound("product", "abc-123")
	require.NotNil(t, err)
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Contains(t, err.Message, "product")
	assert.Contains(t, err.Message, "abc-123")
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAlreadyExists(t *testing.T) {
	err := AlreadyExists("user", "email", "a@b.com")
	require.NotNil(t, err)
	assert.Equal(t, "ALREADY_EXISTS", err.Code)
	assert.Contains(t, err.Message, "email")
	assert.Contains(t, err.Message, "a@b.com")
	assert.Equal(t, "already exists", err.Fields["email"])
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.True(t, errors.Is(err, ErrAlreadyExists))
}

func TestValidationFailed(t *testing.T) {
	err := ValidationFailed(map[string]string{"price": "must be greater than 0"})
	assert.Equal(t, "VALIDATION_ERROR", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Fields, "price")
}

func TestForbidden(t *testing.T) {
	err := Forbidden("not authorized to update this product")
	assert.Equal(t, "FORBIDDEN", err.Code)
	assert.Equal(t, http.StatusForbidden, err.Status)
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestDuplicateReview(t *testing.T) {
	err := DuplicateReview("prod-1")
	assert.Equal(t, "DUPLICATE_REVIEW", err.Code)
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.True(t, errors.Is(err, ErrDuplicateReview))
}

func TestInvalidRating(t *testing.T) {
	err := InvalidRating("rating", 7)
	assert.Equal(t, "INVALID_RATING", err.Code)
	assert.Contains(t, err.Message, "7")
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrInvalidRating))

	frac := InvalidRating("serviceRating", 2.5)
	assert.Equal(t, "serviceRating must be an integer between 1 and 5, got 2.5", frac.Message)
	assert.Equal(t, "must be an integer between 1 and 5", frac.Fields["serviceRating"])
}

func TestUnsupportedMediaType(t *testing.T) {
	err := UnsupportedMediaType("Content-Type must be application/json")
	assert.Equal(t, "UNSUPPORTED_MEDIA_TYPE", err.Code)
	assert.Equal(t, http.StatusUnsupportedMediaType, HTTPStatus(err))
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestMissingField(t *testing.T) {
	err := MissingField("comment")
	assert.Equal(t, "MISSING_FIELD", err.Code)
	assert.Equal(t, "comment is required", err.Message)
	assert.True(t, errors.Is(err, ErrMissingField))
}

func TestInternal(t *testing.T) {
	inner := fmt.Errorf("boom")
	err := Internal(inner)
	assert.Equal(t, "INTERNAL_ERROR", err.Code)
	assert.Equal(t, "an internal error occurred", err.Message)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.True(t, errors.Is(err, inner))
}

// --- HTTPStatus ---

func TestHTTPStatus_AppError(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, HTTPStatus(Forbidden("no")))
}

func TestHTTPStatus_SentinelErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrAlreadyExists, http.StatusConflict},
		{ErrConflict, http.StatusConflict},
		{ErrDuplicateReview, http.StatusConflict},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrValidation, http.StatusBadRequest},
		{ErrInvalidRating, http.StatusBadRequest},
		{ErrMissingField, http.StatusBadRequest},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestHTTPStatus_WrappedAppError(t *testing.T) {
	err := fmt.Errorf("update product: %w", Forbidden("no"))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(err))
}

func TestHTTPStatus_UnknownError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(fmt.Errorf("mystery")))
}
