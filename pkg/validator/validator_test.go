package validator

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupLike struct {
	Username string `json:"username" validate:"required,min=3,max=10"`
	Email    string `json:"email" validate:"required,email"`
	Category string `json:"category" validate:"omitempty,oneof=laptop camera"`
	OwnerID  string `json:"ownerId" validate:"omitempty,uuid"`
	Rating   int    `json:"rating" validate:"gte=1,lte=5"`
	Internal string `json:"-" validate:"max=2"`
}

func validSignup() signupLike {
	return signupLike{Username: "ayse", Email: "ayse@example.com", Rating: 4}
}

func TestValidate_Valid(t *testing.T) {
	s := validSignup()
	s.OwnerID = "550e8400-e29b-41d4-a716-446655440000"
	s.Category = "camera"
	assert.NoError(t, Validate(s))
}

func TestValidate_FieldMessages(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*signupLike)
		field  string
		msg    string
	}{
		{"missing username", func(s *signupLike) { s.Username = "" }, "username", "is required"},
		{"short username", func(s *signupLike) { s.Username = "ab" }, "username", "must be at least 3 characters"},
		{"long username", func(s *signupLike) { s.Username = "abcdefghijk" }, "username", "must be at most 10 characters"},
		{"bad email", func(s *signupLike) { s.Email = "nope" }, "email", "must be a valid email address"},
		{"unknown category", func(s *signupLike) { s.Category = "drone" }, "category", "must be one of: laptop camera"},
		{"bad uuid", func(s *signupLike) { s.OwnerID = "42" }, "ownerId", "must be a valid UUID"},
		{"rating too low", func(s *signupLike) { s.Rating = 0 }, "rating", "must be greater than or equal to 1"},
		{"rating too high", func(s *signupLike) { s.Rating = 6 }, "rating", "must be less than or equal to 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSignup()
			tt.mutate(&s)

			var valErr *ValidationError
			require.ErrorAs(t, Validate(s), &valErr)
			assert.Equal(t, map[string]string{tt.field: tt.msg}, valErr.Fields())
		})
	}
}

func TestValidate_HiddenJSONFieldUsesGoName(t *testing.T) {
	s := validSignup()
	s.Internal = "abc"

	var valErr *ValidationError
	require.ErrorAs(t, Validate(s), &valErr)
	assert.Contains(t, valErr.Fields(), "Internal")
}

func TestValidationError_CollectsEveryViolation(t *testing.T) {
	var valErr *ValidationError
	require.ErrorAs(t, Validate(signupLike{}), &valErr)

	fields := valErr.Fields()
	assert.Len(t, fields, 3)
	assert.Contains(t, valErr.Error(), "field 'username' is required")
	assert.Contains(t, valErr.Error(), "field 'email' is required")
	assert.Contains(t, valErr.Error(), "; ")
}

func TestValidate_NonStructArgument(t *testing.T) {
	err := Validate("not a struct")
	require.Error(t, err)

	var valErr *ValidationError
	assert.False(t, errors.As(err, &valErr))
}

type productLike struct {
	Price    float64  `json:"price" validate:"gt=0,max=100000000"`
	Latitude float64  `json:"shopLatitude" validate:"latitude"`
	Images   []string `json:"images" validate:"max=2,dive,url"`
	Location *struct {
		Longitude float64 `json:"longitude" validate:"longitude"`
	} `json:"location" validate:"omitempty"`
}

func TestValidate_UsesJSONNamesAndKindAwareMessages(t *testing.T) {
	s := productLike{
		Price:    0,
		Latitude: 91,
		Images:   []string{"not a url"},
		Location: &struct {
			Longitude float64 `json:"longitude" validate:"longitude"`
		}{Longitude: 181},
	}
	err := Validate(s)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Equal(t, "must be greater than 0", fields["price"])
	assert.Equal(t, "must be a latitude between -90 and 90", fields["shopLatitude"])
	assert.Equal(t, "must be a valid URL", fields["images[0]"])
	assert.Equal(t, "must be a longitude between -180 and 180", fields["location.longitude"])
}

func TestValidate_MaxOnSliceAndNumber(t *testing.T) {
	s := productLike{
		Price:  200000000,
		Images: []string{"https://a.example/1.png", "https://a.example/2.png", "https://a.example/3.png"},
	}
	err := Validate(s)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Equal(t, "must be at most 100000000", fields["price"])
	assert.Equal(t, "must contain at most 2 items", fields["images"])
}

func TestValidationError_AppError(t *testing.T) {
	err := Validate(signupLike{Email: "ayse@example.com", Rating: 3})
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)

	appErr := valErr.AppError()
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "is required", appErr.Fields["username"])
}
