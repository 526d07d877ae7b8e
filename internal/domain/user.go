package domain

import (
	"strings"
	"time"
)

// User is a registered community member.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Location     *Location `json:"location,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Location is a user's home position in decimal degrees.
type Location struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// SignupInput is the registration payload.
type SignupInput struct {
	Username string    `json:"username" validate:"required,min=3,max=50"`
	Email    string    `json:"email" validate:"required,email,max=254"`
	Password string    `json:"password" validate:"required,min=6,max=72"`
	Location *Location `json:"location" validate:"omitempty"`
}

// LoginInput is the credentials payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileInput is a partial profile update; nil fields are unchanged.
type UpdateProfileInput struct {
	Username *string   `json:"username" validate:"omitempty,min=3,max=50"`
	Email    *string   `json:"email" validate:"omitempty,email,max=254"`
	Location *Location `json:"location" validate:"omitempty"`
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Normalize trims the username and normalizes the email.
func (in *SignupInput) Normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = NormalizeEmail(in.Email)
}

// Normalize normalizes the email.
func (in *LoginInput) Normalize() {
	in.Email = NormalizeEmail(in.Email)
}

// Normalize trims the supplied fields.
func (in *UpdateProfileInput) Normalize() {
	if in.Username != nil {
		*in.Username = strings.TrimSpace(*in.Username)
	}
	if in.Email != nil {
		*in.Email = NormalizeEmail(*in.Email)
	}
}

// Apply copies the set fields onto the user and refreshes UpdatedAt.
func (u *User) Apply(in UpdateProfileInput, now time.Time) {
	if in.Username != nil {
		u.Username = *in.Username
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.Location != nil {
		loc := *in.Location
		u.Location = &loc
	}
	u.UpdatedAt = now
}
