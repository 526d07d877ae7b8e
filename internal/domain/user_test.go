package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupInput_Normalize(t *testing.T) {
	in := SignupInput{Username: "  alice ", Email: " Alice@Example.COM "}
	in.Normalize()
	assert.Equal(t, "alice", in.Username)
	assert.Equal(t, "alice@example.com", in.Email)
}

func TestUser_Apply(t *testing.T) {
	u := &User{ID: "u1", Username: "alice", Email: "alice@example.com"}
	now := time.Now()
	u.Apply(UpdateProfileInput{Location: &Location{Latitude: 1, Longitude: 2}}, now)

	assert.Equal(t, "alice", u.Username)
	require.NotNil(t, u.Location)
	assert.Equal(t, 2.0, u.Location.Longitude)
	assert.Equal(t, now, u.UpdatedAt)
}
