package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/utafrali/communityshop/internal/domain"
	"github.com/utafrali/communityshop/internal/repository"
	apperrors "github.com/utafrali/communityshop/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	GenerateAccessToken(userID, username string) (string, error)
}

// UserService implements signup, login and profile operations.
type UserService struct {
	users  repository.UserRepository
	tokens TokenIssuer
	logger *slog.Logger
	cost   int
	now    func() time.Time
}

// NewUserService creates a new user service.
func NewUserService(users repository.UserRepository, tokens TokenIssuer, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		tokens: tokens,
		logger: logger,
		cost:   bcryptCost,
		now:    time.Now,
	}
}

// Signup registers a new user and returns it with an access token.
func (s *UserService) Signup(ctx context.Context, input domain.SignupInput) (*domain.AuthResult, error) {
	input.Normalize()
	if err := validate(input); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Location:     input.Location,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.logger.InfoContext(ctx, "user signed up",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return &domain.AuthResult{User: user, Token: token}, nil
}

// Login authenticates a user by email and password.
func (s *UserService) Login(ctx context.Context, input domain.LoginInput) (*domain.AuthResult, error) {
	input.Normalize()
	if err := validate(input); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.logger.WarnContext(ctx, "login failed",
			slog.String("user_id", user.ID),
		)
		return nil, apperrors.Unauthorized("invalid email or password")
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
	)

	return &domain.AuthResult{User: user, Token: token}, nil
}

// GetProfile returns the public profile of a user.
func (s *UserService) GetProfile(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateProfile changes the caller's own username, email or location.
func (s *UserService) UpdateProfile(ctx context.Context, callerID, id string, input domain.UpdateProfileInput) (*domain.User, error) {
	if callerID == "" {
		return nil, apperrors.Unauthorized("authentication required")
	}
	if callerID != id {
		return nil, apperrors.Forbidden("Not authorized to update this profile")
	}

	input.Normalize()
	if err := validate(input); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	user.Apply(input, s.now().UTC())

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.InfoContext(ctx, "profile updated",
		slog.String("user_id", user.ID),
	)

	return user, nil
}
