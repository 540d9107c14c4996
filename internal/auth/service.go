package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"golang.org/x/crypto/bcrypt"

	"github.com/schoolhub/school-api/internal/logging"
	"github.com/schoolhub/school-api/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNameRequired       = errors.New("name is required")
	ErrNameLength         = errors.New("name must be between 2 and 100 characters")
	ErrEmailRequired      = errors.New("email is required")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
)

// bcryptCost matches the cost the original deployment hashed with, so
// existing password hashes keep verifying.
const bcryptCost = 10

// Service handles registration and credential verification.
type Service struct {
	users  UserStore
	tokens TokenService
	logger *logging.Logger
}

func NewService(users UserStore, tokens TokenService, logger *logging.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// Register validates input, hashes the password and creates the user.
// The returned user never carries the plaintext password.
func (s *Service) Register(ctx context.Context, name, email, password string) (*user.User, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if len(name) < 2 || len(name) > 100 {
		return nil, ErrNameLength
	}
	if email == "" {
		return nil, ErrEmailRequired
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmailFormat
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if len(password) < 6 {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.users.Create(ctx, name, email, string(hash))
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Debug("user account created", "user_id", newUser.ID)

	return newUser, nil
}

// Login verifies credentials and issues an access token. A missing user and
// a wrong password both surface as ErrInvalidCredentials so the response
// can't be used to probe which emails are registered.
func (s *Service) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	if email == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(existing.ID, existing.Email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return token, existing, nil
}
