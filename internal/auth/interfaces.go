package auth

import (
	"context"

	"github.com/schoolhub/school-api/internal/user"
)

// TokenService creates and validates access tokens.
// The concrete implementation is JWTService (HS256).
type TokenService interface {
	Issue(userID int64, email string) (string, error)
	Verify(tokenStr string) (*Claims, error)
}

// UserStore is the slice of the user repository the auth layer needs.
type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id int64) (*user.User, error)
}
