package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired means the token was valid but its expiry has passed.
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenMalformed means the token could not be parsed or its
	// signature did not validate.
	ErrTokenMalformed = errors.New("token is malformed or invalid")
	// ErrTokenUnknown covers every other verification failure.
	ErrTokenUnknown = errors.New("token verification failed")
)

// Claims is the JWT payload: user identity plus the registered
// iat/exp timestamps.
type Claims struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// JWTService signs and verifies HS256 access tokens.
type JWTService struct {
	secret   []byte
	duration time.Duration
}

func NewJWTService(secret []byte, duration time.Duration) *JWTService {
	return &JWTService{secret: secret, duration: duration}
}

// Issue signs a token carrying the user's identity, expiring after the
// configured duration.
func (s *JWTService) Issue(userID int64, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.duration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify validates a token and returns its claims. Failures are classified
// as expired, malformed (unparseable or bad signature), or unknown.
func (s *JWTService) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed),
			errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, ErrTokenMalformed
		default:
			return nil, ErrTokenUnknown
		}
	}

	if !token.Valid {
		return nil, ErrTokenUnknown
	}

	return claims, nil
}
