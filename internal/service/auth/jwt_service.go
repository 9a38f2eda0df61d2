package auth

import (
	"context"
	"time"
)

// TokenTypeAccess is the only token type this service issues.
const TokenTypeAccess = "access"

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed JWT access token for the user.
	// Returns the token string or an error if token generation fails.
	GenerateToken(ctx context.Context, userID string) (string, error)

	// ValidateToken validates the provided access token string and extracts the claims.
	// Failures are returned as *TokenError wrapping ErrNoToken, ErrInvalidToken
	// or ErrExpiredToken.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the custom claims structure for the JWT tokens.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID string `json:"uid,omitempty"`

	// TokenType guards against tokens minted for another purpose.
	TokenType string `json:"type,omitempty"`

	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
