package auth

import (
	"context"
	"strings"
	"time"

	appErrors "github.com/fatali-fataliyev/budget_insights/customErrors"
)

const (
	SESSION_RENEW_THRESHOLD_DAYS = 5
	SESSION_RENEW_MONTHS         = 1
)

// Verifier turns a bearer token into the id of the user it was issued to.
// Failures are appErrors.ErrorResponse values with code ErrAuth, or
// ErrInternal when the backing store is unavailable.
type Verifier interface {
	Verify(ctx context.Context, token string) (userID string, err error)
}

// Session is a login session issued by the identity provider.
type Session struct {
	ID        string
	Token     string
	CreatedAt time.Time
	ExpireAt  time.Time
	UserID    string
}

// ExtractTokenFromHeader returns the token of an "Authorization: Bearer <token>" header.
func ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", appErrors.NewUnauthorized("Authorization header is required.")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", appErrors.NewUnauthorized("Authorization header must be a Bearer token.")
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", appErrors.NewUnauthorized("Bearer token is empty.")
	}
	return token, nil
}
