package auth

import (
	"context"
	"fmt"
	"time"

	appErrors "github.com/fatali-fataliyev/budget_insights/customErrors"
	"github.com/fatali-fataliyev/budget_insights/internal/contextutil"
	"github.com/fatali-fataliyev/budget_insights/logging"
)

// SessionStore reads the identity provider's session table.
type SessionStore interface {
	GetSessionByToken(ctx context.Context, token string) (Session, error)
	UpdateSessionExpiry(ctx context.Context, sessionID string, expireAt time.Time) error
}

type SessionVerifier struct {
	store SessionStore
	now   func() time.Time
}

func NewSessionVerifier(store SessionStore) *SessionVerifier {
	return &SessionVerifier{store: store, now: time.Now}
}

// Verify rejects unknown and expired sessions. A session with
// SESSION_RENEW_THRESHOLD_DAYS or fewer days left is extended by
// SESSION_RENEW_MONTHS.
func (sv *SessionVerifier) Verify(ctx context.Context, token string) (string, error) {
	session, err := sv.store.GetSessionByToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("failed to get session by token: %w", err)
	}

	now := sv.now().UTC()
	if !session.ExpireAt.After(now) {
		return "", appErrors.NewUnauthorized("Your session expired, please login again.")
	}

	daysUntilExpiry := int(session.ExpireAt.Sub(now).Hours() / 24)
	if daysUntilExpiry <= SESSION_RENEW_THRESHOLD_DAYS {
		newExpireAt := now.AddDate(0, SESSION_RENEW_MONTHS, 0)
		if err := sv.store.UpdateSessionExpiry(ctx, session.ID, newExpireAt); err != nil {
			// The session is still valid; renewal is retried on the next request.
			logging.Logger.Warnf("[TraceID=%s] | failed to renew session in SessionVerifier.Verify() function | Error: %v", contextutil.TraceIDFromContext(ctx), err)
		}
	}

	return session.UserID, nil
}

// DevVerifier trusts the token as the user id. It is meant for local runs
// and is refused by config validation in production.
type DevVerifier struct{}

func (DevVerifier) Verify(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", appErrors.NewUnauthorized("Bearer token is empty.")
	}
	return token, nil
}
