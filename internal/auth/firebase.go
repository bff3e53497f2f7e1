package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	appErrors "github.com/fatali-fataliyev/budget_insights/customErrors"
	"github.com/fatali-fataliyev/budget_insights/internal/contextutil"
	"github.com/fatali-fataliyev/budget_insights/logging"
	"google.golang.org/api/option"
)

type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseVerifier verifies Firebase ID tokens; the user id is the token's UID.
type FirebaseVerifier struct {
	client idTokenVerifier
}

// NewFirebaseVerifier uses credentialsFile when set and application default
// credentials otherwise.
func NewFirebaseVerifier(ctx context.Context, projectID string, credentialsFile string) (*FirebaseVerifier, error) {
	opts := []option.ClientOption{}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase auth client: %w", err)
	}

	return &FirebaseVerifier{client: client}, nil
}

func (fv *FirebaseVerifier) Verify(ctx context.Context, token string) (string, error) {
	idToken, err := fv.client.VerifyIDToken(ctx, token)
	if err != nil {
		logging.Logger.Debugf("[TraceID=%s] | firebase rejected token in FirebaseVerifier.Verify() function | Error: %v", contextutil.TraceIDFromContext(ctx), err)
		return "", appErrors.NewUnauthorized("Invalid or expired token, please login again.")
	}
	if idToken.UID == "" {
		return "", appErrors.NewUnauthorized("Token has no subject.")
	}
	return idToken.UID, nil
}
