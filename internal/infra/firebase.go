// README: Firebase Admin SDK initialisation and token verifier.
package infra

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// AuthToken holds the verified token data used by downstream middleware.
type AuthToken struct {
	UID    string
	Claims map[string]interface{}
}

// TokenVerifier verifies a raw ID token string and returns token data.
// Session issuance lives in a separate service; this side only verifies.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*AuthToken, error)
}

// firebaseVerifier is the production implementation backed by the Firebase Admin SDK.
type firebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier creates a TokenVerifier using the Firebase Admin SDK.
// If credentialsFile is non-empty it is used as the service-account JSON path;
// otherwise application-default credentials / GOOGLE_APPLICATION_CREDENTIALS
// are used. projectID is required so the SDK can construct the correct
// token-verification URL.
func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile string) (TokenVerifier, error) {
	opts := []option.ClientOption{}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "firebase.NewApp")
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "firebase app.Auth")
	}
	return &firebaseVerifier{client: client}, nil
}

func (v *firebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (*AuthToken, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return &AuthToken{UID: token.UID, Claims: token.Claims}, nil
}
