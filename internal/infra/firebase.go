// README: Firebase Admin SDK initialisation, ID token verification and FCM client.
package infra

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"petlove/internal/modules/access"
)

// NewFirebaseApp builds the Admin SDK app. If credentialsFile is empty,
// application-default credentials / GOOGLE_APPLICATION_CREDENTIALS are used.
func NewFirebaseApp(ctx context.Context, projectID, credentialsFile string) (*firebase.App, error) {
	opts := []option.ClientOption{}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}
	return app, nil
}

// FirebaseAuth turns verified ID tokens into identities.
type FirebaseAuth struct {
	client *auth.Client
}

func NewFirebaseAuth(ctx context.Context, app *firebase.App) (*FirebaseAuth, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase app.Auth: %w", err)
	}
	return &FirebaseAuth{client: client}, nil
}

// VerifyIDToken checks the token and exposes its claims as identity metadata,
// so custom claims such as role or is_admin feed the fallback role.
func (f *FirebaseAuth) VerifyIDToken(ctx context.Context, idToken string) (*access.Identity, error) {
	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return IdentityFromClaims(token.UID, token.Claims), nil
}

// RevokeSessions invalidates the user's refresh tokens on sign-out.
func (f *FirebaseAuth) RevokeSessions(ctx context.Context, uid string) error {
	return f.client.RevokeRefreshTokens(ctx, uid)
}

func IdentityFromClaims(uid string, claims map[string]interface{}) *access.Identity {
	email, _ := claims["email"].(string)
	return &access.Identity{ID: uid, Email: email, Metadata: claims}
}

// NewMessaging returns the FCM client used for admin notifications.
func NewMessaging(ctx context.Context, app *firebase.App) (*messaging.Client, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase app.Messaging: %w", err)
	}
	return client, nil
}
