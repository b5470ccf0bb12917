package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// FirebaseProvider implements Provider on the Firebase Admin SDK
type FirebaseProvider struct {
	client *firebaseauth.Client
}

// NewFirebase initializes the Firebase app and its auth client. A
// credentials file is optional; without one, Application Default
// Credentials are used.
func NewFirebase(ctx context.Context, projectID, credentialsFile string) (*FirebaseProvider, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth client: %w", err)
	}

	return &FirebaseProvider{client: client}, nil
}

// VerifyToken validates a Firebase ID token and extracts the identity
func (p *FirebaseProvider) VerifyToken(ctx context.Context, idToken string) (Identity, error) {
	token, err := p.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return Identity{}, &Error{Code: CodeInvalidToken, Err: err}
	}

	ident := Identity{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		ident.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		ident.DisplayName = name
	}
	return ident, nil
}

// CreateUser registers a new account with the identity provider
func (p *FirebaseProvider) CreateUser(ctx context.Context, email, password, displayName string) (Identity, error) {
	params := (&firebaseauth.UserToCreate{}).
		Email(email).
		Password(password)
	if displayName != "" {
		params = params.DisplayName(displayName)
	}

	user, err := p.client.CreateUser(ctx, params)
	if err != nil {
		if firebaseauth.IsEmailAlreadyExists(err) {
			return Identity{}, &Error{Code: CodeEmailInUse, Err: err}
		}
		return Identity{}, &Error{Code: classify(err), Err: err}
	}

	return Identity{UID: user.UID, Email: user.Email, DisplayName: user.DisplayName}, nil
}

// GetUserByEmail looks up an existing account
func (p *FirebaseProvider) GetUserByEmail(ctx context.Context, email string) (Identity, error) {
	user, err := p.client.GetUserByEmail(ctx, email)
	if err != nil {
		if firebaseauth.IsUserNotFound(err) {
			return Identity{}, &Error{Code: CodeInvalidCredentials, Err: err}
		}
		return Identity{}, &Error{Code: classify(err), Err: err}
	}
	return Identity{UID: user.UID, Email: user.Email, DisplayName: user.DisplayName}, nil
}

// DeleteUser removes an account from the identity provider
func (p *FirebaseProvider) DeleteUser(ctx context.Context, uid string) error {
	if err := p.client.DeleteUser(ctx, uid); err != nil {
		return &Error{Code: classify(err), Err: err}
	}
	return nil
}

// SignOut revokes the user's refresh tokens
func (p *FirebaseProvider) SignOut(ctx context.Context, uid string) error {
	if err := p.client.RevokeRefreshTokens(ctx, uid); err != nil {
		return &Error{Code: classify(err), Err: err}
	}
	return nil
}
