package auth

import "context"

// Identity is the authenticated user as reported by the identity provider.
// The application only ever reads it; the provider owns its lifecycle.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// Verifier resolves a bearer credential to an identity. Handlers depend on
// this interface so tests can substitute a fake per test case.
type Verifier interface {
	VerifyToken(ctx context.Context, idToken string) (Identity, error)
}

// Provider is the full identity-provider surface the application consumes
type Provider interface {
	Verifier
	CreateUser(ctx context.Context, email, password, displayName string) (Identity, error)
	GetUserByEmail(ctx context.Context, email string) (Identity, error)
	DeleteUser(ctx context.Context, uid string) error
	// SignOut revokes the user's refresh tokens; outstanding ID tokens
	// expire on their own within the hour.
	SignOut(ctx context.Context, uid string) error
}
