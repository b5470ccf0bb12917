package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"choreboard/internal/auth"
	"choreboard/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const IdentityContextKey ContextKey = "identity"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	verifier auth.Verifier
	limiter  *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(verifier auth.Verifier, limiter *security.RateLimiter) *Middleware {
	return &Middleware{
		verifier: verifier,
		limiter:  limiter,
	}
}

// RequireAuth verifies the Bearer ID token and stores the identity in the
// request context
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respondWithError(w, http.StatusUnauthorized, "Missing bearer token", nil)
			return
		}

		idToken := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if idToken == "" {
			respondWithError(w, http.StatusUnauthorized, "Missing bearer token", nil)
			return
		}

		ident, err := m.verifier.VerifyToken(r.Context(), idToken)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), IdentityContextKey, ident)
		next(w, r.WithContext(ctx))
	}
}

// RateLimit rejects requests from clients that exceed the configured rate
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.limiter.Allow(ip) {
			respondWithError(w, http.StatusTooManyRequests, "Too many requests. Please try again later", nil)
			return
		}
		next(w, r)
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// IdentityFromContext retrieves the authenticated identity from the
// request context; the zero Identity means RequireAuth did not run
func IdentityFromContext(ctx context.Context) auth.Identity {
	ident, _ := ctx.Value(IdentityContextKey).(auth.Identity)
	return ident
}
