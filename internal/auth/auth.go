// Package auth gates the admin API on a valid Firebase ID token. The sign-in
// flow itself belongs to the hosted auth provider; this package only checks
// the credential presented with each request.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
)

// Verifier validates an ID token. *fbauth.Client satisfies it.
type Verifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// NewVerifier builds the Firebase token verifier for the given project.
func NewVerifier(ctx context.Context, projectID string) (*fbauth.Client, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firebase auth client: %w", err)
	}
	return client, nil
}

type ctxKey struct{}

// UID returns the authenticated user ID stored by Middleware, if any.
func UID(ctx context.Context) string {
	uid, _ := ctx.Value(ctxKey{}).(string)
	return uid
}

// Middleware rejects requests without a valid bearer token and stores the
// caller's UID on the request context.
func Middleware(verifier Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, "Unauthorized: missing credential", http.StatusUnauthorized)
				return
			}
			decoded, err := verifier.VerifyIDToken(r.Context(), token)
			if err != nil {
				logger.Warn("Rejected request with invalid token.", "path", r.URL.Path, "error", err)
				http.Error(w, "Unauthorized: invalid credential", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), ctxKey{}, decoded.UID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	// The dashboard stores the credential in a cookie after sign-in.
	if cookie, err := r.Cookie("session"); err == nil {
		return cookie.Value
	}
	return ""
}
