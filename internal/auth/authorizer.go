package auth

import (
	"context"

	"github.com/teemow/taskbridge/internal/credentials"
)

// Authorizer runs an interactive authorization flow and returns the resulting
// credential. identityPath is the client secret file to authorize with.
type Authorizer interface {
	Authorize(ctx context.Context, identityPath string, scopes []string) (credentials.Credential, error)
}

// AuthorizerFunc adapts a function to the Authorizer interface.
type AuthorizerFunc func(ctx context.Context, identityPath string, scopes []string) (credentials.Credential, error)

// Authorize calls f.
func (f AuthorizerFunc) Authorize(ctx context.Context, identityPath string, scopes []string) (credentials.Credential, error) {
	return f(ctx, identityPath, scopes)
}
