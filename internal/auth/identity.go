package auth

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Identity is the caller resolved from a bearer credential. Token is kept so
// stores can open a session carrying the caller's own credential.
type Identity struct {
	UserID string
	Email  string
	Role   string
	Token  string
}

// Verifier resolves a bearer credential against an identity provider.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// TokenFromHeader extracts the credential from an Authorization header of
// the form "Bearer <token>".
func TokenFromHeader(header string) (string, error) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", ErrMissingToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

const defaultRole = "authenticated"

func roleOrDefault(role string) string {
	if role == "" {
		return defaultRole
	}
	return role
}
