// Package identity exposes the authenticated user as an opaque, stable
// identifier. The authentication provider itself is external; this package
// only reads what it left behind.
package identity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/fishlog/internal/common"
)

// Provider yields the current user's identifier, or common.ErrUnauthorized
// when nobody is signed in.
type Provider interface {
	CurrentUserID(ctx context.Context) (string, error)
}

// TokenFileProvider reads the ID token the auth provider stored on disk and
// extracts the subject claim. The token's signature is the provider's
// concern; it is not re-verified here.
type TokenFileProvider struct {
	path string
}

func NewTokenFileProvider(path string) *TokenFileProvider {
	return &TokenFileProvider{path: path}
}

func (p *TokenFileProvider) CurrentUserID(ctx context.Context) (string, error) {
	raw, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", common.ErrUnauthorized
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}

	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", common.ErrUnauthorized
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", common.ErrInvalidToken
	}
	return sub, nil
}

// Static is a fixed-identity Provider for tests and local development.
type Static string

func (s Static) CurrentUserID(ctx context.Context) (string, error) {
	if s == "" {
		return "", common.ErrUnauthorized
	}
	return string(s), nil
}
