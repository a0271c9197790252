package identity

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/fishlog/internal/common"
)

func writeToken(t *testing.T, sub string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id_token")
	require.NoError(t, os.WriteFile(path, []byte(signed+"\n"), 0o600))
	return path
}

func TestTokenFileProvider_Subject(t *testing.T) {
	p := NewTokenFileProvider(writeToken(t, "user-42"))

	uid, err := p.CurrentUserID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-42", uid)
}

func TestTokenFileProvider_MissingFile(t *testing.T) {
	p := NewTokenFileProvider(filepath.Join(t.TempDir(), "absent"))

	_, err := p.CurrentUserID(context.Background())
	require.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestTokenFileProvider_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "id_token")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))

	_, err := NewTokenFileProvider(path).CurrentUserID(context.Background())
	require.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestTokenFileProvider_Garbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "id_token")
	require.NoError(t, os.WriteFile(path, []byte("not-a-jwt"), 0o600))

	_, err := NewTokenFileProvider(path).CurrentUserID(context.Background())
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestTokenFileProvider_NoSubject(t *testing.T) {
	p := NewTokenFileProvider(writeToken(t, ""))

	_, err := p.CurrentUserID(context.Background())
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestStatic(t *testing.T) {
	uid, err := Static("alice").CurrentUserID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", uid)

	_, err = Static("").CurrentUserID(context.Background())
	require.ErrorIs(t, err, common.ErrUnauthorized)
}
