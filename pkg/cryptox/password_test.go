package cryptox_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/aussiebroadwan/healthtrack/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	cryptox.SetPepperPath(filepath.Join(t.TempDir(), "pepper"))

	hash, err := cryptox.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	t.Run("matching password verifies", func(t *testing.T) {
		require.NoError(t, cryptox.VerifyPassword("correct horse battery staple", hash))
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		err := cryptox.VerifyPassword("wrong password", hash)
		require.ErrorIs(t, err, cryptox.ErrPasswordMismatch)
	})

	t.Run("hashes are salted", func(t *testing.T) {
		other, err := cryptox.HashPassword("correct horse battery staple")
		require.NoError(t, err)
		require.NotEqual(t, hash, other)
	})
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	cryptox.SetPepperPath(filepath.Join(t.TempDir(), "pepper"))

	for _, bad := range []string{
		"",
		"plaintext",
		"$bcrypt$whatever",
		"$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=19456,t=2,p=1$not!base64$aGFzaA",
	} {
		require.Error(t, cryptox.VerifyPassword("password", bad), "hash %q", bad)
	}
}

func TestPepperPersistsAcrossLoads(t *testing.T) {
	pepperPath := filepath.Join(t.TempDir(), "pepper")

	cryptox.SetPepperPath(pepperPath)
	first := cryptox.GetPepper()
	require.NotEmpty(t, first)

	// Re-pointing at the same file must yield the same pepper.
	cryptox.SetPepperPath(pepperPath)
	require.Equal(t, first, cryptox.GetPepper())
}
