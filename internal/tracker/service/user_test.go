package service_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aussiebroadwan/healthtrack/internal/tracker/service"
	"github.com/aussiebroadwan/healthtrack/internal/tracker/store/drivers/sqlite"
	"github.com/aussiebroadwan/healthtrack/pkg/cryptox"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	cryptox.SetPepperPath(filepath.Join(t.TempDir(), "pepper"))

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newUserService(t *testing.T) *service.UserService {
	t.Helper()
	// Generous limiter so only the dedicated test trips it.
	return service.NewUserService(newTestStore(t), rate.Limit(1000), 1000)
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	users := newUserService(t)

	registered, err := users.Register(ctx, "alice", "pw1", "Alice", "Lee")
	require.NoError(t, err)
	require.Positive(t, registered.ID)
	require.Equal(t, "alice", registered.Username)
	require.Equal(t, "Alice Lee", registered.FullName())

	t.Run("password is stored hashed", func(t *testing.T) {
		require.NotEqual(t, "pw1", registered.PasswordHash)
		require.True(t, strings.HasPrefix(registered.PasswordHash, "$argon2id$"))
	})

	t.Run("same credentials log in", func(t *testing.T) {
		user, err := users.Login(ctx, "alice", "pw1")
		require.NoError(t, err)
		require.Equal(t, registered.ID, user.ID)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		_, err := users.Login(ctx, "alice", "pw2")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("unknown username is rejected", func(t *testing.T) {
		_, err := users.Login(ctx, "nobody", "pw1")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("no case folding on login", func(t *testing.T) {
		_, err := users.Login(ctx, "Alice", "pw1")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
	})
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	users := newUserService(t)

	cases := []struct {
		name                          string
		username, password, first, last string
	}{
		{"empty username", "", "pw", "A", "B"},
		{"empty password", "user", "", "A", "B"},
		{"empty first name", "user", "pw", "", "B"},
		{"empty last name", "user", "pw", "A", ""},
		{"whitespace username", "   ", "pw", "A", "B"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := users.Register(ctx, tc.username, tc.password, tc.first, tc.last)
			require.ErrorIs(t, err, service.ErrInvalidInput)
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	users := newUserService(t)

	_, err := users.Register(ctx, "alice", "pw1", "Alice", "Lee")
	require.NoError(t, err)

	// Duplicate fails regardless of the other field values.
	_, err = users.Register(ctx, "alice", "other", "Someone", "Else")
	require.ErrorIs(t, err, service.ErrDuplicateUsername)
}

func TestGetUserByUsername(t *testing.T) {
	ctx := context.Background()
	users := newUserService(t)

	registered, err := users.Register(ctx, "alice", "pw1", "Alice", "Lee")
	require.NoError(t, err)

	found, err := users.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, registered.ID, found.ID)

	_, err = users.GetUserByUsername(ctx, "nobody")
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	users := newUserService(t)

	registered, err := users.Register(ctx, "alice", "pw1", "Alice", "Lee")
	require.NoError(t, err)

	t.Run("names change, credentials stay", func(t *testing.T) {
		updated, err := users.UpdateProfile(ctx, registered.ID, "Alicia", "Leung")
		require.NoError(t, err)
		require.Equal(t, "Alicia Leung", updated.FullName())
		require.Equal(t, registered.Username, updated.Username)

		_, err = users.Login(ctx, "alice", "pw1")
		require.NoError(t, err)
	})

	t.Run("empty names rejected", func(t *testing.T) {
		_, err := users.UpdateProfile(ctx, registered.ID, "", "Leung")
		require.ErrorIs(t, err, service.ErrInvalidInput)

		_, err = users.UpdateProfile(ctx, registered.ID, "Alicia", "  ")
		require.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("unknown user rejected", func(t *testing.T) {
		_, err := users.UpdateProfile(ctx, 9999, "No", "One")
		require.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestLoginRateLimiting(t *testing.T) {
	ctx := context.Background()
	// Two attempts then a long wait for the next token.
	users := service.NewUserService(newTestStore(t), rate.Limit(0.001), 2)

	_, err := users.Register(ctx, "alice", "pw1", "Alice", "Lee")
	require.NoError(t, err)

	_, err = users.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = users.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	// Bucket exhausted: even the correct password is throttled now.
	_, err = users.Login(ctx, "alice", "pw1")
	require.ErrorIs(t, err, service.ErrTooManyAttempts)

	// Other usernames have their own bucket.
	_, err = users.Login(ctx, "bob", "pw1")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
}
