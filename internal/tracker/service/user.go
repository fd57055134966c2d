package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/healthtrack/internal/tracker/domain"
	"github.com/aussiebroadwan/healthtrack/internal/tracker/store"
	"github.com/aussiebroadwan/healthtrack/pkg/cryptox"
	"github.com/aussiebroadwan/healthtrack/pkg/slogx"
	"golang.org/x/time/rate"
)

// DefaultLoginRate allows a handful of attempts per minute per username,
// refilling one token every few seconds.
const (
	DefaultLoginRate  = rate.Limit(10.0 / 60.0)
	DefaultLoginBurst = 5
)

type UserService struct {
	Store   store.Store
	limiter *loginLimiter
}

func NewUserService(st store.Store, loginRate rate.Limit, loginBurst int) *UserService {
	if loginRate <= 0 {
		loginRate = DefaultLoginRate
	}
	if loginBurst <= 0 {
		loginBurst = DefaultLoginBurst
	}
	return &UserService{
		Store:   st,
		limiter: newLoginLimiter(loginRate, loginBurst),
	}
}

// Register creates a new account. Every field is required; the username must
// be unused. The password is stored as an argon2id hash, never verbatim.
func (s *UserService) Register(
	ctx context.Context,
	username, password, firstName, lastName string,
) (domain.User, error) {
	l := slogx.FromContext(ctx)

	username = strings.TrimSpace(username)
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if username == "" || password == "" || firstName == "" || lastName == "" {
		return domain.User{}, ErrInvalidInput
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, persistence("register", err)
	}

	user, err := s.Store.Users().CreateUser(ctx, domain.User{
		Username:     username,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			l.Info("registration rejected, username taken", slog.String("username", username))
			return domain.User{}, ErrDuplicateUsername
		}
		return domain.User{}, persistence("register", err)
	}

	l.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// Login authenticates a username/password pair. Unknown usernames and wrong
// passwords both come back as ErrInvalidCredentials; exhausted limiters as
// ErrTooManyAttempts.
func (s *UserService) Login(ctx context.Context, username, password string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	if !s.limiter.allow(username) {
		l.Warn("login throttled", slog.String("username", username))
		return domain.User{}, ErrTooManyAttempts
	}

	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("login failed, unknown username", slog.String("username", username))
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, persistence("login", err)
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		l.Info("login failed, bad password", slog.String("username", username))
		return domain.User{}, ErrInvalidCredentials
	}

	l.Info("user logged in", slog.Int64("user_id", user.ID))
	return user, nil
}

// GetUserByUsername fetches an account by its exact username.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, persistence("get user", err)
	}
	return user, nil
}

// UpdateProfile changes the name fields of an existing account. Username and
// password are immutable here.
func (s *UserService) UpdateProfile(
	ctx context.Context,
	userID int64,
	firstName, lastName string,
) (domain.User, error) {
	l := slogx.FromContext(ctx)

	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return domain.User{}, ErrInvalidInput
	}

	if err := s.Store.Users().UpdateProfile(ctx, userID, firstName, lastName); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, persistence("update profile", err)
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, persistence("update profile", err)
	}

	l.Info("profile updated", slog.Int64("user_id", userID))
	return user, nil
}
