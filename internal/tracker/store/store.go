package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/healthtrack/internal/tracker/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and to actively stop callers from accidentally nesting
// transactions.
type Store interface {
	Users() Users
	Records() Records

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a new user and returns it with the store-assigned
	// id. Returns ErrAlreadyExists when the username is taken.
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)

	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByUsername is used during login; exact match, no case folding.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// UpdateProfile mutates first/last name and bumps updated_at. Username
	// and password are immutable. Returns ErrNotFound for an unknown id.
	UpdateProfile(ctx context.Context, userID int64, firstName, lastName string) error

	// CountUsers returns the total number of accounts.
	CountUsers(ctx context.Context) (int64, error)
}

type Records interface {
	// CreateRecord inserts a new health record and returns it with the
	// store-assigned id.
	CreateRecord(ctx context.Context, r domain.HealthRecord) (domain.HealthRecord, error)

	// GetRecordByID returns a record by id regardless of owner; ownership
	// checks belong to the service layer.
	GetRecordByID(ctx context.Context, id int64) (domain.HealthRecord, error)

	// ListRecordsByUser returns the records owned by userID in insertion
	// order (id ASC). Empty slice when there are none.
	ListRecordsByUser(ctx context.Context, userID int64) ([]domain.HealthRecord, error)

	// UpdateRecord persists all mutable fields of the given record id.
	// Returns ErrNotFound for an unknown id.
	UpdateRecord(ctx context.Context, r domain.HealthRecord) error

	// DeleteRecord removes a record. Returns ErrNotFound for an unknown id.
	DeleteRecord(ctx context.Context, id int64) error

	// CountRecordsByUser returns how many records userID owns.
	CountRecordsByUser(ctx context.Context, userID int64) (int64, error)
}
