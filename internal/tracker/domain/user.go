package domain

import "time"

// User is an account holder. The store assigns ID on creation and enforces
// username uniqueness. Username and password are immutable after
// registration; profile edits touch the name fields only.
type User struct {
	ID           int64
	Username     string
	PasswordHash string // argon2id PHC string, never the plaintext
	FirstName    string
	LastName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName is the display form used by the presentation layer.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
