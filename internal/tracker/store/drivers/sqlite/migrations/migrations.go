// Package migrations holds the embedded SQL migration files for the sqlite
// driver. They are compiled into the binary and applied through
// Store.ApplyMigrations.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
