// Package migrations holds the SQL schema applied by pkg/database.Migrator.
package migrations

import "embed"

// FS contains the numbered migration files, e.g. 001_create_bills.sql
//
//go:embed *.sql
var FS embed.FS
