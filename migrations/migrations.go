// Package migrations embeds the SQL schema of the run store.
package migrations

import "embed"

// FS holds the migration files.
//
//go:embed *.sql
var FS embed.FS

// Initial is the file name of the initial schema.
const Initial = "001_initial_schema.up.sql"
