// Package migrations embeds the SQLite schema migration files.
package migrations

import "embed"

// FS holds the embedded migration files, named NNNN_description.up.sql.
//
//go:embed *.sql
var FS embed.FS
