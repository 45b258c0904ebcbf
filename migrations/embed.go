// Package migrations embeds the SQL schema files applied by the init-db
// command.
package migrations

import "embed"

// Files holds the ordered *.sql migration files.
//
//go:embed *.sql
var Files embed.FS
