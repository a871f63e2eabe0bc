// Package migrations embeds SQL migration files.
package migrations

import "embed"

// PostgresFS contains the account directory schema.
//
//go:embed *.sql
var PostgresFS embed.FS
