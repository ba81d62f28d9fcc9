// Package migrations embeds the libsql schema migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
