// Package migrations embeds the slot store schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
