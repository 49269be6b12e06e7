// Package migrations embeds the numbered SQL files so the binary can migrate
// without a checkout.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
