package migrations

import "embed"

// FS contains the embedded PostgreSQL migrations applied at startup.
//
//go:embed *.sql
var FS embed.FS
