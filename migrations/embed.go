package migrations

import "embed"

// Files holds the forward-only schema migrations applied by db.OpenSQLite.
//
//go:embed *.sql
var Files embed.FS
