// Package db embeds the SQL migrations, one directory per dialect.
package db

import "embed"

//go:embed migrations
var Migrations embed.FS

const (
	PostgresDir = "migrations/postgres"
	SQLiteDir   = "migrations/sqlite"
)
