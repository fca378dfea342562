// Package db carries the SQL schema migrations.
package db

import "embed"

// Migrations holds the *.up.sql and *.down.sql files.
//
//go:embed migrations/*.sql
var Migrations embed.FS
