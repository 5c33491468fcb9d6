// Package migrations embeds the goose migrations for every supported dialect.
package migrations

import "embed"

// Migrations holds one directory per dialect: sqlite/ and postgres/.
//
//go:embed sqlite/*.sql postgres/*.sql
var Migrations embed.FS
