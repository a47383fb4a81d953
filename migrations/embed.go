// Package migrations embeds SQL migration files into the binary.
//
// This keeps the bridge a single executable: the identity catalog schema
// travels inside the binary instead of alongside it on the gaming PC.
package migrations

import (
	"embed"

	"github.com/nerrad567/vr-bridge/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	// Register embedded migrations with the database package.
	// The embed directive above captures all .sql files in this directory.
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "." // Files are at root of embedded FS
}
