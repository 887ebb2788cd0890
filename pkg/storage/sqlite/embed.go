package sqlite

import "embed"

// Migrations holds the embedded golang-migrate source tree so the
// binary carries its own schema and never depends on files shipped
// alongside it at deploy time.
//
//go:embed migrations
var Migrations embed.FS
