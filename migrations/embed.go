// Package migrations holds the schema of the local backend.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
