// Package migrations содержит SQL схемы базы, встроенные в бинарник.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
