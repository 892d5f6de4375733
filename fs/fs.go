// Package appfs exposes the application's embedded static files:
// database migrations and the mail/export templates.
package appfs

import "embed"

//go:embed migrations all:assets
var FS embed.FS
