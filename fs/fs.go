// Package appfs embeds the application's non-Go artifacts: database
// migrations, email templates and static assets.
package appfs

import "embed"

//go:embed migrations all:assets
var FS embed.FS
