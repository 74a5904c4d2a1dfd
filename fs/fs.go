// Package appfs embeds the app's static artifacts so the binaries ship
// self-contained: SQL migrations, mail and page templates, and assets.
package appfs

import "embed"

//go:embed migrations templates assets
var FS embed.FS
