// Package web embeds the static single-page chat client.
package web

import "embed"

//go:embed static
var Static embed.FS
