// Package web embeds the panel's static browser UI.
package web

import _ "embed"

//go:embed index.html
var Index []byte
