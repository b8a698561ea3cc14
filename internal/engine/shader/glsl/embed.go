// Package glsl provides the embedded layer view shader sources.
package glsl

import "embed"

// FS holds <name>.vert and <name>.frag for every logical shader name.
//
//go:embed *.vert *.frag
var FS embed.FS
