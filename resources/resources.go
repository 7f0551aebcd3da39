// Package resources embeds static configuration shipped with the binary.
package resources

import "embed"

// SelectorFiles holds the built-in selector chain definitions for the
// target application's UI. Operators can override them with --selectors.
//
//go:embed selectors/*.yaml
var SelectorFiles embed.FS
