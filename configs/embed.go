// Package configs embeds the configuration templates written by
// `factcheck config init`.
//
// Configuration hierarchy (see internal/config Load):
//  1. Hardcoded defaults
//  2. User config (~/.config/factcheck/config.yaml)
//  3. Project config (.factcheck.yaml)
//  4. Environment variables (FACTCHECK_*)
//  5. Command-line flags
package configs

import _ "embed"

// UserConfigTemplate is written to ~/.config/factcheck/config.yaml.
// It documents every key with its default.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// ProjectConfigTemplate is written to .factcheck.yaml by
// `factcheck config init --project`. It carries the keys that usually
// differ per checkout, such as the backend URL.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string
