package assets

import (
	"embed"
)

// DefaultConfigYAML contains the embedded default configuration.
//
//go:embed defaults/config.yaml
var DefaultConfigYAML []byte

// Prompts holds the prompt templates, one file per template.
//
//go:embed prompts/*.tmpl
var Prompts embed.FS
