// Package config provides configuration loading for insert-this.
//
// Configuration is layered, highest priority first:
//  1. Environment variables (INSERTTHIS_*)
//  2. Project config (.insertthis/config.yml in the workspace root)
//  3. User config (insertthis/config.yml under the user config directory)
//  4. Built-in defaults
//
// Nested keys map to environment variables with underscores, e.g.
// INSERTTHIS_INSERT_POSITION_ENCODING for insert.position_encoding.
package config

import (
	"github.com/mvp-joe/insert-this/internal/span"
)

// Config represents the complete insert-this configuration.
type Config struct {
	// Languages maps an editor language id to the file globs it covers.
	Languages map[string][]string `yaml:"languages" mapstructure:"languages"`
	Naming    NamingConfig        `yaml:"naming" mapstructure:"naming"`
	Insert    InsertConfig        `yaml:"insert" mapstructure:"insert"`
	Log       LogConfig           `yaml:"log" mapstructure:"log"`
}

// NamingConfig controls how identifiers are derived from asset file names.
type NamingConfig struct {
	Suffixes map[string]string `yaml:"suffixes" mapstructure:"suffixes"` // lower-case extension -> identifier suffix
	Fallback string            `yaml:"fallback" mapstructure:"fallback"` // used when the file name has no usable characters
}

// InsertConfig controls the generated edits.
type InsertConfig struct {
	PositionEncoding string `yaml:"position_encoding" mapstructure:"position_encoding"` // utf-16, utf-8 or utf-32
	JSXTemplate      string `yaml:"jsx_template" mapstructure:"jsx_template"`           // exactly one %s, replaced by the identifier
}

// LogConfig configures commonlog.
type LogConfig struct {
	Verbosity int    `yaml:"verbosity" mapstructure:"verbosity"`
	File      string `yaml:"file" mapstructure:"file"` // empty means stderr
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Languages: map[string][]string{
			"typescript":      {"**/*.ts", "**/*.mts", "**/*.cts"},
			"typescriptreact": {"**/*.tsx"},
			"javascript":      {"**/*.js", "**/*.mjs", "**/*.cjs"},
			"javascriptreact": {"**/*.jsx"},
		},
		Naming: NamingConfig{
			Suffixes: map[string]string{
				"svg":  "Img",
				"png":  "Img",
				"jpg":  "Img",
				"jpeg": "Img",
				"webp": "Img",
			},
			Fallback: "asset",
		},
		Insert: InsertConfig{
			PositionEncoding: span.UTF16.String(),
			JSXTemplate:      `<img src={%s} alt="" />`,
		},
		Log: LogConfig{
			Verbosity: 0,
			File:      "",
		},
	}
}

// Encoding returns the configured column encoding, UTF-16 when unset or
// unknown. Validate rejects unknown names.
func (c *Config) Encoding() span.Encoding {
	enc, err := span.ParseEncoding(c.Insert.PositionEncoding)
	if err != nil {
		return span.UTF16
	}
	return enc
}
