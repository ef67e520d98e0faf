// Package config holds the runtime configuration shared by enrev commands.
package config

import (
	"strings"

	"github.com/spf13/viper"
	"github.com/systmms/enrev/internal/logging"
)

// Defaults for settings that can be overridden by flags or ENREV_*
// environment variables.
const (
	DefaultFormat   = "table"
	DefaultMaxDepth = 10
)

// Config holds the runtime configuration
type Config struct {
	Logger         *logging.Logger
	NonInteractive bool
	NoColor        bool
	Debug          bool

	// Format selects the defect-report output: table, json or sarif.
	Format string
	// Output is the report destination path; empty means stdout.
	Output string
	// MaxDepth bounds directory discovery and target-directory search.
	MaxDepth int
}

// New returns a Config populated from environment-backed settings.
func New() *Config {
	v := newViper()
	return &Config{
		NoColor:  v.GetBool("no_color"),
		Debug:    v.GetBool("debug"),
		Format:   v.GetString("format"),
		MaxDepth: v.GetInt("max_depth"),
	}
}

// newViper builds the settings source: defaults overlaid by ENREV_*
// environment variables (ENREV_FORMAT, ENREV_MAX_DEPTH, ...).
func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("format", DefaultFormat)
	v.SetDefault("max_depth", DefaultMaxDepth)
	v.SetDefault("no_color", false)
	v.SetDefault("debug", false)
	v.SetEnvPrefix("ENREV")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}
