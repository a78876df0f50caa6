package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DirName is the per-project configuration directory.
const DirName = ".insertthis"

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from files and environment variables.
	// Priority: defaults → user config → project config → environment (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
	userDir string
}

// NewLoader creates a loader for the project rooted at rootDir. The user
// config directory is resolved with os.UserConfigDir; when that fails only
// the project config is read.
func NewLoader(rootDir string) Loader {
	userDir := ""
	if dir, err := os.UserConfigDir(); err == nil {
		userDir = filepath.Join(dir, "insertthis")
	}
	return &loader{rootDir: rootDir, userDir: userDir}
}

// NewLoaderWithUserDir creates a loader with an explicit user config
// directory. An empty userDir disables the user layer.
func NewLoaderWithUserDir(rootDir, userDir string) Loader {
	return &loader{rootDir: rootDir, userDir: userDir}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (INSERTTHIS_*)
// 2. Project config file (.insertthis/config.yml or .insertthis/config.yaml)
// 3. User config file (<user config dir>/insertthis/config.yml)
// 4. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	// Enable environment variable overrides
	v.SetEnvPrefix("INSERTTHIS")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., INSERTTHIS_NAMING_FALLBACK)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvVars(v)

	setDefaults(v)

	dirs := []string{l.userDir}
	if l.rootDir != "" {
		dirs = append(dirs, filepath.Join(l.rootDir, DirName))
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		settings, err := readFile(dir)
		if err != nil {
			return nil, err
		}
		if settings == nil {
			continue
		}
		if err := v.MergeConfigMap(settings); err != nil {
			return nil, fmt.Errorf("failed to merge config from %s: %w", dir, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// readFile reads config.yml (or config.yaml) from dir. A missing file yields
// nil settings and no error.
func readFile(dir string) (map[string]any, error) {
	fv := viper.New()
	fv.SetConfigName("config")
	fv.SetConfigType("yaml")
	fv.AddConfigPath(dir)

	if err := fv.ReadInConfig(); err != nil {
		// Config file not found is acceptable - defaults and env still apply
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return fv.AllSettings(), nil
}

// bindEnvVars binds the scalar keys; maps are only configurable from files.
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("naming.fallback")
	v.BindEnv("insert.position_encoding")
	v.BindEnv("insert.jsx_template")
	v.BindEnv("log.verbosity")
	v.BindEnv("log.file")
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("languages", defaults.Languages)

	v.SetDefault("naming.suffixes", defaults.Naming.Suffixes)
	v.SetDefault("naming.fallback", defaults.Naming.Fallback)

	v.SetDefault("insert.position_encoding", defaults.Insert.PositionEncoding)
	v.SetDefault("insert.jsx_template", defaults.Insert.JSXTemplate)

	v.SetDefault("log.verbosity", defaults.Log.Verbosity)
	v.SetDefault("log.file", defaults.Log.File)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}

// LoadConfigFile loads configuration from an explicit file, still applying
// defaults and environment overrides.
func LoadConfigFile(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INSERTTHIS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvVars(v)
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
