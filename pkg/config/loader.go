package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the name of the project-level config file.
const ConfigFileName = "yoshidev.toml"

// ConfigDirName is the name of the project-level config directory.
const ConfigDirName = ".yoshidev"

// GlobalConfigDir is the name of the global config directory inside user's config.
const GlobalConfigDir = "yoshidev"

// Load loads configuration from all layers in order of precedence:
//  1. Built-in defaults
//  2. Global user config (~/.config/yoshidev/config.toml)
//  3. Project config (.yoshidev/config.toml or yoshidev.toml)
//  4. Environment variables (YOSHIDEV_*)
//
// CLI flags are applied separately after Load() returns.
func Load() *Config {
	cfg := NewConfig()

	// Layer 2: Global user config
	if globalCfg := loadGlobalConfig(); globalCfg != nil {
		cfg.Merge(globalCfg)
	}

	// Layer 3: Project config
	if projectCfg := loadProjectConfig(); projectCfg != nil {
		cfg.Merge(projectCfg)
	}

	// Layer 4: Environment variables
	applyEnvironmentVariables(cfg)

	return cfg
}

// LoadFrom loads configuration starting from a specific directory.
func LoadFrom(dir string) *Config {
	cfg := NewConfig()

	// Layer 2: Global user config
	if globalCfg := loadGlobalConfig(); globalCfg != nil {
		cfg.Merge(globalCfg)
	}

	// Layer 3: Project config from specified directory
	if projectCfg := loadProjectConfigFrom(dir); projectCfg != nil {
		cfg.Merge(projectCfg)
	}

	// Layer 4: Environment variables
	applyEnvironmentVariables(cfg)

	return cfg
}

// LoadWithFile loads configuration like LoadFrom(dir) and then merges the
// explicit config file at path on top of the file layers. Unlike the
// discovered layers, an explicit file that is missing or malformed is an error.
func LoadWithFile(dir, path string) (*Config, error) {
	cfg := NewConfig()

	if globalCfg := loadGlobalConfig(); globalCfg != nil {
		cfg.Merge(globalCfg)
	}
	if projectCfg := loadProjectConfigFrom(dir); projectCfg != nil {
		cfg.Merge(projectCfg)
	}

	var explicit Config
	if _, err := toml.DecodeFile(path, &explicit); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	cfg.Merge(&explicit)

	applyEnvironmentVariables(cfg)
	return cfg, nil
}

// loadGlobalConfig loads the global user configuration from ~/.config/yoshidev/config.toml.
func loadGlobalConfig() *Config {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}

	configPath := filepath.Join(configDir, GlobalConfigDir, "config.toml")
	return loadConfigFile(configPath)
}

// loadProjectConfig looks for project configuration in the current directory and parents.
func loadProjectConfig() *Config {
	wd, err := os.Getwd()
	if err != nil {
		return nil
	}
	return loadProjectConfigFrom(wd)
}

// loadProjectConfigFrom looks for project configuration starting from the given directory.
func loadProjectConfigFrom(dir string) *Config {
	// Search up the directory tree for config files
	current := dir
	for {
		// Check for .yoshidev/config.toml first
		projectDir := filepath.Join(current, ConfigDirName, "config.toml")
		if cfg := loadConfigFile(projectDir); cfg != nil {
			return cfg
		}

		// Check for yoshidev.toml in project root
		projectToml := filepath.Join(current, ConfigFileName)
		if cfg := loadConfigFile(projectToml); cfg != nil {
			return cfg
		}

		// Stop at filesystem root or repository root
		if isWorkspaceRoot(current) {
			break
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return nil
}

// isWorkspaceRoot checks if the directory is a repository root (has .git or src/version.txt).
func isWorkspaceRoot(dir string) bool {
	markers := []string{".git", ".hg", filepath.Join("src", "version.txt")}
	for _, marker := range markers {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

// loadConfigFile loads a configuration from a TOML file.
func loadConfigFile(path string) *Config {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil
	}

	return &cfg
}

// applyEnvironmentVariables applies YOSHIDEV_* environment variables to the config.
func applyEnvironmentVariables(cfg *Config) {
	// Build counter settings
	if v := os.Getenv("YOSHIDEV_BUILDNUM_FILE"); v != "" {
		cfg.BuildNum.File = v
	}
	if v := os.Getenv("YOSHIDEV_BUILDNUM_MARKER"); v != "" {
		cfg.BuildNum.Marker = v
	}
	applyBoolEnv("YOSHIDEV_BUILDNUM_TRUNCATE_TAIL", &cfg.BuildNum.TruncateTail)
	applyBoolEnv("YOSHIDEV_BUILDNUM_HISTORY", &cfg.BuildNum.History)

	// Guide settings
	if v := os.Getenv("YOSHIDEV_GUIDE_VERSION_FILE"); v != "" {
		cfg.Guide.VersionFile = v
	}
	if v := os.Getenv("YOSHIDEV_GUIDE_DOCUMENT"); v != "" {
		cfg.Guide.Document = v
	}
	if v := os.Getenv("YOSHIDEV_GUIDE_TEMPLATE"); v != "" {
		cfg.Guide.Template = v
	}
	applyBoolEnv("YOSHIDEV_GUIDE_PADDED", &cfg.Guide.Padded)

	// UDP client settings
	if v := os.Getenv("YOSHIDEV_UDP_HOST"); v != "" {
		cfg.UDP.Host = v
	}
	applyIntEnv("YOSHIDEV_UDP_PORT", &cfg.UDP.Port)
	if v := os.Getenv("YOSHIDEV_UDP_LOCAL"); v != "" {
		cfg.UDP.Local = v
	}
	applyIntEnv("YOSHIDEV_UDP_BUFFER_SIZE", &cfg.UDP.BufferSize)
	if v := os.Getenv("YOSHIDEV_UDP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.UDP.Timeout = NewDuration(d)
		}
	}
}

// applyIntEnv applies an integer environment variable, ignoring malformed values.
func applyIntEnv(envVar string, target *int) {
	if v := os.Getenv(envVar); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*target = n
		}
	}
}

// applyBoolEnv applies a boolean environment variable to a pointer.
func applyBoolEnv(envVar string, target **bool) {
	if v := os.Getenv(envVar); v != "" {
		v = strings.ToLower(v)
		if v == "true" || v == "1" || v == "yes" {
			t := true
			*target = &t
		} else if v == "false" || v == "0" || v == "no" {
			f := false
			*target = &f
		}
	}
}

// GetGlobalConfigPath returns the path to the global config file.
func GetGlobalConfigPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, GlobalConfigDir, "config.toml")
}

// GetProjectConfigPaths returns potential project config paths for a given directory.
func GetProjectConfigPaths(dir string) []string {
	return []string{
		filepath.Join(dir, ConfigDirName, "config.toml"),
		filepath.Join(dir, ConfigFileName),
	}
}
