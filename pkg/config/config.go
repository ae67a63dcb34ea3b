// Package config provides configuration management for yoshidev.
// It supports multi-layer configuration with precedence:
//  1. Built-in defaults (lowest priority)
//  2. Global user config (~/.config/yoshidev/config.toml)
//  3. Project config (.yoshidev/config.toml or yoshidev.toml)
//  4. Environment variables (YOSHIDEV_*)
//  5. CLI flags (highest priority)
package config

import (
	"time"

	"github.com/yoshimi/yoshidev/pkg/buildnum"
	"github.com/yoshimi/yoshidev/pkg/guideversion"
)

// Config is the main configuration struct for yoshidev.
type Config struct {
	// BuildNum configures the build counter updater.
	BuildNum BuildNumConfig `toml:"buildnum"`

	// Guide configures the user guide version splicer.
	Guide GuideConfig `toml:"guide"`

	// UDP configures the interactive UDP debug client.
	UDP UDPConfig `toml:"udp"`
}

// BuildNumConfig holds build counter settings.
type BuildNumConfig struct {
	// File is the header holding the counter line, relative to the working directory.
	File string `toml:"file"`

	// Marker is the prefix identifying the counter line.
	Marker string `toml:"marker"`

	// TruncateTail drops the lines after the counter line on rewrite.
	TruncateTail *bool `toml:"truncate_tail"`

	// History records each bump in .yoshidev/state.json.
	History *bool `toml:"history"`
}

// GuideConfig holds user guide settings.
type GuideConfig struct {
	// VersionFile holds the program version on its first line.
	VersionFile string `toml:"version_file"`

	// Document is the published guide page.
	Document string `toml:"document"`

	// Template is the reference page the document is generated from.
	// When empty the document is rewritten in place.
	Template string `toml:"template"`

	// Padded pads the heading to a fixed width in template mode too.
	Padded *bool `toml:"padded"`
}

// UDPConfig holds UDP client settings.
type UDPConfig struct {
	// Host is the target host; empty means the local machine.
	Host string `toml:"host"`

	// Port is the target port; 0 means prompt for it.
	Port int `toml:"port"`

	// Local is the local bind address.
	Local string `toml:"local"`

	// BufferSize is the largest reply accepted, in bytes.
	BufferSize int `toml:"buffer_size"`

	// Timeout bounds the wait for each reply; 0 waits forever.
	Timeout Duration `toml:"timeout"`
}

// Duration is a time.Duration that decodes from TOML strings like "5s".
type Duration struct {
	time.Duration
	set bool
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	d.set = true
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// NewDuration returns a Duration marked as explicitly set.
func NewDuration(v time.Duration) Duration {
	return Duration{Duration: v, set: true}
}

// NewConfig creates a config with built-in defaults.
func NewConfig() *Config {
	falseVal := false
	trueVal := true

	return &Config{
		BuildNum: BuildNumConfig{
			File:         buildnum.DefaultFile,
			Marker:       buildnum.DefaultMarker,
			TruncateTail: &falseVal,
			History:      &trueVal,
		},
		Guide: GuideConfig{
			VersionFile: guideversion.DefaultVersionFile,
			Document:    guideversion.DefaultDocument,
			Padded:      &falseVal,
		},
		UDP: UDPConfig{
			BufferSize: 512,
			Timeout:    NewDuration(5 * time.Second),
		},
	}
}

// Merge merges another config into this one (other takes precedence).
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Merge build counter config
	if other.BuildNum.File != "" {
		c.BuildNum.File = other.BuildNum.File
	}
	if other.BuildNum.Marker != "" {
		c.BuildNum.Marker = other.BuildNum.Marker
	}
	if other.BuildNum.TruncateTail != nil {
		c.BuildNum.TruncateTail = other.BuildNum.TruncateTail
	}
	if other.BuildNum.History != nil {
		c.BuildNum.History = other.BuildNum.History
	}

	// Merge guide config
	if other.Guide.VersionFile != "" {
		c.Guide.VersionFile = other.Guide.VersionFile
	}
	if other.Guide.Document != "" {
		c.Guide.Document = other.Guide.Document
	}
	if other.Guide.Template != "" {
		c.Guide.Template = other.Guide.Template
	}
	if other.Guide.Padded != nil {
		c.Guide.Padded = other.Guide.Padded
	}

	// Merge UDP config
	if other.UDP.Host != "" {
		c.UDP.Host = other.UDP.Host
	}
	if other.UDP.Port != 0 {
		c.UDP.Port = other.UDP.Port
	}
	if other.UDP.Local != "" {
		c.UDP.Local = other.UDP.Local
	}
	if other.UDP.BufferSize != 0 {
		c.UDP.BufferSize = other.UDP.BufferSize
	}
	if other.UDP.Timeout.set {
		c.UDP.Timeout = other.UDP.Timeout
	}
}

// TruncateTail returns the effective truncate_tail setting.
func (c *Config) TruncateTail() bool {
	return c.BuildNum.TruncateTail != nil && *c.BuildNum.TruncateTail
}

// HistoryEnabled returns the effective history setting.
func (c *Config) HistoryEnabled() bool {
	return c.BuildNum.History == nil || *c.BuildNum.History
}

// Padded returns the effective guide padding setting.
func (c *Config) Padded() bool {
	return c.Guide.Padded != nil && *c.Guide.Padded
}
