package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.BuildNum.File != "src/Misc/ConfBuild.h" {
		t.Errorf("buildnum file should default to src/Misc/ConfBuild.h, got %q", cfg.BuildNum.File)
	}
	if cfg.BuildNum.Marker != "#define BUILD_NUMBER" {
		t.Errorf("buildnum marker should default to '#define BUILD_NUMBER', got %q", cfg.BuildNum.Marker)
	}
	if cfg.TruncateTail() {
		t.Error("truncate_tail should be off by default")
	}
	if !cfg.HistoryEnabled() {
		t.Error("history should be on by default")
	}
	if cfg.Guide.Template != "" {
		t.Errorf("guide template should default to empty (in-place mode), got %q", cfg.Guide.Template)
	}
	if cfg.UDP.BufferSize != 512 {
		t.Errorf("udp buffer size should default to 512, got %d", cfg.UDP.BufferSize)
	}
	if cfg.UDP.Timeout.Duration != 5*time.Second {
		t.Errorf("udp timeout should default to 5s, got %v", cfg.UDP.Timeout.Duration)
	}
}

func TestMerge(t *testing.T) {
	base := NewConfig()
	trueVal := true
	other := &Config{
		BuildNum: BuildNumConfig{
			File:         "include/build.h",
			TruncateTail: &trueVal,
		},
		UDP: UDPConfig{
			Port:    9999,
			Timeout: NewDuration(0),
		},
	}

	base.Merge(other)

	if base.BuildNum.File != "include/build.h" {
		t.Errorf("file should be overridden, got %q", base.BuildNum.File)
	}
	if base.BuildNum.Marker != "#define BUILD_NUMBER" {
		t.Errorf("unset marker should keep default, got %q", base.BuildNum.Marker)
	}
	if !base.TruncateTail() {
		t.Error("truncate_tail should be enabled after merge")
	}
	if base.UDP.Port != 9999 {
		t.Errorf("udp port should be 9999, got %d", base.UDP.Port)
	}
	if base.UDP.Timeout.Duration != 0 {
		t.Errorf("explicit zero timeout should override default, got %v", base.UDP.Timeout.Duration)
	}
	if base.UDP.BufferSize != 512 {
		t.Errorf("unset buffer size should keep default, got %d", base.UDP.BufferSize)
	}
}

func TestMerge_UnsetTimeoutKeepsDefault(t *testing.T) {
	base := NewConfig()
	base.Merge(&Config{UDP: UDPConfig{Host: "192.168.0.3"}})

	if base.UDP.Timeout.Duration != 5*time.Second {
		t.Errorf("timeout should stay at default, got %v", base.UDP.Timeout.Duration)
	}
	if base.UDP.Host != "192.168.0.3" {
		t.Errorf("host should be overridden, got %q", base.UDP.Host)
	}
}

func TestLoadConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	configContent := `
[buildnum]
file = "src/Misc/ConfBuild.h"
marker = "#define BUILD_NUMBER"
history = false

[guide]
template = "indexref.html"
padded = true

[udp]
port = 5000
timeout = "250ms"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg := loadConfigFile(configPath)
	if cfg == nil {
		t.Fatal("loadConfigFile returned nil")
	}

	if cfg.BuildNum.History == nil || *cfg.BuildNum.History {
		t.Error("history should be disabled")
	}
	if cfg.Guide.Template != "indexref.html" {
		t.Errorf("guide template should be 'indexref.html', got %q", cfg.Guide.Template)
	}
	if cfg.Guide.Padded == nil || !*cfg.Guide.Padded {
		t.Error("guide padding should be enabled")
	}
	if cfg.UDP.Port != 5000 {
		t.Errorf("udp port should be 5000, got %d", cfg.UDP.Port)
	}
	if cfg.UDP.Timeout.Duration != 250*time.Millisecond {
		t.Errorf("udp timeout should be 250ms, got %v", cfg.UDP.Timeout.Duration)
	}
}

func TestLoadConfigFile_Malformed(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[udp\nport = "), 0o644); err != nil {
		t.Fatal(err)
	}

	if cfg := loadConfigFile(configPath); cfg != nil {
		t.Error("malformed config should be ignored")
	}
}

func TestLoadWithFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", filepath.Join(tmpDir, "home"))

	explicit := filepath.Join(tmpDir, "ci.toml")
	if err := os.WriteFile(explicit, []byte("[buildnum]\nfile = \"ci/ConfBuild.h\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadWithFile(tmpDir, explicit)
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v", err)
	}
	if cfg.BuildNum.File != "ci/ConfBuild.h" {
		t.Errorf("explicit file should win, got %q", cfg.BuildNum.File)
	}

	if _, err := LoadWithFile(tmpDir, filepath.Join(tmpDir, "missing.toml")); err == nil {
		t.Error("missing explicit config should be an error")
	}
}

func TestApplyEnvironmentVariables(t *testing.T) {
	cfg := NewConfig()

	t.Setenv("YOSHIDEV_BUILDNUM_FILE", "other/ConfBuild.h")
	t.Setenv("YOSHIDEV_BUILDNUM_TRUNCATE_TAIL", "yes")
	t.Setenv("YOSHIDEV_GUIDE_PADDED", "1")
	t.Setenv("YOSHIDEV_UDP_PORT", "4242")
	t.Setenv("YOSHIDEV_UDP_BUFFER_SIZE", "not-a-number")
	t.Setenv("YOSHIDEV_UDP_TIMEOUT", "2s")

	applyEnvironmentVariables(cfg)

	if cfg.BuildNum.File != "other/ConfBuild.h" {
		t.Errorf("file should come from env, got %q", cfg.BuildNum.File)
	}
	if !cfg.TruncateTail() {
		t.Error("truncate_tail should be enabled via env var")
	}
	if !cfg.Padded() {
		t.Error("padded should be enabled via env var")
	}
	if cfg.UDP.Port != 4242 {
		t.Errorf("udp port should be 4242, got %d", cfg.UDP.Port)
	}
	if cfg.UDP.BufferSize != 512 {
		t.Errorf("malformed buffer size should be ignored, got %d", cfg.UDP.BufferSize)
	}
	if cfg.UDP.Timeout.Duration != 2*time.Second {
		t.Errorf("udp timeout should be 2s, got %v", cfg.UDP.Timeout.Duration)
	}
}

func TestProjectConfigSearch(t *testing.T) {
	tmpDir := t.TempDir()
	projectDir := filepath.Join(tmpDir, "yoshimi", "src", "Misc")
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		t.Fatalf("failed to create project dir: %v", err)
	}

	gitDir := filepath.Join(tmpDir, "yoshimi", ".git")
	if err := os.MkdirAll(gitDir, 0o755); err != nil {
		t.Fatalf("failed to create .git dir: %v", err)
	}

	configPath := filepath.Join(tmpDir, "yoshimi", "yoshidev.toml")
	configContent := `
[buildnum]
marker = "#define YOSHIMI_BUILD"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg := loadProjectConfigFrom(projectDir)
	if cfg == nil {
		t.Fatal("loadProjectConfigFrom returned nil")
	}

	if cfg.BuildNum.Marker != "#define YOSHIMI_BUILD" {
		t.Errorf("marker should come from project config, got %q", cfg.BuildNum.Marker)
	}
}

func TestWorkspaceRootDetection(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, ".git"), 0o755); err != nil {
		t.Fatalf("failed to create .git dir: %v", err)
	}
	if !isWorkspaceRoot(tmpDir) {
		t.Error("directory with .git should be workspace root")
	}

	tmpDir2 := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir2, "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir2, "src", "version.txt"), []byte("2.3.4\n"), 0o644); err != nil {
		t.Fatalf("failed to write version file: %v", err)
	}
	if !isWorkspaceRoot(tmpDir2) {
		t.Error("directory with src/version.txt should be workspace root")
	}

	if isWorkspaceRoot(t.TempDir()) {
		t.Error("empty directory should not be workspace root")
	}
}

func TestConfigPaths(t *testing.T) {
	paths := GetProjectConfigPaths("/repo")
	if len(paths) != 2 {
		t.Fatalf("expected 2 project config paths, got %v", paths)
	}
	if paths[1] != filepath.Join("/repo", "yoshidev.toml") {
		t.Errorf("second path should be yoshidev.toml, got %q", paths[1])
	}
}
