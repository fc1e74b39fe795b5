package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_CreatesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "<URDFVisualizer>"))
	assert.Contains(t, string(data), "<DefaultBaseLink>base_link</DefaultBaseLink>")

	assert.Equal(t, 8089, cfg.Server.Port)
	assert.Equal(t, "base_link", cfg.Kinematics.DefaultBaseLink)
	assert.Equal(t, 3.14, cfg.Kinematics.DefaultRange)
	assert.True(t, cfg.Security.AllowFileDeletion)
	assert.Equal(t, filepath.Join(dir, "data", "uploads"), cfg.GetUploadDir())
}

func TestLoadConfig_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	content := `<?xml version="1.0" encoding="UTF-8"?>
<URDFVisualizer>
  <Server><Port>9000</Port><BindAddress>127.0.0.1</BindAddress></Server>
  <Storage><DataDirectory>/srv/urdf</DataDirectory><UploadsDirectory>up</UploadsDirectory></Storage>
  <Kinematics><DefaultBaseLink>world</DefaultBaseLink><ClampToLimits>false</ClampToLimits></Kinematics>
  <Security><AllowFileDeletion>false</AllowFileDeletion></Security>
  <Advanced><LogLevel>debug</LogLevel></Advanced>
</URDFVisualizer>`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.GetServerAddr())
	assert.Equal(t, "/srv/urdf", cfg.Storage.DataDirectory)
	assert.Equal(t, filepath.Join(dir, "up"), cfg.Storage.UploadsDirectory)
	assert.Equal(t, "world", cfg.Kinematics.DefaultBaseLink)
	assert.False(t, cfg.Kinematics.ClampToLimits)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.False(t, cfg.Security.AllowFileDeletion)

	// Sections absent from the file keep their defaults.
	assert.Equal(t, 10, cfg.Session.MaxSessions)
	assert.Equal(t, 3.14, cfg.Kinematics.DefaultRange)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "7777")
	t.Setenv("URDF_BASE_LINK", "torso")
	dataDir := t.TempDir()
	t.Setenv("DATA_DIR", dataDir)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "torso", cfg.Kinematics.DefaultBaseLink)
	assert.Equal(t, dataDir, cfg.Storage.DataDirectory)
	assert.Equal(t, filepath.Join(dataDir, "uploads"), cfg.Storage.UploadsDirectory)
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("<URDFVisualizer><Server>"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSlogLevel(t *testing.T) {
	for level, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"chatty":  slog.LevelInfo,
	} {
		cfg := DefaultConfig()
		cfg.Advanced.LogLevel = level
		assert.Equal(t, want, cfg.SlogLevel(), level)
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Storage.DataDirectory = filepath.Join(dir, "d")
	cfg.Storage.UploadsDirectory = filepath.Join(dir, "d", "u")

	require.NoError(t, cfg.EnsureDirectories())
	_, err := os.Stat(cfg.Storage.UploadsDirectory)
	assert.NoError(t, err)
}
