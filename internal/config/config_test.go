package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateConfigDir points the platform config lookup at a temp directory.
func isolateConfigDir(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("config path isolation not wired for windows")
	}
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolateConfigDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Audio.DeviceName)
	assert.Equal(t, "recording", cfg.Output.FilePrefix)
	assert.True(t, cfg.Gain.Normalize)
	assert.Equal(t, -1.0, cfg.Gain.TargetDBFS)
	assert.Equal(t, 5.0, cfg.Gain.ManualFactor)
	assert.NotEmpty(t, cfg.Output.SaveDir)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	isolateConfigDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	cfg.LogLevel = "debug"
	cfg.Audio.DeviceName = "Speakers [Loopback]"
	cfg.Output.FilePrefix = "session"
	cfg.Output.FileSuffix = "draft"
	cfg.Gain.Normalize = false
	cfg.Gain.ManualFactor = 12
	require.NoError(t, cfg.Save())

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := isolateConfigDir(t)

	path := filepath.Join(dir, "waverec", "config.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(`{"gain":{"manual_factor":50}}`), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateLogLevel(t *testing.T) {
	isolateConfigDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	cfg.LogLevel = "verbose"
	assert.Error(t, cfg.Validate())

	cfg.LogLevel = "trace"
	assert.NoError(t, cfg.Validate())
}

func TestTemplate(t *testing.T) {
	cfg := &Config{Output: OutputConfig{
		FilePrefix: "take",
		DateLayout: "2006-01-02",
		FileSuffix: "draft",
	}}

	tmpl := cfg.Template()
	assert.Equal(t, "take", tmpl.Prefix)
	assert.Equal(t, "2006-01-02", tmpl.DateLayout)
	assert.Equal(t, "draft", tmpl.Suffix)
}
