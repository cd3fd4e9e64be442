package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	require.NoError(t, Validate(Defaults()))
}

func TestDefaultTemplateMatchesDefaults(t *testing.T) {
	path := writeConfig(t, DefaultConfigTemplate())
	cfg, used, err := Load(NewViper(), path)
	require.NoError(t, err)
	require.Equal(t, path, used)

	d := Defaults()
	require.Equal(t, d.Display, cfg.Display)
	require.Equal(t, d.UI, cfg.UI)
	require.Equal(t, d.Session, cfg.Session)
	require.Equal(t, d.Tracing, cfg.Tracing)
	require.True(t, cfg.Content.Watch)
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
user: alice
data_dir: /tmp/gym
display:
  width: 100
ui:
  markdown_style: light
session:
  auto_save_interval: 2m
theme:
  preset: nord
  colors:
    editor.cursor: "#FF0000"
    status:
      error: "#00FF00"
flags:
  strict-sequences: true
`)
	cfg, _, err := Load(NewViper(), path)
	require.NoError(t, err)
	require.Equal(t, "alice", cfg.User)
	require.Equal(t, "/tmp/gym", cfg.DataDir)
	require.Equal(t, 100, cfg.Display.Width)
	require.Equal(t, 24, cfg.Display.Height, "unset keys keep defaults")
	require.Equal(t, "light", cfg.UI.MarkdownStyle)
	require.Equal(t, 2*time.Minute, cfg.Session.AutoSaveInterval)
	require.Equal(t, "nord", cfg.Theme.Preset)
	require.Equal(t, map[string]string{
		"editor.cursor": "#FF0000",
		"status.error":  "#00FF00",
	}, cfg.Theme.FlattenedColors())
	require.True(t, cfg.Flags["strict-sequences"])
}

func TestLoad_Invalid(t *testing.T) {
	path := writeConfig(t, "display:\n  width: 5\n")
	_, _, err := Load(NewViper(), path)
	require.ErrorContains(t, err, "display.width")

	path = writeConfig(t, "display: [\n")
	_, _, err = Load(NewViper(), path)
	require.ErrorContains(t, err, "reading config")
}

func TestLoad_WritesDefaultWhenMissing(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	cfg, used, err := Load(NewViper(), "")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "vimgym", "config.yaml"), used)
	require.FileExists(t, used)
	require.Equal(t, 80, cfg.Display.Width)
}

func TestLoad_PrefersLocal(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.MkdirAll(".vimgym", 0o750))
	require.NoError(t, os.WriteFile(LocalPath, []byte("user: local\n"), 0o600))

	cfg, used, err := Load(NewViper(), "")
	require.NoError(t, err)
	require.Equal(t, LocalPath, used)
	require.Equal(t, "local", cfg.User)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"short display", func(c *Config) { c.Display.Height = 1 }, "display.height"},
		{"markdown style", func(c *Config) { c.UI.MarkdownStyle = "neon" }, "ui.markdown_style"},
		{"fast autosave", func(c *Config) { c.Session.AutoSaveInterval = time.Millisecond }, "auto_save_interval"},
		{"negative age", func(c *Config) { c.Session.MaxAgeDays = -1 }, "max_age_days"},
		{"theme mode", func(c *Config) { c.Theme.Mode = "sepia" }, "theme.mode"},
		{"sample rate", func(c *Config) { c.Tracing.SampleRate = 2 }, "sample_rate"},
		{"exporter", func(c *Config) { c.Tracing.Exporter = "kafka" }, "tracing.exporter"},
		{"otlp endpoint", func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.Exporter = "otlp"
			c.Tracing.OTLPEndpoint = ""
		}, "otlp_endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			require.ErrorContains(t, Validate(cfg), tt.errMsg)
		})
	}
}
