// Package config holds vimgym's configuration types, defaults and the
// commented default config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/vimgym/internal/log"
)

// Config holds all configuration options for vimgym.
type Config struct {
	DataDir string          `mapstructure:"data_dir"`
	User    string          `mapstructure:"user"`
	Display DisplayConfig   `mapstructure:"display"`
	UI      UIConfig        `mapstructure:"ui"`
	Theme   ThemeConfig     `mapstructure:"theme"`
	Session SessionConfig   `mapstructure:"session"`
	Content ContentConfig   `mapstructure:"content"`
	Tracing TracingConfig   `mapstructure:"tracing"`
	Flags   map[string]bool `mapstructure:"flags"`
}

// DisplayConfig sizes the editor pane.
type DisplayConfig struct {
	Width           int  `mapstructure:"width"`
	Height          int  `mapstructure:"height"`
	LineNumbers     bool `mapstructure:"line_numbers"`
	HighlightCursor bool `mapstructure:"highlight_cursor"`
}

// UIConfig holds user interface options.
type UIConfig struct {
	ShowHints     bool   `mapstructure:"show_hints"`
	ShowStatusBar bool   `mapstructure:"show_status_bar"`
	MarkdownStyle string `mapstructure:"markdown_style"` // "dark" (default) or "light"
}

// ThemeConfig selects and customizes the color theme.
type ThemeConfig struct {
	// Preset is a built-in theme name; empty means "default".
	Preset string `mapstructure:"preset"`

	// Mode forces "light" or "dark". Empty follows the terminal.
	Mode string `mapstructure:"mode"`

	// Colors overrides individual tokens, e.g. "editor.cursor": "#FF0000".
	// Nested YAML maps are flattened to dotted keys.
	Colors map[string]any `mapstructure:"colors"`
}

// FlattenedColors returns Colors keyed by dotted token names.
func (t ThemeConfig) FlattenedColors() map[string]string {
	result := make(map[string]string)
	flattenColors("", t.Colors, result)
	return result
}

func flattenColors(prefix string, m map[string]any, result map[string]string) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case string:
			result[key] = val
		case map[string]any:
			flattenColors(key, val, result)
		case map[any]any:
			converted := make(map[string]any, len(val))
			for mk, mv := range val {
				if s, ok := mk.(string); ok {
					converted[s] = mv
				}
			}
			flattenColors(key, converted, result)
		}
	}
}

// SessionConfig controls auto-save and cleanup of practice sessions.
type SessionConfig struct {
	AutoSaveInterval time.Duration `mapstructure:"auto_save_interval"`
	MaxAgeDays       int           `mapstructure:"max_age_days"`
}

// ContentConfig points at optional user lesson files.
type ContentConfig struct {
	// UserDir holds extra module YAML files. Empty disables user lessons.
	UserDir string `mapstructure:"user_dir"`
	// Watch reloads UserDir when its files change.
	Watch bool `mapstructure:"watch"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	Exporter     string  `mapstructure:"exporter"` // none, file, stdout, otlp
	FilePath     string  `mapstructure:"file_path"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRate   float64 `mapstructure:"sample_rate"`
}

// Defaults returns a Config with every option at its default.
func Defaults() Config {
	return Config{
		DataDir: "",
		Display: DisplayConfig{
			Width:           80,
			Height:          24,
			LineNumbers:     true,
			HighlightCursor: true,
		},
		UI: UIConfig{
			ShowHints:     true,
			ShowStatusBar: true,
			MarkdownStyle: "dark",
		},
		Session: SessionConfig{
			AutoSaveInterval: 30 * time.Second,
			MaxAgeDays:       30,
		},
		Content: ContentConfig{
			Watch: true,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// Validate checks ranges and enumerations. Empty values are left to
// defaults and pass.
func Validate(c Config) error {
	if err := ValidateDisplay(c.Display); err != nil {
		return err
	}
	if err := ValidateUI(c.UI); err != nil {
		return err
	}
	if err := ValidateSession(c.Session); err != nil {
		return err
	}
	if c.Theme.Mode != "" && c.Theme.Mode != "light" && c.Theme.Mode != "dark" {
		return fmt.Errorf("theme.mode must be \"light\" or \"dark\", got %q", c.Theme.Mode)
	}
	return ValidateTracing(c.Tracing)
}

// ValidateDisplay checks the editor pane size.
func ValidateDisplay(d DisplayConfig) error {
	if d.Width < 20 || d.Width > 500 {
		return fmt.Errorf("display.width must be between 20 and 500, got %d", d.Width)
	}
	if d.Height < 3 || d.Height > 200 {
		return fmt.Errorf("display.height must be between 3 and 200, got %d", d.Height)
	}
	return nil
}

// ValidateUI checks user interface options.
func ValidateUI(ui UIConfig) error {
	switch ui.MarkdownStyle {
	case "", "dark", "light":
		return nil
	}
	return fmt.Errorf("ui.markdown_style must be \"dark\" or \"light\", got %q", ui.MarkdownStyle)
}

// ValidateSession checks auto-save settings.
func ValidateSession(s SessionConfig) error {
	if s.AutoSaveInterval != 0 && s.AutoSaveInterval < time.Second {
		return fmt.Errorf("session.auto_save_interval must be at least 1s, got %s", s.AutoSaveInterval)
	}
	if s.MaxAgeDays < 0 {
		return fmt.Errorf("session.max_age_days must not be negative, got %d", s.MaxAgeDays)
	}
	return nil
}

// ValidateTracing checks tracing configuration.
func ValidateTracing(t TracingConfig) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}
	switch t.Exporter {
	case "", "none", "file", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", t.Exporter)
	}
	if t.Enabled && t.Exporter == "otlp" && t.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}
	return nil
}

// DefaultConfigTemplate is the commented config written on first run.
func DefaultConfigTemplate() string {
	return `# vimgym configuration

# Where the database, debug log and traces live (default: ~/.vimgym)
# data_dir: ~/.vimgym

# Active learner; set by "vimgym user switch"
# user: alice

# Editor pane
display:
  width: 80
  height: 24
  line_numbers: true
  highlight_cursor: true

# UI settings
ui:
  show_hints: true        # Show the next useful key in the status line
  show_status_bar: true
  # markdown_style: dark  # Lesson text style: "dark" (default) or "light"

# Theme
# theme:
#   preset: catppuccin-mocha   # default, catppuccin-mocha, catppuccin-latte, dracula, nord, high-contrast
#   mode: dark
#   colors:
#     editor.cursor: "#F38BA8"

# Practice sessions
session:
  auto_save_interval: 30s
  max_age_days: 30        # Inactive sessions older than this are removed

# Extra lessons
content:
  # user_dir: ~/.vimgym/lessons
  watch: true

# Tracing (OpenTelemetry)
# tracing:
#   enabled: true
#   exporter: file        # none, file, stdout, otlp
#   file_path: ~/.vimgym/traces/traces.jsonl
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0

# Feature flags
# flags:
#   learning-hints: true
#   strict-sequences: false
#   session-resume: true
`
}

// WriteDefaultConfig writes DefaultConfigTemplate to configPath, creating
// its directory.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
