package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/zjrosen/vimgym/internal/log"
)

// LocalPath is checked before the per-user config.
const LocalPath = ".vimgym/config.yaml"

// KeyDelimiter separates nested viper keys. Dots are taken by theme color
// tokens such as "editor.cursor".
const KeyDelimiter = "::"

// UserPath returns ~/.config/vimgym/config.yaml, or "" without a home dir.
func UserPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "vimgym", "config.yaml")
}

// NewViper returns a viper instance with every default registered.
func NewViper() *viper.Viper {
	v := viper.NewWithOptions(viper.KeyDelimiter(KeyDelimiter))
	SetDefaults(v)
	return v
}

// SetDefaults registers Defaults() on v.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	set := func(key string, value any) { v.SetDefault(key, value) }
	k := func(parts ...string) string {
		out := parts[0]
		for _, p := range parts[1:] {
			out += KeyDelimiter + p
		}
		return out
	}
	set("data_dir", d.DataDir)
	set("user", d.User)
	set(k("display", "width"), d.Display.Width)
	set(k("display", "height"), d.Display.Height)
	set(k("display", "line_numbers"), d.Display.LineNumbers)
	set(k("display", "highlight_cursor"), d.Display.HighlightCursor)
	set(k("ui", "show_hints"), d.UI.ShowHints)
	set(k("ui", "show_status_bar"), d.UI.ShowStatusBar)
	set(k("ui", "markdown_style"), d.UI.MarkdownStyle)
	set(k("session", "auto_save_interval"), d.Session.AutoSaveInterval)
	set(k("session", "max_age_days"), d.Session.MaxAgeDays)
	set(k("content", "watch"), d.Content.Watch)
	set(k("tracing", "enabled"), d.Tracing.Enabled)
	set(k("tracing", "exporter"), d.Tracing.Exporter)
	set(k("tracing", "otlp_endpoint"), d.Tracing.OTLPEndpoint)
	set(k("tracing", "sample_rate"), d.Tracing.SampleRate)
}

// Load reads the config into a Config. explicit, when set, is the only file
// considered. Otherwise LocalPath is used if present, then UserPath; when
// neither exists a commented default is written to UserPath. The returned
// path is the file that was read, or "" when running on defaults.
func Load(v *viper.Viper, explicit string) (Config, string, error) {
	path := explicit
	if path == "" {
		path = findConfig()
	}
	if path == "" {
		if p := UserPath(); p != "" {
			if err := WriteDefaultConfig(p); err == nil {
				path = p
			} else {
				log.Warn(log.CatConfig, "Running without a config file", "error", err)
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, "", fmt.Errorf("reading config %s: %w", path, err)
		}
		log.Debug(log.CatConfig, "Loaded config", "path", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, "", fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, "", fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, path, nil
}

func findConfig() string {
	for _, p := range []string{LocalPath, UserPath()} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		} else if !errors.Is(err, fs.ErrNotExist) {
			log.Warn(log.CatConfig, "Cannot stat config", "path", p, "error", err)
		}
	}
	return ""
}
