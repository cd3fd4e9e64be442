// Package paths resolves where vimgym keeps its data.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

func init() {
	// HOME can change between commands run in one process.
	homedir.DisableCache = true
}

// HomeEnv overrides the data directory.
const HomeEnv = "VIMGYM_HOME"

// ResolveDataDir picks the data directory. An explicit dir wins, then
// $VIMGYM_HOME, then ~/.vimgym. A leading ~ is expanded. When the
// directory contains a "redirect" file its trimmed content, relative to
// the directory, is followed once.
func ResolveDataDir(dir string) string {
	if dir == "" {
		dir = os.Getenv(HomeEnv)
	}
	if dir == "" {
		dir = "~/.vimgym"
	}
	dir = filepath.Clean(ExpandHome(dir))
	return followRedirect(dir)
}

// ExpandHome replaces a leading ~ with the user's home directory. Paths
// it cannot expand, such as ~other, come back unchanged.
func ExpandHome(p string) string {
	expanded, err := homedir.Expand(p)
	if err != nil {
		return p
	}
	return expanded
}

func followRedirect(dir string) string {
	content, err := os.ReadFile(filepath.Join(dir, "redirect")) //nolint:gosec // redirect lives inside the data dir
	if err != nil {
		return dir
	}
	target := strings.TrimSpace(string(content))
	if target == "" {
		return dir
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Clean(filepath.Join(dir, target))
}

// Database is the SQLite file inside dataDir.
func Database(dataDir string) string { return filepath.Join(dataDir, "vimgym.db") }

// DebugLog is the debug log inside dataDir.
func DebugLog(dataDir string) string { return filepath.Join(dataDir, "debug.log") }

// Traces is the JSONL trace file inside dataDir.
func Traces(dataDir string) string { return filepath.Join(dataDir, "traces", "traces.jsonl") }

// UserLessons is the default directory for user lesson files.
func UserLessons(dataDir string) string { return filepath.Join(dataDir, "lessons") }
