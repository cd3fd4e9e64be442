package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveDataDir(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Setenv(HomeEnv, "")
	require.Equal(t, filepath.Join(home, ".vimgym"), ResolveDataDir(""))

	env := t.TempDir()
	t.Setenv(HomeEnv, env)
	require.Equal(t, env, ResolveDataDir(""))

	explicit := t.TempDir()
	require.Equal(t, explicit, ResolveDataDir(explicit+"/"), "explicit dir wins and is cleaned")
}

func TestResolveDataDir_Redirect(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "redirect"), []byte("../shared\n"), 0600))
	require.Equal(t, filepath.Join(filepath.Dir(dir), "shared"), ResolveDataDir(dir))

	abs := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "redirect"), []byte(abs), 0600))
	require.Equal(t, abs, ResolveDataDir(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "redirect"), []byte("  "), 0600))
	require.Equal(t, dir, ResolveDataDir(dir))
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.Equal(t, home, ExpandHome("~"))
	require.Equal(t, filepath.Join(home, "lessons"), ExpandHome("~/lessons"))
	require.Equal(t, "/abs/~/x", ExpandHome("/abs/~/x"))
	require.Equal(t, "~other/x", ExpandHome("~other/x"))
	require.Equal(t, "", ExpandHome(""))
}

func TestFiles(t *testing.T) {
	require.Equal(t, filepath.Join("d", "vimgym.db"), Database("d"))
	require.Equal(t, filepath.Join("d", "debug.log"), DebugLog("d"))
	require.Equal(t, filepath.Join("d", "traces", "traces.jsonl"), Traces("d"))
	require.Equal(t, filepath.Join("d", "lessons"), UserLessons("d"))
}
