package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/vimgym/internal/presentation"
)

// execute runs the root command with args against a throwaway home and
// data directory. Flag values are reset first since cobra keeps them
// between runs.
func execute(t *testing.T, cfg string, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, cfg, "", args...)
}

func executeWithInput(t *testing.T, cfg, input string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfgFile, debug = "", false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// writeConfig points the data directory at a temp dir and returns the
// config path.
func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "config.yaml")
	body := "data_dir: " + filepath.Join(dir, "data") + "\n" +
		"user: tester\n" +
		"content:\n  user_dir: \"\"\n  watch: false\n" + extra
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRun_PrintsBuffer(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := execute(t, cfg, "run", "--text", "hello world", "--keys", "wD")
	require.NoError(t, err)
	require.Contains(t, out, "mode: normal")
	require.Contains(t, out, "---\nhello \n")
}

func TestRun_JSONWithSpacedKeys(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := execute(t, cfg, "run", "--text", "abc", "--keys", "x x", "--spaced", "--json")
	require.NoError(t, err)

	var run presentation.RunDTO
	require.NoError(t, json.Unmarshal([]byte(out), &run))
	require.Equal(t, "c", run.Content)
	require.True(t, run.Completed)
	require.True(t, run.Modified)
	require.Len(t, run.Steps, 2)
}

func TestRun_StrictStopsAtFailure(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := execute(t, cfg, "run", "--text", "abc", "--keys", "lzl", "--strict")
	require.ErrorIs(t, err, errRunFailed)
	require.Contains(t, out, `key "z" failed`)
	require.Contains(t, out, "cursor: 0:1")
}

func TestRun_StrictDefaultsFromFlag(t *testing.T) {
	cfg := writeConfig(t, "flags:\n  strict-sequences: true\n")

	_, err := execute(t, cfg, "run", "--text", "abc", "--keys", "lzl")
	require.ErrorIs(t, err, errRunFailed)

	_, err = execute(t, cfg, "run", "--text", "abc", "--keys", "lzl", "--strict=false")
	require.NoError(t, err)
}

func TestRun_Validate(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := execute(t, cfg, "run", "--text", "abc", "--keys", "ll", "--validate")
	require.NoError(t, err)
	require.Contains(t, out, "command sequence is valid")

	out, err = execute(t, cfg, "run", "--text", "abc", "--keys", "lz", "--validate")
	require.ErrorIs(t, err, errRunFailed)
	require.Contains(t, out, "invalid command 'z'")
}

func TestRun_ReadsPipedText(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := executeWithInput(t, cfg, "one two\n", "run", "--keys", "dw")
	require.NoError(t, err)
	require.Contains(t, out, "---\ntwo\n")

	out, err = executeWithInput(t, cfg, "ignored", "run", "--text", "abc", "--keys", "x")
	require.NoError(t, err)
	require.Contains(t, out, "---\nbc\n")
}

func TestPractice_NeedsTerminal(t *testing.T) {
	if isTerminal(os.Stdout) {
		t.Skip("stdout is a terminal")
	}
	cfg := writeConfig(t, "")

	_, err := execute(t, cfg, "practice", "--text", "abc")
	require.ErrorIs(t, err, errNoTerminal)
}

func TestRun_BadKeys(t *testing.T) {
	cfg := writeConfig(t, "")

	_, err := execute(t, cfg, "run", "--keys", "<Bogus>", "--spaced")
	require.ErrorContains(t, err, "parse keys")
}

func TestLessons_ListsBuiltinModules(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := execute(t, cfg, "lessons", "--json")
	require.NoError(t, err)

	var modules []presentation.ModuleDTO
	require.NoError(t, json.Unmarshal([]byte(out), &modules))
	require.NotEmpty(t, modules)
	require.Equal(t, "available", modules[0].Status)
	for _, m := range modules {
		require.NotEmpty(t, m.Lessons, m.ID)
	}
}

func TestProgress_NewLearner(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := execute(t, cfg, "progress")
	require.NoError(t, err)
	require.Contains(t, out, "Lessons:")
	require.Contains(t, out, "(0%)")
}

func TestUser_CreateListSwitch(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := execute(t, cfg, "user", "create", "alice")
	require.NoError(t, err)
	require.Contains(t, out, "Created alice")

	_, err = execute(t, cfg, "user", "create", "alice")
	require.Error(t, err, "usernames are unique")

	out, err = execute(t, cfg, "user", "list")
	require.NoError(t, err)
	require.Contains(t, out, "alice")

	out, err = execute(t, cfg, "user", "switch", "alice")
	require.NoError(t, err)
	require.Contains(t, out, "Now learning as alice")

	data, err := os.ReadFile(cfg)
	require.NoError(t, err)
	require.Contains(t, string(data), "alice")

	_, err = execute(t, cfg, "user", "switch", "nobody")
	require.Error(t, err)
}

func TestUserFlagOverridesConfig(t *testing.T) {
	cfg := writeConfig(t, "")

	_, err := execute(t, cfg, "--user", "bob", "progress")
	require.NoError(t, err)
	out, err := execute(t, cfg, "user", "list")
	require.NoError(t, err)
	require.Contains(t, out, "bob")
	require.NotContains(t, out, "tester", "the configured learner never logged in")

	_, err = execute(t, cfg, "progress")
	require.NoError(t, err)
	out, err = execute(t, cfg, "user", "list")
	require.NoError(t, err)
	require.Regexp(t, `\*\s+tester`, out)
}

func TestUsername_FallsBackWithoutConfig(t *testing.T) {
	env := &environment{}
	env.cfg.User = "configured"
	require.Equal(t, "configured", env.username())

	env.cfg.User = ""
	require.NotEmpty(t, env.username())
}
