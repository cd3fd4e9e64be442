package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveUser_PreservesComments(t *testing.T) {
	path := writeConfig(t, DefaultConfigTemplate())
	require.NoError(t, SaveUser(path, "alice"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "# vimgym configuration")
	require.Contains(t, string(data), "# Show the next useful key in the status line")
	require.Contains(t, string(data), "\nuser: alice")

	require.NoError(t, SaveUser(path, "bob"))
	cfg, _, err := Load(NewViper(), path)
	require.NoError(t, err)
	require.Equal(t, "bob", cfg.User)
}

func TestSaveUser_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, SaveUser(path, "carol"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "user: carol\n", string(data))
}

func TestSaveUser_RejectsNonMapping(t *testing.T) {
	path := writeConfig(t, "- just\n- a list\n")
	require.ErrorContains(t, SaveUser(path, "dave"), "not a mapping")
}
