package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/vimgym/internal/config"
	"github.com/zjrosen/vimgym/internal/content"
	"github.com/zjrosen/vimgym/internal/flags"
	"github.com/zjrosen/vimgym/internal/mode"
	"github.com/zjrosen/vimgym/internal/progress"
	"github.com/zjrosen/vimgym/internal/ui/styles"
	"github.com/zjrosen/vimgym/internal/user"
)

// Epoch is the fixed time returned by the Services clock.
var Epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// Services wires reg to a fresh in-memory tracker for user "tester". The
// markdown renderer and database backed managers are left nil.
func Services(t *testing.T, reg *content.Registry) mode.Services {
	t.Helper()
	clock := func() time.Time { return Epoch }
	tracker, err := progress.Load(context.Background(), NewProgressStore(), reg, "tester", clock)
	require.NoError(t, err)

	u, err := user.New("tester", Epoch)
	require.NoError(t, err)

	cfg := config.Defaults()
	return mode.Services{
		Config:   &cfg,
		Flags:    flags.New(cfg.Flags),
		Theme:    styles.DefaultTheme(),
		Registry: reg,
		Tracker:  tracker,
		User:     u,
		Clock:    clock,
	}
}
