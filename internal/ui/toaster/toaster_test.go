package toaster

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/vimgym/internal/ui/styles"
)

func TestShowAndDismiss(t *testing.T) {
	m := New(styles.DefaultTheme())
	require.False(t, m.Visible())
	require.Empty(t, m.View())

	m, cmd := m.Show("Progress saved", StyleSuccess)
	require.NotNil(t, cmd)
	require.True(t, m.Visible())
	require.Contains(t, ansi.Strip(m.View()), "✅ Progress saved")

	m = m.Update(DismissMsg{seq: m.seq})
	require.False(t, m.Visible())
}

func TestStaleDismissKeepsNewerToast(t *testing.T) {
	m := New(styles.DefaultTheme())
	m, _ = m.Show("first", StyleInfo)
	stale := DismissMsg{seq: m.seq}
	m, _ = m.Show("second", StyleError)

	m = m.Update(stale)
	require.True(t, m.Visible())
	require.Equal(t, "second", m.Message())
	require.Contains(t, ansi.Strip(m.View()), "❌ second")
}

func TestOverlay(t *testing.T) {
	bg := strings.Repeat(strings.Repeat(".", 30)+"\n", 7) + strings.Repeat(".", 30)
	m := New(styles.DefaultTheme())
	require.Equal(t, bg, m.Overlay(bg, 30, 8))

	m, _ = m.Show("saved", StyleWarn)
	rows := strings.Split(ansi.Strip(m.Overlay(bg, 30, 8)), "\n")
	require.Len(t, rows, 8)
	require.Contains(t, rows[5], "saved")
	require.Equal(t, strings.Repeat(".", 30), rows[7])
}
