package markdown

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)
	require.Equal(t, "dark", r.Style())

	_, err = New("neon")
	require.ErrorContains(t, err, "unknown markdown style")
}

func TestRender(t *testing.T) {
	r, err := New("light")
	require.NoError(t, err)

	out, err := r.Render("# Moving\n\nPress **l** to move right.", 60)
	require.NoError(t, err)
	plain := ansi.Strip(out)
	require.Contains(t, plain, "Moving")
	require.Contains(t, plain, "Press l to move right.")
	require.False(t, strings.HasSuffix(out, "\n"))
}

func TestRender_WrapsToWidth(t *testing.T) {
	r, err := New("dark")
	require.NoError(t, err)

	out, err := r.Render(strings.Repeat("word ", 40), 30)
	require.NoError(t, err)
	for _, line := range strings.Split(out, "\n") {
		require.LessOrEqual(t, ansi.StringWidth(line), 30)
	}
}

func TestRender_Cached(t *testing.T) {
	r, err := New("dark")
	require.NoError(t, err)

	a, err := r.Render("some *text*", 40)
	require.NoError(t, err)
	b, err := r.Render("some *text*", 40)
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Len(t, r.renderers, 1)

	_, err = r.Render("some *text*", 50)
	require.NoError(t, err)
	require.Len(t, r.renderers, 2)
}
