package mode

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNewManager_StartsInNormal(t *testing.T) {
	m := NewManager()
	require.Equal(t, Normal, m.Current())
	require.Equal(t, []Mode{Normal}, m.History())
}

func TestSwitchMode_TransitionTable(t *testing.T) {
	tests := []struct {
		from    Mode
		allowed []Mode
	}{
		{Normal, []Mode{Insert, Visual, VisualLine, VisualBlock, Command, Replace}},
		{Insert, []Mode{Normal}},
		{Visual, []Mode{Normal, Insert, VisualLine, VisualBlock}},
		{VisualLine, []Mode{Normal, Insert, Visual, VisualBlock}},
		{VisualBlock, []Mode{Normal, Insert, Visual, VisualLine}},
		{Command, []Mode{Normal}},
		{Replace, []Mode{Normal}},
	}

	for _, tt := range tests {
		for _, target := range All {
			t.Run(tt.from.String()+"->"+target.String(), func(t *testing.T) {
				m := &Manager{current: tt.from, previous: Normal, history: []Mode{tt.from}}
				want := false
				for _, a := range tt.allowed {
					if a == target {
						want = true
					}
				}
				require.Equal(t, want, m.SwitchMode(target))
				if want {
					require.Equal(t, target, m.Current())
					require.Equal(t, tt.from, m.Previous())
				} else {
					require.Equal(t, tt.from, m.Current())
				}
			})
		}
	}
}

func TestSwitchMode_InsertToVisualRejected(t *testing.T) {
	m := NewManager()
	require.True(t, m.SwitchMode(Insert))
	require.False(t, m.SwitchMode(Visual))
	require.Equal(t, Insert, m.Current())
	require.True(t, m.SwitchMode(Normal))
}

func TestIllegalTransitionNeverChangesState(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := NewManager()
		steps := rapid.SliceOfN(rapid.SampledFrom(All), 1, 60).Draw(t, "steps")
		for _, target := range steps {
			before := m.Current()
			hist := len(m.History())
			legal := m.CanTransition(target)
			ok := m.SwitchMode(target)
			if ok != legal {
				t.Fatalf("SwitchMode(%s) = %v, CanTransition = %v", target, ok, legal)
			}
			if !ok {
				if m.Current() != before {
					t.Fatalf("mode changed on rejected transition %s -> %s", before, target)
				}
				if len(m.History()) != hist {
					t.Fatalf("history grew on rejected transition")
				}
			}
		}
	})
}

func TestProcessCommand(t *testing.T) {
	m := NewManager()
	require.True(t, m.ProcessCommand("i"))
	require.Equal(t, Insert, m.Current())
	require.False(t, m.ProcessCommand("v"), "Insert cannot reach Visual")
	require.True(t, m.ProcessCommand("<Esc>"))
	require.Equal(t, Normal, m.Current())
	require.True(t, m.ProcessCommand("<C-v>"))
	require.Equal(t, VisualBlock, m.Current())
	require.True(t, m.ProcessCommand("V"))
	require.Equal(t, VisualLine, m.Current())
	require.True(t, m.ProcessCommand("<C-c>"))
	require.False(t, m.ProcessCommand("zz"))
	require.Equal(t, Normal, m.Current())
}

func TestTargetsMatchCanTransition(t *testing.T) {
	for _, from := range All {
		m := &Manager{current: from, history: []Mode{from}}
		targets := Targets(from)
		for _, to := range All {
			require.Equal(t, m.CanTransition(to), slices.Contains(targets, to), "%s -> %s", from, to)
		}
		require.NotContains(t, targets, from, "self transitions are not listed")
	}

	got := Targets(Normal)
	got[0] = Replace
	require.Equal(t, Insert, Targets(Normal)[0], "Targets returns a copy")
}

func TestIsInsertLike(t *testing.T) {
	for _, m := range All {
		require.Equal(t, m == Insert || m == Replace, m.IsInsertLike(), m.String())
	}
}

func TestCommandTarget(t *testing.T) {
	target, ok := CommandTarget("A")
	require.True(t, ok)
	require.Equal(t, Insert, target)

	target, ok = CommandTarget("<C-v>")
	require.True(t, ok)
	require.Equal(t, VisualBlock, target)

	_, ok = CommandTarget("dd")
	require.False(t, ok)
}

func TestHistoryTrimmed(t *testing.T) {
	m := NewManager()
	for i := 0; i < 60; i++ {
		require.True(t, m.SwitchMode(Insert))
		require.True(t, m.SwitchMode(Normal))
	}
	// 1 initial + 120 switches exceeds 100 once, trimming to 50, then grows.
	require.LessOrEqual(t, len(m.History()), 100)
	require.GreaterOrEqual(t, len(m.History()), 50)
	require.Equal(t, Normal, m.History()[len(m.History())-1])
}

func TestStateRoundTrip(t *testing.T) {
	m := NewManager()
	for i := 0; i < 8; i++ {
		m.SwitchMode(Visual)
		m.SwitchMode(VisualLine)
		m.SwitchMode(Normal)
	}
	s := m.State()
	require.Len(t, s.History, 10)
	require.Equal(t, "normal", s.Current)
	require.Equal(t, "visual_line", s.Previous)

	restored := NewManager()
	require.NoError(t, restored.Restore(s))
	require.Equal(t, m.Current(), restored.Current())
	require.Equal(t, m.Previous(), restored.Previous())
	require.Equal(t, s, restored.State())
}

func TestRestore_MalformedResets(t *testing.T) {
	m := NewManager()
	m.SwitchMode(Insert)

	err := m.Restore(State{Current: "banana", Previous: "normal"})
	require.ErrorIs(t, err, ErrInvalidState)
	require.Equal(t, Normal, m.Current())
	require.Equal(t, []Mode{Normal}, m.History())

	m.SwitchMode(Command)
	err = m.Restore(State{Current: "insert", Previous: "normal", History: []string{"insert", "???"}})
	require.ErrorIs(t, err, ErrInvalidState)
	require.Equal(t, Normal, m.Current())
}

func TestDisplayName(t *testing.T) {
	want := map[Mode]string{
		Normal:      "NORMAL",
		Insert:      "INSERT",
		Visual:      "VISUAL",
		VisualLine:  "VISUAL LINE",
		VisualBlock: "VISUAL BLOCK",
		Command:     "COMMAND",
		Replace:     "REPLACE",
	}
	for m, name := range want {
		require.Equal(t, name, m.DisplayName())
		parsed, err := Parse(name)
		require.NoError(t, err)
		require.Equal(t, m, parsed)
	}
}

func TestAvailableCommands(t *testing.T) {
	for _, m := range All {
		require.NotEmpty(t, AvailableCommands(m), m.String())
		require.NotEmpty(t, HelpText(m), m.String())
	}
}
