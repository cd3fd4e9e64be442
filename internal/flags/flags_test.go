package flags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_Enabled(t *testing.T) {
	tests := []struct {
		name     string
		registry *Registry
		flag     string
		expected bool
	}{
		{"default on", New(nil), FlagLearningHints, true},
		{"default off", New(nil), FlagStrictSequences, false},
		{"config overrides default", New(map[string]bool{FlagLearningHints: false}), FlagLearningHints, false},
		{"config enables", New(map[string]bool{FlagStrictSequences: true}), FlagStrictSequences, true},
		{"unknown flag", New(map[string]bool{"extra": true}), "missing", false},
		{"extra flag kept", New(map[string]bool{"extra": true}), "extra", true},
		{"nil registry", nil, FlagSessionResume, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.registry.Enabled(tt.flag))
		})
	}
}

func TestRegistry_AllIsACopy(t *testing.T) {
	r := New(map[string]bool{FlagSessionResume: false})
	all := r.All()
	all[FlagSessionResume] = true
	require.False(t, r.Enabled(FlagSessionResume))
	require.Len(t, all, 3)

	var nilReg *Registry
	require.Empty(t, nilReg.All())
}

func TestNew_DoesNotAliasInput(t *testing.T) {
	in := map[string]bool{FlagLearningHints: false}
	r := New(in)
	in[FlagLearningHints] = true
	require.False(t, r.Enabled(FlagLearningHints))
}
