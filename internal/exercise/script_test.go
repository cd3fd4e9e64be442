package exercise

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/vimgym/internal/simulator"
)

func TestCompileScript_ReadsBufferState(t *testing.T) {
	check, err := CompileScript(`
if #lines == 1 and cursor_line == 0 and mode == "normal" then
  return true, "single line: " .. lines[1]
end
return false, "have " .. #lines .. " lines"
`)
	require.NoError(t, err)

	sim := simulator.New("one\ntwo")
	passed, feedback := check(sim)
	require.False(t, passed)
	require.Equal(t, "have 2 lines", feedback)

	sim.ProcessInput("d")
	sim.ProcessInput("d")
	passed, feedback = check(sim)
	require.True(t, passed)
	require.Equal(t, "single line: two", feedback)
}

func TestCompileScript_DefaultFeedback(t *testing.T) {
	check, err := CompileScript(`return string.find(text, "foo") ~= nil`)
	require.NoError(t, err)

	passed, feedback := check(simulator.New("a foo b"))
	require.True(t, passed)
	require.Equal(t, "Custom validation passed", feedback)

	passed, feedback = check(simulator.New("bar"))
	require.False(t, passed)
	require.Equal(t, "Custom validation failed", feedback)
}

func TestCompileScript_SyntaxError(t *testing.T) {
	_, err := CompileScript(`return (`)
	require.ErrorContains(t, err, "parse script")
}

func TestCompileScript_Sandboxed(t *testing.T) {
	for _, src := range []string{
		`return os.exit(1)`,
		`return io.open("/etc/passwd")`,
		`return dofile("x.lua")`,
		`return require("os")`,
	} {
		check, err := CompileScript(src)
		require.NoError(t, err, src)
		passed, feedback := check(simulator.New("x"))
		require.False(t, passed, src)
		require.Contains(t, feedback, "Validation script error", src)
	}
}

func TestCompileScript_Timeout(t *testing.T) {
	check, err := CompileScript(`while true do end`)
	require.NoError(t, err)
	passed, feedback := check(simulator.New("x"))
	require.False(t, passed)
	require.Contains(t, feedback, "Validation script error")
}

func TestParseValidation_CustomScript(t *testing.T) {
	v, err := ParseValidation(KindCustom, Params{Script: `return cursor_col == 2`})
	require.NoError(t, err)

	e := NewEngine(simulator.New(""))
	e.Start(Exercise{InitialText: "abc", Validation: v})
	res, err := e.CheckCompletion(context.Background())
	require.NoError(t, err)
	require.False(t, res.Passed)

	step := run(t, e, "$")
	require.True(t, step.Result.Passed)

	_, err = ParseValidation(KindCustom, Params{Script: `return )`})
	require.ErrorContains(t, err, "custom validation")
}
