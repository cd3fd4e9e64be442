package exercise

import (
	"context"
	"fmt"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/zjrosen/vimgym/internal/log"
	"github.com/zjrosen/vimgym/internal/simulator"
)

// ScriptTimeout bounds a single run of a custom validation script.
const ScriptTimeout = 250 * time.Millisecond

// Globals removed from every script state. Scripts see only the base,
// table, string and math libraries.
var blockedGlobals = []string{"dofile", "loadfile", "load", "loadstring", "require", "collectgarbage"}

// CompileScript parses a Lua chunk into a CheckFunc. The chunk runs once
// per check in a fresh state with these globals set:
//
//	text         the buffer content
//	lines        the buffer lines as a table
//	cursor_line  zero-based cursor line
//	cursor_col   zero-based cursor column
//	mode         the mode name, e.g. "normal"
//
// It returns a boolean and an optional feedback string. A runtime error
// fails the check with the error as feedback.
func CompileScript(src string) (CheckFunc, error) {
	chunk, err := parse.Parse(strings.NewReader(src), "validation")
	if err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	proto, err := lua.Compile(chunk, "validation")
	if err != nil {
		return nil, fmt.Errorf("compile script: %w", err)
	}
	return func(sim *simulator.Simulator) (bool, string) {
		passed, feedback, err := runScript(proto, sim)
		if err != nil {
			log.Warn(log.CatExercise, "Validation script failed", "error", err)
			return false, "Validation script error: " + err.Error()
		}
		return passed, feedback
	}, nil
}

func runScript(proto *lua.FunctionProto, sim *simulator.Simulator) (passed bool, feedback string, err error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	ctx, cancel := context.WithTimeout(context.Background(), ScriptTimeout)
	defer cancel()
	L.SetContext(ctx)

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}

	content := sim.Content()
	lines := L.NewTable()
	for _, line := range strings.Split(content, "\n") {
		lines.Append(lua.LString(line))
	}
	cursor := sim.Cursor()
	L.SetGlobal("text", lua.LString(content))
	L.SetGlobal("lines", lines)
	L.SetGlobal("cursor_line", lua.LNumber(cursor.Line))
	L.SetGlobal("cursor_col", lua.LNumber(cursor.Col))
	L.SetGlobal("mode", lua.LString(sim.Mode().String()))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	L.Push(L.NewFunctionFromProto(proto))
	if err := L.PCall(0, 2, nil); err != nil {
		return false, "", err
	}
	passed = lua.LVAsBool(L.Get(-2))
	if fb := L.Get(-1); fb != lua.LNil {
		feedback = lua.LVAsString(fb)
	}
	if feedback == "" {
		if passed {
			feedback = "Custom validation passed"
		} else {
			feedback = "Custom validation failed"
		}
	}
	return passed, feedback, nil
}
