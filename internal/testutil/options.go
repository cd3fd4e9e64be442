package testutil

import "github.com/zjrosen/vimgym/internal/content"

// ModuleOption configures a module.
type ModuleOption func(*content.ModuleDef)

// Title sets the module title.
func Title(title string) ModuleOption {
	return func(d *content.ModuleDef) { d.Title = title }
}

// Requires lists prerequisite module ids.
func Requires(ids ...string) ModuleOption {
	return func(d *content.ModuleDef) { d.Prerequisites = append(d.Prerequisites, ids...) }
}

// CursorExercise passes when the cursor reaches line, col.
func CursorExercise(id, initial, keys string, line, col int, hints ...string) content.ExerciseDef {
	return content.ExerciseDef{
		ID:               id,
		Title:            id,
		InitialText:      initial,
		ExpectedCommands: keys,
		Validation:       content.ValidationDef{Type: "cursor_position", ExpectedPosition: []int{line, col}},
		Hints:            hints,
	}
}

// TextExercise passes when the buffer reads want.
func TextExercise(id, initial, keys, want string, hints ...string) content.ExerciseDef {
	return content.ExerciseDef{
		ID:               id,
		Title:            id,
		InitialText:      initial,
		ExpectedCommands: keys,
		Validation:       content.ValidationDef{Type: "text_content", ExpectedText: want},
		Hints:            hints,
	}
}

// ModeExercise passes once the editor is in mode.
func ModeExercise(id, initial, keys, mode string) content.ExerciseDef {
	return content.ExerciseDef{
		ID:               id,
		Title:            id,
		InitialText:      initial,
		ExpectedCommands: keys,
		Validation:       content.ValidationDef{Type: "mode_state", ExpectedMode: mode},
	}
}
