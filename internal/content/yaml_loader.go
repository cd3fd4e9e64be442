package content

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/vimgym/internal/exercise"
	"github.com/zjrosen/vimgym/internal/simulator"
	"github.com/zjrosen/vimgym/internal/vim/buffer"
	"github.com/zjrosen/vimgym/internal/vim/command"
	"github.com/zjrosen/vimgym/internal/vim/mode"
	"github.com/zjrosen/vimgym/internal/vim/text"
)

// ModuleDef is the on-disk shape of one module file.
type ModuleDef struct {
	ID               string      `yaml:"id"`
	Title            string      `yaml:"title"`
	Description      string      `yaml:"description"`
	EstimatedMinutes int         `yaml:"estimated_minutes"`
	Prerequisites    []string    `yaml:"prerequisites"`
	Lessons          []LessonDef `yaml:"lessons"`
}

// LessonDef is one lesson inside a module file.
type LessonDef struct {
	ID             string        `yaml:"id"`
	Title          string        `yaml:"title"`
	Description    string        `yaml:"description"`
	Objectives     []string      `yaml:"objectives"`
	Introduction   string        `yaml:"introduction"`
	Instructions   string        `yaml:"instructions"`
	Summary        string        `yaml:"summary"`
	Tips           []string      `yaml:"tips"`
	CommonMistakes []string      `yaml:"common_mistakes"`
	Exercises      []ExerciseDef `yaml:"exercises"`
}

// ExerciseDef is one exercise. ExpectedCommands is a space separated key
// list such as "i H <Esc>".
type ExerciseDef struct {
	ID               string        `yaml:"id"`
	Title            string        `yaml:"title"`
	Description      string        `yaml:"description"`
	Instructions     string        `yaml:"instructions"`
	InitialText      string        `yaml:"initial_text"`
	ExpectedCommands string        `yaml:"expected_commands"`
	Validation       ValidationDef `yaml:"validation"`
	Hints            []string      `yaml:"hints"`
	TimeLimit        int           `yaml:"time_limit"` // seconds
}

// ValidationDef selects and configures the completion check.
type ValidationDef struct {
	Type             string `yaml:"type"`
	ExpectedPosition []int  `yaml:"expected_position,omitempty"`
	ExpectedText     string `yaml:"expected_text,omitempty"`
	ExpectedMode     string `yaml:"expected_mode,omitempty"`
	Script           string `yaml:"script,omitempty"`
}

// ErrAlreadySatisfied marks an exercise that would pass before any key is
// pressed.
var ErrAlreadySatisfied = errors.New("exercise is complete before any input")

// ParseModule decodes and checks one module file.
func ParseModule(data []byte, source Source, path string) (Module, error) {
	var def ModuleDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Module{}, fmt.Errorf("parse %s: %w", path, err)
	}
	m, err := def.build()
	if err != nil {
		return Module{}, fmt.Errorf("module in %s: %w", path, err)
	}
	m.Source = source
	m.Path = path
	return m, nil
}

// LoadModules reads every *.yaml and *.yml file at the root of fsys, in
// file name order.
func LoadModules(fsys fs.FS, source Source) ([]Module, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := fs.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("scan lessons: %w", err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	modules := make([]Module, 0, len(paths))
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		m, err := ParseModule(data, source, p)
		if err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, nil
}

func (d ModuleDef) build() (Module, error) {
	if d.ID == "" {
		return Module{}, errors.New("module id is required")
	}
	if len(d.Lessons) == 0 {
		return Module{}, fmt.Errorf("module %s has no lessons", d.ID)
	}
	m := Module{
		ID:               d.ID,
		Title:            d.Title,
		Description:      d.Description,
		EstimatedMinutes: d.EstimatedMinutes,
		Prerequisites:    d.Prerequisites,
	}
	lessonIDs := make(map[string]bool, len(d.Lessons))
	exerciseIDs := make(map[string]bool)
	for _, ld := range d.Lessons {
		if ld.ID == "" {
			return Module{}, fmt.Errorf("module %s: lesson id is required", d.ID)
		}
		if lessonIDs[ld.ID] {
			return Module{}, fmt.Errorf("module %s: duplicate lesson %s", d.ID, ld.ID)
		}
		lessonIDs[ld.ID] = true

		l := Lesson{
			ID:             ld.ID,
			ModuleID:       d.ID,
			Title:          ld.Title,
			Description:    ld.Description,
			Objectives:     ld.Objectives,
			Introduction:   strings.TrimSpace(ld.Introduction),
			Instructions:   strings.TrimSpace(ld.Instructions),
			Summary:        strings.TrimSpace(ld.Summary),
			Tips:           ld.Tips,
			CommonMistakes: ld.CommonMistakes,
		}
		for _, ed := range ld.Exercises {
			if exerciseIDs[ed.ID] {
				return Module{}, fmt.Errorf("lesson %s: duplicate exercise %s", ld.ID, ed.ID)
			}
			exerciseIDs[ed.ID] = true
			ex, err := ed.build()
			if err != nil {
				return Module{}, fmt.Errorf("lesson %s: %w", ld.ID, err)
			}
			l.Exercises = append(l.Exercises, ex)
		}
		m.Lessons = append(m.Lessons, l)
	}
	return m, nil
}

func (d ExerciseDef) build() (exercise.Exercise, error) {
	if d.ID == "" {
		return exercise.Exercise{}, errors.New("exercise id is required")
	}
	expected, err := command.ParseSequence(d.ExpectedCommands)
	if err != nil {
		return exercise.Exercise{}, fmt.Errorf("exercise %s: expected_commands: %w", d.ID, err)
	}
	kind := d.Validation.Type
	if kind == "" {
		kind = exercise.KindCommands
	}
	params := exercise.Params{
		ExpectedText: d.Validation.ExpectedText,
		ExpectedMode: d.Validation.ExpectedMode,
		Script:       d.Validation.Script,
	}
	if p := d.Validation.ExpectedPosition; p != nil {
		if len(p) != 2 {
			return exercise.Exercise{}, fmt.Errorf("exercise %s: expected_position needs [line, col], got %v", d.ID, p)
		}
		params.ExpectedPosition = &buffer.Position{Line: p[0], Col: p[1]}
	}
	v, err := exercise.ParseValidation(kind, params)
	if err != nil {
		return exercise.Exercise{}, fmt.Errorf("exercise %s: %w", d.ID, err)
	}
	if d.TimeLimit < 0 {
		return exercise.Exercise{}, fmt.Errorf("exercise %s: negative time_limit", d.ID)
	}

	ex := exercise.Exercise{
		ID:               d.ID,
		Title:            d.Title,
		Description:      d.Description,
		Instructions:     d.Instructions,
		ExpectedCommands: expected,
		InitialText:      d.InitialText,
		Validation:       v,
		Hints:            d.Hints,
		TimeLimit:        time.Duration(d.TimeLimit) * time.Second,
	}
	if err := CheckExercise(ex); err != nil {
		return exercise.Exercise{}, fmt.Errorf("exercise %s: %w", d.ID, err)
	}
	return ex, nil
}

// CheckExercise rejects exercises that cannot be completed or that pass
// in their initial state.
func CheckExercise(ex exercise.Exercise) error {
	lines := strings.Split(ex.InitialText, "\n")
	switch v := ex.Validation.(type) {
	case exercise.Commands:
		if len(ex.ExpectedCommands) == 0 {
			return errors.New("commands validation needs expected_commands")
		}
	case exercise.CursorPosition:
		if v.Expected == (buffer.Position{}) {
			return ErrAlreadySatisfied
		}
		if v.Expected.Line >= len(lines) {
			return fmt.Errorf("expected_position %s is past the last line", v.Expected)
		}
		if n := text.Len(lines[v.Expected.Line]); v.Expected.Col > max(0, n-1) {
			return fmt.Errorf("expected_position %s is past the end of its line", v.Expected)
		}
	case exercise.TextContent:
		expected := strings.TrimSpace(v.Expected)
		initial := strings.TrimSpace(ex.InitialText)
		if expected == initial || int(exercise.Similarity(expected, initial)*100) >= exercise.TextPassThreshold {
			return ErrAlreadySatisfied
		}
	case exercise.ModeState:
		if m, err := mode.Parse(v.Expected); err == nil && m == mode.Normal {
			return ErrAlreadySatisfied
		}
	case exercise.Custom:
		if v.Check == nil {
			break
		}
		if passed, _ := v.Check(simulator.New(ex.InitialText)); passed {
			return ErrAlreadySatisfied
		}
	}
	return nil
}
