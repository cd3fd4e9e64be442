// Package testutil builds lesson catalogues, progress stores and databases
// for tests.
package testutil

import (
	"fmt"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/vimgym/internal/content"
)

// CourseBuilder accumulates modules and serializes them as lesson files,
// so tests go through the same loader as the shipped lessons.
type CourseBuilder struct {
	t       *testing.T
	modules []content.ModuleDef
}

// NewCourse starts an empty course.
func NewCourse(t *testing.T) *CourseBuilder {
	t.Helper()
	return &CourseBuilder{t: t}
}

// Module appends a module. Lessons added afterwards belong to it.
func (b *CourseBuilder) Module(id string, opts ...ModuleOption) *CourseBuilder {
	def := content.ModuleDef{ID: id, Title: id}
	for _, opt := range opts {
		opt(&def)
	}
	b.modules = append(b.modules, def)
	return b
}

// Lesson appends a lesson with the given exercises to the last module.
func (b *CourseBuilder) Lesson(id string, exercises ...content.ExerciseDef) *CourseBuilder {
	b.t.Helper()
	require.NotEmpty(b.t, b.modules, "Lesson called before Module")
	m := &b.modules[len(b.modules)-1]
	m.Lessons = append(m.Lessons, content.LessonDef{
		ID:           id,
		Title:        id,
		Instructions: "Practice **" + id + "**.",
		Exercises:    exercises,
	})
	return b
}

// FS renders the course as lesson files named 01-<id>.yaml and so on.
func (b *CourseBuilder) FS() fstest.MapFS {
	b.t.Helper()
	fsys := fstest.MapFS{}
	for i, m := range b.modules {
		data, err := yaml.Marshal(m)
		require.NoError(b.t, err)
		fsys[fmt.Sprintf("%02d-%s.yaml", i+1, m.ID)] = &fstest.MapFile{Data: data}
	}
	return fsys
}

// Build loads the course into a registry.
func (b *CourseBuilder) Build() *content.Registry {
	b.t.Helper()
	reg, err := content.NewRegistry(content.WithBuiltin(b.FS()))
	require.NoError(b.t, err)
	b.t.Cleanup(reg.Close)
	return reg
}
