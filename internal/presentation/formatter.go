package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/zjrosen/vimgym/internal/progress"
)

// Formatter writes DTOs as indented JSON or as plain text.
type Formatter struct {
	writer io.Writer
	json   bool
}

// NewFormatter returns a text formatter, or a JSON one when asJSON is set.
func NewFormatter(writer io.Writer, asJSON bool) *Formatter {
	return &Formatter{writer: writer, json: asJSON}
}

func (f *Formatter) encode(v any) error {
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatModules lists the catalogue.
func (f *Formatter) FormatModules(modules []ModuleDTO) error {
	if f.json {
		return f.encode(modules)
	}
	var sb strings.Builder
	for i, m := range modules {
		fmt.Fprintf(&sb, "%d. %s (%s) [%s]\n", i+1, m.Title, m.ID, m.Status)
		for _, l := range m.Lessons {
			mark := " "
			if l.Completed {
				mark = "x"
			}
			fmt.Fprintf(&sb, "   [%s] %s/%s  %s\n", mark, m.ID, l.ID, l.Title)
		}
	}
	_, err := io.WriteString(f.writer, sb.String())
	return err
}

// FormatProgress prints overall progress.
func (f *Formatter) FormatProgress(s progress.Summary) error {
	if f.json {
		return f.encode(s)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Lessons:      %d/%d (%.0f%%)\n", s.CompletedLessons, s.TotalLessons, s.OverallCompletion)
	fmt.Fprintf(&sb, "Modules:      %d/%d\n", s.CompletedModules, s.TotalModules)
	fmt.Fprintf(&sb, "Achievements: %d\n", s.Achievements)
	fmt.Fprintf(&sb, "Time:         %s\n", s.TotalTime)
	for _, m := range s.Modules {
		fmt.Fprintf(&sb, "  %-24s %-11s %d/%d\n", m.Title, m.Status, m.LessonsCompleted, m.Lessons)
	}
	_, err := io.WriteString(f.writer, sb.String())
	return err
}

// FormatRun prints the editor state after a run.
func (f *Formatter) FormatRun(r RunDTO) error {
	if f.json {
		return f.encode(r)
	}
	var sb strings.Builder
	for _, s := range r.Steps {
		if !s.Success {
			fmt.Fprintf(&sb, "key %q failed: %s\n", s.Key, s.Error)
		}
	}
	fmt.Fprintf(&sb, "mode: %s  cursor: %d:%d  commands: %d\n", r.Mode, r.Cursor.Line, r.Cursor.Col, r.Commands)
	sb.WriteString("---\n")
	sb.WriteString(r.Content)
	sb.WriteString("\n")
	_, err := io.WriteString(f.writer, sb.String())
	return err
}
