// Package presentation shapes catalogue, progress and simulator data for
// command line output.
package presentation

import (
	"github.com/zjrosen/vimgym/internal/content"
	"github.com/zjrosen/vimgym/internal/progress"
	"github.com/zjrosen/vimgym/internal/simulator"
	"github.com/zjrosen/vimgym/internal/vim/buffer"
	"github.com/zjrosen/vimgym/internal/vim/command"
)

// ModuleDTO is one module with its lessons.
type ModuleDTO struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Minutes       int         `json:"estimated_minutes,omitempty"`
	Source        string      `json:"source"`
	Status        string      `json:"status"`
	Prerequisites []string    `json:"prerequisites"`
	Lessons       []LessonDTO `json:"lessons"`
}

// LessonDTO is one lesson row.
type LessonDTO struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Exercises int    `json:"exercises"`
	Completed bool   `json:"completed"`
}

// Status is the part of progress.Tracker the DTOs read.
type Status interface {
	Status(moduleID string) progress.ModuleStatus
	LessonCompleted(moduleID, lessonID string) bool
}

// FromModules converts the catalogue, marking status from st.
func FromModules(modules []content.Module, st Status) []ModuleDTO {
	out := make([]ModuleDTO, 0, len(modules))
	for _, m := range modules {
		dto := ModuleDTO{
			ID:            m.ID,
			Title:         m.Title,
			Minutes:       m.EstimatedMinutes,
			Source:        string(m.Source),
			Status:        string(st.Status(m.ID)),
			Prerequisites: append([]string{}, m.Prerequisites...),
			Lessons:       make([]LessonDTO, 0, len(m.Lessons)),
		}
		for _, l := range m.Lessons {
			dto.Lessons = append(dto.Lessons, LessonDTO{
				ID:        l.ID,
				Title:     l.Title,
				Exercises: len(l.Exercises),
				Completed: st.LessonCompleted(m.ID, l.ID),
			})
		}
		out = append(out, dto)
	}
	return out
}

// PositionDTO is a zero-based cursor position.
type PositionDTO struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

func fromPosition(p buffer.Position) PositionDTO {
	return PositionDTO{Line: p.Line, Col: p.Col}
}

// StepDTO is the response to one key of a run.
type StepDTO struct {
	Key     string      `json:"key"`
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Mode    string      `json:"mode"`
	Cursor  PositionDTO `json:"cursor"`
}

// RunDTO is the result of feeding a key sequence to a fresh editor.
type RunDTO struct {
	Content   string      `json:"content"`
	Mode      string      `json:"mode"`
	Cursor    PositionDTO `json:"cursor"`
	Modified  bool        `json:"modified"`
	Commands  int         `json:"commands"`
	Completed bool        `json:"completed"`
	Steps     []StepDTO   `json:"steps"`
}

// FromRun summarizes sim after keys produced responses. Completed is
// false when a strict run stopped early.
func FromRun(sim *simulator.Simulator, keys []command.Token, responses []simulator.Response) RunDTO {
	dto := RunDTO{
		Content:   sim.Content(),
		Mode:      sim.Mode().String(),
		Cursor:    fromPosition(sim.Cursor()),
		Modified:  sim.Buffer().Modified(),
		Commands:  sim.CommandCount(),
		Completed: len(responses) == len(keys),
		Steps:     make([]StepDTO, 0, len(responses)),
	}
	for i, r := range responses {
		dto.Steps = append(dto.Steps, StepDTO{
			Key:     string(keys[i]),
			Success: r.Success,
			Error:   r.ErrorText(),
			Mode:    r.Mode.String(),
			Cursor:  fromPosition(r.Cursor),
		})
	}
	return dto
}
