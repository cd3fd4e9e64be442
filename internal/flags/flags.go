// Package flags is a read-only feature flag registry loaded from the
// flags section of the config. Unknown flags read as their default.
package flags

import (
	"maps"

	"github.com/zjrosen/vimgym/internal/log"
)

const (
	// FlagLearningHints shows the next useful key at the end of the
	// editor status line.
	FlagLearningHints = "learning-hints"

	// FlagStrictSequences makes `vimgym run` stop at the first failing key
	// unless --strict is given explicitly.
	FlagStrictSequences = "strict-sequences"

	// FlagSessionResume offers to resume the last active session on start.
	FlagSessionResume = "session-resume"
)

// Defaults are the values used for flags missing from the config.
func Defaults() map[string]bool {
	return map[string]bool{
		FlagLearningHints:   true,
		FlagStrictSequences: false,
		FlagSessionResume:   true,
	}
}

// Registry holds flag values. It is never modified after New.
type Registry struct {
	flags map[string]bool
}

// New layers configured over Defaults.
func New(configured map[string]bool) *Registry {
	flags := Defaults()
	maps.Copy(flags, configured)
	r := &Registry{flags: flags}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(flags), "flags", r.All())
	return r
}

// Enabled reports the value of name. Unknown flags and a nil registry read
// as false.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return false
	}
	value, ok := r.flags[name]
	if !ok {
		log.Debug(log.CatConfig, "Unknown flag accessed", "flag", name)
		return false
	}
	return value
}

// All returns a copy of every flag.
func (r *Registry) All() map[string]bool {
	if r == nil {
		return map[string]bool{}
	}
	return maps.Clone(r.flags)
}
