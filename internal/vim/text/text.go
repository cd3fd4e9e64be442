// Package text holds grapheme-aware string helpers shared by the buffer and
// the interpreter.
//
// Columns throughout the simulator count grapheme clusters, not bytes or
// display cells: "e" followed by a combining accent is one column, and so is
// a family emoji. Width converts a string to terminal cells for rendering.
package text

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Class is the word-motion category of a grapheme.
type Class int

const (
	Space Class = iota
	Word
	Punct
)

// Len returns the number of grapheme clusters in s.
func Len(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// Split returns the grapheme clusters of s.
func Split(s string) []string {
	out := make([]string, 0, len(s))
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.StepString(s, state)
		out = append(out, cluster)
	}
	return out
}

// At returns the grapheme at index i, or "" when out of range.
func At(s string, i int) string {
	if i < 0 {
		return ""
	}
	idx := 0
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.StepString(s, state)
		if idx == i {
			return cluster
		}
		idx++
	}
	return ""
}

// ByteOffset converts a grapheme index into a byte offset, clamped to
// [0, len(s)].
func ByteOffset(s string, i int) int {
	if i <= 0 {
		return 0
	}
	idx := 0
	state := -1
	rest := s
	for len(rest) > 0 {
		_, rest, _, state = uniseg.StepString(rest, state)
		idx++
		if idx == i {
			return len(s) - len(rest)
		}
	}
	return len(s)
}

// Index converts a byte offset into the index of the grapheme containing it.
func Index(s string, byteOffset int) int {
	if byteOffset <= 0 {
		return 0
	}
	if byteOffset >= len(s) {
		return Len(s)
	}
	idx, pos := 0, 0
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.StepString(s, state)
		pos += len(cluster)
		if byteOffset < pos {
			return idx
		}
		idx++
	}
	return idx
}

// Slice returns graphemes [start, end) of s.
func Slice(s string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end <= start {
		return ""
	}
	return s[ByteOffset(s, start):ByteOffset(s, end)]
}

// Insert places ins before grapheme i.
func Insert(s string, i int, ins string) string {
	b := ByteOffset(s, i)
	return s[:b] + ins + s[b:]
}

// Delete removes graphemes [start, end).
func Delete(s string, start, end int) string {
	if end <= start {
		return s
	}
	return s[:ByteOffset(s, start)] + s[ByteOffset(s, end):]
}

// Replace swaps grapheme i for repl. Out of range indexes leave s unchanged.
func Replace(s string, i int, repl string) string {
	if i < 0 || i >= Len(s) {
		return s
	}
	return s[:ByteOffset(s, i)] + repl + s[ByteOffset(s, i+1):]
}

// Classify returns the word-motion category of a grapheme. Letters, digits
// and underscore (including non-ASCII letters) are Word; blanks are Space;
// everything else, emoji included, is Punct.
func Classify(cluster string) Class {
	for _, r := range cluster {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			return Space
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			return Word
		default:
			return Punct
		}
	}
	return Space
}

// FirstNonBlank returns the index of the first non-blank grapheme, or the
// line length when the line is blank.
func FirstNonBlank(s string) int {
	for i, g := range Split(s) {
		if Classify(g) != Space {
			return i
		}
	}
	return Len(s)
}

// LastNonBlank returns the index of the last non-blank grapheme, or 0 when
// the line is blank.
func LastNonBlank(s string) int {
	gs := Split(s)
	for i := len(gs) - 1; i >= 0; i-- {
		if Classify(gs[i]) != Space {
			return i
		}
	}
	return 0
}

// ToggleCase flips the case of every letter in a grapheme.
func ToggleCase(cluster string) string {
	var b strings.Builder
	for _, r := range cluster {
		switch {
		case unicode.IsUpper(r):
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsLower(r):
			b.WriteRune(unicode.ToUpper(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Width returns the terminal cell width of s.
func Width(s string) int {
	return runewidth.StringWidth(s)
}
