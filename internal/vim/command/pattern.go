package command

import (
	"fmt"
	"strings"

	"github.com/zjrosen/vimgym/internal/vim/text"
)

// The search language is a small subset of vim patterns evaluated over
// graphemes: literals, ".", "*", the classes \d \w \s, anchors ^ and $,
// word boundaries \< and \>, and \c for ignoring case.

type atomKind int

const (
	atomLiteral atomKind = iota
	atomAny
	atomDigit
	atomWord
	atomSpace
	atomLineStart
	atomLineEnd
	atomWordStart
	atomWordEnd
)

type atom struct {
	kind atomKind
	lit  string
	star bool
}

func (a atom) zeroWidth() bool {
	return a.kind >= atomLineStart
}

type pattern struct {
	source     string
	atoms      []atom
	ignoreCase bool
}

func compilePattern(src string, ignoreCase bool) (pattern, error) {
	p := pattern{source: src, ignoreCase: ignoreCase}
	gs := text.Split(src)
	for i := 0; i < len(gs); i++ {
		g := gs[i]
		var a atom
		switch {
		case g == "^" && i == 0:
			a = atom{kind: atomLineStart}
		case g == "$" && i == len(gs)-1:
			a = atom{kind: atomLineEnd}
		case g == ".":
			a = atom{kind: atomAny}
		case g == "*" && len(p.atoms) > 0 && !p.atoms[len(p.atoms)-1].zeroWidth() && !p.atoms[len(p.atoms)-1].star:
			p.atoms[len(p.atoms)-1].star = true
			continue
		case g == `\`:
			if i+1 >= len(gs) {
				return pattern{}, fmt.Errorf("trailing backslash in %q", src)
			}
			i++
			switch gs[i] {
			case "d":
				a = atom{kind: atomDigit}
			case "w":
				a = atom{kind: atomWord}
			case "s":
				a = atom{kind: atomSpace}
			case "<":
				a = atom{kind: atomWordStart}
			case ">":
				a = atom{kind: atomWordEnd}
			case "c":
				p.ignoreCase = true
				continue
			case "t":
				a = atom{kind: atomLiteral, lit: "\t"}
			default:
				a = atom{kind: atomLiteral, lit: gs[i]}
			}
		default:
			a = atom{kind: atomLiteral, lit: g}
		}
		p.atoms = append(p.atoms, a)
	}
	return p, nil
}

// find returns the first match in gs starting at or after from, as a
// grapheme range [start, end).
func (p pattern) find(gs []string, from int) (start, end int, found bool) {
	for i := from; i <= len(gs); i++ {
		if e, ok := p.matchAt(gs, i, 0); ok {
			return i, e, true
		}
		if len(p.atoms) > 0 && p.atoms[0].kind == atomLineStart {
			break
		}
	}
	return 0, 0, false
}

func (p pattern) matchAt(gs []string, i, ai int) (int, bool) {
	if ai == len(p.atoms) {
		return i, true
	}
	a := p.atoms[ai]
	if a.zeroWidth() {
		if !p.assert(a.kind, gs, i) {
			return 0, false
		}
		return p.matchAt(gs, i, ai+1)
	}
	if a.star {
		n := 0
		for i+n < len(gs) && p.single(a, gs[i+n]) {
			n++
		}
		for ; n >= 0; n-- {
			if e, ok := p.matchAt(gs, i+n, ai+1); ok {
				return e, true
			}
		}
		return 0, false
	}
	if i >= len(gs) || !p.single(a, gs[i]) {
		return 0, false
	}
	return p.matchAt(gs, i+1, ai+1)
}

func (p pattern) single(a atom, g string) bool {
	switch a.kind {
	case atomAny:
		return true
	case atomDigit:
		return len(g) == 1 && g[0] >= '0' && g[0] <= '9'
	case atomWord:
		return text.Classify(g) == text.Word
	case atomSpace:
		return text.Classify(g) == text.Space
	}
	if p.ignoreCase {
		return strings.EqualFold(a.lit, g)
	}
	return a.lit == g
}

func (p pattern) assert(kind atomKind, gs []string, i int) bool {
	isWord := func(j int) bool { return j >= 0 && j < len(gs) && text.Classify(gs[j]) == text.Word }
	switch kind {
	case atomLineStart:
		return i == 0
	case atomLineEnd:
		return i == len(gs)
	case atomWordStart:
		return isWord(i) && !isWord(i-1)
	case atomWordEnd:
		return isWord(i-1) && !isWord(i)
	}
	return false
}

// escapePattern quotes s so every grapheme matches literally.
func escapePattern(s string) string {
	var b strings.Builder
	for _, g := range text.Split(s) {
		switch g {
		case `\`, ".", "*", "^", "$", "/", "?":
			b.WriteByte('\\')
		}
		b.WriteString(g)
	}
	return b.String()
}
