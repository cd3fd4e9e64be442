package command

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/zjrosen/vimgym/internal/vim/text"
)

// Token is one key press. Printable keys are a single grapheme; everything
// else uses a bracketed name.
type Token string

const (
	Esc       Token = "<Esc>"
	Enter     Token = "<Enter>"
	Backspace Token = "<BS>"
	Delete    Token = "<Del>"
	Tab       Token = "<Tab>"
	Up        Token = "<Up>"
	Down      Token = "<Down>"
	Left      Token = "<Left>"
	Right     Token = "<Right>"
	Home      Token = "<Home>"
	End       Token = "<End>"
	CtrlC     Token = "<C-c>"
	CtrlR     Token = "<C-r>"
	CtrlV     Token = "<C-v>"
)

// ErrUnknownToken is returned for key names outside the vocabulary.
var ErrUnknownToken = errors.New("unknown key")

var named = map[string]Token{
	"<esc>":       Esc,
	"esc":         Esc,
	"escape":      Esc,
	"\x1b":        Esc,
	"<enter>":     Enter,
	"<cr>":        Enter,
	"<return>":    Enter,
	"enter":       Enter,
	"\r":          Enter,
	"\n":          Enter,
	"<bs>":        Backspace,
	"<backspace>": Backspace,
	"backspace":   Backspace,
	"\x7f":        Backspace,
	"\b":          Backspace,
	"<del>":       Delete,
	"<delete>":    Delete,
	"<tab>":       Tab,
	"\t":          Tab,
	"<space>":     " ",
	"<up>":        Up,
	"<down>":      Down,
	"<left>":      Left,
	"<right>":     Right,
	"<home>":      Home,
	"<end>":       End,
	"<lt>":        "<",
}

// Ctrl returns the token for Ctrl plus a letter.
func Ctrl(letter rune) Token {
	return Token(fmt.Sprintf("<C-%c>", unicode.ToLower(letter)))
}

// ParseToken normalizes a key name. It accepts the canonical bracketed
// names, common aliases, raw control bytes and single printable graphemes.
func ParseToken(s string) (Token, error) {
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrUnknownToken)
	}
	if t, ok := named[strings.ToLower(s)]; ok {
		return t, nil
	}
	if t, ok := named[s]; ok {
		return t, nil
	}
	// <C-x>, <c-x>, ctrl+x
	lower := strings.ToLower(s)
	if len(lower) == 5 && strings.HasPrefix(lower, "<c-") && lower[4] == '>' && isLetter(lower[3]) {
		return Ctrl(rune(lower[3])), nil
	}
	if len(lower) == 6 && strings.HasPrefix(lower, "ctrl+") && isLetter(lower[5]) {
		return Ctrl(rune(lower[5])), nil
	}
	// Raw control bytes 0x01..0x1a.
	if len(s) == 1 && s[0] >= 0x01 && s[0] <= 0x1a {
		return Ctrl(rune('a' + s[0] - 1)), nil
	}
	if text.Len(s) == 1 && !strings.HasPrefix(s, "<") || s == "<" {
		if isControl(s) {
			return "", fmt.Errorf("%w: %q", ErrUnknownToken, s)
		}
		return Token(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownToken, s)
}

// ParseSequence splits a space separated key list such as "i H <Esc>".
// A literal space is written <Space>.
func ParseSequence(s string) ([]Token, error) {
	fields := strings.Fields(s)
	out := make([]Token, 0, len(fields))
	for _, f := range fields {
		t, err := ParseToken(f)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// ParseKeys splits a compact key string such as "3dw" or "ihello<Esc>"
// into tokens. Bracketed names are recognized; every other grapheme is
// its own key.
func ParseKeys(s string) ([]Token, error) {
	var out []Token
	for len(s) > 0 {
		if s[0] == '<' {
			if end := strings.IndexByte(s, '>'); end > 1 {
				t, err := ParseToken(s[:end+1])
				if err == nil {
					out = append(out, t)
					s = s[end+1:]
					continue
				}
			}
		}
		g := text.At(s, 0)
		t, err := ParseToken(g)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		s = s[len(g):]
	}
	return out, nil
}

// Printable reports whether t inserts itself as text.
func (t Token) Printable() bool {
	s := string(t)
	if s == "<" {
		return true
	}
	if s == "" || strings.HasPrefix(s, "<") {
		return false
	}
	return text.Len(s) == 1 && !isControl(s)
}

// Digit returns the numeric value of a 0-9 token.
func (t Token) Digit() (int, bool) {
	if len(t) == 1 && t[0] >= '0' && t[0] <= '9' {
		return int(t[0] - '0'), true
	}
	return 0, false
}

// Join renders tokens for messages, e.g. "d2w" or "i<Esc>".
func Join(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(string(t))
	}
	return b.String()
}

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' }

func isControl(s string) bool {
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return true
		}
	}
	return false
}
