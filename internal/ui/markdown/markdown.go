// Package markdown renders lesson instructions with glamour. Rendered
// output is cached per width and style since the lesson view re-renders
// on every key.
package markdown

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/zjrosen/vimgym/internal/cachemanager"
	"github.com/zjrosen/vimgym/internal/log"
)

// noMarginStyle strips glamour's document margins so text lines up with
// the other panes.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

type cacheKey string

// Renderer turns markdown into styled terminal text. It is safe for
// concurrent use.
type Renderer struct {
	style string

	mu        sync.Mutex
	renderers map[int]*glamour.TermRenderer
	cache     *cachemanager.ReadThroughCache[cacheKey, string, request]
}

type request struct {
	width int
	text  string
}

// New returns a renderer using the glamour "dark" or "light" style. An
// empty style means dark. The named style is used instead of auto
// detection, which queries the terminal and leaks replies into input.
func New(style string) (*Renderer, error) {
	if style == "" {
		style = "dark"
	}
	if style != "dark" && style != "light" {
		return nil, fmt.Errorf("unknown markdown style %q", style)
	}
	r := &Renderer{style: style, renderers: make(map[int]*glamour.TermRenderer)}
	cm := cachemanager.NewInMemoryCacheManager[cacheKey, string](
		"markdown", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)
	r.cache = cachemanager.NewReadThroughCache[cacheKey, string, request](cm, r.render, false)
	return r, nil
}

// Style returns the glamour style name.
func (r *Renderer) Style() string { return r.style }

// Render wraps text to width and styles it. Trailing blank lines are
// trimmed.
func (r *Renderer) Render(text string, width int) (string, error) {
	width = max(width, 10)
	sum := sha256.Sum256([]byte(text))
	key := cacheKey(fmt.Sprintf("%s:%d:%s", r.style, width, hex.EncodeToString(sum[:8])))
	return r.cache.Get(context.Background(), key, request{width: width, text: text}, cachemanager.DefaultExpiration)
}

func (r *Renderer) render(_ context.Context, req request) (string, error) {
	tr, err := r.termRenderer(req.width)
	if err != nil {
		return "", err
	}
	out, err := tr.Render(req.text)
	if err != nil {
		log.ErrorErr(log.CatUI, "Markdown render failed", err)
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.TrimRight(out, "\n "), nil
}

func (r *Renderer) termRenderer(width int) (*glamour.TermRenderer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tr, ok := r.renderers[width]; ok {
		return tr, nil
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(r.style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	r.renderers[width] = tr
	return tr, nil
}
