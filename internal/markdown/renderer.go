package markdown

import (
	"blog-admin/internal/config"
	"bytes"
	"fmt"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"strings"
)

// Renderer converts markdown text into HTML.
//
// Implementations must be pure: the same input always yields the same output.
// The returned HTML is inserted into pages verbatim, so the renderer alone is
// responsible for the safety of its output.
type Renderer interface {
	Render(markdown string) (string, error)
}

// Options configures a GoldmarkRenderer.
type Options struct {
	// Extensions by name (gfm, table, strikethrough, linkify, tasklist, definition, footnote).
	// Empty means gfm + linkify + tasklist.
	Extensions []string
	HardWraps  bool
	// AllowRawHtml passes raw HTML blocks of the markdown through to the output.
	AllowRawHtml bool
}

// OptionsFromConfig maps the markdown section of the configuration.
func OptionsFromConfig(c *config.Configuration) Options {
	return Options{
		Extensions:   c.Markdown.Extensions,
		HardWraps:    c.Markdown.HardWraps,
		AllowRawHtml: c.Markdown.AllowRawHtml,
	}
}

// GoldmarkRenderer renders markdown with goldmark.
// The engine is built once; goldmark.Markdown is safe for concurrent use.
type GoldmarkRenderer struct {
	engine goldmark.Markdown
}

// ensure GoldmarkRenderer implements Renderer
var _ Renderer = &GoldmarkRenderer{}

func NewGoldmarkRenderer(opts Options) *GoldmarkRenderer {
	return &GoldmarkRenderer{engine: newGoldmarkEngine(opts)}
}

func (r *GoldmarkRenderer) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.engine.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("markdown render: %w", err)
	}
	return buf.String(), nil
}

func newGoldmarkEngine(opts Options) goldmark.Markdown {
	rendererOptions := []renderer.Option{}

	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}

	// without WithUnsafe goldmark replaces raw HTML and javascript: links with comments
	if opts.AllowRawHtml {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithExtensions(collectExtensions(opts.Extensions)...),
	}

	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}

	return goldmark.New(engineOptions...)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{
			extension.GFM,
			extension.Linkify,
			extension.TaskList,
		}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}

	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))

		if _, ok := seen[key]; ok {
			continue
		}

		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}

		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}

	return extenders
}
