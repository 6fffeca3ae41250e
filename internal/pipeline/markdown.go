package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"go.abhg.dev/goldmark/anchor"

	"github.com/alnah/mdpdf/internal/slug"
)

// ErrMarkdownRender indicates Goldmark failed to render a document.
var ErrMarkdownRender = errors.New("markdown rendering failed")

// Heading depth bounds for the table of contents.
const (
	MinHeadingDepth = 1
	MaxHeadingDepth = 6
)

// Renderer abstracts Markdown to HTML conversion.
type Renderer interface {
	Render(ctx context.Context, text string, opts RenderOptions) (*Fragment, error)
}

// RenderOptions controls a single Render call.
type RenderOptions struct {
	TOC      bool       // Extract a table of contents
	MinDepth int        // Shallowest heading listed (0 = 1)
	MaxDepth int        // Deepest heading listed (0 = 6)
	IDs      parser.IDs // Heading id generator (nil = fresh slug registry)
}

// Fragment is the output of the Markdown stage.
type Fragment struct {
	Body string // Rendered document body
	TOC  string // Nested <ul> list, empty when disabled or no headings
}

// MarkdownRenderer converts Markdown using goldmark (CommonMark).
type MarkdownRenderer struct {
	md goldmark.Markdown
}

var _ Renderer = (*MarkdownRenderer)(nil)

// permalinkIcon is the markup inside every heading permalink.
const permalinkIcon = `<span class="octicon octicon-link"></span>`

// NewMarkdownRenderer creates a renderer with tables, strikethrough,
// chroma highlighting, emoji shortcodes and heading permalinks.
func NewMarkdownRenderer() *MarkdownRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true), // Colors come from the highlight stylesheet
				),
			),
			emoji.Emoji,
			&anchor.Extender{
				Texter:   anchor.Text(permalinkIcon),
				Position: anchor.Before,
				Unsafe:   true,
				Attributer: anchor.Attributes{
					"class":       "anchor",
					"aria-hidden": "true",
				},
			},
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithAttribute(), // {#custom-id} on headings
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(), // Raw HTML in Markdown is passed through
			html.WithXHTML(),
		),
	)
	return &MarkdownRenderer{md: md}
}

// Render converts text to an HTML body and, when requested, a table of
// contents built from the same heading ids.
// Goldmark has no context support, so cancellation is observed through a
// goroutine and select.
func (r *MarkdownRenderer) Render(ctx context.Context, text string, opts RenderOptions) (*Fragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids := opts.IDs
	if ids == nil {
		ids = slug.New()
	}

	type result struct {
		frag *Fragment
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		pc := parser.NewContext(parser.WithIDs(ids))
		if err := r.md.Convert([]byte(text), &buf, parser.WithContext(pc)); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrMarkdownRender, err)}
			return
		}

		frag := &Fragment{Body: buf.String()}
		if opts.TOC {
			toc, err := BuildTOC(frag.Body, opts.MinDepth, opts.MaxDepth)
			if err != nil {
				done <- result{err: err}
				return
			}
			frag.TOC = toc
		}
		done <- result{frag: frag}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.frag, res.err
	}
}
