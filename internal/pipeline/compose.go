package pipeline

import (
	"errors"
	"fmt"

	"github.com/aymerick/raymond"
)

// Sentinel errors for page composition.
var (
	ErrInvalidTemplate = errors.New("invalid page template")
	ErrCompose         = errors.New("page composition failed")
)

// Page holds the values substituted into the page template.
// Style, TOC and Content are markup and are inserted verbatim;
// Title is HTML-escaped.
type Page struct {
	Title   string
	Style   string
	TOC     string
	Content string
}

// Compositor renders pages from a Mustache-compatible template with the
// placeholders {{title}}, {{style}}, {{toc}} and {{content}}.
type Compositor struct {
	tpl *raymond.Template
}

// NewCompositor parses the template once. Returns ErrInvalidTemplate if
// the source does not parse.
func NewCompositor(source string) (*Compositor, error) {
	tpl, err := raymond.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	return &Compositor{tpl: tpl}, nil
}

// Compose substitutes page into the template.
func (c *Compositor) Compose(page Page) (string, error) {
	out, err := c.tpl.Exec(map[string]any{
		"title":   page.Title,
		"style":   raymond.SafeString(page.Style),
		"toc":     raymond.SafeString(page.TOC),
		"content": raymond.SafeString(page.Content),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompose, err)
	}
	return out, nil
}
