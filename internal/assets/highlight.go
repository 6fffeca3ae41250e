package assets

import (
	"fmt"
	"sort"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/alnah/mdpdf/internal/fileutil"
)

// HighlightCSS returns the stylesheet for highlighted code blocks.
// name is a chroma style ("github", "monokai", ...) or a path to a CSS file.
// The classes match the ones emitted by the Markdown renderer.
func HighlightCSS(name string) (string, error) {
	if name == "" {
		name = DefaultHighlightName
	}
	if fileutil.IsFilePath(name) {
		return readFile(name)
	}

	style, ok := styles.Registry[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrHighlightNotFound, name)
	}

	var buf strings.Builder
	if err := chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(&buf, style); err != nil {
		return "", fmt.Errorf("writing highlight CSS: %w", err)
	}
	return buf.String(), nil
}

// HighlightNames lists the chroma styles, sorted.
func HighlightNames() []string {
	names := make([]string, 0, len(styles.Registry))
	for name := range styles.Registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
