package assets

import (
	"errors"
	"fmt"
	"os"

	"github.com/alnah/mdpdf/internal/fileutil"
)

// Resolver tries a custom directory first and falls back to the embedded
// assets when the custom one does not have the requested name.
type Resolver struct {
	custom   Loader // nil without a custom base path
	embedded Loader
}

var _ Loader = (*Resolver)(nil)

// NewResolver creates a Resolver. An empty customBasePath uses embedded
// assets only; an invalid one returns ErrInvalidBasePath.
func NewResolver(customBasePath string) (*Resolver, error) {
	r := &Resolver{embedded: NewEmbeddedLoader()}

	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		r.custom = fsLoader
	}
	return r, nil
}

// HasCustomLoader reports whether a custom directory is configured.
func (r *Resolver) HasCustomLoader() bool {
	return r.custom != nil
}

// LoadStyle loads a style, custom first.
func (r *Resolver) LoadStyle(name string) (string, error) {
	return r.loadWithFallback(func(l Loader) (string, error) { return l.LoadStyle(name) })
}

// LoadTemplate loads a page template, custom first.
func (r *Resolver) LoadTemplate(name string) (string, error) {
	return r.loadWithFallback(func(l Loader) (string, error) { return l.LoadTemplate(name) })
}

// loadWithFallback only falls back on not-found; validation and I/O errors
// from the custom loader are returned as is.
func (r *Resolver) loadWithFallback(load func(Loader) (string, error)) (string, error) {
	if r.custom == nil {
		return load(r.embedded)
	}

	content, err := load(r.custom)
	if err == nil {
		return content, nil
	}
	if !isNotFoundError(err) {
		return "", err
	}
	return load(r.embedded)
}

func isNotFoundError(err error) bool {
	return errors.Is(err, ErrStyleNotFound) || errors.Is(err, ErrTemplateNotFound)
}

// ResolveStyle turns a style input into CSS text.
// A value containing a path separator is read from disk; anything else is
// an asset name looked up through l.
func ResolveStyle(l Loader, input string) (string, error) {
	if fileutil.IsFilePath(input) {
		return readFile(input)
	}
	css, err := l.LoadStyle(input)
	if err != nil {
		return "", fmt.Errorf("loading style %q: %w", input, err)
	}
	return css, nil
}

// ResolveTemplate turns a template input into template text, like
// ResolveStyle.
func ResolveTemplate(l Loader, input string) (string, error) {
	if fileutil.IsFilePath(input) {
		return readFile(input)
	}
	tpl, err := l.LoadTemplate(input)
	if err != nil {
		return "", fmt.Errorf("loading template %q: %w", input, err)
	}
	return tpl, nil
}

func readFile(path string) (string, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- user-provided path
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrAssetRead, path, err)
	}
	return string(content), nil
}
