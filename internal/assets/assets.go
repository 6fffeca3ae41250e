// Package assets provides the default theme, the default page template and
// syntax highlighting stylesheets.
//
// Assets come from the go:embed filesystem, optionally overridden by a
// directory on disk laid out as:
//
//	{basePath}/
//	├── styles/{name}.css
//	└── templates/{name}.html
//
// Asset names are validated so they cannot escape their directory.
package assets

import (
	"fmt"
	"strings"
)

// Names of the built-in assets.
const (
	DefaultStyleName     = "default"
	DefaultTemplateName  = "default"
	DefaultHighlightName = "github"
)

// Loader loads CSS styles and HTML templates by name.
type Loader interface {
	// LoadStyle loads a style by name (without .css extension).
	LoadStyle(name string) (string, error)

	// LoadTemplate loads a page template by name (without .html extension).
	LoadTemplate(name string) (string, error)
}

// ValidateAssetName checks that an asset name is safe for use as a filename.
// Rejects empty names, path separators and dots.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
