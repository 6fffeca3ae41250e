// Package config loads the YAML configuration of the mdpdf CLI. Keys mirror
// the GitHub Action inputs, so a workflow's `with:` block can be moved to a
// file unchanged.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/mdpdf/internal/fileutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound       = errors.New("config file not found")
	ErrEmptyConfigName      = errors.New("config name cannot be empty")
	ErrConfigParse          = errors.New("failed to parse config")
	ErrFieldTooLong         = errors.New("field exceeds maximum length")
	ErrInvalidValue         = errors.New("invalid config value")
	ErrPathEscapesWorkspace = errors.New("path escapes workspace")
)

// Field length limits.
const (
	MaxPathLength   = 4096
	MaxNameLength   = 100  // theme and highlight style names
	MaxImportLength = 1024 // image_import prefix
	MaxAddrLength   = 255  // host:port
)

// Worker and heading bounds.
const (
	MaxWorkers  = 32
	MaxTOCDepth = 6
)

// Slug scopes accepted by slug_scope.
const (
	SlugScopeDocument = "document"
	SlugScopeSession  = "session"
)

// Default values applied before the config file is read.
const (
	DefaultInputDir       = "."
	DefaultOutputDir      = "built"
	DefaultHighlightTheme = "github"
)

// Config holds every CLI input. Paths are relative to the workspace.
type Config struct {
	InputDir           string `yaml:"input_dir"`
	ImageImport        string `yaml:"image_import"`
	ImagesDir          string `yaml:"images_dir"` // Empty = input_dir joined with image_import
	OutputDir          string `yaml:"output_dir"`
	BuildHTML          bool   `yaml:"build_html"`
	Theme              string `yaml:"theme"` // CSS file; empty = embedded default theme
	HighlightTheme     string `yaml:"highlight_theme"`
	Template           string `yaml:"template"`
	ExtendDefaultTheme bool   `yaml:"extend_default_theme"`
	TableOfContents    bool   `yaml:"table_of_contents"`
	TOCMinDepth        int    `yaml:"toc_min_depth"` // 0 = 1
	TOCMaxDepth        int    `yaml:"toc_max_depth"` // 0 = 6
	SlugScope          string `yaml:"slug_scope"`
	AssetsPath         string `yaml:"assets_path"` // Directory with styles/ and templates/ overrides
	Workers            int    `yaml:"workers"`     // 0 = auto
	Timeout            string `yaml:"timeout"`     // Go duration; empty = library default
	Addr               string `yaml:"addr"`        // Asset server host:port; empty = library default
	HTMLOnly           bool   `yaml:"html_only"`
}

// DefaultConfig returns the values used when nothing else is set.
func DefaultConfig() *Config {
	return &Config{
		InputDir:       DefaultInputDir,
		OutputDir:      DefaultOutputDir,
		BuildHTML:      true,
		HighlightTheme: DefaultHighlightTheme,
		SlugScope:      SlugScopeDocument,
	}
}

// Validate checks field lengths and value ranges.
// Called by LoadConfig; the CLI calls it again after overrides are merged.
func (c *Config) Validate() error {
	lengths := []struct {
		field string
		value string
		max   int
	}{
		{"input_dir", c.InputDir, MaxPathLength},
		{"image_import", c.ImageImport, MaxImportLength},
		{"images_dir", c.ImagesDir, MaxPathLength},
		{"output_dir", c.OutputDir, MaxPathLength},
		{"theme", c.Theme, MaxPathLength},
		{"highlight_theme", c.HighlightTheme, MaxPathLength},
		{"template", c.Template, MaxPathLength},
		{"assets_path", c.AssetsPath, MaxPathLength},
		{"addr", c.Addr, MaxAddrLength},
	}
	for _, l := range lengths {
		if err := validateFieldLength(l.field, l.value, l.max); err != nil {
			return err
		}
	}

	if c.Workers < 0 || c.Workers > MaxWorkers {
		return fmt.Errorf("%w: workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Workers)
	}
	if c.TOCMinDepth < 0 || c.TOCMinDepth > MaxTOCDepth {
		return fmt.Errorf("%w: toc_min_depth must be between 0 and %d, got %d", ErrInvalidValue, MaxTOCDepth, c.TOCMinDepth)
	}
	if c.TOCMaxDepth < 0 || c.TOCMaxDepth > MaxTOCDepth {
		return fmt.Errorf("%w: toc_max_depth must be between 0 and %d, got %d", ErrInvalidValue, MaxTOCDepth, c.TOCMaxDepth)
	}
	if c.TOCMinDepth != 0 && c.TOCMaxDepth != 0 && c.TOCMinDepth > c.TOCMaxDepth {
		return fmt.Errorf("%w: toc_min_depth %d exceeds toc_max_depth %d", ErrInvalidValue, c.TOCMinDepth, c.TOCMaxDepth)
	}

	switch c.SlugScope {
	case "", SlugScopeDocument, SlugScopeSession:
	default:
		return fmt.Errorf("%w: slug_scope must be %q or %q, got %q", ErrInvalidValue, SlugScopeDocument, SlugScopeSession, c.SlugScope)
	}

	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// TimeoutDuration parses Timeout. An empty value returns 0.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: timeout %q: %v", ErrInvalidValue, c.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidValue, c.Timeout)
	}
	return d, nil
}

func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// Paths holds the workspace-resolved absolute directories of a Config.
type Paths struct {
	Workspace string
	InputDir  string
	ImagesDir string
	OutputDir string
}

// ResolvePaths resolves the directory inputs under workspace.
// Any of them escaping the workspace returns ErrPathEscapesWorkspace.
func (c *Config) ResolvePaths(workspace string) (*Paths, error) {
	root, err := filepath.Abs(workspace)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace: %w", err)
	}

	imagesDir := c.ImagesDir
	if imagesDir == "" {
		imagesDir = filepath.Join(c.InputDir, c.ImageImport)
	}

	p := &Paths{Workspace: root}
	targets := []struct {
		field string
		value string
		dst   *string
	}{
		{"input_dir", c.InputDir, &p.InputDir},
		{"images_dir", imagesDir, &p.ImagesDir},
		{"output_dir", c.OutputDir, &p.OutputDir},
	}
	for _, t := range targets {
		resolved, err := ResolveUnderWorkspace(root, t.value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.field, err)
		}
		*t.dst = resolved
	}
	return p, nil
}

// ResolveUnderWorkspace resolves one path input under workspace.
func ResolveUnderWorkspace(workspace, value string) (string, error) {
	resolved, err := fileutil.ResolveUnder(workspace, value)
	if errors.Is(err, fileutil.ErrPathEscapesRoot) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapesWorkspace, value)
	}
	return resolved, err
}

// LoadConfig loads configuration from a file path or config name.
// A value containing a path separator is a file path; anything else is a
// name searched by SearchPaths. Keys missing from the file keep their
// DefaultConfig value.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := unmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SearchPaths lists the files tried for a config name, in order:
// <name>.yaml and <name>.yml in the current directory, then in
// <user config dir>/mdpdf/.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, "mdpdf", name+ext))
		}
	}
	return paths
}

func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
