package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/alnah/mdpdf/internal/config"
)

// envPrefix is the prefix GitHub Actions gives workflow inputs.
const envPrefix = "INPUT_"

// workspaceEnv names the checkout directory on GitHub runners.
const workspaceEnv = "GITHUB_WORKSPACE"

// envConfig holds the action inputs read from the environment.
// Pointer fields are nil when the variable is unset or invalid.
type envConfig struct {
	ConfigPath string // INPUT_CONFIG

	InputDir    string // INPUT_INPUT_DIR
	ImageImport string // INPUT_IMAGE_IMPORT
	ImagesDir   string // INPUT_IMAGES_DIR
	OutputDir   string // INPUT_OUTPUT_DIR
	BuildHTML   *bool  // INPUT_BUILD_HTML

	Theme              string // INPUT_THEME
	HighlightTheme     string // INPUT_HIGHLIGHT_THEME
	Template           string // INPUT_TEMPLATE
	ExtendDefaultTheme *bool  // INPUT_EXTEND_DEFAULT_THEME
	AssetsPath         string // INPUT_ASSETS_PATH

	TableOfContents *bool  // INPUT_TABLE_OF_CONTENTS
	TOCMinDepth     *int   // INPUT_TOC_MIN_DEPTH
	TOCMaxDepth     *int   // INPUT_TOC_MAX_DEPTH
	SlugScope       string // INPUT_SLUG_SCOPE

	Workers  *int   // INPUT_WORKERS
	Timeout  string // INPUT_TIMEOUT
	Addr     string // INPUT_ADDR
	HTMLOnly *bool  // INPUT_HTML_ONLY

	Workspace string // GITHUB_WORKSPACE
}

// knownEnvVars lists the INPUT_* variables the action understands.
var knownEnvVars = map[string]bool{
	"INPUT_CONFIG":               true,
	"INPUT_INPUT_DIR":            true,
	"INPUT_IMAGE_IMPORT":         true,
	"INPUT_IMAGES_DIR":           true,
	"INPUT_OUTPUT_DIR":           true,
	"INPUT_BUILD_HTML":           true,
	"INPUT_THEME":                true,
	"INPUT_HIGHLIGHT_THEME":      true,
	"INPUT_TEMPLATE":             true,
	"INPUT_EXTEND_DEFAULT_THEME": true,
	"INPUT_ASSETS_PATH":          true,
	"INPUT_TABLE_OF_CONTENTS":    true,
	"INPUT_TOC_MIN_DEPTH":        true,
	"INPUT_TOC_MAX_DEPTH":        true,
	"INPUT_SLUG_SCOPE":           true,
	"INPUT_WORKERS":              true,
	"INPUT_TIMEOUT":              true,
	"INPUT_ADDR":                 true,
	"INPUT_HTML_ONLY":            true,
}

// loadEnvConfig reads the action inputs through getenv. Values that cannot
// be parsed are reported on w and ignored.
func loadEnvConfig(getenv func(string) string, w io.Writer) *envConfig {
	get := func(name string) string {
		return strings.TrimSpace(getenv(name))
	}
	boolVar := func(name string) *bool {
		raw := get(name)
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			fmt.Fprintf(w, "warning: %s=%q is not a boolean, ignored\n", name, raw)
			return nil
		}
		return &v
	}
	intVar := func(name string) *int {
		raw := get(name)
		if raw == "" {
			return nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			fmt.Fprintf(w, "warning: %s=%q is not an integer, ignored\n", name, raw)
			return nil
		}
		return &v
	}

	return &envConfig{
		ConfigPath: get("INPUT_CONFIG"),

		InputDir:    get("INPUT_INPUT_DIR"),
		ImageImport: get("INPUT_IMAGE_IMPORT"),
		ImagesDir:   get("INPUT_IMAGES_DIR"),
		OutputDir:   get("INPUT_OUTPUT_DIR"),
		BuildHTML:   boolVar("INPUT_BUILD_HTML"),

		Theme:              get("INPUT_THEME"),
		HighlightTheme:     get("INPUT_HIGHLIGHT_THEME"),
		Template:           get("INPUT_TEMPLATE"),
		ExtendDefaultTheme: boolVar("INPUT_EXTEND_DEFAULT_THEME"),
		AssetsPath:         get("INPUT_ASSETS_PATH"),

		TableOfContents: boolVar("INPUT_TABLE_OF_CONTENTS"),
		TOCMinDepth:     intVar("INPUT_TOC_MIN_DEPTH"),
		TOCMaxDepth:     intVar("INPUT_TOC_MAX_DEPTH"),
		SlugScope:       get("INPUT_SLUG_SCOPE"),

		Workers:  intVar("INPUT_WORKERS"),
		Timeout:  get("INPUT_TIMEOUT"),
		Addr:     get("INPUT_ADDR"),
		HTMLOnly: boolVar("INPUT_HTML_ONLY"),

		Workspace: get(workspaceEnv),
	}
}

// warnUnknownEnvVars reports INPUT_* variables nobody reads, sorted.
func warnUnknownEnvVars(environ []string, w io.Writer) {
	var unknown []string
	for _, env := range environ {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
	}
}

// applyEnvConfig overrides cfg with every variable that is set.
// Flags are applied afterwards, giving flags > env > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setBool := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	setInt := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}

	setString(&cfg.InputDir, env.InputDir)
	setString(&cfg.ImageImport, env.ImageImport)
	setString(&cfg.ImagesDir, env.ImagesDir)
	setString(&cfg.OutputDir, env.OutputDir)
	setBool(&cfg.BuildHTML, env.BuildHTML)

	setString(&cfg.Theme, env.Theme)
	setString(&cfg.HighlightTheme, env.HighlightTheme)
	setString(&cfg.Template, env.Template)
	setBool(&cfg.ExtendDefaultTheme, env.ExtendDefaultTheme)
	setString(&cfg.AssetsPath, env.AssetsPath)

	setBool(&cfg.TableOfContents, env.TableOfContents)
	setInt(&cfg.TOCMinDepth, env.TOCMinDepth)
	setInt(&cfg.TOCMaxDepth, env.TOCMaxDepth)
	setString(&cfg.SlugScope, env.SlugScope)

	setInt(&cfg.Workers, env.Workers)
	setString(&cfg.Timeout, env.Timeout)
	setString(&cfg.Addr, env.Addr)
	setBool(&cfg.HTMLOnly, env.HTMLOnly)
}

// applyFlags overrides cfg with the flags set on the command line.
func applyFlags(f *cliFlags, cfg *config.Config) {
	overrides := []struct {
		name  string
		apply func()
	}{
		{"input-dir", func() { cfg.InputDir = f.input.inputDir }},
		{"image-import", func() { cfg.ImageImport = f.input.imageImport }},
		{"images-dir", func() { cfg.ImagesDir = f.input.imagesDir }},
		{"output-dir", func() { cfg.OutputDir = f.input.outputDir }},
		{"build-html", func() { cfg.BuildHTML = f.input.buildHTML }},
		{"theme", func() { cfg.Theme = f.style.theme }},
		{"highlight-theme", func() { cfg.HighlightTheme = f.style.highlightTheme }},
		{"template", func() { cfg.Template = f.style.template }},
		{"extend-default-theme", func() { cfg.ExtendDefaultTheme = f.style.extendDefault }},
		{"assets-path", func() { cfg.AssetsPath = f.style.assetsPath }},
		{"table-of-contents", func() { cfg.TableOfContents = f.toc.enabled }},
		{"toc-min-depth", func() { cfg.TOCMinDepth = f.toc.minDepth }},
		{"toc-max-depth", func() { cfg.TOCMaxDepth = f.toc.maxDepth }},
		{"slug-scope", func() { cfg.SlugScope = f.toc.slugScope }},
		{"workers", func() { cfg.Workers = f.runtime.workers }},
		{"timeout", func() { cfg.Timeout = f.runtime.timeout.String() }},
		{"addr", func() { cfg.Addr = f.runtime.addr }},
		{"html-only", func() { cfg.HTMLOnly = f.runtime.htmlOnly }},
	}
	for _, o := range overrides {
		if f.changed(o.name) {
			o.apply()
		}
	}
}
