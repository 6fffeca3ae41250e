package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"
)

// ErrUsage marks invalid command lines.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared by every invocation.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// inputFlags mirror the action inputs.
type inputFlags struct {
	inputDir    string
	imageImport string
	imagesDir   string
	outputDir   string
	buildHTML   bool
}

// styleFlags select the theme, code highlighting and page template.
type styleFlags struct {
	theme          string
	highlightTheme string
	template       string
	extendDefault  bool
	assetsPath     string
}

// tocFlags holds table of contents flags.
type tocFlags struct {
	enabled   bool
	minDepth  int
	maxDepth  int
	slugScope string
}

// runtimeFlags control the conversion engine.
type runtimeFlags struct {
	workers   int
	timeout   time.Duration
	addr      string
	htmlOnly  bool
	workspace string
}

// cliFlags holds every flag plus the set that parsed them, so explicitly
// set values can be told apart from defaults.
type cliFlags struct {
	common  commonFlags
	input   inputFlags
	style   styleFlags
	toc     tocFlags
	runtime runtimeFlags
	version bool
	help    bool

	fs *flag.FlagSet
}

// changed reports whether name was set on the command line.
func (f *cliFlags) changed(name string) bool {
	return f.fs != nil && f.fs.Changed(name)
}

func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug output")
}

func addInputFlags(fs *flag.FlagSet, f *inputFlags) {
	fs.StringVarP(&f.inputDir, "input-dir", "i", "", "directory with the Markdown files (default \".\")")
	fs.StringVar(&f.imageImport, "image-import", "", "image path prefix to inline, e.g. ./images")
	fs.StringVar(&f.imagesDir, "images-dir", "", "directory served for images (default input-dir/image-import)")
	fs.StringVarP(&f.outputDir, "output-dir", "o", "", "output directory (default \"built\")")
	fs.BoolVar(&f.buildHTML, "build-html", true, "also write the HTML documents")
}

func addStyleFlags(fs *flag.FlagSet, f *styleFlags) {
	fs.StringVar(&f.theme, "theme", "", "CSS theme file or embedded theme name")
	fs.StringVar(&f.highlightTheme, "highlight-theme", "", "chroma style or CSS file for code blocks (default \"github\")")
	fs.StringVar(&f.template, "template", "", "page template file or embedded template name")
	fs.BoolVar(&f.extendDefault, "extend-default-theme", false, "apply the theme on top of the default theme")
	fs.StringVar(&f.assetsPath, "assets-path", "", "directory with styles/ and templates/ overrides")
}

func addTOCFlags(fs *flag.FlagSet, f *tocFlags) {
	fs.BoolVar(&f.enabled, "table-of-contents", false, "fill the {{toc}} placeholder")
	fs.IntVar(&f.minDepth, "toc-min-depth", 0, "shallowest heading in the TOC (1-6)")
	fs.IntVar(&f.maxDepth, "toc-max-depth", 0, "deepest heading in the TOC (1-6)")
	fs.StringVar(&f.slugScope, "slug-scope", "", "heading id scope: document or session")
}

func addRuntimeFlags(fs *flag.FlagSet, f *runtimeFlags) {
	fs.IntVarP(&f.workers, "workers", "w", 0, "documents converted in parallel (0 = auto)")
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "PDF timeout per document (e.g. 30s, 2m)")
	fs.StringVar(&f.addr, "addr", "", "image server address (default localhost:3000, port 0 = any)")
	fs.BoolVar(&f.htmlOnly, "html-only", false, "write HTML only, skip PDF")
	fs.StringVar(&f.workspace, "workspace", "", "root for every path (default $GITHUB_WORKSPACE or \".\")")
}

// parseFlags parses args (without the program name).
func parseFlags(args []string, stderr io.Writer) (*cliFlags, error) {
	fs := flag.NewFlagSet("mdpdf", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false

	f := &cliFlags{fs: fs}
	addInputFlags(fs, &f.input)
	addStyleFlags(fs, &f.style)
	addTOCFlags(fs, &f.toc)
	addRuntimeFlags(fs, &f.runtime)
	addCommonFlags(fs, &f.common)
	fs.BoolVar(&f.version, "version", false, "print version and exit")
	fs.BoolVarP(&f.help, "help", "h", false, "show help")

	fs.Usage = func() { printUsage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments %v", ErrUsage, fs.Args())
	}
	if f.common.quiet && f.common.verbose {
		return nil, fmt.Errorf("%w: --quiet and --verbose are mutually exclusive", ErrUsage)
	}
	if f.runtime.timeout < 0 {
		return nil, fmt.Errorf("%w: --timeout must be positive", ErrUsage)
	}
	return f, nil
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, `Usage: mdpdf [flags]

Converts every Markdown file in the input directory to PDF (and HTML).
Flags override INPUT_* environment variables, which override the config file.

Flags:
%s
Exit codes: 0 ok, 1 error, 2 usage/config, 3 I/O, 4 browser
`, fs.FlagUsages())
}
