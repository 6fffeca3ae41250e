package mdpdf

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/alnah/mdpdf/internal/assetserver"
)

// Options holds the per-session document settings.
type Options struct {
	// ImageImport is the prefix in image sources that points at ImageDir.
	// Empty disables image inlining and the asset server.
	ImageImport string

	// ImageDir is the directory served to the inliner. Empty = ImageImport.
	ImageDir string

	// Style is the CSS inserted into every document.
	Style string

	// Template is the page template source. Empty = the embedded default.
	Template string

	// TableOfContents enables the {{toc}} fragment.
	TableOfContents bool
}

// SlugScope selects how long heading ids stay reserved.
type SlugScope int

const (
	// SlugScopeDocument gives every conversion a fresh slug registry.
	SlugScopeDocument SlugScope = iota

	// SlugScopeSession shares one registry across all conversions of a
	// session, so ids stay unique across documents.
	SlugScopeSession
)

func (s SlugScope) String() string {
	switch s {
	case SlugScopeDocument:
		return "document"
	case SlugScopeSession:
		return "session"
	default:
		return "unknown"
	}
}

// Defaults applied by NewSession.
const (
	DefaultTimeout          = 60 * time.Second
	DefaultWorkers          = 1
	DefaultImageConcurrency = 1
)

// Option configures a Session.
type Option func(*sessionConfig)

type sessionConfig struct {
	addr             string
	timeout          time.Duration
	logger           *log.Logger
	slugScope        SlugScope
	imageConcurrency int
	workers          int
	browserBin       string
	htmlOnly         bool
	tocMinDepth      int
	tocMaxDepth      int
	layout           PDFLayout
	renderer         pdfRenderer // set by tests
}

func defaultSessionConfig() sessionConfig {
	return sessionConfig{
		addr:             assetserver.DefaultAddr,
		timeout:          DefaultTimeout,
		slugScope:        SlugScopeDocument,
		imageConcurrency: DefaultImageConcurrency,
		workers:          DefaultWorkers,
		layout:           DefaultLayout(),
	}
}

// WithAddr sets the asset server listen address. Port 0 picks a free port.
func WithAddr(addr string) Option {
	return func(c *sessionConfig) {
		c.addr = addr
	}
}

// WithTimeout bounds content loading and PDF export of each document.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("mdpdf: WithTimeout duration must be positive")
	}
	return func(c *sessionConfig) {
		c.timeout = d
	}
}

// WithLogger sets the logger for session diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *sessionConfig) {
		c.logger = l
	}
}

// WithSlugScope selects per-document or per-session heading ids.
func WithSlugScope(s SlugScope) Option {
	return func(c *sessionConfig) {
		c.slugScope = s
	}
}

// WithImageConcurrency sets how many distinct images are fetched in
// parallel per document.
func WithImageConcurrency(n int) Option {
	return func(c *sessionConfig) {
		c.imageConcurrency = n
	}
}

// WithWorkers sets how many documents ConvertAll converts at once.
// 0 sizes the pool from GOMAXPROCS (see ResolveWorkers).
func WithWorkers(n int) Option {
	return func(c *sessionConfig) {
		c.workers = n
	}
}

// WithBrowserBin uses the given Chrome binary. Without it ROD_BROWSER_BIN
// is used, then rod's managed download.
func WithBrowserBin(path string) Option {
	return func(c *sessionConfig) {
		c.browserBin = path
	}
}

// WithHTMLOnly skips PDF generation; Result.PDF stays nil.
func WithHTMLOnly() Option {
	return func(c *sessionConfig) {
		c.htmlOnly = true
	}
}

// WithTOCDepth limits the table of contents to headings between min and
// max (1-6). Zero keeps the corresponding default.
func WithTOCDepth(minDepth, maxDepth int) Option {
	return func(c *sessionConfig) {
		c.tocMinDepth = minDepth
		c.tocMaxDepth = maxDepth
	}
}

// withRenderer replaces the browser renderer.
func withRenderer(r pdfRenderer) Option {
	return func(c *sessionConfig) {
		c.renderer = r
	}
}
