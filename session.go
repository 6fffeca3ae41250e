package mdpdf

import (
	"context"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/mdpdf/internal/assets"
	"github.com/alnah/mdpdf/internal/assetserver"
	"github.com/alnah/mdpdf/internal/fileutil"
	"github.com/alnah/mdpdf/internal/imginline"
	"github.com/alnah/mdpdf/internal/pipeline"
	"github.com/alnah/mdpdf/internal/slug"
)

type sessionState int

const (
	stateCreated sessionState = iota
	stateStarted
	stateClosed
)

func (s sessionState) String() string {
	switch s {
	case stateCreated:
		return "created"
	case stateStarted:
		return "started"
	default:
		return "closed"
	}
}

// Request is one document for ConvertAll.
type Request struct {
	Markdown string
	Title    string
}

// Session converts Markdown documents to HTML and PDF.
// Create with NewSession, call Start before converting and Close when done.
// A Session is safe for concurrent use once started.
type Session struct {
	opts     Options
	imageDir string
	cfg      sessionConfig
	logger   *log.Logger

	markdown    pipeline.Renderer
	compositor  *pipeline.Compositor
	renderer    pdfRenderer
	sharedSlugs *slug.Registry // SlugScopeSession only

	mu       sync.Mutex
	state    sessionState
	inflight sync.WaitGroup
	server   *assetserver.Server
	inliner  *imginline.Inliner
}

// NewSession validates opts and returns a session in the created state.
// Nothing is bound or launched until Start.
func NewSession(opts Options, options ...Option) (*Session, error) {
	cfg := defaultSessionConfig()
	for _, o := range options {
		o(&cfg)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	logger := cfg.logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Session{
		opts:     opts,
		cfg:      cfg,
		logger:   logger,
		markdown: pipeline.NewMarkdownRenderer(),
	}

	if opts.ImageImport != "" {
		s.imageDir = opts.ImageDir
		if s.imageDir == "" {
			s.imageDir = opts.ImageImport
		}
		if !fileutil.DirExists(s.imageDir) {
			return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidImageDir, s.imageDir)
		}
	}

	source := opts.Template
	if source == "" {
		var err error
		source, err = assets.NewEmbeddedLoader().LoadTemplate(assets.DefaultTemplateName)
		if err != nil {
			return nil, fmt.Errorf("loading default template: %w", err)
		}
	}
	compositor, err := pipeline.NewCompositor(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	s.compositor = compositor

	if cfg.slugScope == SlugScopeSession {
		s.sharedSlugs = slug.New()
	}

	switch {
	case cfg.renderer != nil:
		s.renderer = cfg.renderer
	case !cfg.htmlOnly:
		s.renderer = newRodRenderer(cfg.timeout, cfg.browserBin, logger)
	}

	return s, nil
}

func validateConfig(cfg *sessionConfig) error {
	if cfg.workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidOption, cfg.workers)
	}
	if cfg.imageConcurrency < 1 {
		return fmt.Errorf("%w: image concurrency must be >= 1, got %d", ErrInvalidOption, cfg.imageConcurrency)
	}
	if cfg.slugScope != SlugScopeDocument && cfg.slugScope != SlugScopeSession {
		return fmt.Errorf("%w: unknown slug scope %d", ErrInvalidOption, int(cfg.slugScope))
	}
	if cfg.addr == "" {
		return fmt.Errorf("%w: empty asset server address", ErrInvalidOption)
	}

	minDepth, maxDepth := cfg.tocMinDepth, cfg.tocMaxDepth
	if minDepth < 0 || minDepth > pipeline.MaxHeadingDepth || maxDepth < 0 || maxDepth > pipeline.MaxHeadingDepth {
		return fmt.Errorf("%w: TOC depth must be between %d and %d", ErrInvalidOption, pipeline.MinHeadingDepth, pipeline.MaxHeadingDepth)
	}
	if minDepth != 0 && maxDepth != 0 && minDepth > maxDepth {
		return fmt.Errorf("%w: TOC min depth %d exceeds max depth %d", ErrInvalidOption, minDepth, maxDepth)
	}
	return nil
}

// Start binds the asset server when image inlining is enabled.
func (s *Session) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case stateStarted:
		return ErrSessionStarted
	case stateClosed:
		return ErrSessionClosed
	}

	inlinerOpts := imginline.Options{
		Concurrency: s.cfg.imageConcurrency,
		Logger:      s.logger,
	}

	if s.opts.ImageImport != "" {
		server := assetserver.New(s.imageDir, s.cfg.addr, s.logger)
		if err := server.Start(); err != nil {
			return fmt.Errorf("%w: %v", ErrServerStart, err)
		}
		s.server = server
		inlinerOpts.ImportBase = s.opts.ImageImport
		inlinerOpts.BaseURL = server.BaseURL()
	}

	s.inliner = imginline.New(inlinerOpts)
	s.state = stateStarted
	return nil
}

// Convert renders one Markdown document to HTML and, unless the session is
// HTML-only, to PDF. The session must be started.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (s *Session) Convert(ctx context.Context, markdown, title string) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if !utf8.ValidString(markdown) {
		return nil, fmt.Errorf("%w: markdown is not valid UTF-8", ErrInvalidInput)
	}
	if !utf8.ValidString(title) {
		return nil, fmt.Errorf("%w: title is not valid UTF-8", ErrInvalidInput)
	}

	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.inflight.Done()

	ids := s.sharedSlugs
	if ids == nil {
		ids = slug.New()
	}

	frag, err := s.markdown.Render(ctx, markdown, pipeline.RenderOptions{
		TOC:      s.opts.TableOfContents,
		MinDepth: s.cfg.tocMinDepth,
		MaxDepth: s.cfg.tocMaxDepth,
		IDs:      ids,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, renderError(StageMarkdown, err)
	}

	doc, err := s.compositor.Compose(pipeline.Page{
		Title:   title,
		Style:   s.opts.Style,
		TOC:     frag.TOC,
		Content: frag.Body,
	})
	if err != nil {
		return nil, renderError(StageCompose, err)
	}

	doc, err = s.inliner.Inline(ctx, doc)
	if err != nil {
		return nil, err
	}

	result = &Result{HTML: doc}
	if s.renderer != nil && !s.cfg.htmlOnly {
		pdf, err := s.renderer.RenderPDF(ctx, doc, s.cfg.layout)
		if err != nil {
			return nil, err
		}
		result.PDF = pdf
	}

	s.logger.Debug("converted document", "title", title, "html", len(result.HTML), "pdf", len(result.PDF))
	return result, nil
}

// begin registers an in-flight conversion if the session is started.
func (s *Session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case stateCreated:
		return ErrSessionNotStarted
	case stateClosed:
		return ErrSessionClosed
	}
	s.inflight.Add(1)
	return nil
}

// ConvertAll converts every request, up to the configured number of
// workers at a time. Results are index-aligned with reqs. The first failure
// cancels the remaining conversions and is returned.
func (s *Session) ConvertAll(ctx context.Context, reqs []Request) ([]*Result, error) {
	results := make([]*Result, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ResolveWorkers(s.cfg.workers))

	for i, req := range reqs {
		g.Go(func() error {
			res, err := s.Convert(gctx, req.Markdown, req.Title)
			if err != nil {
				return fmt.Errorf("document %d (%q): %w", i, req.Title, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close waits for in-flight conversions and shuts the asset server down.
// Closing twice returns ErrSessionClosed.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.state == stateClosed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.state = stateClosed
	server := s.server
	s.server = nil
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	var waitErr error
	select {
	case <-done:
	case <-ctx.Done():
		waitErr = ctx.Err()
	}

	if server != nil {
		// Listeners are released even when ctx already expired
		if err := server.Close(ctx); err != nil && waitErr == nil {
			waitErr = err
		}
	}
	return waitErr
}
