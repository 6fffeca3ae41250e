package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/mdpdf"
	"github.com/alnah/mdpdf/internal/assets"
	"github.com/alnah/mdpdf/internal/config"
	"github.com/alnah/mdpdf/internal/fileutil"
	"github.com/alnah/mdpdf/internal/hints"
)

// Sentinel errors for the CLI run.
var (
	ErrReadMarkdown    = errors.New("failed to read markdown")
	ErrNoInput         = errors.New("no markdown files found")
	ErrCreateOutputDir = errors.New("failed to create output directory")
)

// closeTimeout bounds the session shutdown after the run ends.
const closeTimeout = 5 * time.Second

// job is one discovered Markdown file and its output paths.
type job struct {
	source string
	title  string
	pdf    string
	html   string
}

// run executes one action invocation.
func run(ctx context.Context, f *cliFlags, env *Environment, logger *log.Logger) error {
	envCfg := loadEnvConfig(env.Getenv, env.Stderr)
	warnUnknownEnvVars(env.Environ(), env.Stderr)

	cfg, err := loadConfig(f, envCfg)
	if err != nil {
		return err
	}

	workspace := f.runtime.workspace
	if workspace == "" {
		workspace = envCfg.Workspace
	}
	if workspace == "" {
		workspace = "."
	}

	paths, err := cfg.ResolvePaths(workspace)
	if err != nil {
		return err
	}
	logger.Debug("resolved paths", "workspace", paths.Workspace, "input", paths.InputDir, "output", paths.OutputDir)

	opts, err := buildOptions(cfg, paths)
	if err != nil {
		return err
	}

	jobs, err := discoverInputs(paths.InputDir, paths.OutputDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(paths.OutputDir, 0o750); err != nil {
		return fmt.Errorf("%w: %v%s", ErrCreateOutputDir, err, hints.ForOutputDirectory())
	}

	sessionOpts, err := sessionOptions(cfg, logger)
	if err != nil {
		return err
	}

	session, err := mdpdf.NewSession(opts, sessionOpts...)
	if err != nil {
		if errors.Is(err, mdpdf.ErrInvalidImageDir) {
			return fmt.Errorf("%w%s", err, hints.ForImageDir(paths.ImagesDir))
		}
		return err
	}
	if err := session.Start(ctx); err != nil {
		if errors.Is(err, mdpdf.ErrServerStart) {
			return fmt.Errorf("%w%s", err, hints.ForServerStart(cfg.Addr))
		}
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := session.Close(closeCtx); err != nil {
			logger.Warn("closing session", "err", err)
		}
	}()

	logger.Info("converting", "files", len(jobs), "input", paths.InputDir)

	w := writer{
		pdf:    !cfg.HTMLOnly,
		html:   cfg.BuildHTML || cfg.HTMLOnly,
		logger: logger,
	}
	if err := convertJobs(ctx, session, jobs, cfg.Workers, w); err != nil {
		return withRenderHint(err)
	}
	return nil
}

// writer selects and logs the artifacts written for each document.
type writer struct {
	pdf    bool
	html   bool
	logger *log.Logger
}

func (w writer) write(j job, res *mdpdf.Result) error {
	if w.pdf {
		if err := res.WritePDF(j.pdf); err != nil {
			return err
		}
		w.logger.Info("wrote", "file", j.pdf)
	}
	if w.html {
		if err := res.WriteHTML(j.html); err != nil {
			return err
		}
		w.logger.Info("wrote", "file", j.html)
	}
	return nil
}

// convertJobs reads, converts and writes each job as soon as it is done,
// up to workers at a time. The first failure cancels the jobs not yet
// finished; artifacts already written are kept.
func convertJobs(ctx context.Context, session *mdpdf.Session, jobs []job, workers int, w writer) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(mdpdf.ResolveWorkers(workers))

	for _, j := range jobs {
		g.Go(func() error {
			content, err := os.ReadFile(j.source) // #nosec G304 -- discovered under the workspace
			if err != nil {
				return fmt.Errorf("%w: %v", ErrReadMarkdown, err)
			}
			res, err := session.Convert(gctx, string(content), j.title)
			if err != nil {
				return fmt.Errorf("%s: %w", j.source, err)
			}
			return w.write(j, res)
		})
	}
	return g.Wait()
}

// loadConfig layers the config file, the environment and the flags.
func loadConfig(f *cliFlags, envCfg *envConfig) (*config.Config, error) {
	name := f.common.config
	if !f.changed("config") && envCfg.ConfigPath != "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
				return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
			}
			return nil, err
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	applyFlags(f, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildOptions loads the style and template and fills the document options.
func buildOptions(cfg *config.Config, paths *config.Paths) (mdpdf.Options, error) {
	assetsPath := ""
	if cfg.AssetsPath != "" {
		p, err := config.ResolveUnderWorkspace(paths.Workspace, cfg.AssetsPath)
		if err != nil {
			return mdpdf.Options{}, fmt.Errorf("assets_path: %w", err)
		}
		assetsPath = p
	}
	resolver, err := assets.NewResolver(assetsPath)
	if err != nil {
		return mdpdf.Options{}, err
	}

	style, err := buildStyle(cfg, paths.Workspace, resolver)
	if err != nil {
		return mdpdf.Options{}, err
	}
	template, err := loadTemplate(cfg.Template, paths.Workspace, resolver)
	if err != nil {
		return mdpdf.Options{}, err
	}

	opts := mdpdf.Options{
		Style:           style,
		Template:        template,
		TableOfContents: cfg.TableOfContents,
	}
	if cfg.ImageImport != "" {
		opts.ImageImport = cfg.ImageImport
		opts.ImageDir = paths.ImagesDir
	}
	return opts, nil
}

// buildStyle joins the default theme (unless replaced), the custom theme
// and the highlight stylesheet.
func buildStyle(cfg *config.Config, workspace string, l assets.Loader) (string, error) {
	var parts []string

	if cfg.Theme == "" || cfg.ExtendDefaultTheme {
		css, err := l.LoadStyle(assets.DefaultStyleName)
		if err != nil {
			return "", err
		}
		parts = append(parts, css)
	}

	if cfg.Theme != "" {
		input, err := assetInput(workspace, cfg.Theme, ".css")
		if err != nil {
			return "", fmt.Errorf("theme: %w", err)
		}
		css, err := assets.ResolveStyle(l, input)
		if err != nil {
			if errors.Is(err, assets.ErrStyleNotFound) {
				return "", fmt.Errorf("%w%s", err, hints.ForStyleNotFound(assets.StyleNames()))
			}
			return "", err
		}
		parts = append(parts, css)
	}

	highlight := cfg.HighlightTheme
	if highlight != "" {
		input, err := assetInput(workspace, highlight, ".css")
		if err != nil {
			return "", fmt.Errorf("highlight_theme: %w", err)
		}
		highlight = input
	}
	css, err := assets.HighlightCSS(highlight)
	if err != nil {
		if errors.Is(err, assets.ErrHighlightNotFound) {
			return "", fmt.Errorf("%w%s", err, hints.ForHighlightNotFound(assets.HighlightNames()))
		}
		return "", err
	}
	parts = append(parts, css)

	return strings.Join(parts, "\n"), nil
}

// loadTemplate returns the page template; empty loads the default through
// l so an assets directory can override it.
func loadTemplate(value, workspace string, l assets.Loader) (string, error) {
	if value == "" {
		return l.LoadTemplate(assets.DefaultTemplateName)
	}
	input, err := assetInput(workspace, value, ".html")
	if err != nil {
		return "", fmt.Errorf("template: %w", err)
	}
	return assets.ResolveTemplate(l, input)
}

// assetInput returns value unchanged when it is an asset name, or the
// workspace-resolved path when it looks like a file (a separator or ext).
func assetInput(workspace, value, ext string) (string, error) {
	if !fileutil.IsFilePath(value) && !strings.EqualFold(filepath.Ext(value), ext) {
		return value, nil
	}
	return config.ResolveUnderWorkspace(workspace, value)
}

// sessionOptions maps the configuration onto session options.
func sessionOptions(cfg *config.Config, logger *log.Logger) ([]mdpdf.Option, error) {
	options := []mdpdf.Option{
		mdpdf.WithLogger(logger),
		mdpdf.WithWorkers(cfg.Workers),
		mdpdf.WithTOCDepth(cfg.TOCMinDepth, cfg.TOCMaxDepth),
	}

	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		options = append(options, mdpdf.WithTimeout(timeout))
	}
	if cfg.Addr != "" {
		options = append(options, mdpdf.WithAddr(cfg.Addr))
	}
	if cfg.HTMLOnly {
		options = append(options, mdpdf.WithHTMLOnly())
	}
	if cfg.SlugScope == config.SlugScopeSession {
		options = append(options, mdpdf.WithSlugScope(mdpdf.SlugScopeSession))
	}
	return options, nil
}

// discoverInputs lists the Markdown files directly inside dir, sorted.
func discoverInputs(dir, outputDir string) ([]job, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadMarkdown, err)
	}

	var jobs []job
	for _, e := range entries {
		if e.IsDir() || !fileutil.IsMarkdown(e.Name()) {
			continue
		}
		name := fileutil.TrimExt(e.Name())
		jobs = append(jobs, job{
			source: filepath.Join(dir, e.Name()),
			title:  name,
			pdf:    filepath.Join(outputDir, name+".pdf"),
			html:   filepath.Join(outputDir, name+".html"),
		})
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoInput, dir)
	}

	sort.Slice(jobs, func(i, k int) bool { return jobs[i].source < jobs[k].source })
	return jobs, nil
}

// withRenderHint appends the hint matching a conversion failure.
func withRenderHint(err error) error {
	switch {
	case errors.Is(err, mdpdf.ErrBrowserLaunch), errors.Is(err, mdpdf.ErrBrowserConnect):
		return fmt.Errorf("%w%s", err, hints.ForBrowserConnect())
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, mdpdf.ErrPageLoad),
		errors.Is(err, mdpdf.ErrPDFGeneration):
		return fmt.Errorf("%w%s", err, hints.ForTimeout())
	default:
		return err
	}
}
