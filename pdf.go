package mdpdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/mdpdf/internal/process"
)

// pdfRenderer abstracts HTML to PDF conversion to allow testing without a
// browser.
type pdfRenderer interface {
	RenderPDF(ctx context.Context, html string, layout PDFLayout) ([]byte, error)
}

var _ pdfRenderer = (*rodRenderer)(nil)

// The placeholder page gives every conversion a loaded document before the
// real content is injected.
const (
	placeholderURL     = "data:text/html;charset=utf-8,<h1>Not Rendered</h1>"
	placeholderTimeout = 2 * time.Second
)

// browserBinEnv selects a pre-installed Chrome (Docker, CI runners).
const browserBinEnv = "ROD_BROWSER_BIN"

// rodRenderer prints HTML with headless Chrome via go-rod.
// Each call launches its own browser; nothing is shared between calls.
// Rod downloads Chromium on first run when no binary is configured.
type rodRenderer struct {
	timeout time.Duration
	bin     string
	logger  *log.Logger
}

func newRodRenderer(timeout time.Duration, bin string, logger *log.Logger) *rodRenderer {
	if bin == "" {
		bin = os.Getenv(browserBinEnv)
	}
	return &rodRenderer{timeout: timeout, bin: bin, logger: logger}
}

// RenderPDF loads html into a fresh page and prints it with layout.
// Content injection, load and export share one deadline: the renderer
// timeout or the deadline of ctx, whichever comes first.
func (r *rodRenderer) RenderPDF(ctx context.Context, html string, layout PDFLayout) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fail := func(stage error, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return renderError(StagePDF, fmt.Errorf("%w: %v", stage, err))
	}

	l := launcher.New().Headless(true).NoSandbox(true)
	if r.bin != "" {
		l = l.Bin(r.bin)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fail(ErrBrowserLaunch, err)
	}
	defer r.kill(l)
	r.logger.Debug("launched browser", "pid", l.PID())

	browser := rod.New().ControlURL(u).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fail(ErrBrowserConnect, err)
	}
	defer func() { _ = browser.Close() }()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fail(ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	placeholder := page.Timeout(placeholderTimeout)
	if err := placeholder.Navigate(placeholderURL); err != nil {
		return nil, fail(ErrPageLoad, err)
	}
	if err := placeholder.WaitLoad(); err != nil {
		return nil, fail(ErrPageLoad, err)
	}

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}
	bounded := page.Timeout(timeout)

	if err := bounded.SetDocumentContent(html); err != nil {
		return nil, fail(ErrContentInject, err)
	}
	if err := bounded.WaitLoad(); err != nil {
		return nil, fail(ErrPageLoad, err)
	}

	reader, err := bounded.PDF(layout.printOptions())
	if err != nil {
		return nil, fail(ErrPDFGeneration, err)
	}
	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fail(ErrPDFGeneration, fmt.Errorf("reading PDF stream: %w", err))
	}

	r.logger.Debug("printed PDF", "bytes", len(pdf))
	return pdf, nil
}

// kill terminates the browser and its helper processes, then removes its
// profile directory.
func (r *rodRenderer) kill(l *launcher.Launcher) {
	pid := l.PID()
	l.Kill()
	process.KillProcessGroup(pid)
	l.Cleanup()
}
