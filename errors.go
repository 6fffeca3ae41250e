package mdpdf

import (
	"errors"

	"github.com/alnah/mdpdf/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	// Configuration errors, returned by NewSession.
	ErrInvalidImageDir = errors.New("invalid image directory")
	ErrInvalidTemplate = errors.New("invalid template")
	ErrInvalidOption   = errors.New("invalid option")

	// ErrInvalidInput is returned for Markdown or titles that are not
	// valid UTF-8.
	ErrInvalidInput = errors.New("invalid input")

	// I/O errors.
	ErrServerStart = errors.New("failed to start asset server")
	ErrWriteOutput = errors.New("failed to write output")

	// Lifecycle errors.
	ErrSessionNotStarted = errors.New("session not started")
	ErrSessionStarted    = errors.New("session already started")
	ErrSessionClosed     = errors.New("session closed")

	// ErrRender matches every *RenderError.
	ErrRender = errors.New("render failed")

	// Rendering stages.
	ErrMarkdownRender = pipeline.ErrMarkdownRender
	ErrCompose        = pipeline.ErrCompose
	ErrBrowserLaunch  = errors.New("failed to launch browser")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrContentInject  = errors.New("failed to inject page content")
	ErrPDFGeneration  = errors.New("PDF generation failed")
)

// Render stage names used in RenderError.Stage.
const (
	StageMarkdown = "markdown"
	StageCompose  = "compose"
	StagePDF      = "pdf"
)

// RenderError reports a failed conversion stage.
// errors.Is matches ErrRender as well as the wrapped stage sentinel.
type RenderError struct {
	Stage string
	Err   error
}

func (e *RenderError) Error() string {
	return "render " + e.Stage + ": " + e.Err.Error()
}

func (e *RenderError) Unwrap() error { return e.Err }

// Is reports whether target is ErrRender.
func (e *RenderError) Is(target error) bool {
	return target == ErrRender
}

func renderError(stage string, err error) error {
	return &RenderError{Stage: stage, Err: err}
}
