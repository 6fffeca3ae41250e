package mdpdf

import (
	"errors"
	"fmt"
	"testing"
)

func TestRenderError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		matches []error
		misses  []error
	}{
		{
			name:    "pdf stage",
			err:     renderError(StagePDF, fmt.Errorf("%w: timeout", ErrPageLoad)),
			matches: []error{ErrRender, ErrPageLoad},
			misses:  []error{ErrPDFGeneration, ErrInvalidInput},
		},
		{
			name:    "markdown stage",
			err:     renderError(StageMarkdown, fmt.Errorf("%w: bad", ErrMarkdownRender)),
			matches: []error{ErrRender, ErrMarkdownRender},
			misses:  []error{ErrCompose},
		},
		{
			name:    "wrapped again",
			err:     fmt.Errorf("document 0: %w", renderError(StageCompose, ErrCompose)),
			matches: []error{ErrRender, ErrCompose},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			for _, target := range tt.matches {
				if !errors.Is(tt.err, target) {
					t.Errorf("errors.Is(%v, %v) = false", tt.err, target)
				}
			}
			for _, target := range tt.misses {
				if errors.Is(tt.err, target) {
					t.Errorf("errors.Is(%v, %v) = true", tt.err, target)
				}
			}
		})
	}
}

func TestRenderError_As(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("outer: %w", renderError(StagePDF, ErrBrowserLaunch))

	var re *RenderError
	if !errors.As(err, &re) {
		t.Fatal("errors.As should find *RenderError")
	}
	if re.Stage != StagePDF {
		t.Errorf("Stage = %q, want %q", re.Stage, StagePDF)
	}
	if got := re.Error(); got != "render pdf: "+ErrBrowserLaunch.Error() {
		t.Errorf("Error() = %q", got)
	}
}
