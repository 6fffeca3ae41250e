package main

// Notes:
// - exitCodeFor is checked against every sentinel it maps, bare and wrapped,
//   so the errors.Is chain is exercised the way run returns errors

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/alnah/mdpdf"
	"github.com/alnah/mdpdf/internal/assets"
	"github.com/alnah/mdpdf/internal/config"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},

		// Browser errors (exit 4)
		{"browser launch", mdpdf.ErrBrowserLaunch, ExitBrowser},
		{"browser connect", mdpdf.ErrBrowserConnect, ExitBrowser},
		{"page create", mdpdf.ErrPageCreate, ExitBrowser},
		{"page load", mdpdf.ErrPageLoad, ExitBrowser},
		{"content inject", mdpdf.ErrContentInject, ExitBrowser},
		{"pdf generation", mdpdf.ErrPDFGeneration, ExitBrowser},
		{"render error", &mdpdf.RenderError{Stage: mdpdf.StagePDF, Err: fmt.Errorf("%w: boom", mdpdf.ErrBrowserConnect)}, ExitBrowser},

		// I/O errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"read markdown", ErrReadMarkdown, ExitIO},
		{"no input", ErrNoInput, ExitIO},
		{"create output dir", ErrCreateOutputDir, ExitIO},
		{"write output", mdpdf.ErrWriteOutput, ExitIO},
		{"server start", mdpdf.ErrServerStart, ExitIO},
		{"asset read", assets.ErrAssetRead, ExitIO},
		{"wrapped file not exist", fmt.Errorf("reading: %w", os.ErrNotExist), ExitIO},

		// Usage/config/validation errors (exit 2)
		{"usage", ErrUsage, ExitUsage},
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"field too long", config.ErrFieldTooLong, ExitUsage},
		{"invalid value", config.ErrInvalidValue, ExitUsage},
		{"path escapes workspace", config.ErrPathEscapesWorkspace, ExitUsage},
		{"invalid image dir", mdpdf.ErrInvalidImageDir, ExitUsage},
		{"invalid template", mdpdf.ErrInvalidTemplate, ExitUsage},
		{"invalid option", mdpdf.ErrInvalidOption, ExitUsage},
		{"invalid input", mdpdf.ErrInvalidInput, ExitUsage},
		{"style not found", assets.ErrStyleNotFound, ExitUsage},
		{"template not found", assets.ErrTemplateNotFound, ExitUsage},
		{"highlight not found", assets.ErrHighlightNotFound, ExitUsage},
		{"path traversal", assets.ErrPathTraversal, ExitUsage},
		{"wrapped config parse", fmt.Errorf("loading: %w", config.ErrConfigParse), ExitUsage},

		// General errors (exit 1)
		{"unknown", errors.New("something else"), ExitGeneral},
		{"canceled", context.Canceled, ExitGeneral},
		{"markdown render", &mdpdf.RenderError{Stage: mdpdf.StageMarkdown, Err: errors.New("bad")}, ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodes_Values(t *testing.T) {
	t.Parallel()

	codes := []int{ExitSuccess, ExitGeneral, ExitUsage, ExitIO, ExitBrowser}
	seen := make(map[int]bool)
	for _, c := range codes {
		if c < 0 || c >= 126 {
			t.Errorf("exit code %d outside 0..125", c)
		}
		if seen[c] {
			t.Errorf("exit code %d used twice", c)
		}
		seen[c] = true
	}
}
