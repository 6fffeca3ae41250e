//go:build integration

package mdpdf

// Notes:
// - Requires Chrome (ROD_BROWSER_BIN) or network access for rod's download
// - Run with: go test -tags=integration ./...

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

const testTimeout = 60 * time.Second

func TestRodRenderer_RenderPDF(t *testing.T) {
	r := newRodRenderer(testTimeout, "", quietLogger())

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	pdf, err := r.RenderPDF(ctx, "<!DOCTYPE html><html><body><h1>Hello</h1></body></html>", DefaultLayout())
	if err != nil {
		t.Fatalf("RenderPDF() error = %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header: %q", pdf[:min(len(pdf), 16)])
	}
}

func TestRodRenderer_CanceledContext(t *testing.T) {
	r := newRodRenderer(testTimeout, "", quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.RenderPDF(ctx, "<p>x</p>", DefaultLayout()); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestRodRenderer_BadBinary(t *testing.T) {
	r := newRodRenderer(testTimeout, "/nonexistent/chrome", quietLogger())

	_, err := r.RenderPDF(context.Background(), "<p>x</p>", DefaultLayout())
	if !errors.Is(err, ErrRender) || !errors.Is(err, ErrBrowserLaunch) {
		t.Errorf("error = %v, want ErrRender and ErrBrowserLaunch", err)
	}
}

func TestSession_EndToEnd(t *testing.T) {
	s := newStartedSession(t, Options{
		ImageImport:     "./images",
		ImageDir:        imageDir(t),
		TableOfContents: true,
	}, WithTimeout(testTimeout))

	ctx, cancel := context.WithTimeout(context.Background(), 2*testTimeout)
	defer cancel()

	res, err := s.Convert(ctx, "# Title\n\n![x](./images/img.png)\n", "doc")
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !bytes.HasPrefix(res.PDF, []byte("%PDF-")) {
		t.Error("expected PDF output")
	}
}
