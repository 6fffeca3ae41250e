package imginline

// Notes:
// - The asset server is replaced by httptest servers; request counts are
//   tracked with atomics so the same fixtures serve sequential and parallel runs
// - Logging goes to io.Discard; warnings are observed through behavior
//   (reference left untouched), not log text

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// imageServer serves /img.png, /untyped, /slow and 404 for everything else.
func imageServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/img.png", "/nested/img.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(pngBytes)
		case "/spaced":
			w.Header().Set("Content-Type", "image/svg+xml; charset=utf-8")
			_, _ = w.Write([]byte("<svg></svg>"))
		case "/untyped":
			w.Header()["Content-Type"] = nil // Disable net/http sniffing
			_, _ = w.Write(pngBytes)
		case "/slow":
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestInliner(baseURL string, concurrency int) *Inliner {
	return New(Options{
		ImportBase:  "images",
		BaseURL:     baseURL,
		Concurrency: concurrency,
		Logger:      log.New(io.Discard),
	})
}

func pngURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
}

// ---------------------------------------------------------------------------
// TestInline - Rewriting
// ---------------------------------------------------------------------------

func TestInline(t *testing.T) {
	t.Parallel()

	for _, concurrency := range []int{1, 4} {
		var hits atomic.Int32
		ts := imageServer(t, &hits)
		in := newTestInliner(ts.URL, concurrency)

		tests := []struct {
			name         string
			html         string
			wantContains []string
			wantExcludes []string
		}{
			{
				name:         "import prefix replaced and inlined",
				html:         `<p><img src="images/img.png" alt="x"></p>`,
				wantContains: []string{`src="` + pngURI() + `"`, `alt="x"`},
			},
			{
				name:         "nested path",
				html:         `<img src="images/nested/img.png"/>`,
				wantContains: []string{pngURI()},
			},
			{
				name:         "self closing spelling kept",
				html:         `<img src="images/img.png" alt="a" /><img src="images/img.png" alt="b"/>`,
				wantContains: []string{`alt="a" />`, `alt="b"/>`},
			},
			{
				name:         "missing image left untouched",
				html:         `<img src="images/missing.png">`,
				wantContains: []string{`<img src="images/missing.png">`},
			},
			{
				name:         "non http source skipped",
				html:         `<img src="local/pic.png">`,
				wantContains: []string{`<img src="local/pic.png">`},
			},
			{
				name:         "data URI skipped",
				html:         `<img src="data:image/gif;base64,R0lGOD">`,
				wantContains: []string{`src="data:image/gif;base64,R0lGOD"`},
			},
			{
				name:         "content type spaces removed",
				html:         `<img src="images/spaced">`,
				wantContains: []string{`data:image/svg+xml;charset=utf-8;base64,`},
			},
			{
				name:         "missing content type sniffed",
				html:         `<img src="images/untyped">`,
				wantContains: []string{"data:image/png;base64,"},
			},
			{
				name:         "non img markup untouched",
				html:         `<a href="images/img.png">link</a><!-- images/img.png --><script>var s = "<img src='images/img.png'>";</script>`,
				wantContains: []string{`<a href="images/img.png">link</a><!-- images/img.png --><script>var s = "<img src='images/img.png'>";</script>`},
				wantExcludes: []string{"base64"},
			},
		}

		for _, tt := range tests {
			got, err := in.Inline(context.Background(), tt.html)
			if err != nil {
				t.Fatalf("concurrency %d, %s: Inline() error = %v", concurrency, tt.name, err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("concurrency %d, %s: missing %q\ngot: %s", concurrency, tt.name, want, got)
				}
			}
			for _, exclude := range tt.wantExcludes {
				if strings.Contains(got, exclude) {
					t.Errorf("concurrency %d, %s: should not contain %q\ngot: %s", concurrency, tt.name, exclude, got)
				}
			}
		}
	}
}

func TestInline_SameSourceFetchedOnce(t *testing.T) {
	t.Parallel()

	for _, concurrency := range []int{1, 3} {
		var hits atomic.Int32
		ts := imageServer(t, &hits)
		in := newTestInliner(ts.URL, concurrency)

		doc := `<img src="images/img.png"><p>between</p><img class="b" src="images/img.png">`
		got, err := in.Inline(context.Background(), doc)
		if err != nil {
			t.Fatalf("Inline() error = %v", err)
		}

		if n := strings.Count(got, pngURI()); n != 2 {
			t.Errorf("concurrency %d: data URI appears %d times, want 2\ngot: %s", concurrency, n, got)
		}
		if h := hits.Load(); h != 1 {
			t.Errorf("concurrency %d: server hit %d times, want 1", concurrency, h)
		}
		if !strings.Contains(got, "<p>between</p>") {
			t.Errorf("surrounding markup lost: %s", got)
		}
	}
}

func TestInline_Disabled(t *testing.T) {
	t.Parallel()

	in := New(Options{Logger: log.New(io.Discard)})
	doc := `<img src="images/img.png">`

	got, err := in.Inline(context.Background(), doc)
	if err != nil {
		t.Fatalf("Inline() error = %v", err)
	}
	if got != doc {
		t.Errorf("Inline() = %q, want input unchanged", got)
	}
}

func TestInline_NoImagesReturnsInput(t *testing.T) {
	t.Parallel()

	in := newTestInliner("http://127.0.0.1:1", 1)
	doc := "<!DOCTYPE html><html><body><p>plain &amp; simple</p></body></html>"

	got, err := in.Inline(context.Background(), doc)
	if err != nil {
		t.Fatalf("Inline() error = %v", err)
	}
	if got != doc {
		t.Errorf("Inline() = %q, want input unchanged", got)
	}
}

// ---------------------------------------------------------------------------
// TestInline_Failures - Timeouts and Cancellation
// ---------------------------------------------------------------------------

func TestInline_FetchTimeoutIsNonFatal(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	ts := imageServer(t, &hits)
	in := New(Options{
		ImportBase: "images",
		BaseURL:    ts.URL,
		Timeout:    50 * time.Millisecond,
		Logger:     log.New(io.Discard),
	})

	doc := `<img src="images/slow">`
	got, err := in.Inline(context.Background(), doc)
	if err != nil {
		t.Fatalf("Inline() error = %v", err)
	}
	if got != doc {
		t.Errorf("Inline() = %q, want reference untouched", got)
	}
}

func TestInline_CanceledContext(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	ts := imageServer(t, &hits)
	in := newTestInliner(ts.URL, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := in.Inline(ctx, `<img src="images/img.png">`); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestInline_OversizedImage(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(make([]byte, MaxImageSize+1))
	}))
	defer ts.Close()

	in := newTestInliner(ts.URL, 1)
	doc := `<img src="images/big.png">`

	got, err := in.Inline(context.Background(), doc)
	if err != nil {
		t.Fatalf("Inline() error = %v", err)
	}
	if got != doc {
		t.Error("oversized image should be left untouched")
	}
}

// ---------------------------------------------------------------------------
// TestDataURI - Encoding
// ---------------------------------------------------------------------------

func TestDataURI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		data        []byte
		want        string
	}{
		{"declared type", "image/png", []byte("ab"), "data:image/png;base64,YWI="},
		{"spaces removed", "image/svg+xml; charset=utf-8", []byte("ab"), "data:image/svg+xml;charset=utf-8;base64,YWI="},
		{"sniffed when absent", "", pngBytes, "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := dataURI(tt.contentType, tt.data); got != tt.want {
				t.Errorf("dataURI() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCollectSources(t *testing.T) {
	t.Parallel()

	doc := `<img src="a.png"><IMG SRC="b.png"><img src="a.png"><img alt="no src"><img src="">`
	got := collectSources(doc)
	want := []string{"a.png", "b.png"}

	if len(got) != len(want) {
		t.Fatalf("collectSources() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("collectSources()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
