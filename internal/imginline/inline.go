// Package imginline replaces <img> sources with base64 data URIs so the
// produced HTML and PDF carry their images with them.
//
// Each source has its import prefix swapped for the asset server URL and is
// fetched once over HTTP. Failed fetches leave the tag untouched.
package imginline

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/mdpdf/internal/fileutil"
)

// Limits for image fetching.
const (
	DefaultFetchTimeout = 10 * time.Second
	MaxImageSize        = 32 << 20
)

// Sentinel errors for a single fetch. They never escape Inline; they are
// logged and the reference is left untouched.
var (
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
	ErrImageTooLarge    = errors.New("image exceeds maximum size")
)

// Options configures an Inliner.
type Options struct {
	ImportBase  string        // Prefix in image sources to replace ("" = disabled)
	BaseURL     string        // Asset server URL substituted for ImportBase
	Client      *http.Client  // nil = client with Timeout
	Timeout     time.Duration // Per-fetch timeout (0 = DefaultFetchTimeout)
	Concurrency int           // Parallel fetches (< 2 = sequential)
	Logger      *log.Logger   // nil = log.Default()
}

// Inliner rewrites image references in HTML documents.
type Inliner struct {
	importBase  string
	baseURL     string
	client      *http.Client
	concurrency int
	logger      *log.Logger
}

// New creates an Inliner.
func New(opts Options) *Inliner {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Inliner{
		importBase:  opts.ImportBase,
		baseURL:     opts.BaseURL,
		client:      client,
		concurrency: opts.Concurrency,
		logger:      logger,
	}
}

// Inline returns doc with every fetchable <img src> replaced by a data URI.
// All tags sharing a source get the same URI and each distinct source is
// fetched once. Only cancellation of ctx is reported as an error.
func (in *Inliner) Inline(ctx context.Context, doc string) (string, error) {
	if in.importBase == "" {
		return doc, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	sources := collectSources(doc)
	if len(sources) == 0 {
		return doc, nil
	}

	resolved, err := in.resolveAll(ctx, sources)
	if err != nil {
		return "", err
	}
	if len(resolved) == 0 {
		return doc, nil
	}
	return rewriteSources(doc, resolved), nil
}

// resolveAll fetches every source and returns src -> data URI for the
// successful ones.
func (in *Inliner) resolveAll(ctx context.Context, sources []string) (map[string]string, error) {
	uris := make([]string, len(sources))

	if in.concurrency < 2 {
		for i, src := range sources {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			uris[i] = in.resolve(ctx, src)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(in.concurrency)
		for i, src := range sources {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				uris[i] = in.resolve(gctx, src)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resolved := make(map[string]string, len(sources))
	for i, src := range sources {
		if uris[i] != "" {
			resolved[src] = uris[i]
		}
	}
	return resolved, nil
}

// resolve returns the data URI for src, or "" when it is skipped or fails.
func (in *Inliner) resolve(ctx context.Context, src string) string {
	if strings.HasPrefix(src, "data:") {
		return ""
	}

	target := strings.ReplaceAll(src, in.importBase, in.baseURL)
	if !fileutil.IsURL(target) {
		in.logger.Debug("skipping image", "src", src, "reason", "not an http URL")
		return ""
	}

	uri, err := in.fetch(ctx, target)
	if err != nil {
		if ctx.Err() == nil {
			in.logger.Warn("image not inlined", "src", src, "url", target, "err", err)
		}
		return ""
	}
	in.logger.Debug("inlined image", "src", src, "bytes", len(uri))
	return uri
}

// fetch GETs target and encodes the body as a data URI.
func (in *Inliner) fetch(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}

	resp, err := in.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}
	if len(data) > MaxImageSize {
		return "", fmt.Errorf("%w: more than %d bytes", ErrImageTooLarge, MaxImageSize)
	}

	return dataURI(resp.Header.Get("Content-Type"), data), nil
}

// dataURI builds data:<type>;base64,<payload>. The declared type has its
// spaces removed; when absent the type is sniffed from the bytes.
func dataURI(contentType string, data []byte) string {
	contentType = strings.ReplaceAll(contentType, " ", "")
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// collectSources returns the distinct <img src> values in document order.
func collectSources(doc string) []string {
	var sources []string
	seen := make(map[string]bool)

	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return sources
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		name, hasAttr := z.TagName()
		if string(name) != "img" || !hasAttr {
			continue
		}
		for {
			key, val, more := z.TagAttr()
			if string(key) == "src" && len(val) > 0 && !seen[string(val)] {
				seen[string(val)] = true
				sources = append(sources, string(val))
			}
			if !more {
				break
			}
		}
	}
}

// rewriteSources copies doc, re-serializing only the <img> tags whose src
// has a replacement. Every other byte is written unchanged.
func rewriteSources(doc string, resolved map[string]string) string {
	var buf bytes.Buffer
	buf.Grow(len(doc))

	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return buf.String()
		}

		// Raw must be copied before Token(), which reuses the buffer
		raw := append([]byte(nil), z.Raw()...)

		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			buf.Write(raw)
			continue
		}

		tok := z.Token()
		if tok.Data != "img" || !replaceSrc(&tok, resolved) {
			buf.Write(raw)
			continue
		}
		buf.WriteString(serializeTag(tok, raw))
	}
}

// serializeTag renders a rewritten tag, keeping the " />" spelling of a
// self-closing tag when the source used it.
func serializeTag(tok html.Token, raw []byte) string {
	s := tok.String()
	if tok.Type == html.SelfClosingTagToken && bytes.HasSuffix(raw, []byte(" />")) {
		s = strings.TrimSuffix(s, "/>") + " />"
	}
	return s
}

// replaceSrc swaps the src attribute of tok and reports whether it did.
func replaceSrc(tok *html.Token, resolved map[string]string) bool {
	for i, attr := range tok.Attr {
		if attr.Namespace != "" || attr.Key != "src" {
			continue
		}
		uri, ok := resolved[attr.Val]
		if !ok {
			return false
		}
		tok.Attr[i].Val = uri
		return true
	}
	return false
}
