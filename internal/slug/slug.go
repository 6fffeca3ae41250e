// Package slug turns heading text into URL-safe anchor ids and keeps them
// unique within a scope.
//
// Registry implements goldmark's parser.IDs, so it can be handed to the
// Markdown parser through parser.WithIDs and every heading id is generated
// by a single generator.
package slug

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
)

// Fallback is used when a heading normalizes to an empty slug.
const Fallback = "heading"

var _ parser.IDs = (*Registry)(nil)

var (
	punctuation = regexp.MustCompile("[\\]\\[!\"#$%&'()*+,./:;<=>?@\\\\^_{|}~`]")
	whitespace  = regexp.MustCompile(`[\s\p{Zs}]+`)
)

// Registry hands out unique slugs. The zero value is not usable; create one
// with New. Safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	counts map[string]int      // base slug -> occurrences seen so far
	used   map[string]struct{} // every id already emitted or reserved
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		counts: make(map[string]int),
		used:   make(map[string]struct{}),
	}
}

// Slugify normalizes text without registering it.
//
// The text is trimmed and lower-cased, ASCII punctuation is dropped,
// whitespace runs become a single hyphen, leading and trailing hyphens are
// removed and the result is percent-encoded.
func Slugify(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = punctuation.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	return escape(s)
}

// escape percent-encodes like encodeURIComponent: unreserved characters and
// !'()* stay literal, everything else becomes UTF-8 %XX sequences.
func escape(s string) string {
	if s == "" {
		return s
	}
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Next returns the unique slug for text and records it.
//
// The first occurrence of a base slug is returned as is; later ones get
// "-1", "-2", ... in order. A suffixed candidate that collides with an id
// already handed out keeps counting until it is free.
func (r *Registry) Next(text string) string {
	base := Slugify(text)
	if base == "" {
		base = Fallback
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	n, seen := r.counts[base]
	if !seen {
		r.counts[base] = 0
		if _, taken := r.used[base]; !taken {
			r.used[base] = struct{}{}
			return base
		}
	}

	for {
		n++
		candidate := base + "-" + strconv.Itoa(n)
		if _, taken := r.used[candidate]; taken {
			continue
		}
		r.counts[base] = n
		r.used[candidate] = struct{}{}
		return candidate
	}
}

// Generate implements parser.IDs.
func (r *Registry) Generate(value []byte, _ ast.NodeKind) []byte {
	return []byte(r.Next(string(value)))
}

// Put implements parser.IDs. Explicit ids ({#custom}) are reserved so
// generated ones never collide with them.
func (r *Registry) Put(value []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.used[string(value)] = struct{}{}
}
