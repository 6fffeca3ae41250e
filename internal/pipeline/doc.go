// Package pipeline implements the HTML stages of a document build.
//
// The stages are:
//   - Markdown to HTML via Goldmark (syntax highlighting, emoji, heading anchors)
//   - Table of contents extraction from the rendered headings
//   - Page composition through a logic-less template
//
// Image inlining and PDF printing need network and browser access and live
// outside this package. Everything here is pure and safe for concurrent use.
package pipeline
