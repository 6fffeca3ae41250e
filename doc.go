// Package mdpdf converts Markdown documents to self-contained HTML and PDF
// using headless Chrome.
//
// # Quick Start
//
// Create a session, start it, convert, and close when done:
//
//	s, err := mdpdf.NewSession(mdpdf.Options{
//	    ImageImport:     "./images",
//	    ImageDir:        "docs/images",
//	    Style:           css,
//	    TableOfContents: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := s.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close(ctx)
//
//	result, err := s.Convert(ctx, "# Hello\n\nWorld", "hello")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = result.WritePDF("built/hello.pdf")
//
// # Conversion Pipeline
//
// Each document goes through these stages:
//
//  1. Markdown to HTML via Goldmark (tables, strikethrough, chroma
//     highlighting, emoji, heading permalinks, optional table of contents)
//  2. Page composition with a Mustache-compatible template
//     ({{title}}, {{style}}, {{toc}}, {{content}})
//  3. Image inlining: sources starting with Options.ImageImport are fetched
//     from a local asset server and replaced by data URIs
//  4. PDF rendering via headless Chrome (go-rod), A4 at scale 0.9
//
// Use WithHTMLOnly to stop after stage 3.
//
// # Heading IDs
//
// Heading ids are unique per document by default. WithSlugScope(SlugScopeSession)
// keeps them unique across every document of a session.
//
// # Parallel Processing
//
// ConvertAll converts several documents at once; WithWorkers bounds the
// number of concurrent browsers:
//
//	results, err := s.ConvertAll(ctx, []mdpdf.Request{
//	    {Markdown: a, Title: "a"},
//	    {Markdown: b, Title: "b"},
//	})
//
// # Errors
//
// Configuration problems surface from NewSession (ErrInvalidImageDir,
// ErrInvalidTemplate, ErrInvalidOption). Rendering failures are
// *RenderError values matching ErrRender and the failed stage sentinel,
// such as ErrPageLoad. Missing images are logged and left untouched.
package mdpdf
