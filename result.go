package mdpdf

import (
	"fmt"

	"github.com/alnah/mdpdf/internal/fileutil"
)

// Result holds the outputs of one conversion.
// PDF is nil when the session runs in HTML-only mode.
type Result struct {
	HTML string
	PDF  []byte
}

// WriteHTML writes the HTML document to path, creating parent directories.
func (r *Result) WriteHTML(path string) error {
	return writeOutput(path, []byte(r.HTML))
}

// WritePDF writes the PDF to path, creating parent directories.
func (r *Result) WritePDF(path string) error {
	if r.PDF == nil {
		return fmt.Errorf("%w: %s: no PDF in result", ErrWriteOutput, path)
	}
	return writeOutput(path, r.PDF)
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrWriteOutput)
	}
	if err := fileutil.WriteFile(path, data); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}
