package mdpdf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestResult_Write(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := &Result{HTML: "<p>hi</p>", PDF: []byte("%PDF")}

	htmlPath := filepath.Join(dir, "built", "doc.html")
	pdfPath := filepath.Join(dir, "built", "doc.pdf")

	if err := r.WriteHTML(htmlPath); err != nil {
		t.Fatalf("WriteHTML() error = %v", err)
	}
	if err := r.WritePDF(pdfPath); err != nil {
		t.Fatalf("WritePDF() error = %v", err)
	}

	for path, want := range map[string]string{htmlPath: r.HTML, pdfPath: string(r.PDF)} {
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", path, got, want)
		}
	}
}

func TestResult_WriteErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		write func() error
	}{
		{"html parent is a file", func() error { return (&Result{HTML: "x"}).WriteHTML(filepath.Join(blocker, "a.html")) }},
		{"empty path", func() error { return (&Result{HTML: "x"}).WriteHTML("") }},
		{"pdf missing in html-only result", func() error { return (&Result{HTML: "x"}).WritePDF(filepath.Join(dir, "a.pdf")) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if err := tt.write(); !errors.Is(err, ErrWriteOutput) {
				t.Errorf("error = %v, want ErrWriteOutput", err)
			}
		})
	}
}
