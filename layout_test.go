package mdpdf

import (
	"math"
	"testing"
)

func TestDefaultLayout(t *testing.T) {
	t.Parallel()

	l := DefaultLayout()

	if l.PaperWidth != a4WidthInches || l.PaperHeight != a4HeightInches {
		t.Errorf("paper = %vx%v, want A4", l.PaperWidth, l.PaperHeight)
	}
	if l.Scale != 0.9 {
		t.Errorf("Scale = %v, want 0.9", l.Scale)
	}
	for name, m := range map[string]float64{
		"top": l.MarginTop, "bottom": l.MarginBottom, "left": l.MarginLeft, "right": l.MarginRight,
	} {
		if px := m * pxPerInch; math.Abs(px-50) > 1e-9 {
			t.Errorf("margin %s = %vpx, want 50px", name, px)
		}
	}
	if l.DisplayHeaderFooter {
		t.Error("DisplayHeaderFooter = true, want false")
	}
	if !l.PrintBackground {
		t.Error("PrintBackground = false, want true")
	}
}

func TestPDFLayout_PrintOptions(t *testing.T) {
	t.Parallel()

	l := DefaultLayout()
	opts := l.printOptions()

	checks := []struct {
		name string
		got  *float64
		want float64
	}{
		{"PaperWidth", opts.PaperWidth, l.PaperWidth},
		{"PaperHeight", opts.PaperHeight, l.PaperHeight},
		{"Scale", opts.Scale, l.Scale},
		{"MarginTop", opts.MarginTop, l.MarginTop},
		{"MarginBottom", opts.MarginBottom, l.MarginBottom},
		{"MarginLeft", opts.MarginLeft, l.MarginLeft},
		{"MarginRight", opts.MarginRight, l.MarginRight},
	}
	for _, c := range checks {
		if c.got == nil || *c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if !opts.PrintBackground || opts.DisplayHeaderFooter {
		t.Errorf("flags = background %v, header/footer %v", opts.PrintBackground, opts.DisplayHeaderFooter)
	}
}
