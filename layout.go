package mdpdf

import "github.com/go-rod/rod/lib/proto"

// CSS pixels per inch, used to express pixel margins in Chrome's inch units.
const pxPerInch = 96

// A4 dimensions in inches.
const (
	a4WidthInches  = 8.27
	a4HeightInches = 11.69
)

// PDFLayout describes the printed page.
// Dimensions and margins are in inches.
type PDFLayout struct {
	PaperWidth          float64
	PaperHeight         float64
	Scale               float64
	MarginTop           float64
	MarginBottom        float64
	MarginLeft          float64
	MarginRight         float64
	PrintBackground     bool
	DisplayHeaderFooter bool
}

// DefaultLayout returns an A4 page at scale 0.9 with 50px margins and no
// header or footer.
func DefaultLayout() PDFLayout {
	margin := 50.0 / pxPerInch
	return PDFLayout{
		PaperWidth:      a4WidthInches,
		PaperHeight:     a4HeightInches,
		Scale:           0.9,
		MarginTop:       margin,
		MarginBottom:    margin,
		MarginLeft:      margin,
		MarginRight:     margin,
		PrintBackground: true,
	}
}

// printOptions converts the layout to the CDP print request.
func (l PDFLayout) printOptions() *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:          floatPtr(l.PaperWidth),
		PaperHeight:         floatPtr(l.PaperHeight),
		Scale:               floatPtr(l.Scale),
		MarginTop:           floatPtr(l.MarginTop),
		MarginBottom:        floatPtr(l.MarginBottom),
		MarginLeft:          floatPtr(l.MarginLeft),
		MarginRight:         floatPtr(l.MarginRight),
		PrintBackground:     l.PrintBackground,
		DisplayHeaderFooter: l.DisplayHeaderFooter,
	}
}

func floatPtr(v float64) *float64 {
	return &v
}
