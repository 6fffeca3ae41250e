package pipeline

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Sentinel errors for TOC extraction.
var (
	ErrInvalidTOCDepth = errors.New("invalid TOC depth")
	ErrTOCParse        = errors.New("failed to parse rendered HTML")
)

// headingInfo is a heading extracted from rendered HTML.
type headingInfo struct {
	Level int    // 1-6
	ID    string // anchor id
	Text  string // text content without the permalink
}

// headingSelector matches every heading level.
const headingSelector = "h1, h2, h3, h4, h5, h6"

// BuildTOC lists the headings of body between minDepth and maxDepth as a
// nested <ul>. Headings without an id are skipped. Returns "" when nothing
// qualifies. Zero depths mean the full 1-6 range.
func BuildTOC(body string, minDepth, maxDepth int) (string, error) {
	minDepth, maxDepth, err := normalizeDepths(minDepth, maxDepth)
	if err != nil {
		return "", err
	}

	headings, err := extractHeadings(body, minDepth, maxDepth)
	if err != nil {
		return "", err
	}
	return renderTOC(headings), nil
}

// normalizeDepths applies defaults and checks 1 <= min <= max <= 6.
func normalizeDepths(minDepth, maxDepth int) (int, int, error) {
	if minDepth == 0 {
		minDepth = MinHeadingDepth
	}
	if maxDepth == 0 {
		maxDepth = MaxHeadingDepth
	}
	if minDepth < MinHeadingDepth || maxDepth > MaxHeadingDepth || minDepth > maxDepth {
		return 0, 0, fmt.Errorf("%w: min %d, max %d (want %d <= min <= max <= %d)",
			ErrInvalidTOCDepth, minDepth, maxDepth, MinHeadingDepth, MaxHeadingDepth)
	}
	return minDepth, maxDepth, nil
}

// extractHeadings returns headings in document order.
func extractHeadings(body string, minDepth, maxDepth int) ([]headingInfo, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTOCParse, err)
	}

	var headings []headingInfo
	doc.Find(headingSelector).Each(func(_ int, s *goquery.Selection) {
		id, ok := s.Attr("id")
		if !ok || id == "" {
			return
		}
		level := int(goquery.NodeName(s)[1] - '0')
		if level < minDepth || level > maxDepth {
			return
		}

		// Permalink text ("#") is not part of the heading
		text := s.Clone()
		text.Find("a.anchor").Remove()

		headings = append(headings, headingInfo{
			Level: level,
			ID:    id,
			Text:  strings.TrimSpace(text.Text()),
		})
	})
	return headings, nil
}

// nestingState maps heading levels to list depths.
// The first heading becomes depth 1 and skipped levels collapse, so
// H1 -> H3 nests the H3 one level below the H1.
type nestingState struct {
	minLevelSeen int // 0 = not set
	lastDepth    int
}

// next returns the list depth for a heading level.
func (n *nestingState) next(level int) int {
	if n.minLevelSeen == 0 {
		n.minLevelSeen = level
	}

	depth := level - n.minLevelSeen + 1
	if depth < 1 {
		depth = 1
	}
	if n.lastDepth > 0 && depth > n.lastDepth+1 {
		depth = n.lastDepth + 1
	}

	n.lastDepth = depth
	return depth
}

// renderTOC writes headings as nested <ul><li><a href="#id">text</a></li></ul>.
func renderTOC(headings []headingInfo) string {
	if len(headings) == 0 {
		return ""
	}

	var buf strings.Builder
	var nesting nestingState
	current := 0

	for _, h := range headings {
		depth := nesting.next(h.Level)

		switch {
		case current == 0:
			buf.WriteString("<ul>")
			current = 1
		case depth > current:
			buf.WriteString("<ul>")
			current++
		default:
			buf.WriteString("</li>")
			for current > depth {
				buf.WriteString("</ul></li>")
				current--
			}
		}

		buf.WriteString(`<li><a href="#`)
		buf.WriteString(html.EscapeString(h.ID))
		buf.WriteString(`">`)
		buf.WriteString(html.EscapeString(h.Text))
		buf.WriteString(`</a>`)
	}

	buf.WriteString("</li>")
	for current > 1 {
		buf.WriteString("</ul></li>")
		current--
	}
	buf.WriteString("</ul>")
	return buf.String()
}
