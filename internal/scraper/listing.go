package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/kailas-cloud/recommender/internal/domain"
)

// Link is one catalog row pointing at a detail page.
type Link struct {
	Name     string
	URL      string
	Tab      int
	Adaptive domain.Indicator
}

// ParseListing extracts detail links from a catalog table. The first row is
// the header. Rows without a name or a resolvable link are skipped.
func ParseListing(doc *goquery.Document, base string, tab int) []Link {
	var links []Link
	doc.Find("table tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		cols := row.Find("td")
		if cols.Length() == 0 {
			return
		}
		a := cols.First().Find("a").First()
		href, ok := a.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		name := strippedText(a)
		if name == "" {
			return
		}
		u, err := ResolveDetailURL(base, href)
		if err != nil {
			return
		}
		links = append(links, Link{Name: name, URL: u, Tab: tab, Adaptive: rowAdaptive(row)})
	})
	return links
}

// rowAdaptive reads the adaptive/IRT column of a listing row.
func rowAdaptive(row *goquery.Selection) domain.Indicator {
	cell := row.Find("td.adaptive-support").First()
	if cell.Length() == 0 {
		cell = row.Find("td:nth-child(3)").First()
	}
	if cell.Length() > 0 {
		if cell.Find("svg.green, span.green-circle, .green-dot").Length() > 0 || containsGreen(cell.Nodes[0]) {
			return domain.IndicatorSupported
		}
		return domain.IndicatorUnsupported
	}

	// no such column: look for an inline "Adaptive"/"IRT" label instead
	for _, n := range row.Nodes {
		t := findText(n, func(s string) bool {
			return strings.Contains(s, "Adaptive") || strings.Contains(s, "IRT")
		})
		if t == nil || t.Parent == nil {
			continue
		}
		return verdictFromText(nodeText(t.Parent))
	}
	return domain.IndicatorUnknown
}

func verdictFromText(s string) domain.Indicator {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "not supported"):
		return domain.IndicatorUnsupported
	case strings.Contains(s, "supported"), hasWord(s, "yes"):
		return domain.IndicatorSupported
	case hasWord(s, "no"):
		return domain.IndicatorUnsupported
	}
	return domain.IndicatorUnknown
}

func hasWord(s, w string) bool {
	for _, f := range strings.FieldsFunc(s, func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	}) {
		if f == w {
			return true
		}
	}
	return false
}

// containsGreen reports whether n or any descendant is styled as a green/"yes" marker.
func containsGreen(n *html.Node) bool {
	if isGreen(n) {
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if containsGreen(c) {
			return true
		}
	}
	return false
}

func isGreen(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	class := strings.ToLower(attr(n, "class"))
	if strings.Contains(class, "green") {
		return true
	}
	for _, c := range strings.Fields(class) {
		if c == "-yes" || strings.HasSuffix(c, "--yes") {
			return true
		}
	}
	return strings.Contains(strings.ToLower(attr(n, "style")), "green") ||
		strings.Contains(strings.ToLower(attr(n, "fill")), "green")
}
