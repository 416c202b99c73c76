package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/kailas-cloud/recommender/internal/domain"
)

const (
	remoteTestingMarker = "Remote Testing:"
	testTypeMarker      = "Test Type:"
	remoteTestingStop   = "Remote Testing"
)

// headingFields fills duration, languages and job level from h2-h4 labels
// and the element right after them. Later headings override earlier ones.
func headingFields(doc *goquery.Document, a *domain.Assessment) {
	doc.Find("h2, h3, h4").Each(func(_ int, h *goquery.Selection) {
		label := strings.ToLower(strippedText(h))
		value := strippedText(h.Next())

		switch {
		case strings.Contains(label, "assessment length"), strings.Contains(label, "duration"):
			if strings.Contains(strings.ToLower(value), "minutes") {
				a.Duration = value
			}
		case strings.Contains(label, "languages"):
			a.Languages = domain.SplitLanguages(value)
		case strings.Contains(label, "job level"):
			if value != "" {
				a.JobLevel = value
			}
		}
	})
}

// remoteTesting is Unknown without the marker, otherwise decided by a green
// element next to it.
func remoteTesting(doc *goquery.Document) domain.Indicator {
	marker := findText(docRoot(doc), func(s string) bool { return strings.Contains(s, remoteTestingMarker) })
	if marker == nil {
		return domain.IndicatorUnknown
	}
	return greenNear(marker)
}

// detailAdaptive looks for a short "Adaptive..."/"IRT..." label on the detail page.
func detailAdaptive(doc *goquery.Document) domain.Indicator {
	marker := findText(docRoot(doc), func(s string) bool {
		t := strings.TrimSpace(s)
		return len(t) < 40 && (strings.HasPrefix(t, "Adaptive") || strings.HasPrefix(t, "IRT"))
	})
	if marker == nil {
		return domain.IndicatorUnknown
	}
	return greenNear(marker)
}

// greenNear checks the marker's element and the sibling elements after it, up
// to the next "Label:" sibling, for a green indicator.
func greenNear(marker *html.Node) domain.Indicator {
	p := marker.Parent
	if p == nil {
		return domain.IndicatorUnsupported
	}
	if containsGreen(p) {
		return domain.IndicatorSupported
	}
	for s := p.NextSibling; s != nil; s = s.NextSibling {
		if s.Type != html.ElementNode {
			continue
		}
		if containsGreen(s) {
			return domain.IndicatorSupported
		}
		if strings.Contains(nodeText(s), ":") {
			break
		}
	}
	return domain.IndicatorUnsupported
}

// testType reads the letters after "Test Type:": the next span, else the next
// sibling element, else bare text nodes up to "Remote Testing".
func testType(doc *goquery.Document) (string, bool) {
	marker := findText(docRoot(doc), func(s string) bool { return strings.Contains(s, testTypeMarker) })
	if marker == nil {
		return "", false
	}

	if p := marker.Parent; p != nil {
		for n := nextInDocument(p); n != nil; n = nextInDocument(n) {
			if n.Type == html.ElementNode && n.Data == "span" {
				if t := nodeText(n); t != "" {
					return t, true
				}
			}
		}
	}

	for s := marker.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			if t := nodeText(s); t != "" {
				return t, true
			}
			break
		}
	}

	var letters []string
	for s := marker.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode && s.Data != "br" {
			break
		}
		if s.Type != html.TextNode {
			continue
		}
		if strings.Contains(s.Data, remoteTestingStop) {
			break
		}
		if t := collapseSpace(s.Data); t != "" {
			letters = append(letters, t)
		}
	}
	// inline letters on the marker's own text node, e.g. "Test Type: A B P"
	if len(letters) == 0 {
		_, rest, _ := strings.Cut(marker.Data, testTypeMarker)
		if r, _, _ := strings.Cut(rest, remoteTestingStop); collapseSpace(r) != "" {
			letters = append(letters, collapseSpace(r))
		}
	}
	return strings.Join(letters, " "), len(letters) > 0
}
