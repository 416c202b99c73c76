package scraper

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const browserBanner = "We recommend upgrading to a modern browser."

var (
	descriptionSelectors = []string{
		"div.product-details p",
		"div.product-description p",
		"div.description-content p",
		"section.description p",
		".product-info .description",
	}

	descriptionKeywords = []string{
		"entry-level", "position", "candidate", "assessment", "measure", "skill", "solution is for",
	}

	boilerplate = []string{"Contact", "Practice Tests", "Support", "Login", "Buy Online", "Book a Demo"}
)

// descriptionStrategy is one way of finding a description. Strategies run
// in order and the first hit wins.
type descriptionStrategy struct {
	name    string
	extract func(doc *goquery.Document) (string, bool)
}

var descriptionStrategies = []descriptionStrategy{
	{"heading", descriptionUnderHeading},
	{"container", descriptionInContainer},
	{"selectors", descriptionBySelector},
	{"keywords", descriptionByKeyword},
}

// Description runs the strategy chain and strips boilerplate from the winner.
// The name of the strategy that matched is returned for diagnostics.
func Description(doc *goquery.Document) (text, strategy string, ok bool) {
	for _, s := range descriptionStrategies {
		t, found := s.extract(doc)
		if !found || t == "" || t == browserBanner {
			continue
		}
		if t = stripBoilerplate(t); t != "" {
			return t, s.name, true
		}
	}
	return "", "", false
}

// h1-h4 reading exactly "Description", followed by consecutive <p> siblings.
func descriptionUnderHeading(doc *goquery.Document) (string, bool) {
	var parts []string
	doc.Find("h1, h2, h3, h4").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if strippedText(h) != "Description" {
			return true
		}
		for p := h.Next(); p.Length() > 0 && goquery.NodeName(p) == "p"; p = p.Next() {
			if t := strippedText(p); t != "" {
				parts = append(parts, t)
			}
		}
		return len(parts) == 0
	})
	return strings.Join(parts, " "), len(parts) > 0
}

// Element with id or class "Description"; all of its paragraphs.
func descriptionInContainer(doc *goquery.Document) (string, bool) {
	box := doc.Find("#Description").First()
	if box.Length() == 0 {
		box = doc.Find(".Description").First()
	}
	if box.Length() == 0 {
		return "", false
	}
	var parts []string
	box.Find("p").Each(func(_ int, p *goquery.Selection) {
		if t := strippedText(p); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, " "), len(parts) > 0
}

func descriptionBySelector(doc *goquery.Document) (string, bool) {
	for _, sel := range descriptionSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			t := strippedText(s)
			return t, t != ""
		}
	}
	return "", false
}

// First paragraph longer than 50 characters mentioning a keyword.
func descriptionByKeyword(doc *goquery.Document) (string, bool) {
	var out string
	doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		t := strippedText(p)
		if utf8.RuneCountInString(t) <= 50 {
			return true
		}
		lower := strings.ToLower(t)
		for _, kw := range descriptionKeywords {
			if strings.Contains(lower, kw) {
				out = t
				return false
			}
		}
		return true
	})
	return out, out != ""
}

func stripBoilerplate(s string) string {
	for _, w := range boilerplate {
		s = strings.ReplaceAll(s, w, "")
	}
	return collapseSpace(s)
}
