package scraper

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/kailas-cloud/recommender/internal/domain"
)

// Extract builds a record from a detail page. Every field the heuristics
// miss keeps its placeholder, so the result is always complete.
func Extract(doc *goquery.Document, link Link) domain.Assessment {
	a := domain.NewAssessment(link.Name, link.URL, link.Tab)
	a.AdaptiveIRT = link.Adaptive
	if a.AdaptiveIRT == "" {
		a.AdaptiveIRT = domain.IndicatorUnknown
	}

	if d, _, ok := Description(doc); ok {
		a.Description = d
	}
	headingFields(doc, &a)
	a.RemoteTesting = remoteTesting(doc)
	if a.AdaptiveIRT == domain.IndicatorUnknown {
		a.AdaptiveIRT = detailAdaptive(doc)
	}
	if t, ok := testType(doc); ok {
		a.TestType = t
	}
	return a
}

// JobDescriptionSelector locates the posting body on a job page.
const JobDescriptionSelector = "div.job-description, section.description"

// JobDescription returns the text of the first job-description container.
func JobDescription(doc *goquery.Document) (string, bool) {
	sel := doc.Find(JobDescriptionSelector).First()
	if sel.Length() == 0 {
		return "", false
	}
	t := strippedText(sel)
	return t, t != ""
}
