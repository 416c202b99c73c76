package scraper

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultBaseURL resolves relative detail links.
	DefaultBaseURL = "https://www.shl.com"

	catalogURL = DefaultBaseURL + "/solutions/products/product-catalog/"
	pageSize   = 12
	lastStart  = 372

	duplicatedPath = "solutions/products/product-catalog/solutions/products"
	correctedPath  = "solutions/products"
)

// DefaultListingURLs returns the 32 catalog listing pages in crawl order.
// The site repeats type=1 on every page after the second; kept as served.
func DefaultListingURLs() []string {
	urls := make([]string, 0, lastStart/pageSize+1)
	urls = append(urls, catalogURL, fmt.Sprintf("%s?start=%d&type=1", catalogURL, pageSize))
	for start := 2 * pageSize; start <= lastStart; start += pageSize {
		urls = append(urls, fmt.Sprintf("%s?start=%d&type=1&type=1", catalogURL, start))
	}
	return urls
}

// FixDetailURL corrects the catalog's duplicated path segment.
func FixDetailURL(u string) string {
	return strings.ReplaceAll(u, duplicatedPath, correctedPath)
}

// ResolveDetailURL joins href onto base and applies FixDetailURL.
func ResolveDetailURL(base, href string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base %q: %w", base, err)
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("parse href %q: %w", href, err)
	}
	return FixDetailURL(b.ResolveReference(ref).String()), nil
}
