// Package web fetches single HTML pages for the scraper and the query resolver.
package web

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/brotli"
	colly "github.com/gocolly/colly/v2"
	"golang.org/x/net/html/charset"
)

const (
	// DefaultUserAgent is a browser-like agent; the catalog site rejects obvious bots.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	DefaultTimeout   = 15 * time.Second
)

// Error describes a failed page fetch.
type Error struct {
	URL        string
	StatusCode int
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Options configures a Fetcher.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	// Transport overrides the HTTP transport, mostly for tests.
	Transport http.RoundTripper
}

// Fetcher downloads a page with colly and parses it into a goquery document.
// Safe for concurrent use: each Fetch gets its own collector.
type Fetcher struct {
	opts Options
}

// New creates a Fetcher, filling zero options with defaults.
func New(opts Options) *Fetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Fetcher{opts: opts}
}

// Fetch GETs rawURL. Network failures and non-2xx statuses return *Error.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*goquery.Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, &Error{URL: rawURL, Message: "invalid URL", Cause: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &Error{URL: rawURL, Message: "canceled", Cause: err}
	}

	c := colly.NewCollector(
		colly.UserAgent(f.opts.UserAgent),
		colly.AllowURLRevisit(),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(f.opts.Timeout)
	if f.opts.Transport != nil {
		c.WithTransport(f.opts.Transport)
	}

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
		// colly inflates gzip itself; brotli is handled in decodeBody
		r.Headers.Set("Accept-Encoding", "gzip, br")
	})

	var (
		doc     *goquery.Document
		status  int
		parseEr error
	)
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body, err := decodeBody(r.Body, r.Headers.Get("Content-Encoding"), r.Headers.Get("Content-Type"))
		if err != nil {
			parseEr = err
			return
		}
		doc, parseEr = goquery.NewDocumentFromReader(bytes.NewReader(body))
		if doc != nil {
			doc.Url = r.Request.URL
		}
	})
	c.OnError(func(r *colly.Response, _ error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	if err := c.Visit(u.String()); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &Error{URL: rawURL, Message: "canceled", Cause: ctxErr}
		}
		msg := "request failed"
		if status >= 300 {
			msg = fmt.Sprintf("HTTP status %d", status)
		}
		return nil, &Error{URL: rawURL, StatusCode: status, Message: msg, Cause: err}
	}
	if parseEr != nil {
		return nil, &Error{URL: rawURL, StatusCode: status, Message: "parse body", Cause: parseEr}
	}
	if doc == nil {
		return nil, &Error{URL: rawURL, StatusCode: status, Message: "empty response"}
	}
	return doc, nil
}

// decodeBody undoes brotli and makes sure the result is UTF-8. colly already
// converts bodies whose Content-Type declares a charset, but it does so before
// we see the bytes, so only brotli bodies still need the declared charset
// applied. Undeclared charsets are sniffed from <meta>.
func decodeBody(body []byte, contentEncoding, contentType string) ([]byte, error) {
	var r io.Reader = bytes.NewReader(body)
	switch {
	case strings.Contains(strings.ToLower(contentEncoding), "br"):
		r = brotli.NewReader(r)
	case strings.Contains(strings.ToLower(contentType), "charset="):
		return body, nil
	default:
		contentType = ""
	}

	utf8, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, fmt.Errorf("charset: %w", err)
	}
	out, err := io.ReadAll(utf8)
	if err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	return out, nil
}
