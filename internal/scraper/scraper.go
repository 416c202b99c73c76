// Package scraper harvests assessment records from the public product catalog.
package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recommender/internal/domain"
	logpkg "github.com/kailas-cloud/recommender/internal/logger"
	"github.com/kailas-cloud/recommender/internal/metrics"
)

// PageFetcher downloads and parses one page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// Options controls what is crawled and how politely.
type Options struct {
	BaseURL     string
	ListingURLs []string
	// ListingDelay separates listing pages, DetailDelay detail pages.
	ListingDelay time.Duration
	DetailDelay  time.Duration
}

// Scraper walks the listing pages and extracts one record per detail link.
// Not safe for concurrent Scrape calls; ingestion is a single operator batch.
type Scraper struct {
	listing PageFetcher
	detail  PageFetcher
	opts    Options
	logger  *zap.Logger
}

// New creates a scraper. listing and detail may be the same fetcher; they
// are separate so each can carry its own timeout.
func New(listing, detail PageFetcher, opts Options, logger *zap.Logger) *Scraper {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if len(opts.ListingURLs) == 0 {
		opts.ListingURLs = DefaultListingURLs()
	}
	return &Scraper{listing: listing, detail: detail, opts: opts, logger: logger}
}

// Scrape crawls every listing page. Unreachable listing pages are skipped;
// unreachable or broken detail pages still yield a placeholder record. Only
// context cancellation stops the run early, returning what was collected.
func (s *Scraper) Scrape(ctx context.Context) ([]domain.Assessment, error) {
	var records []domain.Assessment
	log := logpkg.FromContextOr(ctx, s.logger)

	for i, listingURL := range s.opts.ListingURLs {
		tab := i + 1
		if i > 0 {
			if err := sleep(ctx, s.opts.ListingDelay); err != nil {
				return records, fmt.Errorf("scrape canceled at tab %d: %w", tab, err)
			}
		}

		doc, err := s.listing.Fetch(ctx, listingURL)
		if err != nil {
			metrics.ScrapePagesTotal.WithLabelValues("listing", "error").Inc()
			log.Warn("listing page skipped",
				zap.Int("tab", tab), zap.String("url", listingURL), zap.Error(err))
			if ctx.Err() != nil {
				return records, fmt.Errorf("scrape canceled at tab %d: %w", tab, ctx.Err())
			}
			continue
		}
		metrics.ScrapePagesTotal.WithLabelValues("listing", "ok").Inc()

		links := ParseListing(doc, s.opts.BaseURL, tab)
		log.Info("listing page parsed", zap.Int("tab", tab), zap.Int("links", len(links)))

		for j, link := range links {
			if j > 0 {
				if err := sleep(ctx, s.opts.DetailDelay); err != nil {
					return records, fmt.Errorf("scrape canceled at tab %d: %w", tab, err)
				}
			}
			records = append(records, s.scrapeDetail(ctx, link, log))
		}
	}

	return records, nil
}

func (s *Scraper) scrapeDetail(ctx context.Context, link Link, log *zap.Logger) (rec domain.Assessment) {
	defer func() {
		if r := recover(); r != nil {
			rec = degraded(link, fmt.Errorf("extract panic: %v", r))
			metrics.ScrapeRecordsTotal.WithLabelValues("degraded").Inc()
			log.Error("detail extraction panicked",
				zap.String("url", link.URL), zap.Any("panic", r))
		}
	}()

	doc, err := s.detail.Fetch(ctx, link.URL)
	if err != nil {
		metrics.ScrapePagesTotal.WithLabelValues("detail", "error").Inc()
		metrics.ScrapeRecordsTotal.WithLabelValues("degraded").Inc()
		log.Warn("detail page failed",
			zap.Int("tab", link.Tab), zap.String("url", link.URL), zap.Error(err))
		return degraded(link, err)
	}
	metrics.ScrapePagesTotal.WithLabelValues("detail", "ok").Inc()

	rec = Extract(doc, link)
	metrics.ScrapeRecordsTotal.WithLabelValues("extracted").Inc()
	log.Debug("detail page extracted", zap.Int("tab", link.Tab), zap.String("name", rec.Name))
	return rec
}

// degraded is the record kept for a detail page that could not be processed.
func degraded(link Link, err error) domain.Assessment {
	a := domain.NewAssessment(link.Name, link.URL, link.Tab)
	if link.Adaptive != "" {
		a.AdaptiveIRT = link.Adaptive
	}
	a.Description = fmt.Sprintf("%s (Error: %v)", domain.PlaceholderDescription, err)
	return a
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
