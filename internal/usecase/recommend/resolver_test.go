package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/kailas-cloud/recommender/internal/domain"
)

func TestResolve_PlainTextVerbatim(t *testing.T) {
	f := &mockFetcher{fetch: func(context.Context, string) (*goquery.Document, error) {
		t.Fatal("fetcher must not be called for plain text")
		return nil, nil
	}}
	r := NewResolver(f)

	for _, text := range []string{
		"  Java developer with SQL  ",
		"ftp://example.com/job",
		"see https://example.com/job",
		"HTTP://upper.case/job",
		"",
	} {
		got, err := r.Resolve(context.Background(), text)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", text, err)
		}
		if got != text {
			t.Errorf("Resolve(%q) = %q, want verbatim", text, got)
		}
	}
}

func TestResolve_URL(t *testing.T) {
	for _, url := range []string{"http://jobs.example.com/1", "https://jobs.example.com/1"} {
		f := pageFetcher(t, `<html><body><nav>Menu</nav>
			<div class="job-description"><h2>Role</h2><p>Build   Java services.</p></div></body></html>`)
		got, err := NewResolver(f).Resolve(context.Background(), url)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", url, err)
		}
		if got != "Role Build Java services." {
			t.Errorf("%s: got %q", url, got)
		}
		if f.calls.Load() != 1 {
			t.Errorf("%s: fetch calls = %d", url, f.calls.Load())
		}
	}
}

func TestResolve_SectionSelector(t *testing.T) {
	f := pageFetcher(t, `<section class="description">Data analyst</section>`)
	got, err := NewResolver(f).Resolve(context.Background(), "https://jobs.example.com/2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Data analyst" {
		t.Errorf("got %q", got)
	}
}

func TestResolve_BadInput(t *testing.T) {
	tests := []struct {
		name    string
		fetcher *mockFetcher
	}{
		{
			name: "fetch fails",
			fetcher: &mockFetcher{fetch: func(context.Context, string) (*goquery.Document, error) {
				return nil, errors.New("connection refused")
			}},
		},
		{
			name:    "no description container",
			fetcher: pageFetcher(t, `<html><body><p>nothing here</p></body></html>`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewResolver(tt.fetcher).Resolve(context.Background(), "https://jobs.example.com/x")
			if !errors.Is(err, domain.ErrBadInput) {
				t.Fatalf("expected ErrBadInput, got %v", err)
			}
		})
	}
}
