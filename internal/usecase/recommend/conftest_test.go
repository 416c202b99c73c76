package recommend

import (
	"context"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/kailas-cloud/recommender/internal/domain"
	"github.com/kailas-cloud/recommender/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

type mockFetcher struct {
	calls atomic.Int32
	fetch func(ctx context.Context, url string) (*goquery.Document, error)
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	m.calls.Add(1)
	return m.fetch(ctx, url)
}

func pageFetcher(t *testing.T, body string) *mockFetcher {
	t.Helper()
	return &mockFetcher{fetch: func(context.Context, string) (*goquery.Document, error) {
		return goquery.NewDocumentFromReader(strings.NewReader(body))
	}}
}

type mockIndex struct {
	gotText string
	gotK    int
	readyFn func(ctx context.Context) error
	query   func(ctx context.Context, text string, k int) ([]domain.Neighbor, error)
}

func (m *mockIndex) Ready(ctx context.Context) error {
	if m.readyFn == nil {
		return nil
	}
	return m.readyFn(ctx)
}

func (m *mockIndex) Query(ctx context.Context, text string, k int) ([]domain.Neighbor, error) {
	m.gotText, m.gotK = text, k
	return m.query(ctx, text, k)
}

type mockInsighter struct {
	calls   atomic.Int32
	insight func(ctx context.Context, name, description string) (string, error)
}

func (m *mockInsighter) Insight(ctx context.Context, name, description string) (string, error) {
	m.calls.Add(1)
	return m.insight(ctx, name, description)
}

func fptr(f float64) *float64 { return &f }

func neighbors(n int) []domain.Neighbor {
	out := make([]domain.Neighbor, n)
	for i := range out {
		a := domain.NewAssessment("Assessment "+strconv.Itoa(i), "https://x/"+strconv.Itoa(i), 1)
		a.Description = "description " + strconv.Itoa(i)
		out[i] = domain.Neighbor{
			ID:       strconv.Itoa(i),
			Distance: fptr(float64(i) / 20),
			Metadata: a.Metadata(),
		}
	}
	return out
}
