package insight

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recommender/internal/domain"
	"github.com/kailas-cloud/recommender/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

type mockGenerator struct {
	calls    atomic.Int32
	generate func(ctx context.Context, prompt string) (string, error)
}

func (m *mockGenerator) Name() string { return "mock" }

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.calls.Add(1)
	return m.generate(ctx, prompt)
}

func TestInsight(t *testing.T) {
	var got string
	gen := &mockGenerator{generate: func(_ context.Context, prompt string) (string, error) {
		got = prompt
		return "1. Numeracy\n2. Graduate\n3. Screening", nil
	}}
	svc := New(gen, Options{}, zap.NewNop())

	out, err := svc.Insight(context.Background(), "Verify G+", "numerical reasoning test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "1. Numeracy\n2. Graduate\n3. Screening" {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(got, "Description: numerical reasoning test") {
		t.Errorf("prompt does not quote the description: %q", got)
	}
}

func TestInsight_Disabled(t *testing.T) {
	svc := New(nil, Options{}, zap.NewNop())
	if svc.Enabled() {
		t.Fatal("nil generator must disable insights")
	}
	_, err := svc.Insight(context.Background(), "x", "y")
	if !errors.Is(err, domain.ErrInsightsUnavailable) {
		t.Fatalf("expected ErrInsightsUnavailable, got %v", err)
	}
}

func TestInsight_GeneratorError(t *testing.T) {
	quota := errors.New("quota exceeded")
	gen := &mockGenerator{generate: func(context.Context, string) (string, error) { return "", quota }}
	svc := New(gen, Options{}, zap.NewNop())

	_, err := svc.Insight(context.Background(), "x", "y")
	if !errors.Is(err, quota) {
		t.Fatalf("expected quota error, got %v", err)
	}
}

func TestInsight_BreakerOpens(t *testing.T) {
	gen := &mockGenerator{generate: func(context.Context, string) (string, error) {
		return "", errors.New("boom")
	}}
	svc := New(gen, Options{BreakerFailures: 2, BreakerCooldown: time.Hour}, zap.NewNop())

	for range 2 {
		_, _ = svc.Insight(context.Background(), "x", "y")
	}
	_, err := svc.Insight(context.Background(), "x", "y")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open breaker, got %v", err)
	}
	if n := gen.calls.Load(); n != 2 {
		t.Errorf("generator called %d times, want 2", n)
	}
}

func TestInsight_RateLimited(t *testing.T) {
	gen := &mockGenerator{generate: func(context.Context, string) (string, error) { return "ok", nil }}
	svc := New(gen, Options{RatePerSecond: 0.001, Burst: 1}, zap.NewNop())

	if _, err := svc.Insight(context.Background(), "x", "y"); err != nil {
		t.Fatalf("first call: %v", err)
	}
	_, err := svc.Insight(context.Background(), "x", "y")
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if n := gen.calls.Load(); n != 1 {
		t.Errorf("generator called %d times, want 1", n)
	}
}

func TestInsight_Timeout(t *testing.T) {
	gen := &mockGenerator{generate: func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	svc := New(gen, Options{Timeout: 10 * time.Millisecond}, zap.NewNop())

	_, err := svc.Insight(context.Background(), "x", "y")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestPrompt_TruncatesDescription(t *testing.T) {
	long := strings.Repeat("é", 400)
	p := Prompt(long)
	if strings.Contains(p, strings.Repeat("é", MaxDescriptionRunes+1)) {
		t.Error("description must be truncated")
	}
	if !strings.Contains(p, strings.Repeat("é", MaxDescriptionRunes)) {
		t.Error("truncation must keep the first runes")
	}
	if !strings.HasPrefix(p, "As an HR expert") {
		t.Errorf("prompt = %q", p)
	}
}
