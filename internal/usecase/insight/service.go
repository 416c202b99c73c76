// Package insight produces short best-effort HR notes for an assessment.
package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/recommender/internal/domain"
	"github.com/kailas-cloud/recommender/internal/metrics"
)

// MaxDescriptionRunes bounds the description quoted in the prompt.
const MaxDescriptionRunes = 300

// Generator is a third-party text-generation endpoint.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options tunes the protection around the generator.
type Options struct {
	// RatePerSecond and Burst bound outgoing calls; zero RatePerSecond disables the limit.
	RatePerSecond float64
	Burst         int
	// Timeout bounds one generation call.
	Timeout time.Duration
	// BreakerFailures consecutive failures open the breaker for BreakerCooldown.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// Defaults.
const (
	DefaultTimeout         = 10 * time.Second
	DefaultBreakerFailures = 5
	DefaultBreakerCooldown = 60 * time.Second
)

// Service wraps a Generator with a rate limiter, a circuit breaker and a
// per-call timeout. A nil generator means insights are disabled.
type Service struct {
	gen     Generator
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
	logger  *zap.Logger
}

// New creates the insight service. gen may be nil.
func New(gen Generator, opts Options, logger *zap.Logger) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = DefaultBreakerFailures
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = DefaultBreakerCooldown
	}

	s := &Service{gen: gen, timeout: opts.Timeout, logger: logger}
	if gen == nil {
		return s
	}

	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}

	failures := opts.BreakerFailures
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "insights-" + gen.Name(),
		Timeout: opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return s
}

// Enabled reports whether a generator is configured.
func (s *Service) Enabled() bool { return s != nil && s.gen != nil }

// Insight asks the generator for three short notes on the assessment. The
// caller is expected to substitute domain.InsightsUnavailable on error.
func (s *Service) Insight(ctx context.Context, name, description string) (string, error) {
	if !s.Enabled() {
		metrics.InsightRequestsTotal.WithLabelValues("none", "disabled").Inc()
		return "", domain.ErrInsightsUnavailable
	}
	provider := s.gen.Name()

	if s.limiter != nil && !s.limiter.Allow() {
		metrics.InsightRequestsTotal.WithLabelValues(provider, "rejected").Inc()
		return "", fmt.Errorf("insight for %q: %w", name, domain.ErrRateLimited)
	}

	out, err := s.breaker.Execute(func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return s.gen.Generate(callCtx, Prompt(description))
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.InsightRequestsTotal.WithLabelValues(provider, "rejected").Inc()
		} else {
			metrics.InsightRequestsTotal.WithLabelValues(provider, "error").Inc()
		}
		return "", fmt.Errorf("insight for %q: %w", name, err)
	}

	metrics.InsightRequestsTotal.WithLabelValues(provider, "ok").Inc()
	text, _ := out.(string)
	return text, nil
}

// Prompt renders the generation prompt for one description.
func Prompt(description string) string {
	var b strings.Builder
	b.WriteString("As an HR expert, analyze this assessment description and provide 3 concise insights:\n\n")
	b.WriteString("Description: ")
	b.WriteString(truncate(description, MaxDescriptionRunes))
	b.WriteString("\n\nFormat as:\n1. Key skills measured\n2. Ideal candidate level\n3. Best use case")
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
