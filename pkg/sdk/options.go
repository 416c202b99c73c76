package recommender

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "valkey" or "redis"
	addrs    []string
	password string

	embedder  Embedder
	generator Generator

	documentInstruction string
	queryInstruction    string

	collection       string
	vectorDimensions int
	hnswM            int
	hnswEFConstruct  int
	indexBatchSize   int
	maxEmbedBatch    int

	fetchTimeout       time.Duration
	insightConcurrency int
	insightTimeout     time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey configures the client to connect to a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithEmbedder sets the text embedding provider. Required.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithGenerator enables AI insights. Without it every insight is the
// "AI insights unavailable" placeholder.
func WithGenerator(g Generator) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
	})
}

// WithInstructions sets the prefixes prepended to indexed documents and to
// queries, as e5/bge-style models expect ("passage: ", "query: ").
// Empty strings disable a prefix.
func WithInstructions(document, query string) Option {
	return optionFunc(func(c *clientConfig) {
		c.documentInstruction = document
		c.queryInstruction = query
	})
}

// WithCollection overrides the index collection name.
// Default: shl_assessments.
func WithCollection(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.collection = name
	})
}

// WithVectorDimensions sets the embedding dimension of the index.
// Defaults to 384 (all-MiniLM-L6-v2).
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorDimensions = dim
	})
}

// WithHNSW configures HNSW index parameters (M and EF construction).
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithBatchSizes sets how many entries are stored per round trip and how
// many texts are sent per embedding request. Zero keeps a default.
func WithBatchSizes(index, embed int) Option {
	return optionFunc(func(c *clientConfig) {
		c.indexBatchSize = index
		c.maxEmbedBatch = embed
	})
}

// WithFetchTimeout bounds the page download when a query is a URL.
func WithFetchTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.fetchTimeout = d
	})
}

// WithInsightLimits sets the insight fan-out width and per-call timeout.
func WithInsightLimits(concurrency int, timeout time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.insightConcurrency = concurrency
		c.insightTimeout = timeout
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
