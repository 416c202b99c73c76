package domain

import "errors"

var (
	// ErrIndexNotBuilt signals a query against an index that was never created.
	ErrIndexNotBuilt = errors.New("index not built")
	// ErrBadInput signals query input that cannot be turned into text.
	ErrBadInput = errors.New("bad input")
	// ErrCatalogNotFound signals a missing catalog snapshot.
	ErrCatalogNotFound = errors.New("catalog snapshot not found")
	// ErrInvalidCatalog signals a snapshot that cannot be indexed.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrVectorDimMismatch signals a vector of unexpected length.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrInsightsUnavailable signals that no insight generator is usable.
	ErrInsightsUnavailable = errors.New("insights unavailable")
	// ErrRateLimited signals a local rate limit hit.
	ErrRateLimited = errors.New("rate limited")
)
