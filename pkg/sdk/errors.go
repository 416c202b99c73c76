package recommender

import "github.com/kailas-cloud/recommender/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrBadInput               = domain.ErrBadInput
	ErrIndexNotBuilt          = domain.ErrIndexNotBuilt
	ErrCatalogNotFound        = domain.ErrCatalogNotFound
	ErrInvalidCatalog         = domain.ErrInvalidCatalog
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrVectorDimMismatch      = domain.ErrVectorDimMismatch
)
