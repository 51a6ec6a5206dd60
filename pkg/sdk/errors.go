package semdex

import "github.com/kailas-cloud/semdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrStoreUnavailable       = domain.ErrStoreUnavailable
	ErrStoreRejected          = domain.ErrStoreRejected
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrInvalidRequest         = domain.ErrInvalidRequest
	ErrUnsupportedFilter      = domain.ErrUnsupportedFilter
)
