package domain

import "errors"

var (
	// ErrStoreUnavailable signals that the vector store could not be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrStoreRejected signals that the vector store refused a command.
	ErrStoreRejected = errors.New("store rejected request")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrInvalidRequest signals malformed caller input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnsupportedFilter signals a filter the backend cannot express.
	ErrUnsupportedFilter = errors.New("unsupported filter")
)

// DeleteOutcome is the store's coarse verdict on a batched delete.
type DeleteOutcome uint8

// Delete outcomes. The zero value is Unknown.
const (
	DeleteUnknown DeleteOutcome = iota
	DeleteSucceeded
	DeleteFailed
)

func (o DeleteOutcome) String() string {
	switch o {
	case DeleteSucceeded:
		return "succeeded"
	case DeleteFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Confirmed reports whether the store positively acknowledged the delete.
func (o DeleteOutcome) Confirmed() bool { return o == DeleteSucceeded }
