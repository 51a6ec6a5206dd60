package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrIndexExists = errors.New("db: index already exists")
	// ErrRejected marks a command the server received and refused.
	ErrRejected = errors.New("db: command rejected")
	// ErrInvalidQuery marks a query refused before it was sent.
	ErrInvalidQuery = errors.New("db: invalid query")
)

// Op constants map to backend command names for error context.
const (
	OpPing        = "PING"
	OpCreateIndex = "FT.CREATE"
	OpIndexInfo   = "FT.INFO"
	OpSearch      = "FT.SEARCH"
	OpDel         = "DEL"
	OpHSet        = "HSET"
	OpGet         = "GET"
	OpSet         = "SET"

	OpCreateCollection = "qdrant.CreateCollection"
	OpCreateFieldIndex = "qdrant.CreateFieldIndex"
	OpCollectionExists = "qdrant.CollectionExists"
	OpUpsert           = "qdrant.Upsert"
	OpDeletePoints     = "qdrant.Delete"
	OpQuery            = "qdrant.Query"
	OpHealthCheck      = "qdrant.HealthCheck"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// IsRejected reports whether err is a server-side refusal rather than a transport failure.
func IsRejected(err error) bool {
	return errors.Is(err, ErrRejected) || errors.Is(err, ErrInvalidQuery)
}
