package chi

import (
	"encoding/json"

	domdoc "github.com/kailas-cloud/semdex/internal/domain/document"
	"github.com/kailas-cloud/semdex/internal/domain/metadata"
)

// errorCode is a machine-readable error identifier.
type errorCode string

const (
	codeBadRequest             errorCode = "bad_request"
	codeUnauthorized           errorCode = "unauthorized"
	codeValidationFailed       errorCode = "validation_failed"
	codeUnsupportedFilter      errorCode = "unsupported_filter"
	codeEmbeddingProviderError errorCode = "embedding_provider_error"
	codeStoreRejected          errorCode = "store_rejected"
	codeStoreUnavailable       errorCode = "store_unavailable"
	codeInternalError          errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// addDocumentRequest is one element of the POST /addDocuments body.
// Content is a pointer so that a missing field and an empty string stay distinct.
type addDocumentRequest struct {
	Content  *string      `json:"content"`
	Metadata metadata.Map `json:"metadata"`
}

type documentResponse struct {
	ID       string       `json:"id"`
	Content  string       `json:"content"`
	Metadata metadata.Map `json:"metadata"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// submissionsFromRequest decodes each element on its own. An element that
// does not decode (an array metadata value, non-string content) stays nil
// and is dropped by admission like any other malformed submission.
func submissionsFromRequest(items []json.RawMessage) []*domdoc.Submission {
	subs := make([]*domdoc.Submission, len(items))
	for i, raw := range items {
		var it *addDocumentRequest
		if err := json.Unmarshal(raw, &it); err != nil || it == nil {
			continue
		}
		subs[i] = &domdoc.Submission{Content: it.Content, Metadata: it.Metadata}
	}
	return subs
}

func documentsToResponse(docs []domdoc.Document) []documentResponse {
	out := make([]documentResponse, len(docs))
	for i := range docs {
		meta := docs[i].Metadata()
		if meta == nil {
			meta = metadata.Map{}
		}
		out[i] = documentResponse{
			ID:       docs[i].ID(),
			Content:  docs[i].Content(),
			Metadata: meta,
		}
	}
	return out
}
