package semdex

import (
	"context"

	domdoc "github.com/kailas-cloud/semdex/internal/domain/document"
	"github.com/kailas-cloud/semdex/internal/domain/search/result"
)

// --- documentUseCase mock ---

type mockDocumentUC struct {
	addFn    func(ctx context.Context, subs []*domdoc.Submission) ([]domdoc.Document, error)
	deleteFn func(ctx context.Context, ids []string) ([]string, error)
}

func (m *mockDocumentUC) Add(ctx context.Context, subs []*domdoc.Submission) ([]domdoc.Document, error) {
	return m.addFn(ctx, subs)
}

func (m *mockDocumentUC) Delete(ctx context.Context, ids []string) ([]string, error) {
	return m.deleteFn(ctx, ids)
}

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn  func(ctx context.Context, text string, topK int, threshold float64) ([]result.Hit, error)
	byFieldFn func(ctx context.Context, text string, topK int, threshold float64, field, value string) ([]result.Hit, error)
}

func (m *mockSearchUC) Search(
	ctx context.Context, text string, topK int, threshold float64,
) ([]result.Hit, error) {
	return m.searchFn(ctx, text, topK, threshold)
}

func (m *mockSearchUC) SearchByField(
	ctx context.Context, text string, topK int, threshold float64, field, value string,
) ([]result.Hit, error) {
	return m.byFieldFn(ctx, text, topK, threshold, field, value)
}

// --- embedder mocks ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

type mockBatchEmbedder struct {
	mockEmbedder
	batchFn func(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

func (m *mockBatchEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	return m.batchFn(ctx, texts)
}

// --- helpers ---

func testClient(docSvc documentUseCase, searchSvc searchUseCase) *Client {
	return &Client{
		docSvc:    docSvc,
		searchSvc: searchSvc,
	}
}
