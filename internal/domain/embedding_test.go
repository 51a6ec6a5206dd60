package domain

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type stubEmbedder struct {
	result EmbeddingResult
	err    error
	got    []string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	s.got = append(s.got, text)
	return s.result, s.err
}

type stubBatchEmbedder struct {
	stubEmbedder
	batchResult BatchEmbeddingResult
	batchErr    error
	batchTexts  []string
}

func (s *stubBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (BatchEmbeddingResult, error) {
	s.batchTexts = texts
	return s.batchResult, s.batchErr
}

func TestEmbedAll_OneCallPerTextWithoutBatch(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{
		Embedding:    []float32{0.1, 0.2},
		PromptTokens: 5,
		TotalTokens:  5,
	}}
	res, err := EmbedAll(context.Background(), inner, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 3 || len(inner.got) != 3 {
		t.Fatalf("expected 3 embeddings from 3 calls, got %d from %v", len(res.Embeddings), inner.got)
	}
	if res.TotalTokens != 15 || res.PromptTokens != 15 {
		t.Errorf("tokens = %d/%d, want 15/15", res.PromptTokens, res.TotalTokens)
	}
}

func TestEmbedAll_SingleError(t *testing.T) {
	innerErr := errors.New("fail")
	inner := &stubEmbedder{err: innerErr}
	_, err := EmbedAll(context.Background(), inner, []string{"a"})
	if !errors.Is(err, innerErr) {
		t.Errorf("expected wrapped inner error, got %v", err)
	}
}

func TestBatchEmbeddingResult_Append(t *testing.T) {
	var r BatchEmbeddingResult
	r.Append(BatchEmbeddingResult{Embeddings: [][]float32{{1}}, PromptTokens: 1, TotalTokens: 2})
	r.Append(BatchEmbeddingResult{Embeddings: [][]float32{{2}, {3}}, PromptTokens: 3, TotalTokens: 4})

	if len(r.Embeddings) != 3 || r.Embeddings[2][0] != 3 {
		t.Errorf("unexpected embeddings %v", r.Embeddings)
	}
	if r.PromptTokens != 4 || r.TotalTokens != 6 {
		t.Errorf("tokens = %d/%d, want 4/6", r.PromptTokens, r.TotalTokens)
	}
}

func TestEmbedAll_UsesNativeBatch(t *testing.T) {
	inner := &stubBatchEmbedder{batchResult: BatchEmbeddingResult{
		Embeddings:  [][]float32{{0.1}, {0.2}},
		TotalTokens: 7,
	}}

	res, err := EmbedAll(context.Background(), inner, []string{"la la", "na na"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inner.got) != 0 {
		t.Errorf("single Embed must not be called, got %v", inner.got)
	}
	if len(inner.batchTexts) != 2 || res.TotalTokens != 7 {
		t.Errorf("unexpected batch call: texts=%v tokens=%d", inner.batchTexts, res.TotalTokens)
	}
}

func TestEmbedAll_CountMismatch(t *testing.T) {
	inner := &stubBatchEmbedder{batchResult: BatchEmbeddingResult{Embeddings: [][]float32{{0.1}}}}

	_, err := EmbedAll(context.Background(), inner, []string{"a", "b"})
	if !errors.Is(err, ErrEmbeddingProviderError) {
		t.Errorf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestEmbedAll_FallbackToSingle(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{0.5}, TotalTokens: 3}}

	res, err := EmbedAll(context.Background(), inner, []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalTokens != 6 {
		t.Errorf("expected TotalTokens=6, got %d", res.TotalTokens)
	}
}

func TestEmbeddingUsage_NilSafe(t *testing.T) {
	var u *EmbeddingUsage
	u.AddTokens(10)
	if u.Used() {
		t.Error("nil usage must report unused")
	}

	ctx, usage := NewContextWithUsage(context.Background())
	UsageFromContext(ctx).AddTokens(0)
	UsageFromContext(ctx).AddTokens(12)
	if !usage.Used() || usage.Tokens() != 12 || usage.Calls() != 2 {
		t.Errorf("usage = %d tokens over %d calls", usage.Tokens(), usage.Calls())
	}
}

func TestEmbeddingUsage_Concurrent(t *testing.T) {
	_, usage := NewContextWithUsage(context.Background())

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			usage.AddTokens(2)
		}()
	}
	wg.Wait()

	if usage.Tokens() != 100 || usage.Calls() != 50 {
		t.Errorf("usage = %d tokens over %d calls, want 100 over 50", usage.Tokens(), usage.Calls())
	}
}

func TestDeleteOutcome(t *testing.T) {
	if DeleteOutcome(0) != DeleteUnknown {
		t.Error("zero outcome must be unknown")
	}
	if !DeleteSucceeded.Confirmed() || DeleteFailed.Confirmed() || DeleteUnknown.Confirmed() {
		t.Error("only succeeded is confirmed")
	}
}
