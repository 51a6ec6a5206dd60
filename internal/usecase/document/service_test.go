package document

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/semdex/internal/domain"
	domdoc "github.com/kailas-cloud/semdex/internal/domain/document"
	"github.com/kailas-cloud/semdex/internal/domain/metadata"
)

// --- Mocks ---

type mockDocRepo struct {
	addCalls    int
	added       []domdoc.Document
	addErr      error
	deleteCalls int
	deletedIDs  []string
	outcome     domain.DeleteOutcome
	deleteErr   error
}

func (m *mockDocRepo) Add(_ context.Context, docs []domdoc.Document) error {
	m.addCalls++
	m.added = docs
	return m.addErr
}

func (m *mockDocRepo) Delete(_ context.Context, ids []string) (domain.DeleteOutcome, error) {
	m.deleteCalls++
	m.deletedIDs = ids
	return m.outcome, m.deleteErr
}

type mockCounter struct {
	counts map[string]int
}

func (m *mockCounter) Inc(label string) {
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	m.counts[label]++
}

func strPtr(s string) *string { return &s }

func newTestService(t *testing.T, maxTokens int) (*Service, *mockDocRepo) {
	t.Helper()
	adm, err := domdoc.NewAdmission(maxTokens)
	if err != nil {
		t.Fatalf("NewAdmission: %v", err)
	}
	repo := &mockDocRepo{}
	return New(repo, adm), repo
}

// --- Add tests ---

func TestAdd_FiltersMalformed(t *testing.T) {
	svc, repo := newTestService(t, domdoc.DefaultMaxTokens)

	subs := []*domdoc.Submission{
		{Content: strPtr("la la la"), Metadata: metadata.Map{"artist": metadata.String("X")}},
		{Content: strPtr(""), Metadata: metadata.Map{}},
		{Content: nil},
	}

	got, err := svc.Add(context.Background(), subs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 accepted, got %d", len(got))
	}
	if got[0].Content() != "la la la" {
		t.Fatalf("unexpected content: %q", got[0].Content())
	}
	if v, _ := got[0].Metadata()["artist"].AsString(); v != "X" {
		t.Fatalf("unexpected metadata: %v", got[0].Metadata())
	}
	if repo.addCalls != 1 || len(repo.added) != 1 || repo.added[0].ID() != got[0].ID() {
		t.Fatalf("expected one store call with the accepted doc, got %d calls %v", repo.addCalls, repo.added)
	}
}

func TestAdd_PreservesOrderInOneBatch(t *testing.T) {
	svc, repo := newTestService(t, domdoc.DefaultMaxTokens)

	subs := []*domdoc.Submission{
		{Content: strPtr("first")},
		nil,
		{Content: strPtr("   ")},
		{Content: strPtr("second")},
		{Content: strPtr("\tthird\n")},
	}

	got, err := svc.Add(context.Background(), subs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"first", "second", "\tthird\n"}
	if len(got) != len(want) {
		t.Fatalf("expected %d accepted, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Content() != w {
			t.Errorf("accepted[%d] = %q, want %q", i, got[i].Content(), w)
		}
	}
	if repo.addCalls != 1 || len(repo.added) != 3 {
		t.Fatalf("expected a single batch of 3, got %d calls of %d", repo.addCalls, len(repo.added))
	}
}

func TestAdd_EmptyInputSkipsStore(t *testing.T) {
	for _, subs := range [][]*domdoc.Submission{nil, {}} {
		svc, repo := newTestService(t, domdoc.DefaultMaxTokens)

		got, err := svc.Add(context.Background(), subs)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Fatalf("expected empty non-nil result, got %v", got)
		}
		if repo.addCalls != 0 {
			t.Fatal("store must not be called for empty input")
		}
	}
}

func TestAdd_AllRejectedSkipsStore(t *testing.T) {
	svc, repo := newTestService(t, domdoc.DefaultMaxTokens)

	got, err := svc.Add(context.Background(), []*domdoc.Submission{
		nil, {Content: nil}, {Content: strPtr(" \n ")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected nothing accepted, got %d", len(got))
	}
	if repo.addCalls != 0 {
		t.Fatal("store must not be called when every submission is rejected")
	}
}

func TestAdd_WordCeiling(t *testing.T) {
	// 10 tokens -> ceiling of 8 words
	svc, repo := newTestService(t, 10)

	atCeiling := strings.TrimSpace(strings.Repeat("w ", 8))
	overCeiling := strings.TrimSpace(strings.Repeat("w ", 9))

	got, err := svc.Add(context.Background(), []*domdoc.Submission{
		{Content: strPtr(overCeiling)},
		{Content: strPtr(atCeiling)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Content() != atCeiling {
		t.Fatalf("expected only the document at the ceiling, got %v", got)
	}
	if len(repo.added) != 1 {
		t.Fatalf("expected 1 stored, got %d", len(repo.added))
	}
}

func TestAdd_AcceptedSatisfyAdmission(t *testing.T) {
	svc, _ := newTestService(t, 10)
	adm, _ := domdoc.NewAdmission(10)

	subs := []*domdoc.Submission{
		{Content: strPtr("a b c")},
		{Content: strPtr("")},
		{Content: strPtr("a b c d e f g h i j k")},
		{Content: strPtr("  spaced   out  ")},
	}
	got, err := svc.Add(context.Background(), subs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) > len(subs) {
		t.Fatalf("accepted more than submitted")
	}
	for _, d := range got {
		if strings.TrimSpace(d.Content()) == "" || domdoc.WordCount(d.Content()) > adm.MaxWords() {
			t.Errorf("accepted document violates admission: %q", d.Content())
		}
	}
}

func TestAdd_StoreErrorPropagates(t *testing.T) {
	svc, repo := newTestService(t, domdoc.DefaultMaxTokens)
	repo.addErr = domain.ErrStoreUnavailable

	got, err := svc.Add(context.Background(), []*domdoc.Submission{{Content: strPtr("x")}})
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected no documents on failure, got %v", got)
	}
}

func TestAdd_CountsOutcomes(t *testing.T) {
	svc, _ := newTestService(t, 10)
	ingested := &mockCounter{}
	svc.WithCounters(ingested, nil)

	_, err := svc.Add(context.Background(), []*domdoc.Submission{
		{Content: strPtr("ok")},
		{Content: nil},
		{Content: strPtr(" ")},
		{Content: strPtr(strings.Repeat("w ", 9))},
		{Content: strPtr("also ok")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]int{
		"accepted":                    2,
		string(domdoc.MissingContent): 1,
		string(domdoc.BlankContent):   1,
		string(domdoc.TooLong):        1,
	}
	for k, v := range want {
		if ingested.counts[k] != v {
			t.Errorf("count[%s] = %d, want %d", k, ingested.counts[k], v)
		}
	}
}

// --- Delete tests ---

func TestDelete_EmptyIsNoop(t *testing.T) {
	for _, ids := range [][]string{nil, {}} {
		svc, repo := newTestService(t, domdoc.DefaultMaxTokens)

		got, err := svc.Delete(context.Background(), ids)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Fatalf("expected empty non-nil list, got %v", got)
		}
		if repo.deleteCalls != 0 {
			t.Fatal("store must not be called for empty ids")
		}
	}
}

func TestDelete_Outcomes(t *testing.T) {
	ids := []string{"c", "a", "b"}

	tests := []struct {
		name    string
		outcome domain.DeleteOutcome
		want    []string
	}{
		{"succeeded echoes ids", domain.DeleteSucceeded, ids},
		{"failed returns empty", domain.DeleteFailed, []string{}},
		{"unknown returns empty", domain.DeleteUnknown, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService(t, domdoc.DefaultMaxTokens)
			repo.outcome = tt.outcome
			deleted := &mockCounter{}
			svc.WithCounters(nil, deleted)

			got, err := svc.Delete(context.Background(), ids)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") || got == nil {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			if repo.deleteCalls != 1 || strings.Join(repo.deletedIDs, ",") != "c,a,b" {
				t.Fatalf("expected one batched delete, got %d calls %v", repo.deleteCalls, repo.deletedIDs)
			}
			if deleted.counts[tt.outcome.String()] != 1 {
				t.Fatalf("expected outcome %s counted, got %v", tt.outcome, deleted.counts)
			}
		})
	}
}

func TestDelete_StoreErrorPropagates(t *testing.T) {
	svc, repo := newTestService(t, domdoc.DefaultMaxTokens)
	repo.deleteErr = domain.ErrStoreRejected

	_, err := svc.Delete(context.Background(), []string{"a"})
	if !errors.Is(err, domain.ErrStoreRejected) {
		t.Fatalf("expected ErrStoreRejected, got %v", err)
	}
}
