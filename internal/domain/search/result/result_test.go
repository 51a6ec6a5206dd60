package result

import (
	"encoding/json"
	"testing"

	"github.com/kailas-cloud/semdex/internal/domain/metadata"
)

func TestNewMatch(t *testing.T) {
	m := NewMatch("doc-1", 0.95, "hello", metadata.Map{"artist": metadata.String("X")})

	if m.ID() != "doc-1" {
		t.Errorf("ID() = %q", m.ID())
	}
	if m.Score() != 0.95 {
		t.Errorf("Score() = %f", m.Score())
	}
	if m.Content() != "hello" {
		t.Errorf("Content() = %q", m.Content())
	}
	if !m.Metadata()["artist"].Equal(metadata.String("X")) {
		t.Errorf("Metadata() = %v", m.Metadata())
	}
}

func TestProject_PreservesOrder(t *testing.T) {
	matches := []Match{
		NewMatch("a", 0.9, "first", metadata.Map{"n": metadata.Number(1)}),
		NewMatch("b", 0.7, "second", nil),
		NewMatch("c", 0.4, "third", metadata.Map{"n": metadata.Number(3)}),
	}

	hits := Project(matches)
	if len(hits) != 3 {
		t.Fatalf("len = %d, want 3", len(hits))
	}
	for i, want := range []string{"first", "second", "third"} {
		if hits[i].Content != want {
			t.Errorf("hits[%d].Content = %q, want %q", i, hits[i].Content, want)
		}
	}
	if hits[1].Metadata == nil {
		t.Error("nil metadata must project to an empty map")
	}
}

func TestProject_Empty(t *testing.T) {
	hits := Project(nil)
	if hits == nil {
		t.Fatal("Project(nil) must return an empty, non-nil slice")
	}

	data, err := json.Marshal(hits)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]" {
		t.Errorf("json = %s, want []", data)
	}
}

func TestHit_NoIdentifierInJSON(t *testing.T) {
	hits := Project([]Match{NewMatch("secret-id", 0.9, "la la la", metadata.Map{"artist": metadata.String("X")})})

	data, err := json.Marshal(hits[0])
	if err != nil {
		t.Fatal(err)
	}
	want := `{"content":"la la la","metadata":{"artist":"X"}}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}
