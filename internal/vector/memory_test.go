package vector

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/shiken/internal/models"
)

func newTestCollection(t *testing.T) *MemoryCollection {
	t.Helper()
	c, err := NewMemoryCollection("test_kb", 3, "")
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func addEntry(t *testing.T, c *MemoryCollection, id string, vec []float32, text, source string) {
	t.Helper()
	err := c.Add(context.Background(), []string{id}, [][]float32{vec}, []string{text},
		[]models.Metadata{{models.MetaSource: source, models.MetaType: "text"}})
	if err != nil {
		t.Fatal(err)
	}
}

func TestMemoryCollection_QueryOrderedByDistance(t *testing.T) {
	c := newTestCollection(t)
	addEntry(t, c, "a", []float32{1, 0, 0}, "exact", "a.txt")
	addEntry(t, c, "b", []float32{0, 1, 0}, "orthogonal", "b.txt")
	addEntry(t, c, "c", []float32{0.6, 0.8, 0}, "partial", "c.txt")

	res, err := c.Query(context.Background(), []float32{1, 0, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.IDs) != 3 {
		t.Fatalf("got %d results", len(res.IDs))
	}
	if res.IDs[0] != "a" || res.IDs[1] != "c" || res.IDs[2] != "b" {
		t.Errorf("order = %v, want [a c b]", res.IDs)
	}
	for i := 1; i < len(res.Distances); i++ {
		if res.Distances[i] < res.Distances[i-1] {
			t.Errorf("distances not ascending: %v", res.Distances)
		}
	}
	if res.Distances[0] > 1e-6 {
		t.Errorf("identical vector distance = %f, want ~0", res.Distances[0])
	}
	if res.Texts[0] != "exact" || res.Metadatas[0][models.MetaSource] != "a.txt" {
		t.Errorf("payload mismatch: %v %v", res.Texts, res.Metadatas)
	}
}

func TestMemoryCollection_QueryTopKClamp(t *testing.T) {
	c := newTestCollection(t)
	addEntry(t, c, "a", []float32{1, 0, 0}, "x", "a.txt")
	res, err := c.Query(context.Background(), []float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.IDs) != 1 {
		t.Errorf("got %d results, want 1", len(res.IDs))
	}
}

func TestMemoryCollection_QueryEmpty(t *testing.T) {
	c := newTestCollection(t)
	res, err := c.Query(context.Background(), []float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.IDs) != 0 {
		t.Errorf("empty collection should return no results, got %v", res.IDs)
	}
}

func TestMemoryCollection_DimensionMismatch(t *testing.T) {
	c := newTestCollection(t)
	err := c.Add(context.Background(), []string{"a"}, [][]float32{{1, 0}}, []string{"x"},
		[]models.Metadata{{}})
	if err == nil {
		t.Error("expected dimension mismatch error on Add")
	}
	if _, err := c.Query(context.Background(), []float32{1, 0}, 1); err == nil {
		t.Error("expected dimension mismatch error on Query")
	}
}

func TestMemoryCollection_ClearAndCount(t *testing.T) {
	c := newTestCollection(t)
	addEntry(t, c, "a", []float32{1, 0, 0}, "x", "a.txt")
	if c.Count() != 1 {
		t.Errorf("Count = %d, want 1", c.Count())
	}
	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	if c.Count() != 0 {
		t.Errorf("Count after Clear = %d, want 0", c.Count())
	}
	if c.Name() != "test_kb" {
		t.Errorf("name should survive Clear, got %s", c.Name())
	}
}

func TestMemoryCollection_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idx", "collection.bin")
	c := newTestCollection(t)
	addEntry(t, c, "doc_0_0", []float32{1, 0, 0}, "some chunk text", "guide.md")
	addEntry(t, c, "doc_1_0", []float32{0, 1, 0}, "other text", "page.html")
	if err := c.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := NewMemoryCollection("test_kb", 3, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := loaded.Load(path); err != nil {
		t.Fatal(err)
	}
	if loaded.Count() != 2 {
		t.Fatalf("loaded count = %d, want 2", loaded.Count())
	}
	res, err := loaded.Query(context.Background(), []float32{1, 0, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if res.IDs[0] != "doc_0_0" || res.Texts[0] != "some chunk text" {
		t.Errorf("loaded entry mismatch: %v %v", res.IDs, res.Texts)
	}
	if res.Metadatas[0][models.MetaSource] != "guide.md" {
		t.Errorf("loaded metadata mismatch: %v", res.Metadatas[0])
	}
}

func TestMemoryCollection_LoadMissingFileIsNotError(t *testing.T) {
	c := newTestCollection(t)
	if err := c.Load(filepath.Join(t.TempDir(), "absent.bin")); err != nil {
		t.Errorf("missing file should not error, got %v", err)
	}
}
