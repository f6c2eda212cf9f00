package vector

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/hyperjump/shiken/internal/models"
)

type entry struct {
	id       string
	vector   []float32
	text     string
	metadata models.Metadata
}

// MemoryCollection is an in-memory Collection using brute-force cosine
// search, with binary persistence. Vectors are assumed L2-normalized, so
// cosine similarity reduces to an inner product.
type MemoryCollection struct {
	name       string
	location   string
	dimensions int
	entries    []entry
	mu         sync.RWMutex
}

// NewMemoryCollection creates a collection with the given name and embedding
// dimension. location is the persistence path reported in stats (may be empty
// for ephemeral collections).
func NewMemoryCollection(name string, dimensions int, location string) (*MemoryCollection, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	if name == "" {
		return nil, fmt.Errorf("collection name must not be empty")
	}
	return &MemoryCollection{
		name:       name,
		location:   location,
		dimensions: dimensions,
	}, nil
}

// Add appends entries. ids, vectors, texts, and metadatas must be parallel.
func (m *MemoryCollection) Add(ctx context.Context, ids []string, vectors [][]float32, texts []string, metadatas []models.Metadata) error {
	if len(ids) != len(vectors) || len(ids) != len(texts) || len(ids) != len(metadatas) {
		return fmt.Errorf("ids, vectors, texts, metadatas length mismatch")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, id := range ids {
		if len(vectors[i]) != m.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(vectors[i]), m.dimensions)
		}
		vec := make([]float32, m.dimensions)
		copy(vec, vectors[i])
		meta := make(models.Metadata, len(metadatas[i]))
		for k, v := range metadatas[i] {
			meta[k] = v
		}
		m.entries = append(m.entries, entry{id: id, vector: vec, text: texts[i], metadata: meta})
	}
	return nil
}

// Query returns up to topK entries ordered by ascending cosine distance.
func (m *MemoryCollection) Query(ctx context.Context, vector []float32, topK int) (*QueryResult, error) {
	if len(vector) != m.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(vector), m.dimensions)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := &QueryResult{}
	if topK <= 0 || len(m.entries) == 0 {
		return result, nil
	}

	type scored struct {
		idx      int
		distance float64
	}
	scores := make([]scored, len(m.entries))
	for i, e := range m.entries {
		var dot float64
		for j := 0; j < m.dimensions; j++ {
			dot += float64(vector[j] * e.vector[j])
		}
		scores[i] = scored{idx: i, distance: clampDistance(1 - dot)}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].distance < scores[j].distance })
	if topK > len(scores) {
		topK = len(scores)
	}
	for _, s := range scores[:topK] {
		e := m.entries[s.idx]
		result.IDs = append(result.IDs, e.id)
		result.Texts = append(result.Texts, e.text)
		result.Metadatas = append(result.Metadatas, e.metadata)
		result.Distances = append(result.Distances, s.distance)
	}
	return result, nil
}

// clampDistance keeps cosine distance inside [0, 2] against float drift.
func clampDistance(d float64) float64 {
	return math.Max(0, math.Min(2, d))
}

// Clear drops all entries, recreating the empty collection under the same name.
func (m *MemoryCollection) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}

// Count returns the number of stored entries.
func (m *MemoryCollection) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// AllMetadata returns a copy of every entry's metadata in insertion order.
func (m *MemoryCollection) AllMetadata() []models.Metadata {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Metadata, len(m.entries))
	for i, e := range m.entries {
		meta := make(models.Metadata, len(e.metadata))
		for k, v := range e.metadata {
			meta[k] = v
		}
		out[i] = meta
	}
	return out
}

// Name returns the collection name.
func (m *MemoryCollection) Name() string { return m.name }

// Location returns the persistence path.
func (m *MemoryCollection) Location() string { return m.location }

// Save persists the collection to path. Directory is created if needed.
// Format: dimensions (4), n (4), then per entry: id, text, metadata JSON
// (each length-prefixed), then dimensions*4 vector bytes.
func (m *MemoryCollection) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create collection dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create collection file: %w", err)
	}
	defer f.Close()

	if err := binary.Write(f, binary.LittleEndian, uint32(m.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(m.entries))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for _, e := range m.entries {
		metaJSON, err := json.Marshal(e.metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		for _, field := range [][]byte{[]byte(e.id), []byte(e.text), metaJSON} {
			if err := binary.Write(f, binary.LittleEndian, uint32(len(field))); err != nil {
				return fmt.Errorf("write field length: %w", err)
			}
			if _, err := f.Write(field); err != nil {
				return fmt.Errorf("write field: %w", err)
			}
		}
		if _, err := f.Write(float32SliceToBytes(e.vector)); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

// Load reads the collection from path, replacing in-memory contents.
// Dimensions must match. A missing file is not an error; the collection is
// left unchanged.
func (m *MemoryCollection) Load(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open collection file: %w", err)
	}
	defer f.Close()

	var dim, n uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return fmt.Errorf("read dimensions: %w", err)
	}
	if int(dim) != m.dimensions {
		return fmt.Errorf("dimension mismatch: file has %d, collection expects %d", dim, m.dimensions)
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return fmt.Errorf("read count: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make([]entry, 0, n)
	vecBuf := make([]byte, m.dimensions*4)
	for i := uint32(0); i < n; i++ {
		fields := make([][]byte, 3)
		for j := range fields {
			var length uint32
			if err := binary.Read(f, binary.LittleEndian, &length); err != nil {
				return fmt.Errorf("read field length: %w", err)
			}
			buf := make([]byte, length)
			if _, err := io.ReadFull(f, buf); err != nil {
				return fmt.Errorf("read field: %w", err)
			}
			fields[j] = buf
		}
		if _, err := io.ReadFull(f, vecBuf); err != nil {
			return fmt.Errorf("read vector: %w", err)
		}
		var meta models.Metadata
		if err := json.Unmarshal(fields[2], &meta); err != nil {
			return fmt.Errorf("unmarshal metadata: %w", err)
		}
		m.entries = append(m.entries, entry{
			id:       string(fields[0]),
			text:     string(fields[1]),
			metadata: meta,
			vector:   bytesToFloat32Slice(vecBuf),
		})
	}
	return nil
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}

// Close is a no-op for MemoryCollection.
func (m *MemoryCollection) Close() error {
	return nil
}
