package similarity

import "math"

// Table is an immutable set of skill embeddings fetched before matching starts.
// Lookups never touch the network, which keeps scoring deterministic.
type Table struct {
	vectors  map[string][]float64
	fallback Func
}

// NewTable copies the vectors, normalizing each one to unit length. Zero vectors are
// dropped. Pairs with a missing vector are scored with fallback (Lexical when nil).
func NewTable(vectors map[string][]float32, fallback Func) *Table {
	if fallback == nil {
		fallback = Lexical
	}

	t := &Table{vectors: make(map[string][]float64, len(vectors)), fallback: fallback}
	for skill, vec := range vectors {
		if unit, ok := normalizeVector(vec); ok {
			t.vectors[skill] = unit
		}
	}
	return t
}

// Len is the number of usable vectors.
func (t *Table) Len() int {
	return len(t.vectors)
}

// Func exposes the table as a similarity strategy. Cosine similarity below zero is
// clamped to 0.
func (t *Table) Func() Func {
	return func(a, b string) float64 {
		if a == b {
			return 1
		}
		va, okA := t.vectors[a]
		vb, okB := t.vectors[b]
		if !okA || !okB || len(va) != len(vb) {
			return t.fallback(a, b)
		}

		var dot float64
		for i := range va {
			dot += va[i] * vb[i]
		}
		return Clamp(dot)
	}
}

func normalizeVector(vec []float32) ([]float64, bool) {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return nil, false
	}

	norm = math.Sqrt(norm)
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = float64(v) / norm
	}
	return out, true
}
