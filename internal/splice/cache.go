package splice

import "sync"

// PredictionPageSize is the fixed page width for lazily-computed
// prediction vectors, mirroring internal/seqview.DefaultPageSize (spec.md
// §3: "computable page-lazily through the same paged-cache abstraction as
// sequences").
const PredictionPageSize = 4096

// PredictionStore demand-fills one page of scores for a (predictor,
// sequence) pair. internal/splice/cache_duckdb.go provides a DuckDB-backed
// implementation; an in-process implementation can simply slice a
// precomputed vector.
type PredictionStore interface {
	FetchPage(seqID string, matrixKind Kind, pageNo int, compute func() []int) ([]int, error)
}

// memStore is the default in-process PredictionStore: every page lives in
// a map for the lifetime of the process, filled on first access.
type memStore struct {
	mu    sync.Mutex
	pages map[string][]int
}

// NewMemPredictionStore returns a PredictionStore backed by an in-memory
// map, adequate when predictions need not outlive one process.
func NewMemPredictionStore() PredictionStore {
	return &memStore{pages: make(map[string][]int)}
}

func (s *memStore) FetchPage(seqID string, kind Kind, pageNo int, compute func() []int) ([]int, error) {
	key := pageKey(seqID, kind, pageNo)
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pages[key]; ok {
		return p, nil
	}
	p := compute()
	s.pages[key] = p
	return p, nil
}

func pageKey(seqID string, kind Kind, pageNo int) string {
	return seqID + "/" + kind.String() + "/" + itoa(pageNo)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Predictions is the paged-lazy integer prediction vector of spec.md §3:
// "a prediction of length N over a sequence is an integer vector,
// computable page-lazily through the same paged-cache abstraction as
// sequences". NewPredictions materializes nothing eagerly; At demand-fills
// the page containing the requested position through store.
type Predictions struct {
	seqID  string
	seq    []byte
	matrix *Matrix
	store  PredictionStore

	mu     sync.Mutex
	loaded map[int]bool
	cache  map[int]int
}

// NewPredictions returns a lazily-computed prediction vector over seq
// under matrix, backed by store (use NewMemPredictionStore for an
// in-process cache, or a DuckDBPredictionStore for a durable one).
func NewPredictions(seqID string, seq []byte, matrix *Matrix, store PredictionStore) *Predictions {
	return &Predictions{
		seqID: seqID, seq: seq, matrix: matrix, store: store,
		loaded: make(map[int]bool), cache: make(map[int]int),
	}
}

// At returns the splice score at pos, computing (and caching, page-wise)
// the surrounding page on first access.
func (p *Predictions) At(pos int) (int, error) {
	pageNo := pos / PredictionPageSize
	p.mu.Lock()
	if p.loaded[pageNo] {
		v := p.cache[pos]
		p.mu.Unlock()
		return v, nil
	}
	p.mu.Unlock()

	page, err := p.store.FetchPage(p.seqID, p.matrix.Kind, pageNo, func() []int {
		start := pageNo * PredictionPageSize
		end := start + PredictionPageSize
		if end > len(p.seq) {
			end = len(p.seq)
		}
		out := make([]int, 0, end-start)
		for i := start; i < end; i++ {
			out = append(out, p.matrix.Score(p.seq, i))
		}
		return out
	})
	if err != nil {
		return 0, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	start := pageNo * PredictionPageSize
	for i, v := range page {
		p.cache[start+i] = v
	}
	p.loaded[pageNo] = true
	return p.cache[pos], nil
}
