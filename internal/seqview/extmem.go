package seqview

import (
	"fmt"
	"sync"
)

// DefaultPageSize is the fixed page size for paged extmem sequences
// (spec.md §3: "page size fixed; pages demand-filled; pages immutable
// once filled").
const DefaultPageSize = 4096

// PageSource demand-fills one page of symbols for a sequence. Implementations
// must return exactly pageSize bytes, or fewer only for the final page of a
// sequence whose length is not a multiple of pageSize.
type PageSource interface {
	FetchPage(seqID string, pageNo int) ([]byte, error)
}

// page holds one immutable, demand-filled page plus a fill-guard.
type page struct {
	once sync.Once
	err  error
	data []byte
}

// ExtMemSequence is the paged, demand-filled Sequence view described in
// spec.md §3. Reference-counted shared ownership and the "shared-resource
// mutex protects...any lazy field on each shared object" rule (spec.md §5)
// are realized here: a mutex guards the page-slot lookup on every Get, and
// each page's fill runs once under its own sync.Once, outside that mutex.
type ExtMemSequence struct {
	id, desc string
	length   int
	strand   Strand
	alphabet *Alphabet
	ann      *Annotation

	source   PageSource
	pageSize int

	mu    sync.Mutex
	pages map[int]*page

	// empty allows a caller-supplied eviction policy (spec.md §5: "an
	// empty_func hook allows callers to implement LRU if desired").
	empty func(pageNo int)
}

// NewExtMemSequence wraps source as a lazily paged Sequence of the given
// length. pageSize <= 0 selects DefaultPageSize.
func NewExtMemSequence(id, desc string, length int, alphabet *Alphabet, strand Strand, ann *Annotation, source PageSource, pageSize int) *ExtMemSequence {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &ExtMemSequence{
		id: id, desc: desc, length: length, strand: strand,
		alphabet: alphabet, ann: ann, source: source, pageSize: pageSize,
		pages: make(map[int]*page),
	}
}

// SetEmptyFunc installs an eviction hook invoked whenever a page is filled,
// so callers may implement LRU (spec.md §5); the engine itself never evicts.
func (e *ExtMemSequence) SetEmptyFunc(f func(pageNo int)) { e.empty = f }

func (e *ExtMemSequence) ID() string             { return e.id }
func (e *ExtMemSequence) Description() string    { return e.desc }
func (e *ExtMemSequence) Length() int            { return e.length }
func (e *ExtMemSequence) Strand() Strand         { return e.strand }
func (e *ExtMemSequence) Alphabet() *Alphabet    { return e.alphabet }
func (e *ExtMemSequence) Annotation() *Annotation { return e.ann }

func (e *ExtMemSequence) Get(pos int) (byte, error) {
	if pos < 0 || pos >= e.length {
		return 0, fmt.Errorf("seqview: position %d out of range [0,%d)", pos, e.length)
	}
	pageNo := pos / e.pageSize
	offset := pos % e.pageSize

	e.mu.Lock()
	p, ok := e.pages[pageNo]
	if !ok {
		p = &page{}
		e.pages[pageNo] = p
	}
	e.mu.Unlock()

	p.once.Do(func() {
		data, err := e.source.FetchPage(e.id, pageNo)
		p.data, p.err = data, err
		if err == nil && e.empty != nil {
			e.empty(pageNo)
		}
	})
	if p.err != nil {
		return 0, p.err
	}
	if offset >= len(p.data) {
		return 0, fmt.Errorf("seqview: page %d short for offset %d", pageNo, offset)
	}
	return p.data[offset], nil
}
