package seqview

import "fmt"

// subseqView exposes [start,start+length) of an input Sequence without
// copying symbols.
type subseqView struct {
	in           Sequence
	start, length int
}

// Subseq returns a lazy window [start, start+length) over s.
func Subseq(s Sequence, start, length int) (Sequence, error) {
	if start < 0 || length < 0 || start+length > s.Length() {
		return nil, fmt.Errorf("seqview: subseq [%d,%d) out of range for length %d", start, start+length, s.Length())
	}
	return &subseqView{in: s, start: start, length: length}, nil
}

func (v *subseqView) ID() string             { return v.in.ID() }
func (v *subseqView) Description() string    { return v.in.Description() }
func (v *subseqView) Length() int            { return v.length }
func (v *subseqView) Strand() Strand         { return v.in.Strand() }
func (v *subseqView) Alphabet() *Alphabet    { return v.in.Alphabet() }
func (v *subseqView) Annotation() *Annotation { return v.in.Annotation() }

func (v *subseqView) Get(pos int) (byte, error) {
	if pos < 0 || pos >= v.length {
		return 0, fmt.Errorf("seqview: position %d out of range [0,%d)", pos, v.length)
	}
	return v.in.Get(v.start + pos)
}

// revcompView reverses position order and complements DNA symbols.
// Protein sequences may still be "reversed" (used internally by stereo
// duplication bookkeeping) but complementation is a no-op outside DNA.
type revcompView struct {
	in Sequence
}

// RevComp returns the reverse-complement view of s. RevComp(RevComp(s)) is
// equal to s as a symbol stream (spec.md §3 invariant).
func RevComp(s Sequence) Sequence {
	if rc, ok := s.(*revcompView); ok {
		return rc.in
	}
	return &revcompView{in: s}
}

func (v *revcompView) ID() string          { return v.in.ID() }
func (v *revcompView) Description() string { return v.in.Description() }
func (v *revcompView) Length() int         { return v.in.Length() }
func (v *revcompView) Alphabet() *Alphabet { return v.in.Alphabet() }
func (v *revcompView) Annotation() *Annotation { return v.in.Annotation() }

func (v *revcompView) Strand() Strand {
	switch v.in.Strand() {
	case Forward:
		return RevComp
	case RevComp:
		return Forward
	default:
		return UnknownStrand
	}
}

func (v *revcompView) Get(pos int) (byte, error) {
	n := v.in.Length()
	if pos < 0 || pos >= n {
		return 0, fmt.Errorf("seqview: position %d out of range [0,%d)", pos, n)
	}
	b, err := v.in.Get(n - 1 - pos)
	if err != nil {
		return 0, err
	}
	if v.in.Alphabet().Kind() == DNA {
		return Complement(b), nil
	}
	return b, nil
}

// filterView applies a pure per-symbol Filter lazily at Get time.
type filterView struct {
	in Sequence
	f  Filter
}

// FilterSeq composes f over s. FilterSeq(FilterSeq(s, Unmask), Softmask)
// agrees position-wise with FilterSeq(s, Softmask) per spec.md §3 invariant 4.
func FilterSeq(s Sequence, f Filter) Sequence {
	return &filterView{in: s, f: f}
}

func (v *filterView) ID() string             { return v.in.ID() }
func (v *filterView) Description() string    { return v.in.Description() }
func (v *filterView) Length() int            { return v.in.Length() }
func (v *filterView) Strand() Strand         { return v.in.Strand() }
func (v *filterView) Alphabet() *Alphabet    { return v.in.Alphabet() }
func (v *filterView) Annotation() *Annotation { return v.in.Annotation() }

func (v *filterView) Get(pos int) (byte, error) {
	b, err := v.in.Get(pos)
	if err != nil {
		return 0, err
	}
	return v.f(b), nil
}

// translationView reads three input symbols per output position and maps
// them to an amino acid via a Translator, starting at reading Frame f.
type translationView struct {
	in         Sequence
	frame      int // 1, 2, or 3
	translator Translator
	alphabet   *Alphabet
}

// Translator maps a codon (three DNA bases) to an amino-acid symbol. See
// internal/subst for the standard-genetic-code implementation.
type Translator interface {
	Translate(a, b, c byte) byte
}

// Translate returns the lazy protein view of DNA sequence s read in frame
// (1, 2, or 3). Per spec.md §3, translate(s,f).length = (s.length-(f-1))/3.
func Translate(s Sequence, frame int, t Translator) (Sequence, error) {
	if frame < 1 || frame > 3 {
		return nil, fmt.Errorf("seqview: invalid reading frame %d", frame)
	}
	if s.Alphabet().Kind() != DNA {
		return nil, fmt.Errorf("seqview: translate requires a DNA sequence")
	}
	return &translationView{in: s, frame: frame, translator: t, alphabet: NewAlphabet(Protein)}, nil
}

func (v *translationView) ID() string          { return v.in.ID() }
func (v *translationView) Description() string { return v.in.Description() }
func (v *translationView) Strand() Strand      { return v.in.Strand() }
func (v *translationView) Alphabet() *Alphabet { return v.alphabet }
func (v *translationView) Annotation() *Annotation { return v.in.Annotation() }

func (v *translationView) Length() int {
	n := v.in.Length() - (v.frame - 1)
	if n < 0 {
		return 0
	}
	return n / 3
}

func (v *translationView) Get(pos int) (byte, error) {
	if pos < 0 || pos >= v.Length() {
		return 0, fmt.Errorf("seqview: position %d out of range [0,%d)", pos, v.Length())
	}
	base := v.frame - 1 + pos*3
	a, err := v.in.Get(base)
	if err != nil {
		return 0, err
	}
	b, err := v.in.Get(base + 1)
	if err != nil {
		return 0, err
	}
	c, err := v.in.Get(base + 2)
	if err != nil {
		return 0, err
	}
	return v.translator.Translate(a, b, c), nil
}
