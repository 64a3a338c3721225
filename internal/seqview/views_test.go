package seqview

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type constTranslator struct{}

func (constTranslator) Translate(a, b, c byte) byte {
	if a == 'A' && b == 'T' && c == 'G' {
		return 'M'
	}
	return 'X'
}

func TestTranslateLength(t *testing.T) {
	s := mustSeq(t, "ATGATGATGA") // 10 bases
	v, err := Translate(s, 1, constTranslator{})
	require.NoError(t, err)
	require.Equal(t, 3, v.Length()) // (10-0)/3 = 3

	v2, err := Translate(s, 2, constTranslator{})
	require.NoError(t, err)
	require.Equal(t, 3, v2.Length()) // (10-1)/3 = 3

	v3, err := Translate(s, 3, constTranslator{})
	require.NoError(t, err)
	require.Equal(t, 2, v3.Length()) // (10-2)/3 = 2
}

func TestTranslateRejectsNonDNA(t *testing.T) {
	p, err := NewSequence("p", "", []byte("MKL"), NewAlphabet(Protein), Forward, nil)
	require.NoError(t, err)
	_, err = Translate(p, 1, constTranslator{})
	require.Error(t, err)
}

type mapPageSource struct {
	full     []byte
	pageSize int
}

func (m *mapPageSource) FetchPage(seqID string, pageNo int) ([]byte, error) {
	start := pageNo * m.pageSize
	end := start + m.pageSize
	if end > len(m.full) {
		end = len(m.full)
	}
	return m.full[start:end], nil
}

func TestExtMemSequenceDemandFill(t *testing.T) {
	src := &mapPageSource{full: []byte("ACGTACGT"), pageSize: 4}
	fetchCount := 0
	src2 := &countingPageSource{inner: src, count: &fetchCount}

	seq := NewExtMemSequence("chr1", "", 8, NewAlphabet(DNA), Forward, nil, src2, 4)
	for i := 0; i < 8; i++ {
		b, err := seq.Get(i)
		require.NoError(t, err)
		require.Equal(t, byte("ACGTACGT"[i]), b)
	}
	// 8 symbols over page size 4 = 2 pages; each page filled exactly once
	// regardless of how many Get calls touch it.
	require.Equal(t, 2, fetchCount)
}

type countingPageSource struct {
	inner PageSource
	count *int
}

func (c *countingPageSource) FetchPage(seqID string, pageNo int) ([]byte, error) {
	*c.count++
	return c.inner.FetchPage(seqID, pageNo)
}
