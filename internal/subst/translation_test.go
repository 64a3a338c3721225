package subst

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStandardCodeTranslate(t *testing.T) {
	sc := StandardCode{}
	require.Equal(t, byte('M'), sc.Translate('A', 'T', 'G'))
	require.Equal(t, byte('M'), sc.Translate('a', 't', 'g'))
	require.Equal(t, byte('*'), sc.Translate('T', 'A', 'A'))
	require.Equal(t, UnknownAminoAcid, sc.Translate('A', 'T', 'N'))
}

func TestStandardCodeIsStopCodon(t *testing.T) {
	sc := StandardCode{}
	require.True(t, sc.IsStopCodon('T', 'A', 'G'))
	require.False(t, sc.IsStopCodon('A', 'T', 'G'))
}

func TestStandardCodeCodonsForRoundTrip(t *testing.T) {
	sc := StandardCode{}
	for _, codon := range sc.CodonsFor('M') {
		require.Equal(t, byte('M'), sc.Translate(codon[0], codon[1], codon[2]))
	}
	require.NotEmpty(t, sc.CodonsFor('L'))
}
