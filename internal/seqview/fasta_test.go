package seqview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFASTABasic(t *testing.T) {
	input := ">seq1 first record\nACGT\nACGT\n>seq2\nGATC\n"
	seqs, err := ParseFASTA(strings.NewReader(input), DNA, nil)
	require.NoError(t, err)
	require.Len(t, seqs, 2)
	require.Equal(t, "seq1", seqs[0].ID())
	require.Equal(t, "first record", seqs[0].Description())
	require.Equal(t, 8, seqs[0].Length())
	require.Equal(t, "seq2", seqs[1].ID())
}

func TestParseFASTAWithAnnotations(t *testing.T) {
	input := ">g1\nACGTACGTACGT\n"
	anns, err := ParseAnnotations(strings.NewReader("g1\t-\t2\t6\n"))
	require.NoError(t, err)

	seqs, err := ParseFASTA(strings.NewReader(input), DNA, anns)
	require.NoError(t, err)
	require.Len(t, seqs, 1)
	require.Equal(t, RevComp, seqs[0].Strand())
	require.True(t, seqs[0].Annotation().HasCDS())
	require.EqualValues(t, 2, *seqs[0].Annotation().CDSStart)
	require.EqualValues(t, 6, *seqs[0].Annotation().CDSLength)
}

func TestParseAnnotationsBareStrandLeavesCDSAbsent(t *testing.T) {
	anns, err := ParseAnnotations(strings.NewReader("g1\t+\n"))
	require.NoError(t, err)
	require.False(t, anns["g1"].HasCDS())
	require.Nil(t, anns["g1"].CDSStart)
}

func TestParseAnnotationsRejectsPartialCDS(t *testing.T) {
	_, err := ParseAnnotations(strings.NewReader("g1\t+\t5\n"))
	require.Error(t, err)
}

func TestParseFASTAEmptyInputErrors(t *testing.T) {
	_, err := ParseFASTA(strings.NewReader(""), DNA, nil)
	require.Error(t, err)
}
