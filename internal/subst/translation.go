package subst

// StopSymbol denotes a translated stop codon.
const StopSymbol byte = '*'

// UnknownAminoAcid denotes a codon that cannot be translated (ambiguous
// bases, wrong length).
const UnknownAminoAcid byte = 'X'

// codonTable is the standard genetic code, DNA codon -> amino acid,
// adapted from the teacher's annotate.codonTable.
var codonTable = map[[3]byte]byte{
	{'T', 'T', 'T'}: 'F', {'T', 'T', 'C'}: 'F', {'T', 'T', 'A'}: 'L', {'T', 'T', 'G'}: 'L',
	{'T', 'C', 'T'}: 'S', {'T', 'C', 'C'}: 'S', {'T', 'C', 'A'}: 'S', {'T', 'C', 'G'}: 'S',
	{'T', 'A', 'T'}: 'Y', {'T', 'A', 'C'}: 'Y', {'T', 'A', 'A'}: '*', {'T', 'A', 'G'}: '*',
	{'T', 'G', 'T'}: 'C', {'T', 'G', 'C'}: 'C', {'T', 'G', 'A'}: '*', {'T', 'G', 'G'}: 'W',

	{'C', 'T', 'T'}: 'L', {'C', 'T', 'C'}: 'L', {'C', 'T', 'A'}: 'L', {'C', 'T', 'G'}: 'L',
	{'C', 'C', 'T'}: 'P', {'C', 'C', 'C'}: 'P', {'C', 'C', 'A'}: 'P', {'C', 'C', 'G'}: 'P',
	{'C', 'A', 'T'}: 'H', {'C', 'A', 'C'}: 'H', {'C', 'A', 'A'}: 'Q', {'C', 'A', 'G'}: 'Q',
	{'C', 'G', 'T'}: 'R', {'C', 'G', 'C'}: 'R', {'C', 'G', 'A'}: 'R', {'C', 'G', 'G'}: 'R',

	{'A', 'T', 'T'}: 'I', {'A', 'T', 'C'}: 'I', {'A', 'T', 'A'}: 'I', {'A', 'T', 'G'}: 'M',
	{'A', 'C', 'T'}: 'T', {'A', 'C', 'C'}: 'T', {'A', 'C', 'A'}: 'T', {'A', 'C', 'G'}: 'T',
	{'A', 'A', 'T'}: 'N', {'A', 'A', 'C'}: 'N', {'A', 'A', 'A'}: 'K', {'A', 'A', 'G'}: 'K',
	{'A', 'G', 'T'}: 'S', {'A', 'G', 'C'}: 'S', {'A', 'G', 'A'}: 'R', {'A', 'G', 'G'}: 'R',

	{'G', 'T', 'T'}: 'V', {'G', 'T', 'C'}: 'V', {'G', 'T', 'A'}: 'V', {'G', 'T', 'G'}: 'V',
	{'G', 'C', 'T'}: 'A', {'G', 'C', 'C'}: 'A', {'G', 'C', 'A'}: 'A', {'G', 'C', 'G'}: 'A',
	{'G', 'A', 'T'}: 'D', {'G', 'A', 'C'}: 'D', {'G', 'A', 'A'}: 'E', {'G', 'A', 'G'}: 'E',
	{'G', 'G', 'T'}: 'G', {'G', 'G', 'C'}: 'G', {'G', 'G', 'A'}: 'G', {'G', 'G', 'G'}: 'G',
}

// reverseTable maps an amino acid to every codon that translates to it,
// built once from codonTable. Used for display and residual masking of
// translated sequences (spec.md §3 "Translation table... with a reverse
// enumeration yielding all codons for a given amino acid").
var reverseTable = buildReverseTable()

func buildReverseTable() map[byte][][3]byte {
	rev := make(map[byte][][3]byte)
	for codon, aa := range codonTable {
		rev[aa] = append(rev[aa], codon)
	}
	return rev
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

// StandardCode translates (base,base,base) triples to amino acids via the
// standard genetic code. It implements seqview.Translator.
type StandardCode struct{}

// Translate returns the amino acid for codon (a,b,c), 'X' if any base is
// not a recognized A/C/G/T (case-insensitive).
func (StandardCode) Translate(a, b, c byte) byte {
	key := [3]byte{upper(a), upper(b), upper(c)}
	if aa, ok := codonTable[key]; ok {
		return aa
	}
	return UnknownAminoAcid
}

// IsStopCodon reports whether (a,b,c) translates to a stop codon.
func (StandardCode) IsStopCodon(a, b, c byte) bool {
	return (StandardCode{}).Translate(a, b, c) == StopSymbol
}

// CodonsFor returns every codon that translates to amino acid aa.
func (StandardCode) CodonsFor(aa byte) [][3]byte {
	return reverseTable[upper(aa)]
}
