package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sliceMerge(a, b []string) []string { return append(append([]string{}, a...), b...) }

func newStringFSM() *FSM[[]string] {
	return New[[]string](sliceMerge, sliceMerge)
}

func TestFSMSinglePatternEndsAtEveryOccurrence(t *testing.T) {
	f := newStringFSM()
	f.Add([]byte("she"), 3, []string{"she"})
	f.Compile()

	var hits []int
	f.Traverse([]byte("ushers"), func(pos int, payload []string) {
		for range payload {
			hits = append(hits, pos)
		}
	})
	require.Equal(t, []int{3}, hits) // "she" ends at index 3 in "ushers"
}

func TestFSMMultiplePatternsAllFire(t *testing.T) {
	f := newStringFSM()
	f.Add([]byte("he"), 2, []string{"he"})
	f.Add([]byte("she"), 3, []string{"she"})
	f.Add([]byte("his"), 3, []string{"his"})
	f.Add([]byte("hers"), 4, []string{"hers"})
	f.Compile()

	got := map[int][]string{}
	f.Traverse([]byte("ushers"), func(pos int, payload []string) {
		got[pos] = append(got[pos], payload...)
	})

	// "she" ends at 3, "he" ends at 3 (suffix of "she"), "hers" ends at 5.
	require.ElementsMatch(t, []string{"she", "he"}, got[3])
	require.ElementsMatch(t, []string{"hers"}, got[5])
}

func TestFSMSuffixBorrowDoesNotDropEitherPattern(t *testing.T) {
	// "CGG" is a proper suffix of "ACGG" -- exercise the scenario from
	// spec.md §8 E: a short primer seed that is a suffix of another
	// inserted pattern must still fire independently, at the same ending
	// position, without the longer pattern's sensor displacing it.
	f := newStringFSM()
	f.Add([]byte("ACGG"), 4, []string{"exp1"})
	f.Add([]byte("CGG"), 3, []string{"exp2"})
	f.Compile()

	got := map[int][]string{}
	f.Traverse([]byte("NNACGGNN"), func(pos int, payload []string) {
		got[pos] = append(got[pos], payload...)
	})

	require.Contains(t, got[5], "exp1")
	require.Contains(t, got[5], "exp2")
}

func TestFSMMergesPayloadsOnExactKeyCollision(t *testing.T) {
	f := newStringFSM()
	f.Add([]byte("AT"), 2, []string{"p1"})
	f.Add([]byte("AT"), 2, []string{"p2"})
	f.Compile()

	var all []string
	f.Traverse([]byte("AT"), func(pos int, payload []string) {
		all = append(all, payload...)
	})
	require.ElementsMatch(t, []string{"p1", "p2"}, all)
}
