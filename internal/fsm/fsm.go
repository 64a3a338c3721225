// Package fsm implements the generic multi-pattern automaton (spec.md
// §4.8) shared by the PCR simulator and the HSP seeding word index: a
// deterministic trie over byte words, compiled into an Aho-Corasick style
// failure-link automaton so that traversal is a single linear pass over
// the input regardless of the number of inserted patterns.
package fsm

// node is one trie/automaton node. T is the per-pattern payload type.
type node[T any] struct {
	children map[byte]*node[T]
	fail     *node[T]
	depth    int

	// own holds payloads for patterns that end exactly at this node.
	own []T
	// hasOwn tracks whether own has ever been merged into, to distinguish
	// "no pattern ends here" from "pattern payload is the zero value".
	hasOwn bool
	// borrowed holds the combined payloads from proper-suffix patterns,
	// computed at compile time (spec.md: "combine(a,b) -- combines payloads
	// along a suffix link").
	borrowed []T
}

// FSM is a deterministic multi-pattern automaton parameterized by payload
// merge/combine operations and per-instance input filters (spec.md §4.8).
type FSM[T any] struct {
	root    *node[T]
	merge   func(a, b T) T
	combine func(a, b T) T

	insertFilter   func(b byte) byte
	traverseFilter func(b byte) byte

	compiled bool
}

// New creates an FSM. merge combines two payloads inserted under the exact
// same key; combine combines a payload along a suffix link when one
// pattern's key is a proper suffix of another's prefix.
func New[T any](merge, combine func(a, b T) T) *FSM[T] {
	return &FSM[T]{
		root:           &node[T]{children: make(map[byte]*node[T])},
		merge:          merge,
		combine:        combine,
		insertFilter:   func(b byte) byte { return b },
		traverseFilter: func(b byte) byte { return b },
	}
}

// SetInsertFilter installs a per-symbol transform applied to inserted words
// before indexing (e.g. case folding, IUPAC collapsing).
func (f *FSM[T]) SetInsertFilter(filter func(b byte) byte) { f.insertFilter = filter }

// SetTraverseFilter installs a per-symbol transform applied to traversal
// input before indexing.
func (f *FSM[T]) SetTraverseFilter(filter func(b byte) byte) { f.traverseFilter = filter }

// Add inserts word (using its first `length` bytes) with the given
// payload. Two patterns inserted under the identical key have their
// payloads combined via merge.
func (f *FSM[T]) Add(word []byte, length int, payload T) {
	if f.compiled {
		panic("fsm: Add called after Compile")
	}
	n := f.root
	for i := 0; i < length; i++ {
		b := f.insertFilter(word[i])
		child, ok := n.children[b]
		if !ok {
			child = &node[T]{children: make(map[byte]*node[T]), depth: n.depth + 1}
			n.children[b] = child
		}
		n = child
	}
	if n.hasOwn {
		n.own[0] = f.merge(n.own[0], payload)
	} else {
		n.own = []T{payload}
		n.hasOwn = true
	}
}

// Compile computes failure links breadth-first and propagates combined
// payloads from each node's failure target, so a single traversal pass
// enumerates every match ending at each position (spec.md §4.8).
func (f *FSM[T]) Compile() {
	if f.compiled {
		return
	}
	f.root.fail = f.root

	type queued struct {
		n *node[T]
	}
	var queue []queued
	for _, child := range f.root.children {
		child.fail = f.root
		queue = append(queue, queued{child})
	}

	for len(queue) > 0 {
		cur := queue[0].n
		queue = queue[1:]

		for b, child := range cur.children {
			queue = append(queue, queued{child})

			failTarget := cur.fail
			for failTarget != f.root {
				if next, ok := failTarget.children[b]; ok {
					child.fail = next
					break
				}
				failTarget = failTarget.fail
			}
			if child.fail == nil {
				if next, ok := f.root.children[b]; ok && next != child {
					child.fail = next
				} else {
					child.fail = f.root
				}
			}
		}

		// Combine payloads reachable via this node's failure link: the
		// failure target's own+borrowed payloads all end at every position
		// this node ends at (it is a suffix of cur's key).
		if cur.fail != f.root {
			combined := allPayloads(cur.fail)
			if cur.hasOwn {
				for _, p := range combined {
					cur.own[0] = f.combine(cur.own[0], p)
				}
			} else {
				cur.borrowed = append(cur.borrowed, combined...)
			}
		}
	}

	f.compiled = true
}

func allPayloads[T any](n *node[T]) []T {
	var out []T
	if n.hasOwn {
		out = append(out, n.own...)
	}
	out = append(out, n.borrowed...)
	return out
}

// Traverse scans input symbol by symbol, invoking callback(position,
// payload) once for every payload reachable at the node active after
// consuming input[position] (i.e. at every position where an inserted
// pattern ends, per spec.md property 6).
func (f *FSM[T]) Traverse(input []byte, callback func(pos int, payload T)) {
	if !f.compiled {
		f.Compile()
	}
	cur := f.root
	for i, raw := range input {
		b := f.traverseFilter(raw)
		for cur != f.root {
			if next, ok := cur.children[b]; ok {
				cur = next
				goto matched
			}
			cur = cur.fail
		}
		if next, ok := f.root.children[b]; ok {
			cur = next
		}
	matched:
		for _, p := range allPayloads(cur) {
			callback(i, p)
		}
	}
}
