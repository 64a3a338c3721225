package c4

import "fmt"

// ClosedModel is the frozen, validated form of a Model, safe to share
// across concurrent Viterbi tasks (spec.md §4.1: "closing is a one-time
// structural validation; the result is immutable and reentrant").
type ClosedModel struct {
	*Model

	// silentOrder[s] gives the rank of state s in a topological order over
	// the subgraph of silent (zero-advance) transitions, so a DP sweep can
	// resolve every silent-only chain within one (q,t) cell in a single
	// pass (spec.md §4.2 "sweep order").
	silentOrder []int
}

// Close freezes m: it validates graph-structural invariants and computes
// the silent-transition topological order. The returned ClosedModel shares
// no further mutable state with m.
func (m *Model) Close() (*ClosedModel, error) {
	if m.closed {
		return nil, fmt.Errorf("c4 model %q: already closed", m.Name)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("c4 model %q: %w", m.Name, err)
	}
	order, err := m.topoSortSilent()
	if err != nil {
		return nil, fmt.Errorf("c4 model %q: %w", m.Name, err)
	}
	m.closed = true
	return &ClosedModel{Model: m, silentOrder: order}, nil
}

// SilentRank returns s's rank in the silent-transition topological order;
// a transition from state a to state b with DeltaQ==DeltaT==0 must satisfy
// SilentRank(a) < SilentRank(b) for the single-pass sweep to be valid.
func (cm *ClosedModel) SilentRank(s StateID) int { return cm.silentOrder[s] }

func (m *Model) validate() error {
	if err := m.checkReachability(); err != nil {
		return err
	}
	if err := m.checkDanglingReferences(); err != nil {
		return err
	}
	if err := m.checkDuplicateEdges(); err != nil {
		return err
	}
	return nil
}

// checkReachability verifies every state is reachable from START and can
// reach END; an unreachable state signals a malformed model (spec.md §4.1).
func (m *Model) checkReachability() error {
	reachFromStart := m.bfs(m.startID, func(t *Transition) (StateID, StateID) { return t.Input, t.Output })
	reachesEnd := m.bfs(m.endID, func(t *Transition) (StateID, StateID) { return t.Output, t.Input })

	for _, s := range m.states {
		if !reachFromStart[s.ID] {
			return fmt.Errorf("state %q is unreachable from START", s.Name)
		}
		if !reachesEnd[s.ID] {
			return fmt.Errorf("state %q cannot reach END", s.Name)
		}
	}
	return nil
}

func (m *Model) bfs(from StateID, edge func(*Transition) (StateID, StateID)) map[StateID]bool {
	seen := map[StateID]bool{from: true}
	queue := []StateID{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, tid := range m.states[cur].out {
			t := m.transitions[tid]
			a, b := edge(t)
			if a != cur {
				continue
			}
			if !seen[b] {
				seen[b] = true
				queue = append(queue, b)
			}
		}
		for _, tid := range m.states[cur].in {
			t := m.transitions[tid]
			a, b := edge(t)
			if a != cur {
				continue
			}
			if !seen[b] {
				seen[b] = true
				queue = append(queue, b)
			}
		}
	}
	return seen
}

func (m *Model) checkDanglingReferences() error {
	for _, s := range m.shadows {
		for _, src := range s.Sources {
			if int(src) >= len(m.states) {
				return fmt.Errorf("shadow %q references unknown source state %d", s.Name, src)
			}
		}
		for _, dst := range s.Destinations {
			if int(dst) >= len(m.transitions) {
				return fmt.Errorf("shadow %q references unknown destination transition %d", s.Name, dst)
			}
		}
	}
	for _, sp := range m.spans {
		if int(sp.State) >= len(m.states) {
			return fmt.Errorf("span references unknown state %d", sp.State)
		}
	}
	for _, t := range m.transitions {
		if t.HasCalc() && int(t.Calc) >= len(m.calcs) {
			return fmt.Errorf("transition %q references unknown calc %d", t.Name, t.Calc)
		}
	}
	return nil
}

// checkDuplicateEdges enforces "no two outgoing transitions from a state
// share both the same label and the same advances, unless distinguished by
// calc" (spec.md §4.1 invariant).
func (m *Model) checkDuplicateEdges() error {
	for _, s := range m.states {
		seen := map[[4]int]bool{}
		for _, tid := range s.out {
			t := m.transitions[tid]
			key := [4]int{int(t.Label), t.DeltaQ, t.DeltaT, int(t.Calc)}
			if seen[key] {
				return fmt.Errorf("state %q has duplicate outgoing transition (label=%s, Δq=%d, Δt=%d, calc=%d)",
					s.Name, t.Label, t.DeltaQ, t.DeltaT, t.Calc)
			}
			seen[key] = true
		}
	}
	return nil
}

// topoSortSilent computes a topological order over the subgraph restricted
// to silent (zero-advance) transitions. It reports an error if that
// subgraph contains a cycle, since a cyclic silent chain could loop forever
// within a single DP cell (spec.md §4.2).
func (m *Model) topoSortSilent() ([]int, error) {
	n := len(m.states)
	indeg := make([]int, n)
	adj := make([][]StateID, n)
	for _, t := range m.transitions {
		if !t.IsSilent() {
			continue
		}
		adj[t.Input] = append(adj[t.Input], t.Output)
		indeg[t.Output]++
	}

	order := make([]int, n)
	var queue []StateID
	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			queue = append(queue, StateID(i))
		}
	}
	rank := 0
	visited := 0
	for len(queue) > 0 {
		next := make([]StateID, 0)
		for _, s := range queue {
			order[s] = rank
			visited++
			for _, out := range adj[s] {
				indeg[out]--
				if indeg[out] == 0 {
					next = append(next, out)
				}
			}
		}
		rank++
		queue = next
	}
	if visited != n {
		return nil, fmt.Errorf("silent-transition subgraph contains a cycle")
	}
	return order, nil
}
