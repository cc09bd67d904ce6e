package automaton

import (
	"time"

	"github.com/dekarrin/prins/internal/naturalsort"
	"github.com/dekarrin/prins/internal/perr"
)

// StandardDeterminize converts n to a DFA via classical subset construction
// (spec §4.7 "Standard"), bounded by a wall-clock timeout. Resulting DFA
// states are frozen subsets of n.Q, named by their naturally-sorted
// comma-joined member labels (tracked structurally via SetLeaves, never
// re-parsed from the name); callers that want the spec's final compact
// naming should follow with DFA.ShortenStates(true).
//
// This lives on NFA itself, not in internal/determinize, because the
// original source (automata/NFA.py) implements subset construction as a
// core NFA method; internal/determinize's "Standard" strategy and C3's
// determinism contract (spec §4.3) both call through to this.
func (n *NFA) StandardDeterminize(timeout time.Duration) (*DFA, error) {
	deadline := time.Now().Add(timeout)

	startSet := newStateSet(n.Start)
	startLabel := n.subsetLabel(startSet)

	d := NewDFA()
	d.AddState(startLabel, n.setIntersectsF(startSet))
	d.SetLeaves(startLabel, n.flattenSet(startSet))
	d.Start = startLabel

	type queued struct {
		label State
		set   StateSet
	}
	queue := []queued{{startLabel, startSet}}
	seen := map[State]bool{startLabel: true}

	for len(queue) > 0 {
		if timeout > 0 && time.Now().After(deadline) {
			return nil, perr.DeterminizationTimeoutf("standard determinization exceeded %s", timeout)
		}

		cur := queue[0]
		queue = queue[1:]

		symset := map[Symbol]bool{}
		for _, q := range cur.set.Elements() {
			for sym := range n.Delta[q] {
				symset[sym] = true
			}
		}
		syms := make([]string, 0, len(symset))
		bySym := make(map[string]Symbol, len(symset))
		for sym := range symset {
			syms = append(syms, sym.String())
			bySym[sym.String()] = sym
		}
		for _, s := range naturalsort.Strings(syms) {
			sym := bySym[s]

			dest := newStateSet()
			for _, q := range cur.set.Elements() {
				if to, ok := n.Delta[q][sym]; ok {
					dest.AddAll(to)
				}
			}
			if dest.Empty() {
				continue
			}

			destLabel := n.subsetLabel(dest)
			if !seen[destLabel] {
				seen[destLabel] = true
				d.AddState(destLabel, n.setIntersectsF(dest))
				d.SetLeaves(destLabel, n.flattenSet(dest))
				queue = append(queue, queued{destLabel, dest})
			}

			d.AddTransition(cur.label, sym, destLabel)
		}
	}

	return d, nil
}

func (n *NFA) setIntersectsF(s StateSet) bool {
	return s.Any(func(q State) bool { return n.F.Has(q) })
}

// flattenSet returns the flattened, naturally-sorted leaf membership of
// every state in s.
func (n *NFA) flattenSet(s StateSet) []State {
	var all []State
	for _, q := range s.Elements() {
		all = append(all, n.leavesOf(q)...)
	}
	return naturalsort_dedupStates(all)
}

// subsetLabel returns the canonical label for a frozen subset s, built from
// the flattened leaf membership of its members (never re-parsed from
// text).
func (n *NFA) subsetLabel(s StateSet) State {
	return leafLabel(n.flattenSet(s))
}
