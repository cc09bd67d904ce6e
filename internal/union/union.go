// Package union implements the Union builder (C6): combining per-execution
// NFAs into one system-level NFA by disjoint renaming plus an initial-state
// merge.
//
// Grounded on NFA.py::union_nfa_models in original_source/PRINS.
package union

import (
	"fmt"

	"github.com/dekarrin/prins/internal/automaton"
)

// Union combines the per-execution NFAs ms into one system NFA (spec
// §4.6): each m is renamed into a disjoint state-identifier range
// (accumulating padding by |Q|), alphabets/states/accepting-sets/
// transitions are unioned, and all initial states are merged into one via
// MergeStates. The result is finally compacted with RenameStates(0). The
// result may be non-deterministic by construction.
func Union(ms []*automaton.NFA) (*automaton.NFA, error) {
	if len(ms) == 0 {
		return nil, fmt.Errorf("union: at least one automaton is required")
	}

	combined := automaton.New()
	padding := 0
	starts := make([]automaton.State, 0, len(ms))

	for _, m := range ms {
		shifted := m.Copy()
		shifted.RenameStates(padding)
		padding += shifted.Q.Len()

		mergeInto(combined, shifted)
		starts = append(starts, shifted.Start)
	}

	newStart := starts[0]
	if len(starts) > 1 {
		set := automaton.StateSet{}
		for _, s := range starts {
			set.Add(s)
		}
		qm, err := combined.MergeStates(set)
		if err != nil {
			return nil, fmt.Errorf("union: merging initial states: %w", err)
		}
		newStart = qm
	}
	combined.Start = newStart

	combined.RenameStates(0)

	return combined, nil
}

// mergeInto copies every state, symbol, and transition of src into dst
// (dst must not already contain any of src's state identifiers, which
// RenameStates with accumulating padding guarantees).
func mergeInto(dst, src *automaton.NFA) {
	for sym := range src.Sigma {
		dst.Sigma.Add(sym)
	}
	for _, s := range src.Q.Elements() {
		dst.AddState(s, src.F.Has(s))
		dst.SetLeaves(s, src.LeavesOf(s))
	}
	for from, row := range src.Delta {
		for sym, to := range row {
			for _, t := range to.Elements() {
				dst.AddTransition(from, sym, t)
			}
		}
	}
}
