package automaton

import "fmt"

// NFAToDFA converts an already-structurally-deterministic NFA (every
// transition image is a singleton) into a DFA. It returns an error if any
// image has zero or more than one destination; callers typically call this
// right after a process (such as heuristic determinization) that is
// expected to have eliminated all non-determinism.
func NFAToDFA(n *NFA) (*DFA, error) {
	d := NewDFA()
	for sym := range n.Sigma {
		d.Sigma.Add(sym)
	}
	for _, s := range n.Q.Elements() {
		d.AddState(s, n.F.Has(s))
		d.SetLeaves(s, n.LeavesOf(s))
	}
	d.Start = n.Start

	for from, row := range n.Delta {
		for sym, to := range row {
			if to.Len() != 1 {
				return nil, fmt.Errorf("automaton: NFAToDFA: (%q, %v) has %d destinations, expected exactly 1", from, sym, to.Len())
			}
			d.AddTransition(from, sym, to.Elements()[0])
		}
	}

	return d, nil
}
