// Package determinize implements the Determinizer (C7): three strategies
// for converting a system NFA into a DFA — standard subset construction,
// purely heuristic state-merging, and a bounded hybrid of the two.
//
// Grounded on NFA.py::standard_determinize_core, ::heuristic_determinize,
// and ::hybrid_determinize in original_source/PRINS.
package determinize

import (
	"time"

	"github.com/dekarrin/prins/internal/automaton"
	"github.com/dekarrin/prins/internal/naturalsort"
)

// NoLimit represents hybrid-k's k = ∞ case (spec §8 property 7: "Hybrid-k
// with k = ∞ coincides with heuristic"). Go has no integer infinity, so
// this sentinel stands in for it. k == 0 is the literal "delegate to
// standard" case (spec §4.7), so NoLimit is a distinct, very large
// sentinel instead of zero or a negative number.
const NoLimit = 1<<31 - 1

// Standard performs subset construction bounded by timeout, then
// canonicalizes state names (spec §4.7 "Standard"). A timeout of zero
// means no wall-clock limit.
func Standard(n *automaton.NFA, timeout time.Duration) (*automaton.DFA, error) {
	d, err := n.StandardDeterminize(timeout)
	if err != nil {
		return nil, err
	}
	d.ShortenStates(true)
	return d, nil
}

// Heuristic repeatedly merges any non-deterministic transition image until
// the automaton is deterministic, then converts it to a DFA (spec §4.7
// "Heuristic"). The accepted language is a superset of n's (equal when n is
// already deterministic) and the loop always terminates because |Q|
// strictly decreases each step.
func Heuristic(n *automaton.NFA) (*automaton.DFA, error) {
	working := n.Copy()

	for {
		nd, err := working.FindNonDeterministicState(nil)
		if err != nil {
			return nil, err
		}
		if nd == nil {
			break
		}
		if _, err := working.MergeStates(nd); err != nil {
			return nil, err
		}
	}

	return automaton.NFAToDFA(working)
}

// HybridK performs a bounded BFS merge pass (spec §4.7 "Hybrid-k") and then
// finalizes with Standard on the partially-determinized NFA. k == 0
// delegates directly to Standard; use determinize.NoLimit for the k = ∞
// case, which coincides with Heuristic (spec §8 property 7).
func HybridK(n *automaton.NFA, k int, stdTimeout time.Duration) (*automaton.DFA, error) {
	if k == 0 {
		return Standard(n, stdTimeout)
	}
	if k >= NoLimit {
		return Heuristic(n)
	}

	working := n.Copy()
	excluded := automaton.StateSet{}
	counters := map[automaton.State]int{}

	queue := []automaton.State{working.Start}
	visited := map[automaton.State]bool{working.Start: true}

	for len(queue) > 0 {
		q := queue[0]
		queue = queue[1:]

		if !working.Q.Has(q) {
			// q was merged away as part of some other state's image before
			// its own turn in the queue came up.
			continue
		}

		for _, symStr := range naturalSymbolOrder(working, q) {
			sym := symByString(working, q, symStr)
			full := working.Delta[q][sym]
			if full == nil || full.Empty() {
				continue
			}

			remaining := full.Difference(excluded)

			switch {
			case remaining.Len() > 1:
				maxCounter := 0
				for _, m := range remaining.Elements() {
					if c := counters[m]; c > maxCounter {
						maxCounter = c
					}
				}
				newCounter := maxCounter + 1

				qm, err := working.MergeStates(remaining)
				if err != nil {
					return nil, err
				}
				counters[qm] = newCounter
				if newCounter >= k {
					excluded.Add(qm)
				}

				// The new image at (q, sym) is whatever of the original
				// image was already excluded (untouched by this merge)
				// plus the freshly merged state.
				next := full.Difference(remaining)
				next.Add(qm)
				for _, s := range next.Elements() {
					if !visited[s] && working.Q.Has(s) {
						visited[s] = true
						queue = append(queue, s)
					}
				}
			case remaining.Len() == 1:
				only := remaining.Elements()[0]
				if !visited[only] {
					visited[only] = true
					queue = append(queue, only)
				}
			}
		}
	}

	return Standard(working, stdTimeout)
}

func naturalSymbolOrder(n *automaton.NFA, q automaton.State) []string {
	row := n.Delta[q]
	syms := make([]string, 0, len(row))
	for sym := range row {
		syms = append(syms, sym.String())
	}
	return naturalsort.Strings(syms)
}

func symByString(n *automaton.NFA, q automaton.State, s string) automaton.Symbol {
	for sym := range n.Delta[q] {
		if sym.String() == s {
			return sym
		}
	}
	return automaton.Symbol{}
}
