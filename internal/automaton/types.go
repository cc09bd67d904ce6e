// Package automaton implements the guarded finite-automaton model (C2):
// typed NFA/DFA representations and their primitive operations (acceptance,
// guarded transition, state renaming, state-set merging, append).
//
// Grounded on the generic DFA[E]/NFA[E] shape of
// internal/ictiobus/automaton/{dfa.go,nfa.go} in the teacher repo (Copy(),
// renumbering states, String() formatting) and internal/util/set.go's
// generic KeySet[E] for representing Q and F. Unlike the original Python
// source (spec §9 Design Notes), merged-state identifiers are never
// round-tripped through text: State is an opaque comparable label, and the
// naturally-sorted flattened membership of a composite (merged) state is
// tracked in a side table populated structurally at merge time.
package automaton

import (
	"fmt"
	"strings"

	"github.com/dekarrin/prins/internal/naturalsort"
	"github.com/dekarrin/prins/internal/util"
)

// State is an opaque, comparable state identifier. Composite identifiers
// produced by MergeStates are still plain State values; their flattened
// membership lives in the owning automaton's leaves table, not in the
// string itself, per spec §9.
type State string

// Symbol is an alphabet symbol: a (template id, guard) pair (spec §3).
// Guard is the raw opaque guard text; "" denotes an absent guard
// (semantically true). Two symbols with equal TID but different Guard are
// distinct, per spec.
type Symbol struct {
	TID   string
	Guard string
}

func (s Symbol) String() string {
	if s.Guard == "" {
		return s.TID
	}
	return fmt.Sprintf("%s[%s]", s.TID, s.Guard)
}

// leafLabel returns the canonical, naturally-sorted comma-joined label for
// a set of leaf state names. This is used only to name a newly merged
// state; it is never parsed back.
func leafLabel(leaves []State) State {
	ss := make([]string, len(leaves))
	for i, l := range leaves {
		ss[i] = string(l)
	}
	ss = naturalsort.Strings(dedupStrings(ss))
	return State(strings.Join(ss, ","))
}

func dedupStrings(ss []string) []string {
	seen := make(map[string]bool, len(ss))
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// StateSet is a set of states, aliased from the teacher's generic KeySet.
type StateSet = util.KeySet[State]

func newStateSet(states ...State) StateSet {
	s := util.NewKeySet[State]()
	for _, st := range states {
		s.Add(st)
	}
	return s
}

// sortedStates returns the elements of a StateSet in natural order.
func sortedStates(s StateSet) []State {
	els := s.Elements()
	ss := make([]string, len(els))
	for i, e := range els {
		ss[i] = string(e)
	}
	ss = naturalsort.Strings(ss)
	out := make([]State, len(ss))
	for i, x := range ss {
		out[i] = State(x)
	}
	return out
}
