package automaton

import (
	"fmt"

	"github.com/dekarrin/prins/internal/guard"
	"github.com/dekarrin/prins/internal/naturalsort"
	"github.com/dekarrin/prins/internal/perr"
	"github.com/dekarrin/prins/internal/util"
)

// Entry is one step of a trace being replayed against an automaton: a
// template id plus its ordered parameter values (spec §3's log entry,
// trimmed to the fields the automaton layer needs).
type Entry struct {
	TID    string
	Values []string
}

// NFA is a guarded nondeterministic finite automaton (spec §3/§4.2). Every
// exported method preserves the invariants listed in spec §3.
type NFA struct {
	Sigma  util.KeySet[Symbol]
	Q      StateSet
	Start  State
	F      StateSet
	Delta  map[State]map[Symbol]StateSet
	leaves map[State][]State // composite states only; absent = atomic
}

// New creates an empty NFA.
func New() *NFA {
	return &NFA{
		Sigma:  util.NewKeySet[Symbol](),
		Q:      newStateSet(),
		F:      newStateSet(),
		Delta:  make(map[State]map[Symbol]StateSet),
		leaves: make(map[State][]State),
	}
}

// AddState adds s to Q (idempotent), optionally marking it accepting.
func (n *NFA) AddState(s State, accepting bool) {
	n.Q.Add(s)
	if accepting {
		n.F.Add(s)
	}
	if _, ok := n.Delta[s]; !ok {
		n.Delta[s] = make(map[Symbol]StateSet)
	}
}

// AddTransition adds a transition from -> to on sym, unioning into any
// existing image for (from, sym), and adds sym to Sigma if it is not there
// yet. Both states must already have been added via AddState; panics
// otherwise, matching the teacher automaton package's precondition-panic
// style.
func (n *NFA) AddTransition(from State, sym Symbol, to State) {
	if !n.Q.Has(from) {
		panic(fmt.Sprintf("automaton: AddTransition: source state %q not in Q", from))
	}
	if !n.Q.Has(to) {
		panic(fmt.Sprintf("automaton: AddTransition: destination state %q not in Q", to))
	}
	n.Sigma.Add(sym)

	if _, ok := n.Delta[from]; !ok {
		n.Delta[from] = make(map[Symbol]StateSet)
	}
	if _, ok := n.Delta[from][sym]; !ok {
		n.Delta[from][sym] = newStateSet()
	}
	n.Delta[from][sym].Add(to)
}

// Copy returns a deep copy of n, so that slicing (which must not mutate its
// source automaton, per spec §4.5) can operate on a safe working copy. This
// mirrors the pipeline driver's requirement (spec §3/§5) to deep-copy
// shared component automata before slicing.
func (n *NFA) Copy() *NFA {
	cp := New()
	for sym := range n.Sigma {
		cp.Sigma.Add(sym)
	}
	for _, s := range n.Q.Elements() {
		cp.AddState(s, n.F.Has(s))
	}
	cp.Start = n.Start
	for from, row := range n.Delta {
		for sym, to := range row {
			for _, t := range to.Elements() {
				cp.AddTransition(from, sym, t)
			}
		}
	}
	for k, v := range n.leaves {
		leavesCopy := make([]State, len(v))
		copy(leavesCopy, v)
		cp.leaves[k] = leavesCopy
	}
	return cp
}

// leavesOf returns the flattened, naturally-sorted set of leaf state names
// making up s (a single-element slice if s is atomic).
func (n *NFA) leavesOf(s State) []State {
	if l, ok := n.leaves[s]; ok {
		return l
	}
	return []State{s}
}

// LeavesOf returns the flattened, naturally-sorted leaf membership of s (a
// single-element slice if s is atomic). Exposed for reporting/debugging;
// never re-parsed back into a State by this package.
func (n *NFA) LeavesOf(s State) []State {
	return n.leavesOf(s)
}

// SetLeaves records the flattened leaf membership for a composite state s,
// for use by callers (e.g. the determinizer) that construct composite
// states directly rather than via MergeStates.
func (n *NFA) SetLeaves(s State, members []State) {
	n.leaves[s] = naturalsort_dedupStates(members)
}

// matchingSymbols returns every symbol out of q whose TID equals tid, sorted
// naturally by symbol text for deterministic tie-breaking.
func (n *NFA) matchingSymbols(q State, tid string) []Symbol {
	var matches []Symbol
	for sym := range n.Delta[q] {
		if sym.TID == tid {
			matches = append(matches, sym)
		}
	}
	ss := make([]string, len(matches))
	for i, s := range matches {
		ss[i] = s.String()
	}
	sorted := naturalsort.Strings(ss)
	bySorted := make([]Symbol, 0, len(matches))
	for _, s := range sorted {
		for _, m := range matches {
			if m.String() == s {
				bySorted = append(bySorted, m)
				break
			}
		}
	}
	return bySorted
}

// GuardedTransition implements spec §4.2's guarded_transition for the NFA
// case: it returns the destination set and the symbol whose guard matched
// e's values. If ignoreGuard is true, the guard is treated as true for
// every tid-matching symbol, and the union of all their destinations is
// returned along with the first matching symbol (by natural order) — this
// is the fallback path described in spec §9 for a known CompLearner quirk.
func (n *NFA) GuardedTransition(q State, e Entry, ignoreGuard bool) (StateSet, Symbol, error) {
	candidates := n.matchingSymbols(q, e.TID)
	if len(candidates) == 0 {
		return nil, Symbol{}, fmt.Errorf("automaton: no transition out of %q for tid %q", q, e.TID)
	}

	if ignoreGuard {
		dest := newStateSet()
		for _, sym := range candidates {
			dest.AddAll(n.Delta[q][sym])
		}
		return dest, candidates[0], nil
	}

	var matched []Symbol
	for _, sym := range candidates {
		var expr guard.Expr
		if sym.Guard != "" {
			parsed, err := guard.Parse(sym.Guard)
			if err != nil {
				return nil, Symbol{}, perr.Structuralf("automaton: state %q: malformed guard %q: %v", q, sym.Guard, err)
			}
			expr = parsed
		}
		ok, err := guard.Eval(expr, e.Values)
		if err != nil {
			return nil, Symbol{}, perr.Structuralf("automaton: state %q, tid %q: %v", q, e.TID, err)
		}
		if ok {
			matched = append(matched, sym)
		}
	}

	if len(matched) == 0 {
		return nil, Symbol{}, fmt.Errorf("automaton: no guarded transition out of %q matched tid %q with the given values", q, e.TID)
	}
	if len(matched) > 1 {
		return nil, Symbol{}, perr.Structuralf("automaton: state %q, tid %q: multiple guards matched simultaneously (%v); guard sets are expected to be mutually exclusive", q, e.TID, matched)
	}

	return n.Delta[q][matched[0]].Copy(), matched[0], nil
}

// AcceptsNFA walks trace from Start tracking a frontier set of states,
// following unguarded-or-guard-satisfied transitions at each step; it
// accepts iff the final frontier intersects F (spec §4.2).
func (n *NFA) AcceptsNFA(trace []Entry) (bool, error) {
	frontier := newStateSet(n.Start)

	for _, e := range trace {
		next := newStateSet()
		for _, q := range frontier.Elements() {
			dest, _, err := n.GuardedTransition(q, e, false)
			if err != nil {
				if perr.Fatal(err) {
					return false, err
				}
				continue
			}
			next.AddAll(dest)
		}
		if next.Empty() {
			return false, nil
		}
		frontier = next
	}

	return frontier.Any(func(s State) bool { return n.F.Has(s) }), nil
}

// RenameStates assigns new names str(i+padding) to each state in natural
// order of the old names, updating Start, F, and Delta consistently (spec
// §4.2). Leaf membership for composite states is preserved under the old
// leaf labels (renaming is a display-layer operation, not a re-merge).
func (n *NFA) RenameStates(padding int) {
	old := sortedStates(n.Q)
	mapping := make(map[State]State, len(old))
	for i, s := range old {
		mapping[s] = State(fmt.Sprintf("%d", i+padding))
	}

	renamed := New()
	for sym := range n.Sigma {
		renamed.Sigma.Add(sym)
	}
	for _, s := range old {
		renamed.AddState(mapping[s], n.F.Has(s))
	}
	renamed.Start = mapping[n.Start]

	for from, row := range n.Delta {
		for sym, to := range row {
			for _, t := range to.Elements() {
				renamed.AddTransition(mapping[from], sym, mapping[t])
			}
		}
	}
	for s, l := range n.leaves {
		if newName, ok := mapping[s]; ok {
			renamed.leaves[newName] = l
		}
	}

	*n = *renamed
}

// MergeStates merges the states in s into one new canonical state q_m,
// named by naturally-sort-joining the flattened leaf membership of s's
// members (spec §4.2). Requires |s| >= 2. Transitions whose images collapse
// onto q_m are unioned, never duplicated. Idempotent and commutative in s.
func (n *NFA) MergeStates(s StateSet) (State, error) {
	if s.Len() < 2 {
		return "", fmt.Errorf("automaton: MergeStates requires at least 2 states, got %d", s.Len())
	}
	for _, m := range s.Elements() {
		if !n.Q.Has(m) {
			return "", fmt.Errorf("automaton: MergeStates: %q is not a state of this automaton", m)
		}
	}

	var allLeaves []State
	for _, m := range s.Elements() {
		allLeaves = append(allLeaves, n.leavesOf(m)...)
	}
	qm := leafLabel(allLeaves)

	if n.Q.Has(qm) && !s.Has(qm) {
		// qm already names a distinct existing state (pathological but
		// possible with adversarial input); fold it into the merge set too
		// so invariants still hold.
		s = s.Copy()
		s.Add(qm)
		allLeaves = append(allLeaves, n.leavesOf(qm)...)
		qm = leafLabel(allLeaves)
	}

	accepting := false
	for _, m := range s.Elements() {
		if n.F.Has(m) {
			accepting = true
		}
	}

	n.Q.Add(qm)
	if _, ok := n.Delta[qm]; !ok {
		n.Delta[qm] = make(map[Symbol]StateSet)
	}
	n.leaves[qm] = naturalsort_dedupStates(allLeaves)

	remap := func(q State) State {
		if s.Has(q) {
			return qm
		}
		return q
	}

	if s.Has(n.Start) {
		n.Start = qm
	}
	if accepting {
		n.F.Add(qm)
	}

	newDelta := make(map[State]map[Symbol]StateSet, len(n.Delta))
	for from, row := range n.Delta {
		newFrom := remap(from)
		if _, ok := newDelta[newFrom]; !ok {
			newDelta[newFrom] = make(map[Symbol]StateSet)
		}
		for sym, to := range row {
			dest := newDelta[newFrom][sym]
			if dest == nil {
				dest = newStateSet()
				newDelta[newFrom][sym] = dest
			}
			for _, t := range to.Elements() {
				dest.Add(remap(t))
			}
		}
	}
	n.Delta = newDelta

	for _, m := range s.Elements() {
		if m == qm {
			continue
		}
		n.Q.Remove(m)
		n.F.Remove(m)
		delete(n.leaves, m)
	}

	return qm, nil
}

func naturalsort_dedupStates(leaves []State) []State {
	ss := make([]string, len(leaves))
	for i, l := range leaves {
		ss[i] = string(l)
	}
	ss = naturalsort.Strings(dedupStrings(ss))
	out := make([]State, len(ss))
	for i, s := range ss {
		out[i] = State(s)
	}
	return out
}

// Append concatenates other onto n in place (spec §4.2/GLOSSARY):
// preconditions |F| == 1; other is renamed to a disjoint state range, Q/
// Sigma/Delta are unioned, F becomes other.F, and the pre-append sole
// accepting state is merged with other.Start. The result may be
// non-deterministic.
func (n *NFA) Append(other *NFA) error {
	if n.F.Len() != 1 {
		return fmt.Errorf("automaton: Append requires exactly one accepting state, got %d", n.F.Len())
	}
	sole := n.F.Elements()[0]

	padding := 0
	for _, s := range n.Q.Elements() {
		for _, leaf := range n.leavesOf(s) {
			var v int
			if _, err := fmt.Sscanf(string(leaf), "%d", &v); err == nil && v >= padding {
				padding = v + 1
			}
		}
	}

	shifted := other.Copy()
	shifted.RenameStates(padding)

	for sym := range shifted.Sigma {
		n.Sigma.Add(sym)
	}
	for _, s := range shifted.Q.Elements() {
		n.AddState(s, shifted.F.Has(s))
	}
	for s, l := range shifted.leaves {
		n.leaves[s] = l
	}
	for from, row := range shifted.Delta {
		for sym, to := range row {
			for _, t := range to.Elements() {
				n.AddTransition(from, sym, t)
			}
		}
	}

	n.F = newStateSet()
	for _, s := range shifted.F.Elements() {
		n.F.Add(s)
	}

	merge := newStateSet(sole, shifted.Start)
	if sole != shifted.Start {
		qm, err := n.MergeStates(merge)
		if err != nil {
			return err
		}
		if shifted.F.Has(shifted.Start) {
			n.F.Add(qm)
		}
	}

	return nil
}

// FindNonDeterministicState returns the first (in natural state/symbol
// order) transition image whose size exceeds 1 after excluding excl, or nil
// if n is already deterministic (spec §4.2). A transition with an empty
// image is always a structural error, regardless of excl.
func (n *NFA) FindNonDeterministicState(excl StateSet) (StateSet, error) {
	if excl == nil {
		excl = newStateSet()
	}

	for _, from := range sortedStates(n.Q) {
		row := n.Delta[from]
		syms := make([]string, 0, len(row))
		symBySym := make(map[string]Symbol, len(row))
		for sym := range row {
			syms = append(syms, sym.String())
			symBySym[sym.String()] = sym
		}
		for _, symStr := range naturalsort.Strings(syms) {
			sym := symBySym[symStr]
			dest := row[sym]
			if dest.Empty() {
				return nil, perr.Structuralf("automaton: state %q has an empty transition image on %s", from, sym)
			}
			remaining := dest.Difference(excl)
			if remaining.Len() > 1 {
				return remaining, nil
			}
		}
	}

	return nil, nil
}

// Accepts is an alias for AcceptsNFA, for use by callers that treat NFA and
// DFA uniformly via a shared interface.
func (n *NFA) Accepts(trace []Entry) (bool, error) {
	return n.AcceptsNFA(trace)
}
