package automaton

import (
	"fmt"

	"github.com/dekarrin/prins/internal/guard"
	"github.com/dekarrin/prins/internal/naturalsort"
	"github.com/dekarrin/prins/internal/perr"
	"github.com/dekarrin/prins/internal/util"
)

// DFA is a guarded deterministic finite automaton (spec §3/§4.2): each
// (state, symbol) pair has at most one destination.
type DFA struct {
	Sigma  util.KeySet[Symbol]
	Q      StateSet
	Start  State
	F      StateSet
	Delta  map[State]map[Symbol]State
	leaves map[State][]State
}

// NewDFA creates an empty DFA.
func NewDFA() *DFA {
	return &DFA{
		Sigma:  util.NewKeySet[Symbol](),
		Q:      newStateSet(),
		F:      newStateSet(),
		Delta:  make(map[State]map[Symbol]State),
		leaves: make(map[State][]State),
	}
}

// AddState adds s to Q (idempotent), optionally marking it accepting.
func (d *DFA) AddState(s State, accepting bool) {
	d.Q.Add(s)
	if accepting {
		d.F.Add(s)
	}
	if _, ok := d.Delta[s]; !ok {
		d.Delta[s] = make(map[Symbol]State)
	}
}

// AddTransition sets the unique destination of (from, sym). Re-adding the
// same (from, sym) with a different destination is a programmer error and
// panics, since a DFA transition is a function, not a relation.
func (d *DFA) AddTransition(from State, sym Symbol, to State) {
	if !d.Q.Has(from) {
		panic(fmt.Sprintf("automaton: AddTransition: source state %q not in Q", from))
	}
	if !d.Q.Has(to) {
		panic(fmt.Sprintf("automaton: AddTransition: destination state %q not in Q", to))
	}
	d.Sigma.Add(sym)

	if _, ok := d.Delta[from]; !ok {
		d.Delta[from] = make(map[Symbol]State)
	}
	if existing, ok := d.Delta[from][sym]; ok && existing != to {
		panic(fmt.Sprintf("automaton: AddTransition: (%q, %v) already maps to %q, cannot also map to %q", from, sym, existing, to))
	}
	d.Delta[from][sym] = to
}

// Copy returns a deep copy of d.
func (d *DFA) Copy() *DFA {
	cp := NewDFA()
	for sym := range d.Sigma {
		cp.Sigma.Add(sym)
	}
	for _, s := range d.Q.Elements() {
		cp.AddState(s, d.F.Has(s))
	}
	cp.Start = d.Start
	for from, row := range d.Delta {
		for sym, to := range row {
			cp.AddTransition(from, sym, to)
		}
	}
	for k, v := range d.leaves {
		leavesCopy := make([]State, len(v))
		copy(leavesCopy, v)
		cp.leaves[k] = leavesCopy
	}
	return cp
}

func (d *DFA) leavesOf(s State) []State {
	if l, ok := d.leaves[s]; ok {
		return l
	}
	return []State{s}
}

// LeavesOf returns the flattened, naturally-sorted leaf membership of s (a
// single-element slice if s is atomic).
func (d *DFA) LeavesOf(s State) []State {
	return d.leavesOf(s)
}

// SetLeaves records the flattened leaf membership for a composite state s,
// for use by callers (e.g. the determinizer) that construct composite
// states directly (such as a subset-construction state) rather than via a
// sequence of MergeStates calls.
func (d *DFA) SetLeaves(s State, members []State) {
	ss := make([]string, len(members))
	for i, m := range members {
		ss[i] = string(m)
	}
	ss = naturalsort.Strings(dedupStrings(ss))
	out := make([]State, len(ss))
	for i, x := range ss {
		out[i] = State(x)
	}
	d.leaves[s] = out
}

func (d *DFA) matchingSymbols(q State, tid string) []Symbol {
	var matches []Symbol
	for sym := range d.Delta[q] {
		if sym.TID == tid {
			matches = append(matches, sym)
		}
	}
	ss := make([]string, len(matches))
	for i, s := range matches {
		ss[i] = s.String()
	}
	sorted := naturalsort.Strings(ss)
	out := make([]Symbol, 0, len(matches))
	for _, s := range sorted {
		for _, m := range matches {
			if m.String() == s {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

// GuardedTransition implements spec §4.2 for the DFA case: the sole guarded
// transition out of q for e.TID whose guard evaluates true. Overlapping
// guards that both evaluate true are a StructuralError (see DESIGN.md's
// Open Question decision), rather than the spec's "undefined" tie-break.
func (d *DFA) GuardedTransition(q State, e Entry, ignoreGuard bool) (State, Symbol, error) {
	candidates := d.matchingSymbols(q, e.TID)
	if len(candidates) == 0 {
		return "", Symbol{}, fmt.Errorf("automaton: no transition out of %q for tid %q", q, e.TID)
	}

	if ignoreGuard {
		sym := candidates[0]
		return d.Delta[q][sym], sym, nil
	}

	var matched []Symbol
	for _, sym := range candidates {
		var expr guard.Expr
		if sym.Guard != "" {
			parsed, err := guard.Parse(sym.Guard)
			if err != nil {
				return "", Symbol{}, perr.Structuralf("automaton: state %q: malformed guard %q: %v", q, sym.Guard, err)
			}
			expr = parsed
		}
		ok, err := guard.Eval(expr, e.Values)
		if err != nil {
			return "", Symbol{}, perr.Structuralf("automaton: state %q, tid %q: %v", q, e.TID, err)
		}
		if ok {
			matched = append(matched, sym)
		}
	}

	if len(matched) == 0 {
		return "", Symbol{}, fmt.Errorf("automaton: no guarded transition out of %q matched tid %q with the given values", q, e.TID)
	}
	if len(matched) > 1 {
		return "", Symbol{}, perr.Structuralf("automaton: state %q, tid %q: multiple guards matched simultaneously (%v); guard sets are expected to be mutually exclusive", q, e.TID, matched)
	}

	return d.Delta[q][matched[0]], matched[0], nil
}

// AcceptsDFA walks trace from Start applying the sole guarded transition at
// each step; it accepts iff the final state is in F (spec §4.2).
func (d *DFA) AcceptsDFA(trace []Entry) (bool, error) {
	q := d.Start
	for _, e := range trace {
		next, _, err := d.GuardedTransition(q, e, false)
		if err != nil {
			if perr.Fatal(err) {
				return false, err
			}
			return false, nil
		}
		q = next
	}
	return d.F.Has(q), nil
}

// Accepts is an alias for AcceptsDFA, for use by callers that treat NFA and
// DFA uniformly via a shared interface.
func (d *DFA) Accepts(trace []Entry) (bool, error) {
	return d.AcceptsDFA(trace)
}

// RenameStates assigns new names str(i+padding) to each state in natural
// order, updating Start, F, and Delta consistently (spec §4.2).
func (d *DFA) RenameStates(padding int) {
	old := sortedStates(d.Q)
	mapping := make(map[State]State, len(old))
	for i, s := range old {
		mapping[s] = State(fmt.Sprintf("%d", i+padding))
	}

	renamed := NewDFA()
	for sym := range d.Sigma {
		renamed.Sigma.Add(sym)
	}
	for _, s := range old {
		renamed.AddState(mapping[s], d.F.Has(s))
	}
	renamed.Start = mapping[d.Start]

	for from, row := range d.Delta {
		for sym, to := range row {
			renamed.AddTransition(mapping[from], sym, mapping[to])
		}
	}
	for s, l := range d.leaves {
		if newName, ok := mapping[s]; ok {
			renamed.leaves[newName] = l
		}
	}

	*d = *renamed
}

// ShortenStates re-numbers states 0..|Q|-1 in natural order (spec §4.2).
// When considerSetNames is true, state identifiers are first treated as
// their flattened leaf membership (naturally-sorted, deduplicated) before
// computing that natural order, mirroring the Python source's re-parse of
// textual set literals — but structurally, via the leaves table, never by
// re-parsing the identifier text (spec §9 Design Notes).
func (d *DFA) ShortenStates(considerSetNames bool) {
	if !considerSetNames {
		d.RenameStates(0)
		return
	}

	old := d.Q.Elements()
	canon := make(map[State]string, len(old))
	for _, s := range old {
		leaves := make([]string, 0)
		for _, l := range d.leavesOf(s) {
			leaves = append(leaves, string(l))
		}
		leaves = naturalsort.Strings(dedupStrings(leaves))
		canon[s] = "{" + joinComma(leaves) + "}"
	}

	sortKeys := make([]string, 0, len(old))
	bySortKey := make(map[string]State, len(old))
	for _, s := range old {
		sortKeys = append(sortKeys, canon[s])
		bySortKey[canon[s]] = s
	}
	sortKeys = naturalsort.Strings(sortKeys)

	mapping := make(map[State]State, len(old))
	for i, key := range sortKeys {
		mapping[bySortKey[key]] = State(fmt.Sprintf("%d", i))
	}

	renamed := NewDFA()
	for sym := range d.Sigma {
		renamed.Sigma.Add(sym)
	}
	for _, s := range old {
		renamed.AddState(mapping[s], d.F.Has(s))
	}
	renamed.Start = mapping[d.Start]
	for from, row := range d.Delta {
		for sym, to := range row {
			renamed.AddTransition(mapping[from], sym, mapping[to])
		}
	}

	*d = *renamed
}

func joinComma(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += ","
		}
		out += s
	}
	return out
}
