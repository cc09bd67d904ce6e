// Package stitch implements the Slicer & Appender (C5): slicing a
// deterministic component automaton against a concrete sub-trace, and
// stitching successive slices of one execution (across component-run
// boundaries) into a single per-execution NFA via Append.
//
// Grounded on PRINS.py::stitch (the slice_starting_states cursor map) and
// NFA.py::slice/append in original_source/PRINS.
package stitch

import (
	"fmt"

	"github.com/dekarrin/prins/internal/automaton"
	"github.com/dekarrin/prins/internal/perr"
	"github.com/dekarrin/prins/internal/projector"
)

// Slice walks trace against the deterministic component automaton m,
// starting from cursor, emitting exactly the states and transitions
// visited (spec §4.5). If no guarded transition matches at some step, it
// retries once with ignoreGuard=true (compensating for the CompLearner
// quirk noted in spec §9); a second failure is a fatal per-trace
// TraceRejected error. Slice never mutates m. The returned cursor is the
// final visited state, which Slice also marks as the slice's sole
// accepting state. The returned bool reports whether the ignore-guard
// fallback fired at any step, so callers can honor spec §7's "logged once
// per invocation" requirement instead of swallowing the signal.
//
// Precondition: m must have no non-deterministic state (enforced here as
// an assertion returning a StructuralError, per spec §4.5).
func Slice(m *automaton.NFA, trace []automaton.Entry, cursor automaton.State) (*automaton.NFA, automaton.State, bool, error) {
	if nd, err := m.FindNonDeterministicState(nil); err != nil {
		return nil, "", false, err
	} else if nd != nil {
		return nil, "", false, perr.Structuralf("stitch: component automaton is non-deterministic at %v; slicing requires a deterministic model", nd.Elements())
	}

	slice := automaton.New()
	slice.Start = cursor
	slice.AddState(cursor, false)

	usedIgnoreGuard := false
	cur := cursor
	for i, e := range trace {
		dest, sym, err := m.GuardedTransition(cur, e, false)
		if err != nil {
			if perr.Fatal(err) {
				return nil, "", usedIgnoreGuard, err
			}
			dest, sym, err = m.GuardedTransition(cur, e, true)
			usedIgnoreGuard = true
			if err != nil {
				return nil, "", usedIgnoreGuard, perr.TraceRejectedf("stitch: no guarded transition (even with guards ignored) out of state %q for entry %d (tid=%q)", cur, i, e.TID)
			}
		}
		if dest.Len() != 1 {
			return nil, "", usedIgnoreGuard, perr.Structuralf("stitch: guarded transition out of %q on %v produced %d destinations; expected exactly 1 from a deterministic model", cur, sym, dest.Len())
		}
		next := dest.Elements()[0]

		slice.AddState(next, false)
		slice.AddTransition(cur, sym, next)

		cur = next
	}

	slice.F = automaton.StateSet{}
	slice.F.Add(cur)

	return slice, cur, usedIgnoreGuard, nil
}

// Cursor is a per-pipeline-invocation map from a component id to the state
// reached so far across successive slices of the same execution (spec
// §3's "Slice cursor" and §9's "HashMap<ComponentId, StateId>" note).
type Cursor map[string]automaton.State

// Stitcher stitches one execution's runs (spec §4.8 step 4) into a single
// per-execution NFA, consulting and advancing a Cursor across runs that
// re-enter the same component.
type Stitcher struct {
	Models  map[string]*automaton.NFA
	cursors Cursor
}

// NewStitcher creates a Stitcher over the given (already deep-copied, per
// spec §3/§5) component models.
func NewStitcher(models map[string]*automaton.NFA) *Stitcher {
	return &Stitcher{Models: models, cursors: Cursor{}}
}

// StitchExecution slices and appends every run of one execution's trace in
// order, returning the combined per-execution NFA (spec §4.8 step 4). The
// returned bool reports whether the ignore-guard fallback (spec §7) fired
// for any run in this execution.
func (s *Stitcher) StitchExecution(runs []projector.Run) (*automaton.NFA, bool, error) {
	var acc *automaton.NFA
	usedIgnoreGuard := false

	for _, run := range runs {
		model, ok := s.Models[run.Component]
		if !ok {
			return nil, usedIgnoreGuard, perr.Structuralf("stitch: no component model available for %q", run.Component)
		}

		cursor, ok := s.cursors[run.Component]
		if !ok {
			cursor = model.Start
		}

		entries := make([]automaton.Entry, len(run.Entries))
		for i, e := range run.Entries {
			entries[i] = automaton.Entry{TID: e.TID, Values: e.Values}
		}

		slice, newCursor, fellBack, err := Slice(model, entries, cursor)
		if fellBack {
			usedIgnoreGuard = true
		}
		if err != nil {
			return nil, usedIgnoreGuard, err
		}
		s.cursors[run.Component] = newCursor

		if acc == nil {
			acc = slice
		} else {
			if err := acc.Append(slice); err != nil {
				return nil, usedIgnoreGuard, fmt.Errorf("stitch: appending run for component %q: %w", run.Component, err)
			}
		}
	}

	if acc == nil {
		return nil, usedIgnoreGuard, perr.Structuralf("stitch: execution has no runs to stitch")
	}

	return acc, usedIgnoreGuard, nil
}
