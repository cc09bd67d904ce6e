package store

import (
	"github.com/dekarrin/prins/internal/automaton"
)

// snapTransition is one exported (from, tid, guard) -> [to...] row, the
// wire shape rezi serializes; automaton.NFA/DFA keep their Delta keyed by
// unexported-field-bearing types, so a run's automata are flattened into
// this shape before being handed to rezi.EncBinary.
type snapTransition struct {
	From  string
	TID   string
	Guard string
	To    []string
}

// snapshot is the exported, rezi-serializable mirror of either an
// automaton.NFA or automaton.DFA, used as the on-disk representation for a
// stored pipeline run (spec §4.9's run persistence).
type snapshot struct {
	States      []string
	Start       string
	Accepting   []string
	Transitions []snapTransition
	Leaves      map[string][]string
}

func snapshotFromNFA(n *automaton.NFA) snapshot {
	s := snapshot{
		Start:  string(n.Start),
		Leaves: map[string][]string{},
	}
	for _, q := range n.Q.Elements() {
		s.States = append(s.States, string(q))
		leaves := n.LeavesOf(q)
		if len(leaves) > 1 {
			ls := make([]string, len(leaves))
			for i, l := range leaves {
				ls[i] = string(l)
			}
			s.Leaves[string(q)] = ls
		}
	}
	for _, q := range n.F.Elements() {
		s.Accepting = append(s.Accepting, string(q))
	}
	for from, row := range n.Delta {
		for sym, to := range row {
			var toList []string
			for _, t := range to.Elements() {
				toList = append(toList, string(t))
			}
			s.Transitions = append(s.Transitions, snapTransition{
				From: string(from), TID: sym.TID, Guard: sym.Guard, To: toList,
			})
		}
	}
	return s
}

func (s snapshot) toNFA() *automaton.NFA {
	n := automaton.New()
	for _, q := range s.States {
		n.AddState(automaton.State(q), false)
	}
	n.Start = automaton.State(s.Start)
	for _, q := range s.Accepting {
		n.F.Add(automaton.State(q))
	}
	for q, leaves := range s.Leaves {
		ls := make([]automaton.State, len(leaves))
		for i, l := range leaves {
			ls[i] = automaton.State(l)
		}
		n.SetLeaves(automaton.State(q), ls)
	}
	for _, tr := range s.Transitions {
		sym := automaton.Symbol{TID: tr.TID, Guard: tr.Guard}
		for _, to := range tr.To {
			n.AddTransition(automaton.State(tr.From), sym, automaton.State(to))
		}
	}
	return n
}

func snapshotFromDFA(d *automaton.DFA) snapshot {
	s := snapshot{
		Start:  string(d.Start),
		Leaves: map[string][]string{},
	}
	for _, q := range d.Q.Elements() {
		s.States = append(s.States, string(q))
		leaves := d.LeavesOf(q)
		if len(leaves) > 1 {
			ls := make([]string, len(leaves))
			for i, l := range leaves {
				ls[i] = string(l)
			}
			s.Leaves[string(q)] = ls
		}
	}
	for _, q := range d.F.Elements() {
		s.Accepting = append(s.Accepting, string(q))
	}
	for from, row := range d.Delta {
		for sym, to := range row {
			s.Transitions = append(s.Transitions, snapTransition{
				From: string(from), TID: sym.TID, Guard: sym.Guard, To: []string{string(to)},
			})
		}
	}
	return s
}

func (s snapshot) toDFA() *automaton.DFA {
	d := automaton.NewDFA()
	for _, q := range s.States {
		d.AddState(automaton.State(q), false)
	}
	d.Start = automaton.State(s.Start)
	for _, q := range s.Accepting {
		d.F.Add(automaton.State(q))
	}
	for q, leaves := range s.Leaves {
		ls := make([]automaton.State, len(leaves))
		for i, l := range leaves {
			ls[i] = automaton.State(l)
		}
		d.SetLeaves(automaton.State(q), ls)
	}
	for _, tr := range s.Transitions {
		sym := automaton.Symbol{TID: tr.TID, Guard: tr.Guard}
		d.AddTransition(automaton.State(tr.From), sym, automaton.State(tr.To[0]))
	}
	return d
}
