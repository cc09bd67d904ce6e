package complearner

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dekarrin/prins/internal/automaton"
	"github.com/dekarrin/prins/internal/naturalsort"
)

var (
	stateLineRE    = regexp.MustCompile(`^(\d+)\s*\[label="(\d+)"(?:,\s*shape=doublecircle)?\];?\s*$`)
	initialLineRE  = regexp.MustCompile(`^initial\s*->\s*(\d+);?\s*$`)
	transitionRE   = regexp.MustCompile(`^(\d+)\s*->\s*(\d+)\s*\[label="(.*)"\];?\s*$`)
	guardMarkersRE = regexp.MustCompile(`[=<>|&]`)
	compareOpRE    = regexp.MustCompile(`(==|!=|<=|>=|<|>)([^\s"]+)`)
)

// DecodeDotLike parses the CompLearner's dot-like automaton output (spec
// §6) into an NFA, splitting every compound transition label into
// successive (tid, guard?) pairs (spec §4.3) and performing the sentinel
// post-decode cleanup (spec §4.3: sentinel-target states become
// unreachable and are dropped; every state with an outgoing sentinel edge
// becomes accepting).
//
// Grounded on src/utils/MINT/MINT.py::run's label-splitting post-process
// and src/main/mint_helper.py::remove_end_marker.
func DecodeDotLike(dot string) (*automaton.NFA, error) {
	lines := strings.Split(dot, "\n")

	doubleCircle := map[string]bool{}
	var initial string
	type rawTrans struct {
		src, dst, label string
	}
	var rawTransitions []rawTrans
	states := map[string]bool{}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || line == "digraph Automaton {" || line == "}" {
			continue
		}
		if m := stateLineRE.FindStringSubmatch(line); m != nil {
			states[m[1]] = true
			if strings.Contains(line, "doublecircle") {
				doubleCircle[m[1]] = true
			}
			continue
		}
		if m := initialLineRE.FindStringSubmatch(line); m != nil {
			initial = m[1]
			continue
		}
		if m := transitionRE.FindStringSubmatch(line); m != nil {
			rawTransitions = append(rawTransitions, rawTrans{src: m[1], dst: m[2], label: m[3]})
			states[m[1]] = true
			states[m[2]] = true
			continue
		}
	}

	if initial == "" {
		return nil, fmt.Errorf("complearner: decode: no initial state found in dot-like output")
	}

	// split compound labels into (tid, guard) pairs, sorted for determinism
	// (naturally sorted by raw label text, mirroring MINT.py's natsorted
	// iteration over the alphabet).
	labels := make([]string, 0, len(rawTransitions))
	seen := map[string]bool{}
	for _, t := range rawTransitions {
		if !seen[t.label] {
			seen[t.label] = true
			labels = append(labels, t.label)
		}
	}
	labels = naturalsort.Strings(labels)

	type pairTrans struct {
		src, dst string
		tid      string
		guard    string
	}
	var extended []pairTrans

	for _, label := range labels {
		pairs := splitCompoundLabel(label)
		for _, t := range rawTransitions {
			if t.label != label {
				continue
			}
			for _, p := range pairs {
				extended = append(extended, pairTrans{src: t.src, dst: t.dst, tid: p.tid, guard: p.guard})
			}
		}
	}

	// post-decode cleanup (remove_end_marker): every source of a sentinel
	// edge becomes accepting, whatever its other edges; sentinel target
	// states are dropped as unreachable.
	endStates := map[string]bool{}
	accepting := map[string]bool{}
	kept := extended[:0]
	for _, t := range extended {
		if t.tid == EndMarker {
			accepting[t.src] = true
			endStates[t.dst] = true
			continue
		}
		kept = append(kept, t)
	}
	extended = kept

	for _, t := range extended {
		if endStates[t.src] {
			return nil, fmt.Errorf("complearner: decode: state %q has an outgoing non-sentinel edge despite being a sentinel target", t.src)
		}
	}

	n := automaton.New()
	for s := range states {
		if endStates[s] {
			continue
		}
		n.AddState(automaton.State(s), accepting[s])
	}
	n.Start = automaton.State(initial)

	for _, t := range extended {
		if endStates[t.dst] {
			continue
		}
		n.AddTransition(automaton.State(t.src), automaton.Symbol{TID: t.tid, Guard: t.guard}, automaton.State(t.dst))
	}

	return n, nil
}

type tidGuard struct {
	tid, guard string
}

// splitCompoundLabel splits a `\n`-joined compound label into (tid,
// guard?) pairs, rewriting the guard text per spec §4.3: a guard is
// recognized by containing any of `= < > | &`; `&&` -> " and ", `||` ->
// " or ", single quotes stripped, and comparison right-hand sides wrapped
// in double quotes.
func splitCompoundLabel(label string) []tidGuard {
	tokens := strings.Split(label, "\\n")
	var out []tidGuard

	i := 0
	for i < len(tokens) {
		tid := tokens[i]
		guard := ""
		if i+1 < len(tokens) && guardMarkersRE.MatchString(tokens[i+1]) {
			g := tokens[i+1]
			g = strings.ReplaceAll(g, "&&", " and ")
			g = strings.ReplaceAll(g, "||", " or ")
			g = strings.ReplaceAll(g, "'", "")
			g = compareOpRE.ReplaceAllString(g, `$1"$2"`)
			guard = g
			i++
		}
		out = append(out, tidGuard{tid: tid, guard: guard})
		i++
	}

	return out
}
