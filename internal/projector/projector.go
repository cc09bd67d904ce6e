// Package projector implements the Projector (C4): partitioning a
// multi-component trace corpus into per-component sub-logs, and splitting
// one execution's trace into runs of consecutive same-component entries
// for the stitcher (C5).
//
// Grounded on PRINS.py::project and PRINS.py::partition_log_by_component in
// original_source/PRINS.
package projector

import (
	"github.com/dekarrin/prins/internal/automaton"
	"github.com/dekarrin/prins/internal/naturalsort"
)

// LogEntry is one tagged log record (spec §3), extending automaton.Entry
// with the component tag the projector consumes.
type LogEntry struct {
	Component string
	TID       string
	Values    []string
}

func (e LogEntry) toAutomatonEntry() automaton.Entry {
	return automaton.Entry{TID: e.TID, Values: e.Values}
}

// Corpus is a multi-component trace corpus keyed by execution id.
type Corpus map[string][]LogEntry

// Project partitions corpus into {component -> {exec_id -> sub-trace}},
// preserving per-execution order (spec §4.4).
func Project(corpus Corpus) map[string]map[string][]automaton.Entry {
	out := make(map[string]map[string][]automaton.Entry)

	for execID, trace := range corpus {
		for _, e := range trace {
			if _, ok := out[e.Component]; !ok {
				out[e.Component] = make(map[string][]automaton.Entry)
			}
			out[e.Component][execID] = append(out[e.Component][execID], e.toAutomatonEntry())
		}
	}

	return out
}

// Components returns the sorted (natural order) set of distinct components
// appearing anywhere in corpus (spec §4.8 step 1: "derive the sorted set of
// components").
func Components(corpus Corpus) []string {
	seen := map[string]bool{}
	for _, trace := range corpus {
		for _, e := range trace {
			seen[e.Component] = true
		}
	}
	names := make([]string, 0, len(seen))
	for c := range seen {
		names = append(names, c)
	}
	return naturalsort.Strings(names)
}

// Run is one contiguous run of same-component entries within a single
// execution's trace (spec §4.8 step 4).
type Run struct {
	Component string
	Entries   []LogEntry
}

// PartitionByComponent splits trace into runs of consecutive entries
// sharing the same component (spec §4.4/§4.8, scenario S6). An empty trace
// yields no runs.
func PartitionByComponent(trace []LogEntry) []Run {
	var runs []Run

	for _, e := range trace {
		if len(runs) > 0 && runs[len(runs)-1].Component == e.Component {
			last := &runs[len(runs)-1]
			last.Entries = append(last.Entries, e)
			continue
		}
		runs = append(runs, Run{Component: e.Component, Entries: []LogEntry{e}})
	}

	return runs
}
