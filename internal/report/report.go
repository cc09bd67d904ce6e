// Package report renders a pipeline run's metrics and automaton summary as
// aligned text tables, for the CLI and HTTP surfaces (spec §4.9).
//
// Grounded on internal/game/debug.go's use of rosed.Edit(...).InsertTableOpts
// for its "DEBUG FLAGS"/"DEBUG NPC" tables, and internal/util.MakeTextList
// for the inline accepting-state list.
package report

import (
	"fmt"
	"time"

	"github.com/dekarrin/prins/internal/automaton"
	"github.com/dekarrin/prins/internal/naturalsort"
	"github.com/dekarrin/prins/internal/util"
	"github.com/dekarrin/rosed"
)

// MetricsTable renders a run's timing and diversity metrics as an aligned
// table (spec §4.8's reported metrics).
func MetricsTable(projection, inference, stitching time.Duration, diversity float64) string {
	data := [][]string{
		{"Metric", "Value"},
		{"Projection time", projection.String()},
		{"Inference time", inference.String()},
		{"Stitching time", stitching.String()},
		{"Component diversity", fmt.Sprintf("%.4f", diversity)},
	}

	tableOpts := rosed.Options{
		TableHeaders:             true,
		NoTrailingLineSeparators: true,
	}

	return rosed.Edit("").
		InsertTableOpts(0, data, 80, tableOpts).
		String()
}

// AutomatonSummaryTable renders a DFA's Q/Sigma/delta as a table: one row
// per (state, symbol) -> destination, plus a header line giving the start
// state and the naturally-sorted accepting-state list.
func AutomatonSummaryTable(d *automaton.DFA) string {
	header := fmt.Sprintf("start=%s accepting={%s}", d.Start, util.MakeTextList(acceptingNames(d)))

	data := [][]string{{"State", "Symbol", "Destination"}}
	for _, from := range sortedDFAStates(d) {
		for _, symStr := range sortedSymbolStrings(d.Delta[from]) {
			for sym, to := range d.Delta[from] {
				if sym.String() != symStr {
					continue
				}
				data = append(data, []string{string(from), symStr, string(to)})
			}
		}
	}

	tableOpts := rosed.Options{
		TableHeaders: true,
	}

	return rosed.Edit("\n" + header).
		InsertTableOpts(0, data, 80, tableOpts).
		String()
}

func acceptingNames(d *automaton.DFA) []string {
	els := d.F.Elements()
	ss := make([]string, len(els))
	for i, e := range els {
		ss[i] = string(e)
	}
	return naturalsort.Strings(ss)
}

func sortedDFAStates(d *automaton.DFA) []automaton.State {
	els := d.Q.Elements()
	ss := make([]string, len(els))
	for i, e := range els {
		ss[i] = string(e)
	}
	ss = naturalsort.Strings(ss)
	out := make([]automaton.State, len(ss))
	for i, s := range ss {
		out[i] = automaton.State(s)
	}
	return out
}

func sortedSymbolStrings(row map[automaton.Symbol]automaton.State) []string {
	ss := make([]string, 0, len(row))
	for sym := range row {
		ss = append(ss, sym.String())
	}
	return naturalsort.Strings(ss)
}
