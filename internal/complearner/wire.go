// Package complearner implements the CompLearner adapter (C3): it encodes a
// component's per-execution sub-traces into the external learner's wire
// format, invokes the learner under a time budget, decodes its dot-like
// automaton output (splitting compound transition labels into (tid, guard)
// pairs), and performs the sentinel post-decode cleanup.
//
// Grounded on src/main/mint_helper.py (encoding, remove_end_marker) and
// src/utils/MINT/MINT.py (subprocess invocation, label-splitting
// post-process) in original_source/PRINS.
package complearner

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dekarrin/prins/internal/automaton"
	"github.com/dekarrin/prins/internal/naturalsort"
)

// EndMarker is the sentinel type emitted at the end of every trace and
// appended to the types section, matching mint_helper.py's END_MARKER. It
// exists to work around a CompLearner quirk (spec §4.3/§9) and is stripped
// back out during decoding.
const EndMarker = "__END__"

// SubLog is one component's sub-traces, keyed by execution id.
type SubLog map[string][]automaton.Entry

// EncodeWireFormat renders sub to the CompLearner wire format described in
// spec §6: a `types` section (unique tid + "var0:S var1:S …" per observed
// arity, plus the end-of-trace sentinel type) followed by one `trace`
// section per execution (in natural execution-id order), each entry
// rendered as "tid v0 v1 …" with interior whitespace stripped, each trace
// terminated by the sentinel.
//
// When ignoreValues is true, values are omitted entirely, producing a
// guard-free model (the `ignore_values` configuration parameter, §6).
func EncodeWireFormat(sub SubLog, ignoreValues bool) string {
	typeLines := map[string]bool{}
	var traceBlocks [][]string

	ids := make([]string, 0, len(sub))
	for id := range sub {
		ids = append(ids, id)
	}
	ids = naturalsort.Strings(ids)

	for _, id := range ids {
		var trace []string
		for _, e := range sub[id] {
			typeLine := e.TID
			traceLine := e.TID

			if !ignoreValues && len(e.Values) > 0 {
				for i, v := range e.Values {
					clean := stripWhitespace(v)
					traceLine += " " + clean
					typeLine += fmt.Sprintf(" var%d:S", i)
				}
			}

			typeLines[typeLine] = true
			trace = append(trace, traceLine)
		}
		trace = append(trace, EndMarker)
		traceBlocks = append(traceBlocks, trace)
	}

	types := make([]string, 0, len(typeLines))
	for t := range typeLines {
		types = append(types, t)
	}
	types = naturalsort.Strings(types)
	types = append(types, EndMarker)

	var sb strings.Builder
	sb.WriteString("types\n")
	for _, t := range types {
		sb.WriteString(t)
		sb.WriteString("\n")
	}
	for _, trace := range traceBlocks {
		sb.WriteString("trace\n")
		for _, line := range trace {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

var whitespaceRE = regexp.MustCompile(`\s+`)

func stripWhitespace(s string) string {
	return whitespaceRE.ReplaceAllString(s, "")
}
