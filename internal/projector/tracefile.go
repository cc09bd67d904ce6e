package projector

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// LoadTraceFile reads a tabular trace file (spec §6: columns logID, ts,
// component, tid, values, template) as CSV into a Corpus keyed by logID,
// preserving row order within each execution.
//
// Grounded on utils/common.py's load_logs_from_file/
// convert_df_into_l_vectors, adapted from a pandas dataframe pivot to a
// straight CSV scan since this repo has no dataframe dependency.
func LoadTraceFile(r io.Reader) (Corpus, []string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("projector: reading trace file header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{"logID", "component", "tid", "values"} {
		if _, ok := col[required]; !ok {
			return nil, nil, fmt.Errorf("projector: trace file missing required column %q", required)
		}
	}

	corpus := Corpus{}
	var order []string
	seen := map[string]bool{}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("projector: reading trace file row: %w", err)
		}

		logID := rec[col["logID"]]
		entry := LogEntry{
			Component: rec[col["component"]],
			TID:       rec[col["tid"]],
			Values:    parseListLiteral(rec[col["values"]]),
		}
		corpus[logID] = append(corpus[logID], entry)
		if !seen[logID] {
			seen[logID] = true
			order = append(order, logID)
		}
	}

	return corpus, order, nil
}

// parseListLiteral parses a textual list literal such as "[a, b, c]" or
// "a;b;c" into its elements. An empty or bracket-only literal yields nil.
func parseListLiteral(s string) []string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	sep := ","
	if !strings.Contains(s, ",") && strings.Contains(s, ";") {
		sep = ";"
	}

	parts := strings.Split(s, sep)
	out := make([]string, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.Trim(p, `"'`)
		out[i] = p
	}
	return out
}
