package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dekarrin/prins/internal/automaton"
	"github.com/dekarrin/prins/internal/projector"
	"github.com/dekarrin/prins/internal/store"
	"github.com/spf13/pflag"
)

func runCheck(args []string) {
	fs := pflag.NewFlagSet("check", pflag.ExitOnError)
	cf := bindCommonFlags(fs)
	execID := fs.String("exec", "", "Which logID in TRACE_FILE to check. Defaults to the first one found.")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("FATAL %v", err)
	}

	rest := fs.Args()
	if len(rest) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: prins check [flags] RUN_ID TRACE_FILE\n")
		os.Exit(1)
	}
	runID, tracePath := rest[0], rest[1]

	f, err := os.Open(tracePath)
	if err != nil {
		log.Fatalf("FATAL could not open trace file: %v", err)
	}
	defer f.Close()

	corpus, order, err := projector.LoadTraceFile(f)
	if err != nil {
		log.Fatalf("FATAL could not parse trace file: %v", err)
	}
	if len(order) == 0 {
		log.Fatalf("FATAL trace file %s contains no executions", tracePath)
	}

	id := *execID
	if id == "" {
		id = order[0]
	}
	trace, ok := corpus[id]
	if !ok {
		log.Fatalf("FATAL trace file does not contain logID %q", id)
	}

	entries := make([]automaton.Entry, len(trace))
	for i, e := range trace {
		entries[i] = automaton.Entry{TID: e.TID, Values: e.Values}
	}

	st, err := store.NewSQLiteStore(cf.dbPath)
	if err != nil {
		log.Fatalf("FATAL could not open run store: %v", err)
	}
	defer st.Close()

	run, err := st.Get(context.Background(), runID)
	if err != nil {
		log.Fatalf("FATAL could not load run %s: %v", runID, err)
	}

	var accepted bool
	if run.Determinized != nil {
		accepted, err = run.Determinized.AcceptsDFA(entries)
	} else {
		accepted, err = run.System.AcceptsNFA(entries)
	}
	if err != nil {
		log.Fatalf("FATAL %v", err)
	}

	if accepted {
		fmt.Println("accepted")
	} else {
		fmt.Println("rejected")
		os.Exit(1)
	}
}
