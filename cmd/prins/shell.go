package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dekarrin/prins/internal/automaton"
	"github.com/dekarrin/prins/internal/report"
	"github.com/dekarrin/prins/internal/store"
	"github.com/spf13/pflag"
)

// runShell is an interactive REPL for replaying trace entries against a
// stored run's model one step at a time, printing the live acceptance
// state after each. Grounded on internal/input.InteractiveCommandReader's
// use of chzyer/readline.
func runShell(args []string) {
	fs := pflag.NewFlagSet("shell", pflag.ExitOnError)
	cf := bindCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		log.Fatalf("FATAL %v", err)
	}

	rest := fs.Args()
	if len(rest) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: prins shell [flags] RUN_ID\n")
		os.Exit(1)
	}
	runID := rest[0]

	st, err := store.NewSQLiteStore(cf.dbPath)
	if err != nil {
		log.Fatalf("FATAL could not open run store: %v", err)
	}
	defer st.Close()

	run, err := st.Get(context.Background(), runID)
	if err != nil {
		log.Fatalf("FATAL could not load run %s: %v", runID, err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt: "prins> ",
	})
	if err != nil {
		log.Fatalf("FATAL could not start readline: %v", err)
	}
	defer rl.Close()

	fmt.Println("Enter \"TID val1,val2,...\" entries one at a time, \"reset\" to start a fresh trace, or \"quit\" to exit.")
	if run.Determinized != nil {
		fmt.Println(report.AutomatonSummaryTable(run.Determinized))
	}

	var trace []automaton.Entry
	for {
		line, err := rl.Readline()
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return
		}
		if err != nil {
			log.Printf("ERROR %v", err)
			return
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case line == "quit" || line == "exit":
			return
		case line == "reset":
			trace = nil
			fmt.Println("trace reset")
			continue
		}

		entry, err := parseShellEntry(line)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		trace = append(trace, entry)

		var accepted bool
		if run.Determinized != nil {
			accepted, err = run.Determinized.AcceptsDFA(trace)
		} else {
			accepted, err = run.System.AcceptsNFA(trace)
		}
		if err != nil {
			fmt.Printf("rejected (%v)\n", err)
			trace = trace[:len(trace)-1]
			continue
		}
		if accepted {
			fmt.Println("accepted")
		} else {
			fmt.Println("pending (not yet accepting)")
		}
	}
}

// parseShellEntry parses a "TID val1,val2,..." line into an automaton.Entry.
func parseShellEntry(line string) (automaton.Entry, error) {
	fields := strings.SplitN(line, " ", 2)
	tid := strings.TrimSpace(fields[0])
	if tid == "" {
		return automaton.Entry{}, fmt.Errorf("empty template id")
	}

	var values []string
	if len(fields) == 2 && strings.TrimSpace(fields[1]) != "" {
		for _, v := range strings.Split(fields[1], ",") {
			values = append(values, strings.TrimSpace(v))
		}
	}

	return automaton.Entry{TID: tid, Values: values}, nil
}
