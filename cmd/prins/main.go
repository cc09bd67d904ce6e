/*
Prins infers guarded finite-state automaton models from multi-component
execution logs, checks traces against stored models, and can optionally
serve both operations over HTTP.

Usage:

	prins infer [flags] TRACE_FILE
	prins check [flags] RUN_ID TRACE_FILE
	prins serve [flags]
	prins shell [flags] RUN_ID

The flags are:

	-v, --version
		Give the current version of prins and then exit.

	-c, --config PATH
		Load pipeline options from the given TOML config file (spec §6).
		If not given, built-in defaults are used. Either way the PRINS_*
		environment variables override them; no flag overrides a pipeline
		option.

	-d, --db PATH
		Use the given sqlite file for run storage. Defaults to ./prins.db.

Run-specific flags are documented under each subcommand's -h output.
*/
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/dekarrin/prins/internal/version"
	"github.com/spf13/pflag"
)

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	sub := os.Args[1]
	args := os.Args[2:]

	switch sub {
	case "-v", "--version":
		fmt.Printf("prins v%s\n", version.Current)
		return
	case "-h", "--help":
		usage()
		return
	case "infer":
		runInfer(args)
	case "check":
		runCheck(args)
	case "serve":
		runServe(args)
	case "shell":
		runShell(args)
	default:
		fmt.Fprintf(os.Stderr, "Unrecognized subcommand %q\n", sub)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: prins <infer|check|serve|shell> [flags]\nDo prins <subcommand> -h for help.\n")
}

// commonFlags holds the -c/-d flags shared by every subcommand that touches
// storage and configuration, grounded on cmd/tqserver/main.go's top-level
// flag set.
type commonFlags struct {
	configPath string
	dbPath     string
}

func bindCommonFlags(fs *pflag.FlagSet) *commonFlags {
	cf := &commonFlags{}
	fs.StringVarP(&cf.configPath, "config", "c", "", "Path to a TOML pipeline config file.")
	fs.StringVarP(&cf.dbPath, "db", "d", "prins.db", "Path to the sqlite run-storage file.")
	return cf
}
