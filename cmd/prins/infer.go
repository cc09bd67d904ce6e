package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dekarrin/prins/internal/complearner"
	"github.com/dekarrin/prins/internal/config"
	"github.com/dekarrin/prins/internal/determinize"
	"github.com/dekarrin/prins/internal/pipeline"
	"github.com/dekarrin/prins/internal/projector"
	"github.com/dekarrin/prins/internal/report"
	"github.com/dekarrin/prins/internal/store"
	"github.com/spf13/pflag"
)

func runInfer(args []string) {
	fs := pflag.NewFlagSet("infer", pflag.ExitOnError)
	cf := bindCommonFlags(fs)
	learnerPath := fs.String("learner", "", "Path to the external CompLearner binary.")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("FATAL %v", err)
	}

	rest := fs.Args()
	if len(rest) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: prins infer [flags] TRACE_FILE\n")
		os.Exit(1)
	}
	tracePath := rest[0]

	cfg, err := config.Load(cf.configPath)
	if err != nil {
		log.Fatalf("FATAL %v", err)
	}
	cfg, err = cfg.ApplyEnv()
	if err != nil {
		log.Fatalf("FATAL %v", err)
	}

	f, err := os.Open(tracePath)
	if err != nil {
		log.Fatalf("FATAL could not open trace file: %v", err)
	}
	defer f.Close()

	corpus, _, err := projector.LoadTraceFile(f)
	if err != nil {
		log.Fatalf("FATAL could not parse trace file: %v", err)
	}
	log.Printf("INFO  Loaded %d executions from %s", len(corpus), tracePath)

	strategy, hybridK, err := resolveStrategy(cfg.DetStrategy)
	if err != nil {
		log.Fatalf("FATAL %v", err)
	}

	learner := &complearner.ProcessLearner{BinaryPath: *learnerPath}

	opts := pipeline.Options{
		W:            cfg.Workers,
		TLearn:       cfg.LearnTimeout(),
		TStd:         cfg.StdTimeout(),
		KCL:          cfg.KCL,
		IgnoreValues: cfg.IgnoreValues,
		Strategy:     strategy,
		HybridK:      hybridK,
	}

	res, err := pipeline.Run(context.Background(), corpus, learner, opts)
	if err != nil {
		log.Fatalf("FATAL pipeline run failed: %v", err)
	}
	for comp, skipErr := range res.SkippedLearns {
		log.Printf("WARN  component %q was skipped: %v", comp, skipErr)
	}

	st, err := store.NewSQLiteStore(cf.dbPath)
	if err != nil {
		log.Fatalf("FATAL could not open run store: %v", err)
	}
	defer st.Close()

	run, err := st.Create(context.Background(), store.Run{
		ProjectionTime:     res.Metrics.ProjectionTime,
		InferenceTime:      res.Metrics.InferenceTime,
		StitchingTime:      res.Metrics.StitchingTime,
		ComponentDiversity: res.Metrics.ComponentDiversity,
		System:             res.System,
		Determinized:       res.Determinized,
	})
	if err != nil {
		log.Fatalf("FATAL could not store run: %v", err)
	}

	log.Printf("INFO  Stored run %s", run.ID)
	fmt.Println(run.ID)
	fmt.Println(report.MetricsTable(res.Metrics.ProjectionTime, res.Metrics.InferenceTime, res.Metrics.StitchingTime, res.Metrics.ComponentDiversity))
	if res.Determinized != nil {
		fmt.Println(report.AutomatonSummaryTable(res.Determinized))
	}
}

// resolveStrategy maps a det_strategy string (spec §6) to the pipeline's
// strategy enum plus a hybrid-k value, for the infer subcommand.
func resolveStrategy(s string) (pipeline.DetStrategy, int, error) {
	name, k, err := config.ParseStrategy(s)
	if err != nil {
		return 0, 0, err
	}
	switch name {
	case "standard":
		return pipeline.DetStandard, 0, nil
	case "heuristic":
		return pipeline.DetHeuristic, 0, nil
	case "hybrid":
		if k < 0 {
			k = determinize.NoLimit
		}
		return pipeline.DetHybridK, k, nil
	default:
		return 0, 0, fmt.Errorf("unrecognized det_strategy %q", s)
	}
}
