// Package pipeline implements the Pipeline driver (C8): the end-to-end
// orchestration of ingestion, projection, parallel per-component inference,
// per-execution slicing/stitching, union, and optional determinization.
//
// Grounded on PRINS.py::run_prins in original_source/PRINS. The bounded
// worker pool used for step 3 is grounded on
// projectdiscovery-alterx/internal/inducer/editdistance.go's
// PrecomputeDistancesParallel (jobs channel + sync.WaitGroup, no shared
// mutable state between workers).
package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dekarrin/prins/internal/automaton"
	"github.com/dekarrin/prins/internal/complearner"
	"github.com/dekarrin/prins/internal/determinize"
	"github.com/dekarrin/prins/internal/naturalsort"
	"github.com/dekarrin/prins/internal/perr"
	"github.com/dekarrin/prins/internal/projector"
	"github.com/dekarrin/prins/internal/stitch"
	"github.com/dekarrin/prins/internal/union"
)

// DetStrategy selects the C7 strategy used for the optional final
// determinization pass (spec §6's det_strategy parameter).
type DetStrategy int

const (
	// DetNone skips determinization; Run returns only the system NFA.
	DetNone DetStrategy = iota
	DetStandard
	DetHeuristic
	DetHybridK
)

// Options configures one pipeline invocation (spec §6: W, T_learn, T_std,
// k_CL, ignore_values, det_strategy).
type Options struct {
	// W is the worker pool size for step 3 (default 4 per spec §6).
	W int
	// TLearn is the per-component CompLearner timeout.
	TLearn time.Duration
	// TStd is the standard-determinization timeout (default 1800s).
	TStd time.Duration
	// KCL is the CompLearner hyper-parameter.
	KCL int
	// IgnoreValues requests guard-free component models.
	IgnoreValues bool
	// Strategy selects the final determinization pass, if any.
	Strategy DetStrategy
	// HybridK is consulted only when Strategy == DetHybridK.
	HybridK int
}

// Metrics reports the per-run timing and diversity figures spec §4.8
// requires.
type Metrics struct {
	ProjectionTime time.Duration
	InferenceTime  time.Duration
	StitchingTime  time.Duration
	// ComponentDiversity is |unique component-sets| / |traces|.
	ComponentDiversity float64
}

// Result is the output of one pipeline invocation: the compacted system NFA,
// an optional determinized form, per-component LearnerErrors that were
// skipped rather than fatal, and run metrics.
type Result struct {
	System        *automaton.NFA
	Determinized  *automaton.DFA
	SkippedLearns map[string]error
	Metrics       Metrics
}

// Run executes the full pipeline over corpus (spec §4.8): ingest is assumed
// already done by the caller (corpus is already []projector.LogEntry per
// execution); derive the sorted component set; project; submit each
// component to learner via a bounded worker pool of size opts.W; for each
// execution in natural id order, partition into runs, slice, and append;
// union all per-execution accumulators; compact names; optionally
// determinize.
func Run(ctx context.Context, corpus projector.Corpus, learner complearner.Learner, opts Options) (*Result, error) {
	w := opts.W
	if w <= 0 {
		w = 4
	}

	projStart := time.Now()
	components := projector.Components(corpus)
	byComponent := projector.Project(corpus)
	projTime := time.Since(projStart)

	learnStart := time.Now()
	models, skipped, err := learnComponents(ctx, components, byComponent, learner, opts, w)
	if err != nil {
		return nil, err
	}
	learnTime := time.Since(learnStart)

	stitchStart := time.Now()
	execIDs := naturalsort.Strings(execIDsOf(corpus))
	perExec := make([]*automaton.NFA, 0, len(execIDs))
	fallbackExecs := 0
	for _, execID := range execIDs {
		st := stitch.NewStitcher(copyModels(models))
		runs := projector.PartitionByComponent(corpus[execID])
		acc, fellBack, err := st.StitchExecution(runs)
		if fellBack {
			fallbackExecs++
		}
		if err != nil {
			return nil, fmt.Errorf("pipeline: stitching execution %q: %w", execID, err)
		}
		perExec = append(perExec, acc)
	}
	stitchTime := time.Since(stitchStart)

	// spec §7: the ignore_guard=true fallback is taken silently but logged
	// once per invocation, not once per occurrence, with the number of
	// executions in which it fired.
	if fallbackExecs > 0 {
		log.Printf("WARN  pipeline: ignore_guard fallback was used while stitching %d of %d executions in this run", fallbackExecs, len(execIDs))
	}

	if len(perExec) == 0 {
		return nil, perr.Structuralf("pipeline: corpus has no executions to stitch")
	}

	sys, err := union.Union(perExec)
	if err != nil {
		return nil, fmt.Errorf("pipeline: union: %w", err)
	}

	res := &Result{
		System:        sys,
		SkippedLearns: skipped,
		Metrics: Metrics{
			ProjectionTime:     projTime,
			InferenceTime:      learnTime,
			StitchingTime:      stitchTime,
			ComponentDiversity: componentDiversity(corpus),
		},
	}

	switch opts.Strategy {
	case DetNone:
		// nothing further to do
	case DetStandard:
		d, err := determinize.Standard(sys, opts.TStd)
		if err != nil {
			return nil, err
		}
		res.Determinized = d
	case DetHeuristic:
		d, err := determinize.Heuristic(sys)
		if err != nil {
			return nil, err
		}
		res.Determinized = d
	case DetHybridK:
		d, err := determinize.HybridK(sys, opts.HybridK, opts.TStd)
		if err != nil {
			return nil, err
		}
		res.Determinized = d
	}

	return res, nil
}

type learnJob struct {
	component string
	sub       complearner.SubLog
}

type learnResult struct {
	component string
	model     *automaton.NFA
	err       error
}

// learnComponents submits one inference job per component to a fixed-size
// worker pool, per spec §4.8 step 3. Each worker runs one Learner.Infer
// end-to-end and reports its result on a dedicated channel; there is no
// shared mutable state between workers beyond the channels themselves.
// A per-component error is recorded as skipped rather than aborting the
// run (spec §7); only an error that perr.Fatal reports (a StructuralError)
// aborts it.
func learnComponents(ctx context.Context, components []string, byComponent map[string]map[string][]automaton.Entry, learner complearner.Learner, opts Options, w int) (map[string]*automaton.NFA, map[string]error, error) {
	jobs := make(chan learnJob, len(components))
	results := make(chan learnResult, len(components))

	var wg sync.WaitGroup
	for i := 0; i < w; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				lopts := complearner.Options{
					Timeout:       opts.TLearn,
					K:             opts.KCL,
					IgnoreValues:  opts.IgnoreValues,
					Deterministic: true,
				}
				model, err := learner.Infer(ctx, job.component, job.sub, lopts)
				results <- learnResult{component: job.component, model: model, err: err}
			}
		}()
	}

	for _, c := range components {
		jobs <- learnJob{component: c, sub: byComponent[c]}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	models := make(map[string]*automaton.NFA, len(components))
	skipped := make(map[string]error)
	for r := range results {
		if r.err != nil {
			if perr.Fatal(r.err) {
				return nil, nil, r.err
			}
			skipped[r.component] = r.err
			continue
		}
		models[r.component] = r.model
	}

	return models, skipped, nil
}

func execIDsOf(corpus projector.Corpus) []string {
	ids := make([]string, 0, len(corpus))
	for id := range corpus {
		ids = append(ids, id)
	}
	return ids
}

// copyModels deep-copies every component model before it is handed to a
// fresh Stitcher, so slice cursors private to one execution never mutate
// the shared models other executions still need (spec §5).
func copyModels(models map[string]*automaton.NFA) map[string]*automaton.NFA {
	cp := make(map[string]*automaton.NFA, len(models))
	for k, v := range models {
		cp[k] = v.Copy()
	}
	return cp
}

// componentDiversity computes |unique component-sets| / |traces| (spec
// §4.8).
func componentDiversity(corpus projector.Corpus) float64 {
	if len(corpus) == 0 {
		return 0
	}

	seen := map[string]bool{}
	for _, trace := range corpus {
		present := map[string]bool{}
		for _, e := range trace {
			present[e.Component] = true
		}
		names := make([]string, 0, len(present))
		for c := range present {
			names = append(names, c)
		}
		key := fmt.Sprintf("%v", naturalsort.Strings(names))
		seen[key] = true
	}

	return float64(len(seen)) / float64(len(corpus))
}
