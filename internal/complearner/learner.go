package complearner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/dekarrin/prins/internal/automaton"
	"github.com/dekarrin/prins/internal/perr"
)

// Options configures one CompLearner invocation (spec §6's per-component
// configuration: T_learn, k_CL, ignore_values).
type Options struct {
	// Timeout is the per-component wall-clock limit (T_learn). Zero means
	// no limit.
	Timeout time.Duration
	// K is the CompLearner hyper-parameter, passed through opaquely.
	K int
	// IgnoreValues omits values from the encoded input, producing a
	// guard-free model.
	IgnoreValues bool
	// Deterministic requests the determinism contract of spec §4.3: the
	// decoded NFA is standard-determinized and re-wrapped as a
	// singleton-image NFA before being returned.
	Deterministic bool
}

// Learner is the CompLearner adapter interface (C3): it infers a component
// automaton from that component's sub-log. Implementations are treated as
// an opaque, external black box (spec §1); the core only depends on this
// interface.
type Learner interface {
	Infer(ctx context.Context, component string, sub SubLog, opts Options) (*automaton.NFA, error)
}

// ProcessLearner shells out to an external CompLearner binary, writing the
// wire-format input to a temp file and parsing its dot-like output.
// Grounded on src/utils/MINT/MINT.py::run's subprocess-plus-postprocess
// pattern.
type ProcessLearner struct {
	// BinaryPath is the path to the external CompLearner executable.
	BinaryPath string
	// WorkDir is the directory used for the input/output temp files; an
	// empty value uses os.TempDir().
	WorkDir string
}

func (p *ProcessLearner) Infer(ctx context.Context, component string, sub SubLog, opts Options) (*automaton.NFA, error) {
	workDir := p.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}

	input := EncodeWireFormat(sub, opts.IgnoreValues)
	inputPath := filepath.Join(workDir, fmt.Sprintf("%s_mint_in.txt", component))
	if err := os.WriteFile(inputPath, []byte(input), 0o644); err != nil {
		return nil, perr.LearnerErrorf(err, "component %q: failed to write CompLearner input", component)
	}

	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if opts.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
	}
	defer cancel()

	cmd := exec.CommandContext(runCtx, p.BinaryPath, "-input", inputPath, "-k", fmt.Sprintf("%d", opts.K))
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		return nil, perr.New(perr.KindLearner, fmt.Sprintf("component %q: CompLearner exceeded its %s timeout", component, opts.Timeout), perr.ErrLearnerTimeout)
	}
	if err != nil {
		return nil, perr.LearnerErrorf(err, "component %q: CompLearner exited non-zero: %s", component, stderr.String())
	}

	nfa, err := DecodeDotLike(stdout.String())
	if err != nil {
		return nil, perr.LearnerErrorf(err, "component %q: malformed CompLearner output", component)
	}

	return applyDeterminismContract(nfa, opts)
}

// applyDeterminismContract implements spec §4.3's determinism contract: if
// requested, standard-determinize the decoded NFA and re-wrap it as an NFA
// whose transition images are all singletons.
func applyDeterminismContract(n *automaton.NFA, opts Options) (*automaton.NFA, error) {
	if !opts.Deterministic {
		return n, nil
	}

	dfa, err := n.StandardDeterminize(opts.Timeout)
	if err != nil {
		return nil, err
	}
	dfa.ShortenStates(true)

	out := automaton.New()
	for sym := range dfa.Sigma {
		out.Sigma.Add(sym)
	}
	for _, s := range dfa.Q.Elements() {
		out.AddState(s, dfa.F.Has(s))
	}
	out.Start = dfa.Start
	for from, row := range dfa.Delta {
		for sym, to := range row {
			out.AddTransition(from, sym, to)
		}
	}

	return out, nil
}

// FakeLearner is an in-process stand-in for a CompLearner, used in tests so
// the pipeline's test suite never shells out to an external process. It
// returns a preset automaton for a given component, ignoring the actual
// sub-log contents.
type FakeLearner struct {
	Models map[string]*automaton.NFA
}

func (f *FakeLearner) Infer(ctx context.Context, component string, sub SubLog, opts Options) (*automaton.NFA, error) {
	model, ok := f.Models[component]
	if !ok {
		return nil, perr.LearnerErrorf(fmt.Errorf("no fake model registered"), "component %q", component)
	}
	return applyDeterminismContract(model.Copy(), opts)
}
