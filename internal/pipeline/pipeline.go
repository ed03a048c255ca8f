// Package pipeline drives the THIR transform sequence in its fixed
// order — overload definition checks, type specialisation, function
// dispatch preambles, type erasure — halting before the next stage as
// soon as one stage reports an error (spec.md §7's propagation policy).
// The Config/Result shape and per-phase timing map follow the teacher's
// unified compilation pipeline (internal/pipeline/pipeline.go).
package pipeline

import (
	"time"

	"github.com/shackle-lang/shackle/internal/diag"
	"github.com/shackle-lang/shackle/internal/dispatch"
	"github.com/shackle-lang/shackle/internal/erase"
	"github.com/shackle-lang/shackle/internal/overload"
	"github.com/shackle-lang/shackle/internal/registry"
	"github.com/shackle-lang/shackle/internal/specialize"
	"github.com/shackle-lang/shackle/internal/thir"
)

// Stage names, in execution order.
const (
	StageCheck      = "overload-check"
	StageSpecialize = "specialize"
	StageDispatch   = "dispatch"
	StageErase      = "erase"
)

// Config contains pipeline options.
type Config struct {
	// RegisterBuiltins installs the builtin function signatures the
	// specialise and dispatch stages resolve by name (show, occurs,
	// is_fixed, ...) into the source model before running. Callers whose
	// model already carries them (e.g. one produced by a real HIR
	// lowering with the standard library loaded) leave this false.
	RegisterBuiltins bool

	// OnStage, when non-nil, observes each stage's output model right
	// after the stage completes.
	OnStage func(stage string, m *thir.Model)
}

// Result contains every stage's output. Models for stages after a
// failed one are nil.
type Result struct {
	Specialized *thir.Model
	Dispatched  *thir.Model
	Erased      *thir.Model

	// Sinks holds each stage's diagnostics, keyed by stage name.
	Sinks map[string]*diag.Sink

	// FailedStage names the stage that halted the pipeline, "" if none.
	FailedStage string

	// PhaseTimings records wall-clock milliseconds per stage.
	PhaseTimings map[string]int64
}

// Run executes the pipeline over src. The bool result reports whether
// every stage completed without errors.
func Run(cfg Config, src *thir.Model, ctx *registry.Context) (Result, bool) {
	res := Result{
		Sinks:        make(map[string]*diag.Sink),
		PhaseTimings: make(map[string]int64),
	}

	if cfg.RegisterBuiltins {
		specialize.RegisterBuiltins(src, ctx)
		dispatch.RegisterBuiltins(src, ctx)
	}

	checkSink := diag.NewSink()
	start := time.Now()
	for _, r := range overload.CheckDefinitions(src, src.BuildOverloadMap()) {
		checkSink.Report(r)
	}
	res.Sinks[StageCheck] = checkSink
	res.PhaseTimings[StageCheck] = time.Since(start).Milliseconds()
	if !checkSink.OK() {
		res.FailedStage = StageCheck
		return res, false
	}

	start = time.Now()
	specialized, sink := specialize.New(src, ctx, diag.NewSink()).Run()
	res.Sinks[StageSpecialize] = sink
	res.PhaseTimings[StageSpecialize] = time.Since(start).Milliseconds()
	res.Specialized = specialized
	if cfg.OnStage != nil {
		cfg.OnStage(StageSpecialize, specialized)
	}
	if !sink.OK() {
		res.FailedStage = StageSpecialize
		return res, false
	}

	start = time.Now()
	dispatched, sink := dispatch.New(specialized, ctx, diag.NewSink()).Run()
	res.Sinks[StageDispatch] = sink
	res.PhaseTimings[StageDispatch] = time.Since(start).Milliseconds()
	res.Dispatched = dispatched
	if cfg.OnStage != nil {
		cfg.OnStage(StageDispatch, dispatched)
	}
	if !sink.OK() {
		res.FailedStage = StageDispatch
		return res, false
	}

	start = time.Now()
	erased, sink := erase.New(dispatched, ctx, diag.NewSink()).Run()
	res.Sinks[StageErase] = sink
	res.PhaseTimings[StageErase] = time.Since(start).Milliseconds()
	res.Erased = erased
	if cfg.OnStage != nil {
		cfg.OnStage(StageErase, erased)
	}
	if !sink.OK() {
		res.FailedStage = StageErase
		return res, false
	}

	return res, true
}
