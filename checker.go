// Package xcheck is an explicit-state model checker: given a finite-state
// concurrent model expressed over a bit-packed state vector (package
// vecstate), it enumerates the reachable state space breadth-first
// (package statestore), optionally reduced by stubborn sets (package
// stubborn), verifies safety, deadlock, may-progress, and must-progress
// properties (package progress), and renders a counterexample for the
// first violation found (package report).
package xcheck

import (
	"fmt"
	"os"

	"xcheck/progress"
	"xcheck/report"
	"xcheck/statestore"
	"xcheck/vecstate"
)

// Checker binds a Model to a set of Options and runs it.
type Checker struct {
	model Model
	cfg   config
}

// New prepares a Checker for model, configured by opts.
func New(model Model, opts ...Option) *Checker {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(&cfg)
	}
	if cfg.out == nil {
		cfg.out = os.Stdout
	}
	return &Checker{model: model, cfg: cfg}
}

// Run explores model's reachable state space and checks every property
// selected by the Checker's options, in the order spec.md §2 describes:
// forward BFS (with on-the-fly safety/deadlock checks), back-edge
// materialisation, then the progress rounds. It stops at the first
// violation and renders its counterexample.
func (ch *Checker) Run() Result {
	layout := vecstate.NewLayout()
	ch.model.Declare(layout)
	layout.Start()

	store := statestore.New(layout, ch.cfg.hashBits, ch.cfg.stopCount)

	initCursor := Cursor{v: store.Vector(1), sane: !ch.cfg.noSanityCheck}
	nrTrans, err := ch.model.NrTransitions(initCursor)
	if err != nil {
		return Result{Err: err}
	}
	if nrTrans <= 0 {
		return Result{Err: ErrNoTransitions}
	}
	if ch.cfg.stubborn {
		if _, ok := ch.model.(StubbornModel); !ok {
			return Result{Err: ErrNotStubbornModel}
		}
	}
	store.SeedInitial()

	e := newEngine(ch.model, store, ch.cfg, nrTrans)

	var warnings []string
	if ch.cfg.stubborn && ch.cfg.checkMust {
		warnings = append(warnings, "Must progress is unreliable with stubborn sets")
	}

	if err := runForwardBFS(e, ch.cfg.progressEvery, ch.cfg.out); err != nil {
		return ch.reportFailure(e, store, err, warnings)
	}

	if ch.cfg.onlyTypical {
		return ch.renderTypical(e, store, warnings)
	}

	runProgress := !ch.cfg.noProgressChk && (ch.cfg.checkMay || ch.cfg.checkMust || ch.cfg.stubborn)
	if runProgress {
		if err := runBackEdgePass(e); err != nil {
			return ch.reportFailure(e, store, err, warnings)
		}
		if err := ch.checkProgress(store); err != nil {
			return ch.reportFailure(e, store, err, warnings)
		}
	}

	if ch.cfg.sizeParam != 0 {
		fmt.Fprintf(ch.cfg.out, "%d states, %d edges, size_par=%d\n", store.Len(), store.NrEdges(), ch.cfg.sizeParam)
	} else {
		fmt.Fprintf(ch.cfg.out, "%d states, %d edges\n", store.Len(), store.NrEdges())
	}
	return Result{States: store.Len(), Edges: store.NrEdges(), SizeParam: ch.cfg.sizeParam, Warnings: warnings}
}

// checkProgress runs the one to three backward-labelling rounds selected
// by the Checker's options (C8) and turns the first violation into a
// VerificationError.
func (ch *Checker) checkProgress(store *statestore.Store) error {
	sane := !ch.cfg.noSanityCheck

	isMay := func(i int) bool {
		mp, ok := ch.model.(MayProgressModel)
		return ok && mp.IsMayProgress(Cursor{v: store.Vector(i), sane: sane})
	}
	isMust := func(i int) bool {
		mp, ok := ch.model.(MustProgressModel)
		return ok && mp.IsMustProgress(Cursor{v: store.Vector(i), sane: sane})
	}

	if ch.cfg.checkMay {
		if violator, ok := progress.Run(store, progress.RoundMay, isMay, ch.cfg.excludeTerminalsFromMay); !ok {
			return VerificationError{Kind: KindMayProgress, Node: violator}
		}
	}
	if ch.cfg.checkMust {
		if violator, ok := progress.Run(store, progress.RoundMust, isMust, ch.cfg.excludeTerminalsFromMust); !ok {
			return VerificationError{Kind: KindMustProgress, Node: violator}
		}
	}
	if ch.cfg.stubborn {
		if violator, ok := progress.Run(store, progress.RoundMayTerminate, nil, false); !ok {
			return VerificationError{Kind: KindReachability, Node: violator}
		}
	}
	return nil
}

// reportHost adapts an engine and its store to report.Host.
type reportHost struct {
	e *engine
}

func (h *reportHost) Prev(i int) int { return h.e.store.Prev(i) }

func (h *reportHost) Format(i int) string {
	c := Cursor{v: h.e.store.Vector(i), sane: h.e.cursorSane()}
	return h.e.model.Print(c)
}

func (h *reportHost) Successors(i int) []int { return h.e.successors(i) }

func alwaysBad(int) bool { return true }

// reportFailure renders err's counterexample, if it is a VerificationError,
// and packages the outcome into a Result.
func (ch *Checker) reportFailure(e *engine, store *statestore.Store, err error, warnings []string) Result {
	verr, ok := err.(VerificationError)
	if !ok {
		return Result{States: store.Len(), Edges: store.NrEdges(), SizeParam: ch.cfg.sizeParam, Err: err, Warnings: warnings}
	}

	host := &reportHost{e: e}
	var trace report.Trace
	switch verr.Kind {
	case KindMayProgress, KindMustProgress, KindReachability:
		if t, found := report.TypicalSequence(host, verr.Node, alwaysBad); found {
			trace = t
		} else {
			trace = report.Trace{Prefix: report.History(host, verr.Node)}
		}
	default:
		trace = report.Trace{Prefix: report.History(host, verr.Node)}
	}

	var r report.Reporter
	text, _ := r.Render(host, verr.Kind.String(), trace)
	return Result{States: store.Len(), Edges: store.NrEdges(), SizeParam: ch.cfg.sizeParam, Err: verr, Trace: text, Warnings: warnings}
}

// renderTypical builds and renders a single typical execution trace from
// the initial state, skipping verification entirely (WithOnlyTypical).
func (ch *Checker) renderTypical(e *engine, store *statestore.Store, warnings []string) Result {
	host := &reportHost{e: e}
	trace, _ := report.TypicalSequence(host, 1, alwaysBad)
	var r report.Reporter
	text, _ := r.Render(host, "typical sequence", trace)
	return Result{States: store.Len(), Edges: store.NrEdges(), SizeParam: ch.cfg.sizeParam, Trace: text, Warnings: warnings}
}
