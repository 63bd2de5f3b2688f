// Package trace records the peephole optimizer's fixpoint run pass by
// pass, reporting which rule fired on each pass and the LIR textual form
// it left behind. A State tracks whether the run is still iterating, has
// converged, or exhausted its pass budget, and a RuleFiring records one
// rule's effect within a single pass.
package trace

import (
	"fmt"
	"strings"

	"btcscript/internal/lir"
	"btcscript/internal/peephole"
)

// State is the tracer's run state.
type State int

const (
	Running State = iota
	Converged
	MaxPassesReached
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Converged:
		return "converged"
	case MaxPassesReached:
		return "max-passes-reached"
	default:
		return "unknown"
	}
}

// RuleFiring records one rule's application within a single pass: whether
// it changed the sequence, and the sequence's textual form immediately
// after.
type RuleFiring struct {
	Rule    string
	Changed bool
	After   string
}

// PassRecord records one full pass over the rule set in registration
// order.
type PassRecord struct {
	Pass     int
	Firings  []RuleFiring
	Snapshot string
}

// Tracer accumulates PassRecords across a fixpoint run.
type Tracer struct {
	passes []PassRecord
	state  State
}

// NewTracer returns an idle tracer ready to Run.
func NewTracer() *Tracer {
	return &Tracer{state: Running}
}

// Run executes the same fixpoint loop as peephole.Optimize, but applies
// each rule individually so every firing is recorded, and stops under the
// same convergence/MaxPasses conditions.
func (t *Tracer) Run(l *lir.LInstructions) {
	rules := peephole.Rules()
	before := l.String()
	for pass := 0; pass <= peephole.MaxPasses; pass++ {
		rec := PassRecord{Pass: pass}
		for _, r := range rules {
			changed := r.Apply(l)
			rec.Firings = append(rec.Firings, RuleFiring{
				Rule:    r.Name,
				Changed: changed,
				After:   l.String(),
			})
		}
		rec.Snapshot = l.String()
		t.passes = append(t.passes, rec)
		if rec.Snapshot == before {
			t.state = Converged
			return
		}
		before = rec.Snapshot
	}
	t.state = MaxPassesReached
}

// Passes returns every recorded pass, in order.
func (t *Tracer) Passes() []PassRecord { return t.passes }

// State reports whether the run converged or exhausted MaxPasses.
func (t *Tracer) State() State { return t.state }

// Render produces a human-readable trace: one block per pass, one line
// per rule that actually changed the sequence.
func (t *Tracer) Render() string {
	var b strings.Builder
	for _, pass := range t.passes {
		fmt.Fprintf(&b, "pass %d:\n", pass.Pass)
		any := false
		for _, f := range pass.Firings {
			if !f.Changed {
				continue
			}
			any = true
			fmt.Fprintf(&b, "  %s -> %s\n", f.Rule, f.After)
		}
		if !any {
			fmt.Fprintf(&b, "  (no rule fired)\n")
		}
	}
	fmt.Fprintf(&b, "state: %s\n", t.state)
	return b.String()
}
