package peephole

import "btcscript/internal/lir"

// MaxPasses bounds the fixpoint driver's pass count. It is a var, not a
// const, so the CLI can lower or raise it per invocation via --max-passes.
var MaxPasses = 5

// Optimize runs every rule in Rules(), in registration order, against l
// repeatedly until a pass leaves the serialized LIR unchanged or
// MaxPasses+1 passes have run (pass 0 through pass MaxPasses, inclusive).
// It mutates l in place and also returns it. Optimize is idempotent:
// Optimize(Optimize(l)) produces the same LIR as Optimize(l).
func Optimize(l *lir.LInstructions) *lir.LInstructions {
	rules := Rules()
	before := l.String()
	for pass := 0; pass <= MaxPasses; pass++ {
		for _, r := range rules {
			r.Apply(l)
		}
		after := l.String()
		if after == before {
			return l
		}
		before = after
	}
	return l
}

// Trace runs the same fixpoint loop as Optimize but returns the
// serialized LIR before the first pass and after every pass, for
// diagnostics (see internal/trace).
func Trace(l *lir.LInstructions) []string {
	rules := Rules()
	var history []string
	before := l.String()
	history = append(history, before)
	for pass := 0; pass <= MaxPasses; pass++ {
		for _, r := range rules {
			r.Apply(l)
		}
		after := l.String()
		history = append(history, after)
		if after == before {
			break
		}
		before = after
	}
	return history
}
