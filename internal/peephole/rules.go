// Package peephole implements the template-driven peephole optimizer: a
// fixed, ordered set of independent rewrite rules and the fixpoint driver
// that runs them to convergence.
package peephole

import (
	"btcscript/internal/lir"
	"btcscript/internal/opcode"
)

// Rule is one independent rewrite rule. Apply mutates l in place and
// returns whether it changed anything; the fixpoint driver does not rely
// on this return value for termination (it compares the whole sequence's
// serialization before and after a pass) but rules report it for tracing.
type Rule struct {
	Name  string
	Apply func(l *lir.LInstructions) bool
}

func mustOp(name string) opcode.Opcode {
	op, ok := opcode.ByName(name)
	if !ok {
		panic("peephole: unknown opcode " + name)
	}
	return op
}

func op(name string) lir.Instruction { return lir.Op(mustOp(name)) }

// Rules returns the canonical rule set in the fixed registration order
// required by spec section 4.3. The fixpoint driver runs them in this
// order on every pass.
func Rules() []Rule {
	return []Rule{
		{"verify-fusion", verifyFusion},
		{"repeated-drop-folding", repeatedDropFolding},
		{"stack-op-simplifications", stackOpSimplifications},
		{"shortcut-opcodes", shortcutOpcodes},
		{"null-op-elimination", nullOpElimination},
		{"dup-before-checksig-elision", dupBeforeChecksigElision},
		{"hash-fusion", hashFusion},
		{"trailing-verify-stripping", trailingVerifyStripping},
		{"return-promotion", returnPromotion},
	}
}

// --- 1. Verify fusion ---------------------------------------------------

// verifyFusion folds [base, OP_VERIFY] into the opcode's own VERIFY form,
// for every opcode pair the registry declares (OP_EQUAL/OP_EQUALVERIFY,
// OP_NUMEQUAL/OP_NUMEQUALVERIFY, OP_CHECKSIG/OP_CHECKSIGVERIFY,
// OP_CHECKMULTISIG/OP_CHECKMULTISIGVERIFY). OP_VERIFY itself has no base
// and is never folded into anything.
func verifyFusion(l *lir.LInstructions) bool {
	changed := false
	for _, base := range opcode.All() {
		if base.Kind != opcode.PairsWithVerify {
			continue
		}
		verify := mustOp(base.Pair)
		tmpl := lir.Template{lir.Slot(lir.Op(base)), lir.Slot(op("OP_VERIFY"))}
		if l.ReplaceTemplate(tmpl, func(window []lir.Instruction) []lir.Instruction {
			return []lir.Instruction{lir.Op(verify)}
		}, true) {
			changed = true
		}
	}
	return changed
}

// --- 2. Repeated-drop folding -------------------------------------------

func repeatedDropFolding(l *lir.LInstructions) bool {
	tmpl := lir.Template{lir.Slot(op("OP_DROP")), lir.Slot(op("OP_DROP"))}
	return l.ReplaceTemplate(tmpl, func(window []lir.Instruction) []lir.Instruction {
		return []lir.Instruction{op("OP_2DROP")}
	}, true)
}

// --- 3. Stack-op simplifications ----------------------------------------

// stackOpSimplifications applies the six fixed patterns in a fixed order.
// The four-element cancellation (OP_1 OP_ROLL OP_1 OP_ROLL -> nothing) is
// tried first, so neither the [OP_1 OP_ROLL OP_DROP] -> OP_NIP rule nor
// the bare OP_1 OP_ROLL -> OP_SWAP rule pre-empts its leading half.
func stackOpSimplifications(l *lir.LInstructions) bool {
	changed := false
	run := func(tmpl lir.Template, replacement []lir.Instruction) {
		if l.ReplaceTemplate(tmpl, func(window []lir.Instruction) []lir.Instruction {
			return replacement
		}, true) {
			changed = true
		}
	}
	run(lir.Template{lir.Slot(lir.SmallIntPush(1)), lir.Slot(op("OP_ROLL")), lir.Slot(lir.SmallIntPush(1)), lir.Slot(op("OP_ROLL"))},
		[]lir.Instruction{})
	run(lir.Template{lir.Slot(lir.SmallIntPush(1)), lir.Slot(op("OP_PICK"))},
		[]lir.Instruction{op("OP_OVER")})
	run(lir.Template{lir.Slot(lir.SmallIntPush(1)), lir.Slot(op("OP_ROLL")), lir.Slot(op("OP_DROP"))},
		[]lir.Instruction{op("OP_NIP")})
	run(lir.Template{lir.Slot(lir.SmallIntPush(0)), lir.Slot(op("OP_PICK"))},
		[]lir.Instruction{op("OP_DUP")})
	run(lir.Template{lir.Slot(lir.SmallIntPush(0)), lir.Slot(op("OP_ROLL"))},
		[]lir.Instruction{})
	run(lir.Template{lir.Slot(lir.SmallIntPush(1)), lir.Slot(op("OP_ROLL"))},
		[]lir.Instruction{op("OP_SWAP")})
	return changed
}

// --- 4. Shortcut opcodes --------------------------------------------------

// exactSmallInt reports whether instr is a SmallIntPush carrying exactly
// value. ReplaceTemplate's non-strict mode relaxes a SmallIntPush slot to
// match any small-int value, so rules that require a specific constant
// (here, literally 1 or 2) verify it themselves inside the callback and
// leave the window untouched when the constraint fails.
func exactSmallInt(instr lir.Instruction, value int) bool {
	return instr.IsSmallIntPush() && instr.SmallIntValue() == value
}

func shortcutOpcodes(l *lir.LInstructions) bool {
	changed := false

	// [OP_2, OP_DIV] -> [OP_2DIV]; [OP_1, OP_SUB] -> [OP_1SUB];
	// [OP_1, OP_NEGATE] -> [OP_1NEGATE].
	simple := []struct {
		constVal int
		opName   string
		result   string
	}{
		{2, "OP_DIV", "OP_2DIV"},
		{1, "OP_SUB", "OP_1SUB"},
		{1, "OP_NEGATE", "OP_1NEGATE"},
	}
	for _, s := range simple {
		tmpl := lir.Template{lir.Slot(lir.SmallIntPush(s.constVal)), lir.Slot(op(s.opName))}
		if l.ReplaceTemplate(tmpl, func(window []lir.Instruction) []lir.Instruction {
			if !exactSmallInt(window[0], s.constVal) {
				return window
			}
			if r := mustOp(s.result); r.IsSmallInt() {
				return []lir.Instruction{lir.SmallIntPush(r.SmallInt)}
			}
			return []lir.Instruction{op(s.result)}
		}, false) {
			changed = true
		}
	}

	// [push-any, OP_1]/[OP_1, push-any] + OP_ADD -> [push-any, OP_1ADD];
	// likewise for OP_2/OP_MUL -> OP_2MUL.
	combos := []struct {
		constVal int
		opName   string
		result   string
	}{
		{1, "OP_ADD", "OP_1ADD"},
		{2, "OP_MUL", "OP_2MUL"},
	}
	for _, c := range combos {
		if foldConstFirst(l, c.constVal, c.opName, c.result) {
			changed = true
		}
		if foldPushFirst(l, c.constVal, c.opName, c.result) {
			changed = true
		}
	}
	return changed
}

// foldPushFirst handles [push-any, OP_<const>, op] -> [push-any, result].
// The push-any slot is a plain wildcard: it runs before the dropped
// constant in program order in both the original and rewritten code, so
// it can be any instruction at all without changing what it computes.
func foldPushFirst(l *lir.LInstructions, constVal int, opName, result string) bool {
	tmpl := lir.Template{lir.Wildcard(), lir.Slot(lir.SmallIntPush(constVal)), lir.Slot(op(opName))}
	return l.ReplaceTemplate(tmpl, func(window []lir.Instruction) []lir.Instruction {
		if !exactSmallInt(window[1], constVal) {
			return window
		}
		return []lir.Instruction{window[0], op(result)}
	}, false)
}

// foldConstFirst handles [OP_<const>, push-any, op] -> [push-any, result].
// Here the surviving instruction is promoted ahead of where the constant
// used to be, which is only sound when it is itself a context-independent
// push (it cannot have observed the constant that sat beneath it), hence
// two passes restricted to LiteralPush and SmallIntPush placeholders
// rather than a generic wildcard.
func foldConstFirst(l *lir.LInstructions, constVal int, opName, result string) bool {
	changed := false
	for _, placeholder := range []lir.Instruction{lir.LiteralPush([]byte{0}), lir.SmallIntPush(0)} {
		tmpl := lir.Template{lir.Slot(lir.SmallIntPush(constVal)), lir.Slot(placeholder), lir.Slot(op(opName))}
		if l.ReplaceTemplate(tmpl, func(window []lir.Instruction) []lir.Instruction {
			if !exactSmallInt(window[0], constVal) {
				return window
			}
			return []lir.Instruction{window[1], op(result)}
		}, false) {
			changed = true
		}
	}
	return changed
}

// --- 5. Null-op elimination ----------------------------------------------

func nullOpElimination(l *lir.LInstructions) bool {
	changed := false

	tmpl := lir.Template{lir.Slot(lir.SmallIntPush(0)), lir.Slot(op("OP_SUB"))}
	if l.ReplaceTemplate(tmpl, func(window []lir.Instruction) []lir.Instruction {
		return []lir.Instruction{}
	}, true) {
		changed = true
	}

	// [wildcard, OP_0, OP_ADD] -> [wildcard]: wildcard runs before the
	// dropped 0+ADD in both versions, so any instruction is safe here.
	tmplWildcardFirst := lir.Template{lir.Wildcard(), lir.Slot(lir.SmallIntPush(0)), lir.Slot(op("OP_ADD"))}
	if l.ReplaceTemplate(tmplWildcardFirst, func(window []lir.Instruction) []lir.Instruction {
		if !exactSmallInt(window[1], 0) {
			return window
		}
		return []lir.Instruction{window[0]}
	}, false) {
		changed = true
	}

	// [OP_0, wildcard, OP_ADD] -> [wildcard]: the kept instruction moves
	// ahead of where the 0 used to sit, so (as in shortcutOpcodes) it must
	// be restricted to an actual push.
	for _, placeholder := range []lir.Instruction{lir.LiteralPush([]byte{0}), lir.SmallIntPush(0)} {
		tmplZeroFirst := lir.Template{lir.Slot(lir.SmallIntPush(0)), lir.Slot(placeholder), lir.Slot(op("OP_ADD"))}
		if l.ReplaceTemplate(tmplZeroFirst, func(window []lir.Instruction) []lir.Instruction {
			if !exactSmallInt(window[0], 0) {
				return window
			}
			return []lir.Instruction{window[1]}
		}, false) {
			changed = true
		}
	}

	return changed
}

// --- 6. Dup-before-CHECKSIG elision ---------------------------------------

// dupBeforeChecksigElision drops a leading OP_DUP ahead of
// [wildcard, OP_CHECKSIG] unconditionally, matching the reference
// behavior described by spec Open Question (b): it does not verify that
// the duplicated value is otherwise unused.
func dupBeforeChecksigElision(l *lir.LInstructions) bool {
	tmpl := lir.Template{lir.Slot(op("OP_DUP")), lir.Wildcard(), lir.Slot(op("OP_CHECKSIG"))}
	return l.ReplaceTemplate(tmpl, func(window []lir.Instruction) []lir.Instruction {
		return []lir.Instruction{window[1], op("OP_CHECKSIG")}
	}, true)
}

// --- 7. Hash fusion --------------------------------------------------------

func hashFusion(l *lir.LInstructions) bool {
	changed := false
	tmpl256 := lir.Template{lir.Slot(op("OP_SHA256")), lir.Slot(op("OP_SHA256"))}
	if l.ReplaceTemplate(tmpl256, func(window []lir.Instruction) []lir.Instruction {
		return []lir.Instruction{op("OP_HASH256")}
	}, true) {
		changed = true
	}
	tmpl160 := lir.Template{lir.Slot(op("OP_SHA256")), lir.Slot(op("OP_RIPEMD160"))}
	if l.ReplaceTemplate(tmpl160, func(window []lir.Instruction) []lir.Instruction {
		return []lir.Instruction{op("OP_HASH160")}
	}, true) {
		changed = true
	}
	return changed
}

// --- 8. Trailing-verify stripping ------------------------------------------

func trailingVerifyStripping(l *lir.LInstructions) bool {
	changed := false
	verify := mustOp("OP_VERIFY")
	for l.Len() > 0 && l.Get(l.Len()-1).IsOpcode() && l.Get(l.Len()-1).Opcode().Name == verify.Name {
		l.PopLast()
		changed = true
	}
	return changed
}

// --- 9. Return promotion ---------------------------------------------------

// returnPromotion canonicalizes a script containing OP_RETURN anywhere
// past the head to a single leading OP_RETURN, short-circuiting
// evaluation. This is a whole-sequence rewrite, not template-based.
func returnPromotion(l *lir.LInstructions) bool {
	isReturn := func(i lir.Instruction) bool {
		return i.IsOpcode() && i.Opcode().Name == "OP_RETURN"
	}
	found := false
	for i := 1; i < l.Len(); i++ {
		if isReturn(l.Get(i)) {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	var rest []lir.Instruction
	for _, instr := range l.Slice() {
		if !isReturn(instr) {
			rest = append(rest, instr)
		}
	}
	out := append([]lir.Instruction{op("OP_RETURN")}, rest...)
	l.ReplaceSlice(0, l.Len(), out)
	return true
}
