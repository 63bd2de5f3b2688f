package lir

import (
	"fmt"
	"strings"
)

// String renders a single instruction in the debug/fixpoint textual form:
// an opcode shows its full name, a literal push shows Push(0xHH...), a
// small-int push shows its canonical opcode name, and an inner script
// recurses.
func (i Instruction) String() string {
	switch i.kind {
	case KindLiteralPush:
		return fmt.Sprintf("Push(0x%x)", i.data)
	case KindSmallIntPush:
		return canonicalSmallIntName(i.smallInt)
	case KindOpcode:
		return i.op.Name
	case KindInnerScript:
		return fmt.Sprintf("InnerScript[%s]", i.body.String())
	default:
		return "?"
	}
}

func canonicalSmallIntName(n int) string {
	if n == -1 {
		return "OP_1NEGATE"
	}
	if n == 0 {
		return "OP_0"
	}
	return fmt.Sprintf("OP_%d", n)
}

// String renders the whole sequence as the list of its instructions' own
// textual forms. Two LIRs are equal under the fixpoint comparison iff
// their serializations are equal.
func (l *LInstructions) String() string {
	parts := make([]string, len(l.items))
	for i, instr := range l.items {
		parts[i] = instr.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
