// Package emit is the output classifier: it renders LIR either as ASM
// text or as the raw Bitcoin Script byte format.
package emit

import (
	"fmt"
	"strconv"
	"strings"

	"btcscript/internal/lir"
	"btcscript/internal/opcode"
)

// ASM renders l as whitespace-separated ASM text: LiteralPush becomes a
// 0x-prefixed, lowercase, even-digit-count hex token; Opcode and
// SmallIntPush render as the opcode's name with the leading "OP_"
// stripped; InnerScript recurses into its own ASM text wrapped in
// brackets.
func ASM(l *lir.LInstructions) string {
	var parts []string
	for _, instr := range l.Slice() {
		parts = append(parts, asmToken(instr))
	}
	return strings.Join(parts, " ")
}

func asmToken(instr lir.Instruction) string {
	switch {
	case instr.IsLiteralPush():
		return "0x" + hexLower(instr.Data())
	case instr.IsSmallIntPush():
		op, _ := opcode.SmallInt(instr.SmallIntValue())
		return strings.TrimPrefix(op.Name, "OP_")
	case instr.IsOpcode():
		return strings.TrimPrefix(instr.Opcode().Name, "OP_")
	case instr.IsInnerScript():
		return "[" + ASM(instr.Body()) + "]"
	default:
		panic(fmt.Sprintf("emit: unhandled instruction kind for %v", instr))
	}
}

func hexLower(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		sb.WriteString(strconv.FormatUint(uint64(c>>4), 16))
		sb.WriteString(strconv.FormatUint(uint64(c&0xf), 16))
	}
	return sb.String()
}
