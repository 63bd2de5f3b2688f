// Package lir implements the linear intermediate representation: an
// ordered sequence of instruction nodes on which the peephole optimizer
// and the contextualizer's lowering operate.
package lir

import (
	"bytes"

	"btcscript/internal/opcode"
)

// MaxPushBytes is the standard Bitcoin Script push limit.
const MaxPushBytes = 520

// Instruction is one element of a Linear IR sequence. Exactly one of the
// four constructor functions below should be used to build a value;
// Kind reports which variant is populated.
type Instruction struct {
	kind instructionKind

	// LiteralPush
	data []byte

	// SmallIntPush
	smallInt int

	// Opcode
	op opcode.Opcode

	// InnerScript
	body *LInstructions
}

type instructionKind int

const (
	KindLiteralPush instructionKind = iota
	KindSmallIntPush
	KindOpcode
	KindInnerScript
)

// LiteralPush constructs an instruction that pushes the given literal
// bytes. Panics if data exceeds MaxPushBytes; callers compiling untrusted
// input should check length themselves and surface a PushTooLarge error
// instead of relying on this panic.
func LiteralPush(data []byte) Instruction {
	if len(data) > MaxPushBytes {
		panic("lir: LiteralPush exceeds max push size")
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return Instruction{kind: KindLiteralPush, data: cp}
}

// SmallIntPush constructs an instruction that pushes a compact small
// integer. Panics if value is out of range.
func SmallIntPush(value int) Instruction {
	if !opcode.IsSmallIntRange(value) {
		panic("lir: SmallIntPush value out of range")
	}
	return Instruction{kind: KindSmallIntPush, smallInt: value}
}

// Op constructs an instruction wrapping a non-push opcode.
func Op(op opcode.Opcode) Instruction {
	return Instruction{kind: KindOpcode, op: op}
}

// InnerScriptOf constructs an instruction wrapping a nested script body.
func InnerScriptOf(body *LInstructions) Instruction {
	return Instruction{kind: KindInnerScript, body: body.CopySlice(0, body.Len())}
}

func (i Instruction) Kind() instructionKind { return i.kind }

func (i Instruction) IsLiteralPush() bool  { return i.kind == KindLiteralPush }
func (i Instruction) IsSmallIntPush() bool { return i.kind == KindSmallIntPush }
func (i Instruction) IsOpcode() bool       { return i.kind == KindOpcode }
func (i Instruction) IsInnerScript() bool  { return i.kind == KindInnerScript }

// Data returns the literal bytes of a LiteralPush instruction. Panics if
// called on any other kind.
func (i Instruction) Data() []byte {
	if i.kind != KindLiteralPush {
		panic("lir: Data called on non-LiteralPush instruction")
	}
	out := make([]byte, len(i.data))
	copy(out, i.data)
	return out
}

// SmallIntValue returns the pushed value of a SmallIntPush instruction.
func (i Instruction) SmallIntValue() int {
	if i.kind != KindSmallIntPush {
		panic("lir: SmallIntValue called on non-SmallIntPush instruction")
	}
	return i.smallInt
}

// Opcode returns the wrapped Opcode. Panics if called on any other kind.
func (i Instruction) Opcode() opcode.Opcode {
	if i.kind != KindOpcode {
		panic("lir: Opcode called on non-Opcode instruction")
	}
	return i.op
}

// Body returns a deep copy of an InnerScript instruction's nested LIR.
func (i Instruction) Body() *LInstructions {
	if i.kind != KindInnerScript {
		panic("lir: Body called on non-InnerScript instruction")
	}
	return i.body.CopySlice(0, i.body.Len())
}

// Equal reports strict value equality: same kind, and for each kind the
// same underlying value (opcode identity, literal bytes, small-int
// value, or recursively-equal inner script).
func (i Instruction) Equal(o Instruction) bool {
	if i.kind != o.kind {
		return false
	}
	switch i.kind {
	case KindLiteralPush:
		return bytes.Equal(i.data, o.data)
	case KindSmallIntPush:
		return i.smallInt == o.smallInt
	case KindOpcode:
		return i.op.Name == o.op.Name
	case KindInnerScript:
		return i.body.Equal(o.body)
	default:
		return false
	}
}
