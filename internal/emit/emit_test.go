package emit

import (
	"bytes"
	"testing"

	"btcscript/internal/lir"
	"btcscript/internal/opcode"
)

func mustOp(t *testing.T, name string) lir.Instruction {
	t.Helper()
	op, ok := opcode.ByName(name)
	if !ok {
		t.Fatalf("unknown opcode %q", name)
	}
	return lir.Op(op)
}

func TestASMLiteralFormatting(t *testing.T) {
	l := lir.FromSlice([]lir.Instruction{lir.LiteralPush([]byte{0xde, 0xad})})
	if got, want := ASM(l), "0xdead"; got != want {
		t.Errorf("ASM() = %q, want %q", got, want)
	}
}

func TestASMOpcodeStripsPrefix(t *testing.T) {
	l := lir.FromSlice([]lir.Instruction{mustOp(t, "OP_DUP"), mustOp(t, "OP_CHECKSIG")})
	if got, want := ASM(l), "DUP CHECKSIG"; got != want {
		t.Errorf("ASM() = %q, want %q", got, want)
	}
}

func TestASMSmallInt(t *testing.T) {
	l := lir.FromSlice([]lir.Instruction{lir.SmallIntPush(0), lir.SmallIntPush(16), lir.SmallIntPush(-1)})
	if got, want := ASM(l), "0 16 1NEGATE"; got != want {
		t.Errorf("ASM() = %q, want %q", got, want)
	}
}

func TestASMInnerScript(t *testing.T) {
	inner := lir.FromSlice([]lir.Instruction{mustOp(t, "OP_DUP")})
	l := lir.FromSlice([]lir.Instruction{lir.InnerScriptOf(inner)})
	if got, want := ASM(l), "[DUP]"; got != want {
		t.Errorf("ASM() = %q, want %q", got, want)
	}
}

func TestBytesMinimalPush(t *testing.T) {
	l := lir.FromSlice([]lir.Instruction{lir.LiteralPush([]byte{0x01, 0x02, 0x03})})
	got, err := Bytes(l)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x03, 0x01, 0x02, 0x03}
	if !bytes.Equal(got, want) {
		t.Errorf("Bytes() = %x, want %x", got, want)
	}
}

func TestBytesPushData1(t *testing.T) {
	data := make([]byte, 76)
	l := lir.FromSlice([]lir.Instruction{lir.LiteralPush(data)})
	got, err := Bytes(l)
	if err != nil {
		t.Fatal(err)
	}
	pushData1, _ := opcode.ByName("OP_PUSHDATA1")
	if got[0] != pushData1.Code || got[1] != 76 {
		t.Errorf("header = %x, want [%x 4c]", got[:2], pushData1.Code)
	}
	if len(got) != 2+76 {
		t.Errorf("len(got) = %d, want %d", len(got), 2+76)
	}
}

func TestBytesOpcodeAndSmallInt(t *testing.T) {
	l := lir.FromSlice([]lir.Instruction{lir.SmallIntPush(1), mustOp(t, "OP_ADD")})
	got, err := Bytes(l)
	if err != nil {
		t.Fatal(err)
	}
	op1, _ := opcode.ByName("OP_1")
	add, _ := opcode.ByName("OP_ADD")
	want := []byte{op1.Code, add.Code}
	if !bytes.Equal(got, want) {
		t.Errorf("Bytes() = %x, want %x", got, want)
	}
}

func TestContainerRoundTrip(t *testing.T) {
	script := []byte{0x51, 0x93, 0x52, 0x87}
	var buf bytes.Buffer
	if err := WriteContainer(&buf, script); err != nil {
		t.Fatal(err)
	}
	got, err := ReadContainer(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, script) {
		t.Errorf("ReadContainer() = %x, want %x", got, script)
	}
}

func TestContainerRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0})
	if _, err := ReadContainer(buf); err == nil {
		t.Fatal("expected an error for a bad magic number")
	}
}
