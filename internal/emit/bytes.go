package emit

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"btcscript/internal/lir"
	"btcscript/internal/opcode"
)

// Bytes renders l as the standard Bitcoin Script byte format: each opcode
// is its one-byte code; LiteralPush uses minimal push encoding
// (OP_PUSHBYTES_n for 1..75 bytes, OP_PUSHDATA1/2/4 for larger payloads);
// InnerScript is recursively serialized and itself minimally pushed, since
// it only ever appears as an immediate value on the enclosing script.
func Bytes(l *lir.LInstructions) ([]byte, error) {
	var buf bytes.Buffer
	for _, instr := range l.Slice() {
		if err := writeInstruction(&buf, instr); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func writeInstruction(buf *bytes.Buffer, instr lir.Instruction) error {
	switch {
	case instr.IsLiteralPush():
		return writePush(buf, instr.Data())
	case instr.IsSmallIntPush():
		op, ok := opcode.SmallInt(instr.SmallIntValue())
		if !ok {
			return fmt.Errorf("emit: small-int value %d has no opcode", instr.SmallIntValue())
		}
		buf.WriteByte(op.Code)
		return nil
	case instr.IsOpcode():
		buf.WriteByte(instr.Opcode().Code)
		return nil
	case instr.IsInnerScript():
		inner, err := Bytes(instr.Body())
		if err != nil {
			return err
		}
		return writePush(buf, inner)
	default:
		return fmt.Errorf("emit: unhandled instruction kind")
	}
}

func writePush(buf *bytes.Buffer, data []byte) error {
	n := len(data)
	switch {
	case n == 0:
		op, _ := opcode.ByName("OP_0")
		buf.WriteByte(op.Code)
		return nil
	case n <= 75:
		op, _ := opcode.ByName(fmt.Sprintf("OP_PUSHBYTES_%d", n))
		buf.WriteByte(op.Code)
	case n <= 0xff:
		op, _ := opcode.ByName("OP_PUSHDATA1")
		buf.WriteByte(op.Code)
		buf.WriteByte(byte(n))
	case n <= 0xffff:
		op, _ := opcode.ByName("OP_PUSHDATA2")
		buf.WriteByte(op.Code)
		binary.Write(buf, binary.LittleEndian, uint16(n))
	default:
		op, _ := opcode.ByName("OP_PUSHDATA4")
		buf.WriteByte(op.Code)
		binary.Write(buf, binary.LittleEndian, uint32(n))
	}
	buf.Write(data)
	return nil
}

// Container magic numbers for the small versioned header that wraps
// `cmd/btcscript compile --format=bytes` output.
const (
	containerMagic   uint32 = 0x42544353 // "BTCS"
	containerVersion uint32 = 1
)

// WriteContainer wraps raw Bitcoin Script bytes in a small versioned
// header so a later read can validate it is reading its own output rather
// than an arbitrary byte stream.
func WriteContainer(w io.Writer, script []byte) error {
	if err := binary.Write(w, binary.LittleEndian, containerMagic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, containerVersion); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(script))); err != nil {
		return err
	}
	_, err := w.Write(script)
	return err
}

// ReadContainer reads back a container written by WriteContainer.
func ReadContainer(r io.Reader) ([]byte, error) {
	var magic, version, length uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("emit: reading magic: %w", err)
	}
	if magic != containerMagic {
		return nil, fmt.Errorf("emit: bad magic number %#x", magic)
	}
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("emit: reading version: %w", err)
	}
	if version > containerVersion {
		return nil, fmt.Errorf("emit: unsupported container version %d", version)
	}
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, fmt.Errorf("emit: reading length: %w", err)
	}
	out := make([]byte, length)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("emit: reading payload: %w", err)
	}
	return out, nil
}
