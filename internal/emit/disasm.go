package emit

import (
	"encoding/binary"
	"fmt"

	"btcscript/internal/lir"
	"btcscript/internal/opcode"
)

// Disassemble parses raw Bitcoin Script bytes back into LIR. It is the
// inverse of Bytes for any sequence Bytes produced, with two caveats
// inherent to the byte format itself: an InnerScript instruction compiles
// to an ordinary minimal push, so Disassemble has no way to tell a
// compiler-level inner script apart from any other data push of the same
// length and always returns it as a LiteralPush, matching how a real
// disassembler reads the wire format; and an empty LiteralPush, which
// Bytes writes as OP_0, comes back as SmallIntPush(0).
func Disassemble(data []byte) (*lir.LInstructions, error) {
	l := lir.New()
	i := 0
	for i < len(data) {
		code := data[i]
		i++
		n, advance, ok, err := pushLength(code, data[i:])
		if err != nil {
			return nil, err
		}
		if ok {
			if i+advance+n > len(data) {
				return nil, fmt.Errorf("emit: disassemble: truncated push at offset %d", i-1)
			}
			i += advance
			l.Append(lir.LiteralPush(data[i : i+n]))
			i += n
			continue
		}
		op, ok := opcode.ByCode(code)
		if !ok {
			return nil, fmt.Errorf("emit: disassemble: unknown opcode byte %#x at offset %d", code, i-1)
		}
		if op.IsSmallInt() {
			l.Append(lir.SmallIntPush(op.SmallInt))
		} else {
			l.Append(lir.Op(op))
		}
	}
	return l, nil
}

// pushLength reports, for a leading opcode byte, whether it is a push
// opcode and if so how many bytes follow (advance, the push's own length
// prefix) before n bytes of pushed data.
func pushLength(code byte, rest []byte) (n, advance int, ok bool, err error) {
	switch {
	case code >= 1 && code <= 75:
		return int(code), 0, true, nil
	case code == mustCode("OP_PUSHDATA1"):
		if len(rest) < 1 {
			return 0, 0, false, fmt.Errorf("emit: disassemble: truncated OP_PUSHDATA1 length")
		}
		return int(rest[0]), 1, true, nil
	case code == mustCode("OP_PUSHDATA2"):
		if len(rest) < 2 {
			return 0, 0, false, fmt.Errorf("emit: disassemble: truncated OP_PUSHDATA2 length")
		}
		return int(binary.LittleEndian.Uint16(rest[:2])), 2, true, nil
	case code == mustCode("OP_PUSHDATA4"):
		if len(rest) < 4 {
			return 0, 0, false, fmt.Errorf("emit: disassemble: truncated OP_PUSHDATA4 length")
		}
		return int(binary.LittleEndian.Uint32(rest[:4])), 4, true, nil
	default:
		return 0, 0, false, nil
	}
}

func mustCode(name string) byte {
	op, ok := opcode.ByName(name)
	if !ok {
		panic("emit: unknown opcode " + name)
	}
	return op.Code
}
