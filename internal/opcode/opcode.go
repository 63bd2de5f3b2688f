// Package opcode enumerates the Bitcoin Script opcode universe: every
// opcode's name, numeric code, and arity class.
package opcode

import "fmt"

// Kind classifies an Opcode for non-strict template matching and for the
// peephole optimizer's verify-fusion rule, without resorting to name
// suffix checks at rule-apply time.
type Kind int

const (
	// Nullary is any opcode that neither pushes an immediate value nor
	// participates in a documented verify/base pairing.
	Nullary Kind = iota
	// SmallIntPush is one of OP_1NEGATE, OP_0, OP_1..OP_16.
	SmallIntPush
	// PushLiteral is a direct-push or OP_PUSHDATA1/2/4 opcode.
	PushLiteral
	// VerifyPaired is an opcode whose name ends in VERIFY and which has a
	// registered base opcode (name with the VERIFY suffix stripped).
	VerifyPaired
	// PairsWithVerify is the base opcode for a VerifyPaired opcode.
	PairsWithVerify
	// ControlFlow affects script branching or early termination.
	ControlFlow
)

func (k Kind) String() string {
	switch k {
	case Nullary:
		return "nullary"
	case SmallIntPush:
		return "small-int-push"
	case PushLiteral:
		return "push-literal"
	case VerifyPaired:
		return "verify-paired"
	case PairsWithVerify:
		return "pairs-with-verify"
	case ControlFlow:
		return "control-flow"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Opcode is a single entry in the registry: a stable name, a one-byte
// numeric code, and a kind. VerifyPaired opcodes carry Pair, the name of
// their base opcode; PairsWithVerify opcodes carry Pair, the name of their
// verify form. All other kinds leave Pair empty.
type Opcode struct {
	Name string
	Code byte
	Kind Kind
	Pair string

	// SmallInt is the pushed integer value; only meaningful when Kind is
	// SmallIntPush.
	SmallInt int
}

// IsSmallInt reports whether op is one of the compact small-integer push
// opcodes.
func (op Opcode) IsSmallInt() bool { return op.Kind == SmallIntPush }

// registry is immutable once package init completes; identity is by name.
var (
	byName = map[string]Opcode{}
	byCode = map[byte]Opcode{}
	all    []Opcode
)

func define(name string, code byte, kind Kind) Opcode {
	op := Opcode{Name: name, Code: code, Kind: kind}
	byName[name] = op
	byCode[code] = op
	all = append(all, op)
	return op
}

func defineSmallInt(name string, code byte, value int) {
	op := Opcode{Name: name, Code: code, Kind: SmallIntPush, SmallInt: value}
	byName[name] = op
	byCode[code] = op
	all = append(all, op)
}

func definePushLiteral(name string, code byte) {
	define(name, code, PushLiteral)
}

// pairVerify links an already-registered base opcode to its VERIFY form,
// registering the VERIFY form and updating both entries' Pair field.
func pairVerify(baseName string, verifyCode byte) {
	base, ok := byName[baseName]
	if !ok {
		panic("opcode: pairVerify: unknown base " + baseName)
	}
	verifyName := "OP_" + baseName[len("OP_"):] + "VERIFY"
	base.Kind = PairsWithVerify
	base.Pair = verifyName
	byName[baseName] = base
	for i, o := range all {
		if o.Name == baseName {
			all[i] = base
			break
		}
	}
	byCode[base.Code] = base

	verify := Opcode{Name: verifyName, Code: verifyCode, Kind: VerifyPaired, Pair: baseName}
	byName[verifyName] = verify
	byCode[verifyCode] = verify
	all = append(all, verify)
}

func init() {
	// Small-int pushes.
	defineSmallInt("OP_1NEGATE", 0x4f, -1)
	defineSmallInt("OP_0", 0x00, 0)
	for n := 1; n <= 16; n++ {
		defineSmallInt(fmt.Sprintf("OP_%d", n), byte(0x50+n), n)
	}

	// Direct-push opcodes: push the next N bytes, N in 1..75.
	for n := 1; n <= 75; n++ {
		definePushLiteral(fmt.Sprintf("OP_PUSHBYTES_%d", n), byte(n))
	}
	definePushLiteral("OP_PUSHDATA1", 0x4c)
	definePushLiteral("OP_PUSHDATA2", 0x4d)
	definePushLiteral("OP_PUSHDATA4", 0x4e)

	// Reserved / control flow.
	define("OP_RESERVED", 0x50, ControlFlow)
	define("OP_NOP", 0x61, Nullary)
	define("OP_VER", 0x62, ControlFlow)
	define("OP_IF", 0x63, ControlFlow)
	define("OP_NOTIF", 0x64, ControlFlow)
	define("OP_VERIF", 0x65, ControlFlow)
	define("OP_VERNOTIF", 0x66, ControlFlow)
	define("OP_ELSE", 0x67, ControlFlow)
	define("OP_ENDIF", 0x68, ControlFlow)
	define("OP_VERIFY", 0x69, ControlFlow)
	define("OP_RETURN", 0x6a, ControlFlow)

	// Stack ops.
	define("OP_TOALTSTACK", 0x6b, Nullary)
	define("OP_FROMALTSTACK", 0x6c, Nullary)
	define("OP_2DROP", 0x6d, Nullary)
	define("OP_2DUP", 0x6e, Nullary)
	define("OP_3DUP", 0x6f, Nullary)
	define("OP_2OVER", 0x70, Nullary)
	define("OP_2ROT", 0x71, Nullary)
	define("OP_2SWAP", 0x72, Nullary)
	define("OP_IFDUP", 0x73, Nullary)
	define("OP_DEPTH", 0x74, Nullary)
	define("OP_DROP", 0x75, Nullary)
	define("OP_DUP", 0x76, Nullary)
	define("OP_NIP", 0x77, Nullary)
	define("OP_OVER", 0x78, Nullary)
	define("OP_PICK", 0x79, Nullary)
	define("OP_ROLL", 0x7a, Nullary)
	define("OP_ROT", 0x7b, Nullary)
	define("OP_SWAP", 0x7c, Nullary)
	define("OP_TUCK", 0x7d, Nullary)

	// Splice ops.
	define("OP_CAT", 0x7e, Nullary)
	define("OP_SUBSTR", 0x7f, Nullary)
	define("OP_LEFT", 0x80, Nullary)
	define("OP_RIGHT", 0x81, Nullary)
	define("OP_SIZE", 0x82, Nullary)

	// Bitwise.
	define("OP_INVERT", 0x83, Nullary)
	define("OP_AND", 0x84, Nullary)
	define("OP_OR", 0x85, Nullary)
	define("OP_XOR", 0x86, Nullary)
	define("OP_EQUAL", 0x87, Nullary)

	define("OP_RESERVED1", 0x89, ControlFlow)
	define("OP_RESERVED2", 0x8a, ControlFlow)

	// Arithmetic.
	define("OP_1ADD", 0x8b, Nullary)
	define("OP_1SUB", 0x8c, Nullary)
	define("OP_2MUL", 0x8d, Nullary)
	define("OP_2DIV", 0x8e, Nullary)
	define("OP_NEGATE", 0x8f, Nullary)
	define("OP_ABS", 0x90, Nullary)
	define("OP_NOT", 0x91, Nullary)
	define("OP_0NOTEQUAL", 0x92, Nullary)
	define("OP_ADD", 0x93, Nullary)
	define("OP_SUB", 0x94, Nullary)
	define("OP_MUL", 0x95, Nullary)
	define("OP_DIV", 0x96, Nullary)
	define("OP_MOD", 0x97, Nullary)
	define("OP_LSHIFT", 0x98, Nullary)
	define("OP_RSHIFT", 0x99, Nullary)
	define("OP_BOOLAND", 0x9a, Nullary)
	define("OP_BOOLOR", 0x9b, Nullary)
	define("OP_NUMEQUAL", 0x9c, Nullary)
	define("OP_NUMNOTEQUAL", 0x9e, Nullary)
	define("OP_LESSTHAN", 0x9f, Nullary)
	define("OP_GREATERTHAN", 0xa0, Nullary)
	define("OP_LESSTHANOREQUAL", 0xa1, Nullary)
	define("OP_GREATERTHANOREQUAL", 0xa2, Nullary)
	define("OP_MIN", 0xa3, Nullary)
	define("OP_MAX", 0xa4, Nullary)
	define("OP_WITHIN", 0xa5, Nullary)

	// Crypto.
	define("OP_RIPEMD160", 0xa6, Nullary)
	define("OP_SHA1", 0xa7, Nullary)
	define("OP_SHA256", 0xa8, Nullary)
	define("OP_HASH160", 0xa9, Nullary)
	define("OP_HASH256", 0xaa, Nullary)
	define("OP_CODESEPARATOR", 0xab, Nullary)
	define("OP_CHECKSIG", 0xac, Nullary)
	define("OP_CHECKMULTISIG", 0xae, Nullary)

	// Locktime / reserved NOPs.
	define("OP_NOP1", 0xb0, Nullary)
	define("OP_CHECKLOCKTIMEVERIFY", 0xb1, Nullary)
	define("OP_CHECKSEQUENCEVERIFY", 0xb2, Nullary)
	for i, code := 4, byte(0xb3); i <= 10; i, code = i+1, code+1 {
		define(fmt.Sprintf("OP_NOP%d", i), code, Nullary)
	}

	// Verify pairings: registers the *VERIFY opcode and marks both ends.
	pairVerify("OP_EQUAL", 0x88)
	pairVerify("OP_NUMEQUAL", 0x9d)
	pairVerify("OP_CHECKSIG", 0xad)
	pairVerify("OP_CHECKMULTISIG", 0xaf)
}

// ByName looks up an opcode by its textual name. The zero value and false
// are returned when no such opcode exists.
func ByName(name string) (Opcode, bool) {
	op, ok := byName[name]
	return op, ok
}

// ByCode looks up an opcode by its one-byte numeric code.
func ByCode(code byte) (Opcode, bool) {
	op, ok := byCode[code]
	return op, ok
}

// All returns every registered opcode. Callers must not mutate the
// returned slice.
func All() []Opcode {
	out := make([]Opcode, len(all))
	copy(out, all)
	return out
}

// SmallInt returns the opcode that pushes n, for n in {-1, 0, 1..16}.
func SmallInt(n int) (Opcode, bool) {
	if n == -1 {
		return ByName("OP_1NEGATE")
	}
	if n == 0 {
		return ByName("OP_0")
	}
	if n >= 1 && n <= 16 {
		return ByName(fmt.Sprintf("OP_%d", n))
	}
	return Opcode{}, false
}

// IsSmallIntRange reports whether n fits the compact small-int push range.
func IsSmallIntRange(n int) bool {
	return n == -1 || (n >= 0 && n <= 16)
}
