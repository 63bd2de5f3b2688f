package opcode

import "testing"

func TestByNameAndByCode(t *testing.T) {
	tests := []struct {
		name string
		code byte
		kind Kind
	}{
		{"OP_DUP", 0x76, Nullary},
		{"OP_1", 0x51, SmallIntPush},
		{"OP_0", 0x00, SmallIntPush},
		{"OP_1NEGATE", 0x4f, SmallIntPush},
		{"OP_PUSHBYTES_1", 0x01, PushLiteral},
		{"OP_PUSHDATA1", 0x4c, PushLiteral},
		{"OP_EQUAL", 0x87, PairsWithVerify},
		{"OP_EQUALVERIFY", 0x88, VerifyPaired},
		{"OP_VERIFY", 0x69, ControlFlow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, ok := ByName(tt.name)
			if !ok {
				t.Fatalf("ByName(%q) not found", tt.name)
			}
			if op.Code != tt.code {
				t.Errorf("Code = %#x, want %#x", op.Code, tt.code)
			}
			if op.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", op.Kind, tt.kind)
			}
			byCodeOp, ok := ByCode(tt.code)
			if !ok || byCodeOp.Name != tt.name {
				t.Errorf("ByCode(%#x) = %+v, want name %q", tt.code, byCodeOp, tt.name)
			}
		})
	}
}

func TestVerifyPairing(t *testing.T) {
	base, _ := ByName("OP_EQUAL")
	verify, _ := ByName("OP_EQUALVERIFY")
	if base.Pair != verify.Name {
		t.Errorf("OP_EQUAL.Pair = %q, want %q", base.Pair, verify.Name)
	}
	if verify.Pair != base.Name {
		t.Errorf("OP_EQUALVERIFY.Pair = %q, want %q", verify.Pair, base.Name)
	}
}

func TestSmallInt(t *testing.T) {
	for _, n := range []int{-1, 0, 1, 16} {
		op, ok := SmallInt(n)
		if !ok {
			t.Fatalf("SmallInt(%d) not found", n)
		}
		if op.SmallInt != n {
			t.Errorf("SmallInt(%d).SmallInt = %d", n, op.SmallInt)
		}
	}
	if _, ok := SmallInt(17); ok {
		t.Error("SmallInt(17) should not exist")
	}
	if _, ok := SmallInt(-2); ok {
		t.Error("SmallInt(-2) should not exist")
	}
}

func TestIsSmallIntRange(t *testing.T) {
	for _, n := range []int{-1, 0, 1, 16} {
		if !IsSmallIntRange(n) {
			t.Errorf("IsSmallIntRange(%d) = false, want true", n)
		}
	}
	for _, n := range []int{-2, 17, 100} {
		if IsSmallIntRange(n) {
			t.Errorf("IsSmallIntRange(%d) = true, want false", n)
		}
	}
}

func TestAllNonEmpty(t *testing.T) {
	if len(All()) == 0 {
		t.Fatal("All() returned no opcodes")
	}
}
