package txscript

import (
	"testing"

	"btcscript/internal/sir"
)

func parseScript(t *testing.T, src string) *sir.Script {
	t.Helper()
	toks := NewLexer(src).ScanTokens()
	script, err := NewParser(toks, "test.tx").Parse()
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", src, err)
	}
	return script
}

func TestParseLetConstant(t *testing.T) {
	script := parseScript(t, "let x = 5;")
	if len(script.Body) != 1 {
		t.Fatalf("got %d statements, want 1", len(script.Body))
	}
	a, ok := script.Body[0].(*sir.Assignment)
	if !ok {
		t.Fatalf("got %T, want *sir.Assignment", script.Body[0])
	}
	if a.Name != "x" || len(a.Params) != 0 {
		t.Errorf("got Name=%q Params=%v", a.Name, a.Params)
	}
	lit, ok := a.Expr.(*sir.Literal)
	if !ok || lit.Int != 5 {
		t.Errorf("got Expr=%v, want Literal(5)", a.Expr)
	}
}

func TestParseLetMacroWithParams(t *testing.T) {
	script := parseScript(t, "let double(a) = a + a;")
	a := script.Body[0].(*sir.Assignment)
	if a.Name != "double" {
		t.Errorf("Name = %q, want double", a.Name)
	}
	if len(a.Params) != 1 || a.Params[0] != "a" {
		t.Errorf("Params = %v, want [a]", a.Params)
	}
	if _, ok := a.Expr.(*sir.BinaryOp); !ok {
		t.Errorf("Expr = %T, want *sir.BinaryOp", a.Expr)
	}
}

func TestParseVerifyStatement(t *testing.T) {
	script := parseScript(t, "verify x;")
	v, ok := script.Body[0].(*sir.Verify)
	if !ok {
		t.Fatalf("got %T, want *sir.Verify", script.Body[0])
	}
	sym, ok := v.Expr.(*sir.Symbol)
	if !ok || sym.Name != "x" {
		t.Errorf("Verify.Expr = %v, want Symbol(x)", v.Expr)
	}
}

func TestParseReturnStatement(t *testing.T) {
	script := parseScript(t, "return 1;")
	r, ok := script.Body[0].(*sir.Return)
	if !ok {
		t.Fatalf("got %T, want *sir.Return", script.Body[0])
	}
	if lit, ok := r.Expr.(*sir.Literal); !ok || lit.Int != 1 {
		t.Errorf("Return.Expr = %v, want Literal(1)", r.Expr)
	}
}

func TestParseIfElse(t *testing.T) {
	script := parseScript(t, "if (1) { return 2; } else { return 3; }")
	ifNode, ok := script.Body[0].(*sir.If)
	if !ok {
		t.Fatalf("got %T, want *sir.If", script.Body[0])
	}
	if len(ifNode.Then) != 1 || len(ifNode.Else) != 1 {
		t.Fatalf("Then=%d Else=%d, want 1 and 1", len(ifNode.Then), len(ifNode.Else))
	}
}

func TestParseIfWithoutElse(t *testing.T) {
	script := parseScript(t, "if (1) { return 2; }")
	ifNode := script.Body[0].(*sir.If)
	if ifNode.Else != nil {
		t.Errorf("Else = %v, want nil", ifNode.Else)
	}
}

func TestParseBinaryPrecedence(t *testing.T) {
	// 1 + 2 * 3 should parse as 1 + (2 * 3): top node is '+'.
	script := parseScript(t, "return 1 + 2 * 3;")
	r := script.Body[0].(*sir.Return)
	top, ok := r.Expr.(*sir.BinaryOp)
	if !ok || top.Op != "+" {
		t.Fatalf("got %v, want top-level '+'", r.Expr)
	}
	right, ok := top.Right.(*sir.BinaryOp)
	if !ok || right.Op != "*" {
		t.Fatalf("Right = %v, want '*' subtree", top.Right)
	}
}

func TestParseFunctionCallArgs(t *testing.T) {
	script := parseScript(t, "return min(1, 2);")
	r := script.Body[0].(*sir.Return)
	call, ok := r.Expr.(*sir.FunctionCall)
	if !ok || call.Callee != "min" {
		t.Fatalf("got %v, want FunctionCall(min)", r.Expr)
	}
	if len(call.Args) != 2 {
		t.Fatalf("got %d args, want 2", len(call.Args))
	}
}

func TestParseInnerScript(t *testing.T) {
	script := parseScript(t, "let s = script { return 1; };")
	a := script.Body[0].(*sir.Assignment)
	inner, ok := a.Expr.(*sir.InnerScript)
	if !ok {
		t.Fatalf("got %T, want *sir.InnerScript", a.Expr)
	}
	if len(inner.Body) != 1 {
		t.Errorf("InnerScript.Body = %d statements, want 1", len(inner.Body))
	}
}

func TestParseHexLiteral(t *testing.T) {
	script := parseScript(t, "return 0xdead;")
	r := script.Body[0].(*sir.Return)
	lit, ok := r.Expr.(*sir.Literal)
	if !ok || !lit.IsHex {
		t.Fatalf("got %v, want hex Literal", r.Expr)
	}
	want := []byte{0xde, 0xad}
	if len(lit.Hex) != 2 || lit.Hex[0] != want[0] || lit.Hex[1] != want[1] {
		t.Errorf("Hex = %x, want %x", lit.Hex, want)
	}
}

func TestParseUnaryMinus(t *testing.T) {
	script := parseScript(t, "return -1;")
	r := script.Body[0].(*sir.Return)
	u, ok := r.Expr.(*sir.UnaryOp)
	if !ok || u.Op != "-" {
		t.Fatalf("got %v, want UnaryOp(-)", r.Expr)
	}
}

func TestParseMissingSemicolonErrors(t *testing.T) {
	toks := NewLexer("return 1").ScanTokens()
	_, err := NewParser(toks, "test.tx").Parse()
	if err == nil {
		t.Fatal("expected a parse error for a missing semicolon")
	}
}

func TestParseParenthesizedExpression(t *testing.T) {
	script := parseScript(t, "return (1 + 2) * 3;")
	r := script.Body[0].(*sir.Return)
	top, ok := r.Expr.(*sir.BinaryOp)
	if !ok || top.Op != "*" {
		t.Fatalf("got %v, want top-level '*'", r.Expr)
	}
	left, ok := top.Left.(*sir.BinaryOp)
	if !ok || left.Op != "+" {
		t.Fatalf("Left = %v, want '+' subtree", top.Left)
	}
}
