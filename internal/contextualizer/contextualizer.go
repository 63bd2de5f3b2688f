// Package contextualizer lowers SIR into LIR: it resolves Symbol nodes
// against a symbol table, inlines parameterized expression-macros
// positionally, and re-invokes the peephole optimizer after every inline
// site so the output stays minimal as each reference is expanded.
package contextualizer

import (
	cerrors "btcscript/internal/errors"
	"btcscript/internal/lir"
	"btcscript/internal/opcode"
	"btcscript/internal/peephole"
	"btcscript/internal/sir"
)

// Contextualizer owns one compilation run's symbol table and the LIR
// sequence it is building.
type Contextualizer struct {
	symbols *sir.SymbolTable
	// expanding tracks the names currently being inlined, so a symbol or
	// macro that refers to itself (directly or through a chain of other
	// definitions) is caught as a RecursiveDefinition error instead of
	// recursing through lowerSymbol/lowerMacroCall without bound.
	expanding map[string]bool
}

func New() *Contextualizer {
	return &Contextualizer{symbols: sir.NewSymbolTable(), expanding: make(map[string]bool)}
}

// Lower walks script post-order, emitting LIR for every statement. Every
// Assignment at the top level defines a symbol rather than emitting code
// directly; only expression statements, Verify, If, and Return nodes emit
// instructions into the output sequence.
func (c *Contextualizer) Lower(script *sir.Script) (*lir.LInstructions, error) {
	out := lir.New()
	for _, stmt := range script.Body {
		if err := c.lowerStatement(stmt, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *Contextualizer) lowerStatement(node sir.Node, out *lir.LInstructions) error {
	switch n := node.(type) {
	case *sir.Assignment:
		return c.defineAssignment(n)
	case *sir.Verify:
		if err := c.lowerExpr(n.Expr, out); err != nil {
			return err
		}
		// The optimizer runs before OP_VERIFY is added: with OP_VERIFY last,
		// trailing-verify stripping would drop it even when more statements
		// follow. Verify fusion is therefore applied here by hand.
		peephole.Optimize(out)
		if last := out.Len() - 1; last >= 0 && out.Get(last).IsOpcode() && out.Get(last).Opcode().Kind == opcode.PairsWithVerify {
			out.ReplaceSlice(last, last+1, []lir.Instruction{mustOp(out.Get(last).Opcode().Pair)})
			return nil
		}
		verify := mustOp("OP_VERIFY")
		out.Append(verify)
		return nil
	case *sir.Return:
		return c.lowerExpr(n.Expr, out)
	case *sir.If:
		return c.lowerIf(n, out)
	default:
		// A bare expression statement: its lowering leaves its value as
		// the script's running result.
		return c.lowerExpr(node, out)
	}
}

// defineAssignment records name in the symbol table. An Assignment with
// formal parameters is an expression-macro; a zero-argument Assignment
// whose Expr is an InnerScript is an inner-script definition; anything
// else is a constant the way a TxScript `let` binds a literal or computed
// value that later Symbol references inline.
func (c *Contextualizer) defineAssignment(a *sir.Assignment) error {
	kind := sir.Constant
	switch {
	case len(a.Params) > 0:
		kind = sir.ExpressionMacro
	case isInnerScript(a.Expr):
		kind = sir.InnerScriptDef
	}
	c.symbols.Define(a.Name, sir.Definition{Kind: kind, Params: a.Params, Body: a.Expr, Loc: a.Loc_})
	return nil
}

func isInnerScript(n sir.Node) bool {
	_, ok := n.(*sir.InnerScript)
	return ok
}

func (c *Contextualizer) lowerIf(n *sir.If, out *lir.LInstructions) error {
	if err := c.lowerExpr(n.Cond, out); err != nil {
		return err
	}
	ifOp := mustOp("OP_IF")
	out.Append(ifOp)
	thenLir := lir.New()
	for _, stmt := range n.Then {
		if err := c.lowerStatement(stmt, thenLir); err != nil {
			return err
		}
	}
	appendAll(out, thenLir)
	if len(n.Else) > 0 {
		elseOp := mustOp("OP_ELSE")
		out.Append(elseOp)
		elseLir := lir.New()
		for _, stmt := range n.Else {
			if err := c.lowerStatement(stmt, elseLir); err != nil {
				return err
			}
		}
		appendAll(out, elseLir)
	}
	endifOp := mustOp("OP_ENDIF")
	out.Append(endifOp)
	peephole.Optimize(out)
	return nil
}

func appendAll(out, from *lir.LInstructions) {
	for _, instr := range from.Slice() {
		out.Append(instr)
	}
}

// lowerExpr lowers an expression node, leaving exactly one value on the
// stack.
func (c *Contextualizer) lowerExpr(node sir.Node, out *lir.LInstructions) error {
	switch n := node.(type) {
	case *sir.Literal:
		return c.lowerLiteral(n, out)
	case *sir.Symbol:
		return c.lowerSymbol(n, out)
	case *sir.UnaryOp:
		return c.lowerUnaryOp(n, out)
	case *sir.BinaryOp:
		return c.lowerBinaryOp(n, out)
	case *sir.FunctionCall:
		return c.lowerFunctionCall(n, out)
	case *sir.InnerScript:
		return c.lowerInnerScript(n, out)
	case *sir.Verify:
		if err := c.lowerExpr(n.Expr, out); err != nil {
			return err
		}
		verify := mustOp("OP_VERIFY")
		out.Append(verify)
		return nil
	default:
		return cerrors.New(cerrors.InternalInvariant, cerrors.Location{Line: node.Loc().Line}, "lowerExpr: unhandled SIR node %T", node)
	}
}

func (c *Contextualizer) lowerLiteral(n *sir.Literal, out *lir.LInstructions) error {
	if n.IsHex {
		if len(n.Hex) > lir.MaxPushBytes {
			return cerrors.New(cerrors.PushTooLarge, loc(n.Loc_), "literal of %d bytes exceeds max push size", len(n.Hex))
		}
		out.Append(lir.LiteralPush(n.Hex))
		return nil
	}
	if op, ok := opcodeSmallInt(n.Int); ok {
		out.Append(lir.SmallIntPush(op))
		return nil
	}
	out.Append(lir.LiteralPush(minimalSignedLE(n.Int)))
	return nil
}

// lowerSymbol resolves name and inlines its definition positionally: the
// definition's body is lowered in place of the reference, and the
// peephole optimizer re-runs immediately afterward so each inline site is
// cleaned up before the next one is expanded.
func (c *Contextualizer) lowerSymbol(n *sir.Symbol, out *lir.LInstructions) error {
	def, ok := c.symbols.Resolve(n.Name)
	if !ok {
		return cerrors.New(cerrors.UndefinedSymbol, loc(n.Loc_), "undefined symbol %q", n.Name)
	}
	if c.expanding[n.Name] {
		return cerrors.New(cerrors.RecursiveDefinition, loc(n.Loc_), "%q is defined in terms of itself", n.Name)
	}
	c.expanding[n.Name] = true
	defer delete(c.expanding, n.Name)
	switch def.Kind {
	case sir.Constant:
		if err := c.lowerExpr(def.Body, out); err != nil {
			return err
		}
	case sir.InnerScriptDef:
		if err := c.lowerExpr(def.Body, out); err != nil {
			return err
		}
	case sir.ExpressionMacro:
		if len(def.Params) != 0 {
			return cerrors.New(cerrors.OpcodeArityError, loc(n.Loc_), "macro %q called with no arguments, expects %d", n.Name, len(def.Params))
		}
		if err := c.lowerExpr(def.Body, out); err != nil {
			return err
		}
	}
	peephole.Optimize(out)
	return nil
}

// lowerFunctionCall handles the builtin min/max calls and user-defined
// expression-macro invocations. Arguments are evaluated strictly
// left-to-right, so an argument's side effects on the output sequence
// happen in the order they appear in source.
func (c *Contextualizer) lowerFunctionCall(n *sir.FunctionCall, out *lir.LInstructions) error {
	switch n.Callee {
	case "min", "max":
		if len(n.Args) != 2 {
			return cerrors.New(cerrors.OpcodeArityError, loc(n.Loc_), "%s expects 2 arguments, got %d", n.Callee, len(n.Args))
		}
		for _, arg := range n.Args {
			if err := c.lowerExpr(arg, out); err != nil {
				return err
			}
		}
		name := "OP_MIN"
		if n.Callee == "max" {
			name = "OP_MAX"
		}
		op := mustOp(name)
		out.Append(op)
		return nil
	default:
		return c.lowerMacroCall(n, out)
	}
}

// lowerMacroCall inlines a user-defined expression-macro positionally: each
// parameter is bound, in a fresh child scope, to its argument's SIR
// expression rather than to a materialized value, so a parameter reference
// inside the body re-lowers the argument expression at its use site. There
// is no stack slot to alias a macro argument to, so a parameter referenced
// more than once re-evaluates its argument once per reference. The
// optimizer runs once the whole call site has been expanded.
func (c *Contextualizer) lowerMacroCall(n *sir.FunctionCall, out *lir.LInstructions) error {
	def, ok := c.symbols.Resolve(n.Callee)
	if !ok {
		return cerrors.New(cerrors.UndefinedSymbol, loc(n.Loc_), "undefined function %q", n.Callee)
	}
	if def.Kind != sir.ExpressionMacro {
		return cerrors.New(cerrors.UndefinedSymbol, loc(n.Loc_), "%q is not callable", n.Callee)
	}
	if len(def.Params) != len(n.Args) {
		return cerrors.New(cerrors.OpcodeArityError, loc(n.Loc_), "%q expects %d arguments, got %d", n.Callee, len(def.Params), len(n.Args))
	}
	if c.expanding[n.Callee] {
		return cerrors.New(cerrors.RecursiveDefinition, loc(n.Loc_), "%q is defined in terms of itself", n.Callee)
	}
	c.expanding[n.Callee] = true
	defer delete(c.expanding, n.Callee)
	saved := c.symbols
	c.symbols = c.symbols.Push()
	for i, param := range def.Params {
		c.symbols.Define(param, sir.Definition{Kind: sir.Constant, Body: n.Args[i], Loc: n.Args[i].Loc()})
	}
	if err := c.lowerExpr(def.Body, out); err != nil {
		c.symbols = saved
		return err
	}
	c.symbols = saved
	peephole.Optimize(out)
	return nil
}

func (c *Contextualizer) lowerUnaryOp(n *sir.UnaryOp, out *lir.LInstructions) error {
	if err := c.lowerExpr(n.Arg, out); err != nil {
		return err
	}
	switch n.Op {
	case "-":
		op := mustOp("OP_NEGATE")
		out.Append(op)
	default:
		return cerrors.New(cerrors.InternalInvariant, loc(n.Loc_), "unknown unary operator %q", n.Op)
	}
	return nil
}

var binaryOpcodeName = map[string]string{
	"+":   "OP_ADD",
	"-":   "OP_SUB",
	"*":   "OP_MUL",
	"/":   "OP_DIV",
	"%":   "OP_MOD",
	"and": "OP_BOOLAND",
	"or":  "OP_BOOLOR",
	"==":  "OP_EQUAL",
}

func (c *Contextualizer) lowerBinaryOp(n *sir.BinaryOp, out *lir.LInstructions) error {
	if err := c.lowerExpr(n.Left, out); err != nil {
		return err
	}
	if err := c.lowerExpr(n.Right, out); err != nil {
		return err
	}
	name, ok := binaryOpcodeName[n.Op]
	if !ok {
		return cerrors.New(cerrors.InternalInvariant, loc(n.Loc_), "unknown binary operator %q", n.Op)
	}
	op := mustOp(name)
	out.Append(op)
	return nil
}

// lowerInnerScript lowers body into its own LIR sequence and emits it as a
// single InnerScript instruction.
func (c *Contextualizer) lowerInnerScript(n *sir.InnerScript, out *lir.LInstructions) error {
	inner := lir.New()
	saved := c.symbols
	c.symbols = c.symbols.Push()
	for _, stmt := range n.Body {
		if err := c.lowerStatement(stmt, inner); err != nil {
			c.symbols = saved
			return err
		}
	}
	c.symbols = saved
	peephole.Optimize(inner)
	out.Append(lir.InnerScriptOf(inner))
	return nil
}

func loc(l sir.SourceLocation) cerrors.Location {
	return cerrors.Location{Line: l.Line, Col: l.Col}
}
