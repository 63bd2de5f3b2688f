package txscript

import "testing"

func tokenTypes(tokens []Token) []TokenType {
	out := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Type
	}
	return out
}

func assertTypes(t *testing.T, src string, want ...TokenType) {
	t.Helper()
	got := tokenTypes(NewLexer(src).ScanTokens())
	want = append(want, TokenEOF)
	if len(got) != len(want) {
		t.Fatalf("ScanTokens(%q) = %v, want %v", src, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ScanTokens(%q)[%d] = %v, want %v", src, i, got[i], want[i])
		}
	}
}

func TestLexerKeywords(t *testing.T) {
	assertTypes(t, "let script verify if else return and or",
		TokenLet, TokenScript, TokenVerify, TokenIf, TokenElse, TokenReturn, TokenAnd, TokenOr)
}

func TestLexerIdentifierNotKeyword(t *testing.T) {
	assertTypes(t, "letter", TokenIdent)
}

func TestLexerOperators(t *testing.T) {
	assertTypes(t, "+ - * / % == = ( ) { } , ;",
		TokenPlus, TokenMinus, TokenStar, TokenSlash, TokenPercent,
		TokenEqualEqual, TokenEqual, TokenLParen, TokenRParen,
		TokenLBrace, TokenRBrace, TokenComma, TokenSemicolon)
}

func TestLexerHexLiteral(t *testing.T) {
	toks := NewLexer("0xdeadBEEF").ScanTokens()
	if toks[0].Type != TokenHex || toks[0].Lexeme != "0xdeadBEEF" {
		t.Errorf("got %v", toks[0])
	}
}

func TestLexerDecimalLiteral(t *testing.T) {
	toks := NewLexer("1234").ScanTokens()
	if toks[0].Type != TokenNumber || toks[0].Lexeme != "1234" {
		t.Errorf("got %v", toks[0])
	}
}

func TestLexerLineCommentSkipped(t *testing.T) {
	toks := NewLexer("# a comment\nlet x = 1;").ScanTokens()
	if toks[0].Type != TokenLet {
		t.Fatalf("first token = %v, want let (comment should be skipped)", toks[0])
	}
}

func TestLexerTracksLineNumbers(t *testing.T) {
	toks := NewLexer("let\nx\n=\n1;").ScanTokens()
	if toks[0].Line != 1 {
		t.Errorf("let line = %d, want 1", toks[0].Line)
	}
	if toks[1].Line != 2 {
		t.Errorf("x line = %d, want 2", toks[1].Line)
	}
}

func TestLexerEmptySourceProducesOnlyEOF(t *testing.T) {
	toks := NewLexer("").ScanTokens()
	if len(toks) != 1 || toks[0].Type != TokenEOF {
		t.Fatalf("got %v, want just EOF", toks)
	}
}
