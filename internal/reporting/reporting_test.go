package reporting

import (
	"strings"
	"testing"

	cerrors "btcscript/internal/errors"
)

func ce(kind cerrors.Kind, line int) *cerrors.CompileError {
	return cerrors.New(kind, cerrors.Location{Line: line, Col: 1}, "boom")
}

func TestCollectorHasErrorsOnlyAfterAnError(t *testing.T) {
	c := NewCollector()
	if c.HasErrors() {
		t.Fatal("empty collector should not report errors")
	}
	c.Warning("parse", ce(cerrors.ParseError, 1))
	if c.HasErrors() {
		t.Fatal("a warning alone should not count as an error")
	}
	c.Error("compile", ce(cerrors.UndefinedSymbol, 2))
	if !c.HasErrors() {
		t.Fatal("expected HasErrors to be true after an Error diagnostic")
	}
}

func TestRenderGroupsErrorsBeforeWarningsSortedByLocation(t *testing.T) {
	c := NewCollector()
	c.Error("compile", ce(cerrors.UndefinedSymbol, 5))
	c.Error("compile", ce(cerrors.OpcodeArityError, 2))
	c.Warning("parse", ce(cerrors.ParseError, 1))

	out := c.Render()
	errIdx := strings.Index(out, "2 error(s):")
	warnIdx := strings.Index(out, "1 warning(s):")
	if errIdx == -1 || warnIdx == -1 || errIdx > warnIdx {
		t.Fatalf("expected errors before warnings, got %q", out)
	}
	arityIdx := strings.Index(out, "OpcodeArityError")
	undefIdx := strings.Index(out, "UndefinedSymbol")
	if arityIdx == -1 || undefIdx == -1 || arityIdx > undefIdx {
		t.Fatalf("expected the line-2 error before the line-5 error, got %q", out)
	}
}

func TestRenderColorWrapsLinesInAnsiEscapes(t *testing.T) {
	c := NewCollector()
	c.Error("compile", ce(cerrors.UndefinedSymbol, 1))

	plain := c.RenderColor(false)
	if strings.Contains(plain, "\x1b[") {
		t.Fatalf("expected no ANSI escapes when color is disabled, got %q", plain)
	}
	colored := c.RenderColor(true)
	if !strings.Contains(colored, "\x1b[31m") || !strings.Contains(colored, "\x1b[0m") {
		t.Fatalf("expected red ANSI escapes when color is enabled, got %q", colored)
	}
}

func TestDiagnosticsReturnsACopy(t *testing.T) {
	c := NewCollector()
	c.Error("compile", ce(cerrors.UndefinedSymbol, 1))
	d := c.Diagnostics()
	d[0].Stage = "mutated"
	if c.Diagnostics()[0].Stage == "mutated" {
		t.Fatal("Diagnostics should return a defensive copy")
	}
}
