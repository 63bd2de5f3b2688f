package replcompile

import (
	"strings"
	"testing"
)

func TestStartCompilesEachLineUntilExit(t *testing.T) {
	in := strings.NewReader("return 1 + 1;\nexit\n")
	var out strings.Builder
	Start(in, &out)

	got := out.String()
	if !strings.Contains(got, "asm:") || !strings.Contains(got, "hex:") {
		t.Fatalf("output missing asm/hex lines: %q", got)
	}
}

func TestStartReportsParseErrorsWithoutStopping(t *testing.T) {
	in := strings.NewReader("this is not valid;\nreturn 2;\nexit\n")
	var out strings.Builder
	Start(in, &out)

	got := out.String()
	if !strings.Contains(got, "error") {
		t.Fatalf("expected an error line in output, got %q", got)
	}
	if !strings.Contains(got, "asm:") {
		t.Fatalf("expected the second, valid line to still compile: %q", got)
	}
}

func TestStartEndsOnEOF(t *testing.T) {
	in := strings.NewReader("")
	var out strings.Builder
	Start(in, &out)
	if !strings.Contains(out.String(), "REPL") {
		t.Errorf("expected a banner line even with no input")
	}
}
