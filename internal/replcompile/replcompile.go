// Package replcompile implements an interactive compile-and-print loop:
// paste a TxScript statement, see its LIR lowering immediately as ASM and
// hex. Each line gets a fresh lexer, parser, and Contextualizer, so state
// from one line never leaks into the next.
package replcompile

import (
	"bufio"
	"fmt"
	"io"

	"btcscript/internal/contextualizer"
	"btcscript/internal/emit"
	"btcscript/internal/peephole"
	"btcscript/internal/txscript"
)

// Start runs the loop against stdin/stdout until the input is exhausted or
// the user types "exit".
func Start(in io.Reader, out io.Writer) {
	fmt.Fprintln(out, "btcscript REPL (TxScript) | type 'exit' to quit")
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, ">>> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if line == "exit" {
			return
		}
		if line == "" {
			continue
		}
		compileLine(line, out)
	}
}

// compileLine lowers one line of TxScript through a fresh front end and
// contextualizer, runs the peephole optimizer, and prints the ASM and hex
// forms. Errors are printed rather than propagated, so one bad line never
// ends the session.
func compileLine(line string, out io.Writer) {
	tokens := txscript.NewLexer(line).ScanTokens()
	script, err := txscript.NewParser(tokens, "<repl>").Parse()
	if err != nil {
		fmt.Fprintf(out, "parse error: %v\n", err)
		return
	}

	l, err := contextualizer.New().Lower(script)
	if err != nil {
		fmt.Fprintf(out, "compile error: %v\n", err)
		return
	}
	peephole.Optimize(l)

	fmt.Fprintf(out, "asm:  %s\n", emit.ASM(l))
	data, err := emit.Bytes(l)
	if err != nil {
		fmt.Fprintf(out, "emit error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "hex:  %x\n", data)
}
