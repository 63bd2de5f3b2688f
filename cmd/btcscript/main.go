// cmd/btcscript/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"btcscript/cmd/btcscript/commands"
	"btcscript/internal/peephole"
)

const version = "1.0.0"

var commandAliases = map[string]string{
	"c": "compile",
	"o": "optimize",
	"d": "disasm",
	"i": "repl",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "--help", "-h", "help":
		if len(args) > 1 {
			showCommandHelp(args[1])
		} else {
			showUsage()
		}
		return
	case "--version", "-v", "version":
		showVersion()
		return
	case "compile":
		runCompile(args[1:])
		return
	case "optimize":
		runOptimize(args[1:])
		return
	case "disasm":
		runDisasm(args[1:])
		return
	case "repl":
		if err := commands.ReplCommand(); err != nil {
			log.Fatalf("Error: %v", err)
		}
		return
	default:
		suggestCommand(cmd)
	}
}

func runCompile(args []string) {
	opts, rest := parseOptions(args)
	if len(rest) == 0 {
		log.Fatal("Error: compile requires a source file (or - for stdin)")
	}
	if err := commands.CompileCommand(rest[0], opts, os.Stdout); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runOptimize(args []string) {
	opts, rest := parseOptions(args)
	if len(rest) == 0 {
		log.Fatal("Error: optimize requires an ASM source file (or - for stdin)")
	}
	if err := commands.OptimizeCommand(rest[0], opts, os.Stdout); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runDisasm(args []string) {
	if len(args) == 0 {
		log.Fatal("Error: disasm requires a compiled script file")
	}
	if err := commands.DisasmCommand(args[0], os.Stdout); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// parseOptions scans a hand-rolled set of --flag and --flag=value options
// and returns the remaining positional arguments. --max-passes overrides
// the peephole optimizer's pass cap for the whole process, since the
// cap is threaded through many call sites inside the contextualizer
// rather than passed explicitly to each one.
func parseOptions(args []string) (commands.Options, []string) {
	opts := commands.Options{Lang: "txscript", Format: "asm", Optimize: true}
	var rest []string

	for _, a := range args {
		switch {
		case a == "--asm":
			opts.Lang = "asm"
		case a == "--txscript":
			opts.Lang = "txscript"
		case a == "--no-optimize":
			opts.Optimize = false
		case a == "--trace":
			opts.Trace = true
		case strings.HasPrefix(a, "--lang="):
			opts.Lang = strings.TrimPrefix(a, "--lang=")
		case strings.HasPrefix(a, "--format="):
			opts.Format = strings.TrimPrefix(a, "--format=")
		case strings.HasPrefix(a, "--max-passes="):
			n, err := strconv.Atoi(strings.TrimPrefix(a, "--max-passes="))
			if err != nil || n < 0 {
				log.Fatalf("Error: --max-passes wants a non-negative integer, got %q", a)
			}
			peephole.MaxPasses = n
		default:
			rest = append(rest, a)
		}
	}
	return opts, rest
}

func showUsage() {
	fmt.Println("btcscript - Bitcoin Script compiler toolchain")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  btcscript compile <file>    Compile ASM or TxScript source   (alias: c)")
	fmt.Println("  btcscript optimize <file>   Run the peephole optimizer alone (alias: o)")
	fmt.Println("  btcscript disasm <file>     Disassemble a compiled script    (alias: d)")
	fmt.Println("  btcscript repl              Start the interactive compiler REPL (alias: i)")
	fmt.Println()
	fmt.Println("Compile/optimize flags:")
	fmt.Println("  --lang=asm|txscript   Source language (default: txscript)")
	fmt.Println("  --format=asm|hex|bytes  Output format (default: asm)")
	fmt.Println("  --no-optimize         Skip the peephole optimizer")
	fmt.Println("  --trace               Print the optimizer's per-pass trace (optimize only)")
	fmt.Println("  --max-passes=N        Cap the optimizer's fixpoint passes (default: 5)")
	fmt.Println()
	fmt.Println("  btcscript help [command]    Show help, optionally for one command")
	fmt.Println("  btcscript version           Show version information")
}

func showVersion() {
	fmt.Printf("btcscript %s\n", version)
}

var helpText = map[string]string{
	"compile": `btcscript compile - compile ASM or TxScript source to Bitcoin Script

USAGE:
  btcscript compile <file> [flags]
  btcscript c <file>                # using alias

FLAGS:
  --lang=asm|txscript   Source language (default: txscript)
  --format=asm|hex|bytes  Output format (default: asm)
  --no-optimize         Skip the peephole optimizer
  --max-passes=N        Cap the optimizer's fixpoint passes (default: 5)

Macro inlining is not optional: resolving a TxScript symbol reference IS
inlining its definition, so there is no separate inliner pass to disable.

EXAMPLES:
  btcscript compile script.txs
  btcscript compile --format=hex script.txs
  btcscript compile --lang=asm --format=bytes script.asm > script.btcs`,

	"optimize": `btcscript optimize - run only the peephole optimizer over ASM input

USAGE:
  btcscript optimize <file> [--trace]
  btcscript o <file>                # using alias`,

	"disasm": `btcscript disasm - disassemble a compiled script back to ASM

USAGE:
  btcscript disasm <file.btcs>
  btcscript d <file.btcs>           # using alias

Disassembly cannot recover inner-script structure or macro boundaries:
a compiled script is flat bytes, so a disassembled InnerScript appears as
an ordinary data push.`,

	"repl": `btcscript repl - interactive compile-and-print loop

USAGE:
  btcscript repl
  btcscript i                       # using alias

Paste a TxScript statement and see its compiled ASM and hex immediately.`,
}

func showCommandHelp(command string) {
	if alias, ok := commandAliases[command]; ok {
		command = alias
	}
	if text, ok := helpText[command]; ok {
		fmt.Println(text)
		return
	}
	fmt.Printf("No help available for %q\n", command)
	showUsage()
}

func suggestCommand(cmd string) {
	allCommands := []string{"compile", "optimize", "disasm", "repl", "help", "version"}

	fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", cmd)

	suggestions := findSimilarCommands(cmd, allCommands, 2)
	if len(suggestions) > 0 {
		fmt.Fprintln(os.Stderr, "\nDid you mean one of these?")
		for _, s := range suggestions {
			alias := ""
			for a, full := range commandAliases {
				if full == s {
					alias = fmt.Sprintf(" (alias: %s)", a)
					break
				}
			}
			fmt.Fprintf(os.Stderr, "  btcscript %s%s\n", s, alias)
		}
	}
	fmt.Fprintln(os.Stderr, "\nRun 'btcscript help' to see all available commands")
	os.Exit(1)
}

func findSimilarCommands(input string, commands []string, maxDistance int) []string {
	var similar []string
	for _, c := range commands {
		if levenshteinDistance(input, c) <= maxDistance {
			similar = append(similar, c)
		}
	}
	return similar
}

func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	matrix := make([][]int, len(s1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(s2)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}
			matrix[i][j] = minInt(
				matrix[i-1][j]+1,
				matrix[i][j-1]+1,
				matrix[i-1][j-1]+cost,
			)
		}
	}
	return matrix[len(s1)][len(s2)]
}

func minInt(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
