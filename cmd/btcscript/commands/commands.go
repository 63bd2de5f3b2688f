// Package commands implements the btcscript CLI's subcommand functions,
// one function per command, each returning an error. CompileCommand and
// OptimizeCommand take a source path, the shared Options and an output
// writer; DisasmCommand takes a path and an output writer.
package commands

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"btcscript/internal/asmtext"
	"btcscript/internal/contextualizer"
	"btcscript/internal/emit"
	cerrors "btcscript/internal/errors"
	"btcscript/internal/lir"
	"btcscript/internal/peephole"
	"btcscript/internal/replcompile"
	"btcscript/internal/reporting"
	"btcscript/internal/trace"
	"btcscript/internal/txscript"

	"github.com/mattn/go-isatty"
)

// Options carries the flags common to the compile/optimize commands, parsed by main's hand-rolled flag scan.
type Options struct {
	Lang     string // "asm" or "txscript"
	Format   string // "asm", "hex", or "bytes"
	Optimize bool
	Trace    bool
}

// CompileCommand reads source from a file (or stdin, if path is "-"),
// lowers it to LIR per opts, and writes the requested output format. A
// parse, resolution, or arity error is collected and rendered to out
// rather than returned raw, so the caller sees the same grouped report a
// front-end boundary produces for any other diagnostic.
func CompileCommand(path string, opts Options, out io.Writer) error {
	src, err := readSource(path)
	if err != nil {
		return err
	}

	collector := reporting.NewCollector()
	l, err := lower(src, path, opts, collector)
	if err != nil {
		return reportAndFail(collector, out)
	}

	return writeOutput(l, opts, out)
}

// OptimizeCommand runs only the peephole optimizer over already-assembled
// ASM input, printing the before/after ASM form (and, with opts.Trace, the
// per-pass trace).
func OptimizeCommand(path string, opts Options, out io.Writer) error {
	src, err := readSource(path)
	if err != nil {
		return err
	}
	toks := asmtext.NewLexer(src).ScanTokens()
	l, err := asmtext.NewParser(toks, path).Parse()
	if err != nil {
		collector := reporting.NewCollector()
		collectParseError(collector, err)
		return reportAndFail(collector, out)
	}

	fmt.Fprintf(out, "before: %s\n", emit.ASM(l))
	if opts.Trace {
		tr := trace.NewTracer()
		tr.Run(l)
		fmt.Fprint(out, tr.Render())
	} else {
		peephole.Optimize(l)
	}
	fmt.Fprintf(out, "after:  %s\n", emit.ASM(l))
	return nil
}

// DisasmCommand reads a compiled byte-format script (optionally wrapped in
// the debug container) and prints its ASM form.
func DisasmCommand(path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()

	script, err := emit.ReadContainer(f)
	if err != nil {
		return fmt.Errorf("cannot read container: %w", err)
	}
	l, err := emit.Disassemble(script)
	if err != nil {
		return fmt.Errorf("disassemble error: %w", err)
	}
	fmt.Fprintln(out, emit.ASM(l))
	return nil
}

// ReplCommand starts the interactive compile-and-print loop.
func ReplCommand() error {
	replcompile.Start(os.Stdin, os.Stdout)
	return nil
}

// UseColor reports whether diagnostic output should be colorized: stdout
// must be a real terminal, not a pipe or redirected file.
func UseColor() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// reportAndFail renders collector's accumulated diagnostics to out,
// colorized if stdout is a terminal, and returns a sentinel error summarizing
// the failure.
func reportAndFail(collector *reporting.Collector, out io.Writer) error {
	fmt.Fprint(out, collector.RenderColor(UseColor()))
	return fmt.Errorf("compilation failed with %d error(s)", len(collector.Diagnostics()))
}

// collectParseError records a parse-stage error in collector. asmtext and
// txscript parsers always return a *cerrors.CompileError, directly or
// wrapped, except for I/O failures that never reach this path.
func collectParseError(collector *reporting.Collector, err error) {
	var ce *cerrors.CompileError
	if errors.As(err, &ce) {
		collector.Error("parse", ce)
		return
	}
	collector.Error("parse", cerrors.New(cerrors.ParseError, cerrors.Location{}, "%v", err))
}

// collectCompileError records a lowering-stage error (undefined symbol,
// arity mismatch, recursive definition, oversized push) in collector.
func collectCompileError(collector *reporting.Collector, err error) {
	var ce *cerrors.CompileError
	if errors.As(err, &ce) {
		collector.Error("compile", ce)
		return
	}
	collector.Error("compile", cerrors.New(cerrors.InternalInvariant, cerrors.Location{}, "%v", err))
}

func readSource(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func lower(src, path string, opts Options, collector *reporting.Collector) (*lir.LInstructions, error) {
	var l *lir.LInstructions
	switch opts.Lang {
	case "asm":
		toks := asmtext.NewLexer(src).ScanTokens()
		out, err := asmtext.NewParser(toks, path).Parse()
		if err != nil {
			collectParseError(collector, err)
			return nil, err
		}
		l = out
	case "txscript":
		toks := txscript.NewLexer(src).ScanTokens()
		script, err := txscript.NewParser(toks, path).Parse()
		if err != nil {
			collectParseError(collector, err)
			return nil, err
		}
		out, err := contextualizer.New().Lower(script)
		if err != nil {
			collectCompileError(collector, err)
			return nil, err
		}
		l = out
	default:
		err := fmt.Errorf("unknown source language %q (want asm or txscript)", opts.Lang)
		collector.Error("parse", cerrors.New(cerrors.ParseError, cerrors.Location{}, "%v", err))
		return nil, err
	}
	if opts.Optimize {
		peephole.Optimize(l)
	}
	return l, nil
}

func writeOutput(l *lir.LInstructions, opts Options, out io.Writer) error {
	switch opts.Format {
	case "asm", "":
		fmt.Fprintln(out, emit.ASM(l))
		return nil
	case "hex":
		data, err := emit.Bytes(l)
		if err != nil {
			return fmt.Errorf("emit error: %w", err)
		}
		fmt.Fprintln(out, hex.EncodeToString(data))
		return nil
	case "bytes":
		data, err := emit.Bytes(l)
		if err != nil {
			return fmt.Errorf("emit error: %w", err)
		}
		return emit.WriteContainer(out, data)
	default:
		return fmt.Errorf("unknown output format %q (want asm, hex, or bytes)", opts.Format)
	}
}
