// Package reporting collects the diagnostics raised during a compilation
// run and renders them the way a front-end boundary surfaces them to a
// caller: grouped, one line per location, errors before warnings.
package reporting

import (
	"fmt"
	"sort"
	"strings"

	cerrors "btcscript/internal/errors"
)

// Severity distinguishes a diagnostic that aborts compilation from one
// that does not.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one reported item: a severity, the underlying
// CompileError, and the stage that raised it (the CLI uses "parse" and
// "compile").
type Diagnostic struct {
	Severity Severity
	Stage    string
	Err      *cerrors.CompileError
}

// Collector accumulates diagnostics across a single compilation run. It is
// not safe for concurrent use; a run owns exactly one collector, matching
// the toolchain's single-threaded, synchronous execution model.
type Collector struct {
	items []Diagnostic
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Error(stage string, err *cerrors.CompileError) {
	c.items = append(c.items, Diagnostic{Severity: SeverityError, Stage: stage, Err: err})
}

func (c *Collector) Warning(stage string, err *cerrors.CompileError) {
	c.items = append(c.items, Diagnostic{Severity: SeverityWarning, Stage: stage, Err: err})
}

// HasErrors reports whether any diagnostic at SeverityError was recorded.
// The front-end boundary aborts compilation when this is true.
func (c *Collector) HasErrors() bool {
	for _, d := range c.items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (c *Collector) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), c.items...)
}

// Render produces the grouped, one-line-per-location text report: errors
// first, then warnings, each group sorted by source location.
func (c *Collector) Render() string {
	var sb strings.Builder
	errs := c.byseverity(SeverityError)
	warns := c.byseverity(SeverityWarning)
	if len(errs) > 0 {
		sb.WriteString(fmt.Sprintf("%d error(s):\n", len(errs)))
		for _, d := range errs {
			sb.WriteString(renderLine(d))
		}
	}
	if len(warns) > 0 {
		sb.WriteString(fmt.Sprintf("%d warning(s):\n", len(warns)))
		for _, d := range warns {
			sb.WriteString(renderLine(d))
		}
	}
	return sb.String()
}

// RenderColor behaves like Render but, when color is true, wraps each
// error line in red and each warning line in yellow ANSI escapes.
func (c *Collector) RenderColor(color bool) string {
	if !color {
		return c.Render()
	}
	var sb strings.Builder
	errs := c.byseverity(SeverityError)
	warns := c.byseverity(SeverityWarning)
	if len(errs) > 0 {
		sb.WriteString(fmt.Sprintf("%d error(s):\n", len(errs)))
		for _, d := range errs {
			sb.WriteString("\x1b[31m" + strings.TrimRight(renderLine(d), "\n") + "\x1b[0m\n")
		}
	}
	if len(warns) > 0 {
		sb.WriteString(fmt.Sprintf("%d warning(s):\n", len(warns)))
		for _, d := range warns {
			sb.WriteString("\x1b[33m" + strings.TrimRight(renderLine(d), "\n") + "\x1b[0m\n")
		}
	}
	return sb.String()
}

func (c *Collector) byseverity(sev Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range c.items {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		li, lj := out[i].Err.Location, out[j].Err.Location
		if li.Line != lj.Line {
			return li.Line < lj.Line
		}
		return li.Col < lj.Col
	})
	return out
}

func renderLine(d Diagnostic) string {
	return fmt.Sprintf("  [%s/%s] %s\n", d.Stage, d.Err.Kind, d.Err.Error())
}
