// Package errors provides the compiler/runtime error taxonomy and
// source-context formatting (caret diagnostics), grounded on the teacher's
// CompilerError design.
package errors

import (
	"fmt"
	"strings"

	"github.com/rjpaske/pseudocode/internal/token"
)

// Stage identifies which pipeline stage raised a diagnostic.
type Stage string

const (
	StageLex      Stage = "LexError"
	StageParse    Stage = "ParseError"
	StageType     Stage = "TypeError"
	StageRuntime  Stage = "RuntimeError"
)

// ExitCode maps a Stage to the CLI exit code from spec.md §6.
func (s Stage) ExitCode() int {
	switch s {
	case StageLex:
		return 1
	case StageParse:
		return 2
	case StageType:
		return 3
	case StageRuntime:
		return 4
	default:
		return 1
	}
}

// Diagnostic is a single staged compiler/runtime error with position and
// source context, formatted the way the teacher's CompilerError is.
type Diagnostic struct {
	Stage   Stage
	Message string
	Pos     token.Position
	Source  string
	File    string
}

// New constructs a Diagnostic.
func New(stage Stage, pos token.Position, message, source, file string) *Diagnostic {
	return &Diagnostic{Stage: stage, Message: message, Pos: pos, Source: source, File: file}
}

// Error implements the error interface, matching spec.md §6's "stage tag" +
// "line N" diagnostic convention.
func (d *Diagnostic) Error() string {
	if d.Pos.Line > 0 {
		return fmt.Sprintf("%s: %s at line %d", d.Stage, d.Message, d.Pos.Line)
	}
	return fmt.Sprintf("%s: %s", d.Stage, d.Message)
}

// Format renders the diagnostic with a source line and caret, the way the
// teacher's CompilerError.Format does.
func (d *Diagnostic) Format(color bool) string {
	var sb strings.Builder

	if d.File != "" {
		fmt.Fprintf(&sb, "%s in %s:%d:%d\n", d.Stage, d.File, d.Pos.Line, d.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "%s at line %d:%d\n", d.Stage, d.Pos.Line, d.Pos.Column)
	}

	if line := d.sourceLine(d.Pos.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", d.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")

		pad := len(prefix) + d.Pos.Column - 1
		if pad < 0 {
			pad = 0
		}
		sb.WriteString(strings.Repeat(" ", pad))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(d.Message)
	if color {
		sb.WriteString("\033[0m")
	}

	return sb.String()
}

func (d *Diagnostic) sourceLine(line int) string {
	if d.Source == "" {
		return ""
	}
	lines := strings.Split(d.Source, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// FormatAll renders a batch of diagnostics, matching the teacher's
// FormatErrors convention for multi-error reporting in a single stage (used
// by the CLI; the compiler itself aborts after the first per spec.md §7).
func FormatAll(diags []*Diagnostic, color bool) string {
	if len(diags) == 0 {
		return ""
	}
	if len(diags) == 1 {
		return diags[0].Format(color)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d error(s)\n\n", diags[0].Stage, len(diags))
	for i, d := range diags {
		fmt.Fprintf(&sb, "[%d of %d]\n", i+1, len(diags))
		sb.WriteString(d.Format(color))
		if i < len(diags)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}

// LexError, ParseError, TypeError and RuntimeError are thin named
// constructors over Diagnostic so call sites and %T-based error-kind
// switches read naturally, while sharing one formatting implementation.
func LexError(pos token.Position, msg, source, file string) *Diagnostic {
	return New(StageLex, pos, msg, source, file)
}

func ParseError(pos token.Position, msg, source, file string) *Diagnostic {
	return New(StageParse, pos, msg, source, file)
}

func TypeError(pos token.Position, msg, source, file string) *Diagnostic {
	return New(StageType, pos, msg, source, file)
}

func RuntimeError(pos token.Position, msg, source, file string) *Diagnostic {
	return New(StageRuntime, pos, msg, source, file)
}
