// Package pseudocode is the host-facing facade over the compiler pipeline:
// lex, parse, analyse, generate IR, optimise, execute. This is the surface
// spec.md §6 describes a host embedding as compile/run: an Engine wraps no
// mutable state of its own (each Compile/Run call is independent, matching
// spec.md §5's "no compilation unit survives a run" rule) beyond the
// options a caller supplied to New.
package pseudocode

import (
	"context"
	"io"

	"github.com/rjpaske/pseudocode/internal/errors"
	"github.com/rjpaske/pseudocode/internal/ir"
	"github.com/rjpaske/pseudocode/internal/lexer"
	"github.com/rjpaske/pseudocode/internal/parser"
	"github.com/rjpaske/pseudocode/internal/semantic"
	"github.com/rjpaske/pseudocode/internal/token"
	"github.com/rjpaske/pseudocode/internal/vm"
)

// Engine holds the default options new compilations and runs are seeded
// with; Compile/Run may override individual ones per call.
type Engine struct {
	optimize bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithOptimize toggles the peephole optimiser (constant folding and
// dead-temporary elimination) on generated IR. Enabled by default.
func WithOptimize(on bool) Option {
	return func(e *Engine) { e.optimize = on }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{optimize: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CompileResult is everything a host might want to inspect from a
// successful (or failed) compilation, per spec.md §6.
type CompileResult struct {
	Tokens []string
	IR     *ir.Program
	Diags  []*errors.Diagnostic
}

// Compile lexes, parses, type-checks and lowers source to IR without
// running it. The returned CompileResult is populated as far as the
// pipeline got before any failure; Diags is non-empty on failure.
func (e *Engine) Compile(source, file string) (*CompileResult, error) {
	res := &CompileResult{}

	l := lexer.New(source)
	p, err := parser.New(l)
	if err != nil {
		diag := lexDiagnostic(err, source, file)
		res.Diags = []*errors.Diagnostic{diag}
		return res, diag
	}
	for tl := lexer.New(source); ; {
		tok, err := tl.Next()
		if err != nil {
			break
		}
		res.Tokens = append(res.Tokens, tok.String())
		if tok.Kind == token.EOF {
			break
		}
	}

	prog, err := p.ParseProgram()
	if err != nil {
		diag := parseDiagnostic(err, source, file)
		res.Diags = []*errors.Diagnostic{diag}
		return res, diag
	}

	_, diags := semantic.Analyze(prog, source, file)
	if len(diags) > 0 {
		res.Diags = diags
		return res, diags[0]
	}

	irProg := ir.Generate(prog)
	if e.optimize {
		irProg = ir.Optimize(irProg)
	}
	res.IR = irProg
	return res, nil
}

func lexDiagnostic(err error, source, file string) *errors.Diagnostic {
	if le, ok := err.(*lexer.LexError); ok {
		return errors.LexError(le.Pos, le.Msg, source, file)
	}
	return errors.LexError(token.Position{}, err.Error(), source, file)
}

func parseDiagnostic(err error, source, file string) *errors.Diagnostic {
	if pe, ok := err.(*parser.ParseError); ok {
		return errors.ParseError(pe.Pos, pe.Msg, source, file)
	}
	return errors.ParseError(token.Position{}, err.Error(), source, file)
}

// RunOptions configures a single Run call; every field is optional.
type RunOptions struct {
	Optimize    *bool
	Inputs      []string
	InputFunc   vm.InputFunc
	Output      io.Writer
	Files       map[string][]string
	MaxSteps    int64
	RandSeed    *int64
}

// RunResult is the outcome of a successful run: the IR that was actually
// executed plus everything the VM produced.
type RunResult struct {
	IR      *ir.Program
	Output  string
	Globals map[string]vm.Value
	Files   map[string][]string
	Diags   []*errors.Diagnostic
}

// Run compiles source and executes it to completion (or until ctx is
// cancelled, the step limit is hit, or a runtime error occurs). A nil ctx
// behaves as context.Background.
func (e *Engine) Run(ctx context.Context, source, file string, opts RunOptions) (*RunResult, error) {
	optimize := e.optimize
	if opts.Optimize != nil {
		optimize = *opts.Optimize
	}

	compiled, err := (&Engine{optimize: optimize}).Compile(source, file)
	if err != nil {
		return &RunResult{Diags: compiled.Diags}, err
	}

	var vmOpts []vm.Option
	if opts.Output != nil {
		vmOpts = append(vmOpts, vm.WithOutput(opts.Output))
	}
	switch {
	case opts.InputFunc != nil:
		vmOpts = append(vmOpts, vm.WithInputFunc(opts.InputFunc))
	case opts.Inputs != nil:
		vmOpts = append(vmOpts, vm.WithInputs(opts.Inputs))
	}
	if opts.Files != nil {
		vmOpts = append(vmOpts, vm.WithFiles(opts.Files))
	}
	if opts.MaxSteps > 0 {
		vmOpts = append(vmOpts, vm.WithMaxSteps(opts.MaxSteps))
	}
	if opts.RandSeed != nil {
		vmOpts = append(vmOpts, vm.WithRandSeed(*opts.RandSeed))
	}

	machine := vm.New(vmOpts...)
	result, err := machine.Run(ctx, compiled.IR)
	if err != nil {
		diag, ok := err.(*errors.Diagnostic)
		if !ok {
			diag = errors.RuntimeError(token.Position{}, err.Error(), source, file)
		}
		return &RunResult{IR: compiled.IR, Diags: []*errors.Diagnostic{diag}}, diag
	}

	return &RunResult{
		IR:      compiled.IR,
		Output:  result.Output,
		Globals: result.Globals,
		Files:   result.Files,
	}, nil
}
