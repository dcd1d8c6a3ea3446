package vm

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/rjpaske/pseudocode/internal/errors"
	"github.com/rjpaske/pseudocode/internal/ir"
	"github.com/rjpaske/pseudocode/internal/token"
)

// defaultMaxSteps is the safety counter from spec.md §4.6: a runaway
// program (an unintended infinite loop) aborts instead of hanging the host
// process forever.
const defaultMaxSteps = 10_000_000

// defaultYieldEvery is how often, in steps, a driver-mode run checks its
// context for cancellation - cheap enough not to matter for correctness,
// coarse enough not to dominate the step loop's own cost.
const defaultYieldEvery = 1000

// InputFunc supplies one line of input text on demand. In batch mode it
// drains a pre-queued slice; in driver mode the host wires it to whatever
// suspends until real input arrives (stdin, a UI field, a channel). Ok is
// false when no more input will ever arrive.
type InputFunc func() (line string, ok bool)

// Option configures a VM before a run.
type Option func(*VM)

// WithOutput also writes OUTPUT/OUTPUT_PART text to w; Result.Output
// collects it either way.
func WithOutput(w io.Writer) Option {
	return func(vm *VM) { vm.out = w }
}

// WithInputs preloads batch-mode input: each call consumes the next queued
// line. Exhausting the queue fails the next INPUT (spec.md §5: batch mode
// never suspends).
func WithInputs(lines []string) Option {
	return func(vm *VM) {
		i := 0
		vm.input = func() (string, bool) {
			if i >= len(lines) {
				return "", false
			}
			line := lines[i]
			i++
			return line, true
		}
	}
}

// WithInputFunc installs a driver-mode input source: a caller-supplied,
// potentially blocking function (spec.md §5's "deferrable input-producing
// operation").
func WithInputFunc(f InputFunc) Option {
	return func(vm *VM) { vm.input = f }
}

// WithRandSeed fixes the RAND builtin's seed, mainly so tests can assert
// exact output.
func WithRandSeed(seed int64) Option {
	return func(vm *VM) { vm.rng = rand.New(rand.NewSource(seed)) }
}

// WithMaxSteps overrides the default step safety counter.
func WithMaxSteps(n int64) Option {
	return func(vm *VM) { vm.maxSteps = n }
}

// WithYieldEvery overrides how many steps pass between context-cancellation
// checks in driver mode.
func WithYieldEvery(n int) Option {
	return func(vm *VM) { vm.yieldEvery = n }
}

// WithFiles seeds the virtual filesystem with pre-existing file content,
// keyed by file name, as if each had already been WRITEFILE'd.
func WithFiles(files map[string][]string) Option {
	return func(vm *VM) {
		for name, lines := range files {
			vm.files.files[name] = &vfile{written: append([]string(nil), lines...)}
		}
	}
}

// VM executes a loaded IR program (spec.md §4.6).
type VM struct {
	lp         *loadedProgram
	pc         int
	frames     []*frame
	callStack  []int
	argStack   []Value
	refStack   []ref
	retval     Value
	out        io.Writer // optional extra sink the host wants output teed to
	sink       io.Writer // always-present sink exec() writes OUTPUT to
	outParts   []string
	files      *fileTable
	input      InputFunc
	rng        *rand.Rand
	steps      int64
	maxSteps   int64
	yieldEvery int
	halted     bool
}

// New creates a VM ready to run a freshly compiled program. A fresh VM
// (and a fresh file table, scope stack, RNG) is used per compilation per
// spec.md §5 - nothing is reused between runs.
func New(opts ...Option) *VM {
	vm := &VM{
		frames:     []*frame{newFrame(-1)},
		files:      newFileTable(),
		rng:        newRNG(),
		maxSteps:   defaultMaxSteps,
		yieldEvery: defaultYieldEvery,
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// Result is the outcome of a completed run.
type Result struct {
	Output  string
	Globals map[string]Value
	Files   map[string][]string
}

// Run executes prog to completion (or until an error, the step limit, or
// ctx cancellation). A nil ctx is treated as context.Background.
func (vm *VM) Run(ctx context.Context, prog *ir.Program) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	vm.lp = load(prog)
	vm.pc = 0

	var output strings.Builder
	if vm.out != nil {
		vm.sink = io.MultiWriter(&output, vm.out)
	} else {
		vm.sink = &output
	}

	for vm.pc < len(vm.lp.instrs) {
		if vm.yieldEvery > 0 && vm.steps%int64(vm.yieldEvery) == 0 {
			if err := ctx.Err(); err != nil {
				return nil, vm.runtimeErr("cancelled: %v", err)
			}
		}
		vm.steps++
		if vm.steps > vm.maxSteps {
			return nil, vm.runtimeErr("step limit exceeded (%d steps)", vm.maxSteps)
		}

		in := vm.lp.instrs[vm.pc]
		if in.IsLabel() {
			vm.pc++
			continue
		}

		next, err := vm.exec(in)
		if err != nil {
			return nil, err
		}
		vm.pc = next
	}

	return &Result{
		Output:  output.String(),
		Globals: vm.globalsSnapshot(),
		Files:   vm.filesSnapshot(),
	}, nil
}

func (vm *VM) globalsSnapshot() map[string]Value {
	out := make(map[string]Value, len(vm.frames[0].vars))
	for k, v := range vm.frames[0].vars {
		out[k] = v
	}
	return out
}

func (vm *VM) filesSnapshot() map[string][]string {
	out := make(map[string][]string, len(vm.files.files))
	for name, f := range vm.files.files {
		out[name] = append([]string(nil), f.written...)
	}
	return out
}

func (vm *VM) runtimeErr(format string, args ...any) error {
	return errors.RuntimeError(token.Position{Line: vm.pc + 1}, fmt.Sprintf(format, args...), "", "")
}

func (vm *VM) top() int { return len(vm.frames) - 1 }
