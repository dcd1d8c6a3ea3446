package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// OptimizationPass names one independently toggleable peephole pass
// (spec.md §4.5).
type OptimizationPass string

const (
	PassConstantFold    OptimizationPass = "constant-fold"
	PassDeadTempElim OptimizationPass = "dead-temp-elim"
)

// Option toggles optimizer behavior.
type Option func(*optimizeConfig)

type optimizeConfig struct {
	enabled map[OptimizationPass]bool
}

func defaultOptimizeConfig() optimizeConfig {
	return optimizeConfig{
		enabled: map[OptimizationPass]bool{
			PassConstantFold:    true,
			PassDeadTempElim: true,
		},
	}
}

func (cfg optimizeConfig) isEnabled(pass OptimizationPass) bool {
	if cfg.enabled == nil {
		return true
	}
	enabled, ok := cfg.enabled[pass]
	if !ok {
		return true
	}
	return enabled
}

// WithPass enables or disables a single optimization pass.
func WithPass(pass OptimizationPass, enabled bool) Option {
	return func(cfg *optimizeConfig) {
		if cfg.enabled == nil {
			cfg.enabled = make(map[OptimizationPass]bool)
		}
		cfg.enabled[pass] = enabled
	}
}

// Optimize runs the enabled peephole passes over prog and returns a new,
// optimized Program. The input Program is left untouched. Passes are
// applied to a fixed point: removing a dead temporary's instruction can
// leave the temporaries it read unreferenced in turn, so the passes re-run
// until neither changes anything.
func Optimize(prog *Program, opts ...Option) *Program {
	cfg := defaultOptimizeConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	lines := append([]string(nil), prog.Lines...)
	for {
		changed := false
		if cfg.isEnabled(PassConstantFold) {
			var did bool
			lines, did = foldConstants(lines)
			changed = changed || did
		}
		if cfg.isEnabled(PassDeadTempElim) {
			var did bool
			lines, did = eliminateDeadTemps(lines)
			changed = changed || did
		}
		if !changed {
			break
		}
	}
	return &Program{Lines: lines}
}

// foldConstants replaces "Tn = a OP b" lines where both operands are
// numeric literals with "Tn = result". DIV truncates toward zero; MOD
// follows the sign of the dividend, matching Go's own "/" and "%" on
// integers (spec.md §4.6).
func foldConstants(lines []string) ([]string, bool) {
	changed := false
	out := make([]string, len(lines))
	for i, line := range lines {
		in := Decode(line)
		folded, ok := tryFold(in)
		if !ok {
			out[i] = line
			continue
		}
		out[i] = fmt.Sprintf("%s = %s", in.Args[0], folded)
		changed = true
	}
	return out, changed
}

var foldableOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "^": true,
	"DIV": true, "MOD": true,
}

func tryFold(in Instr) (string, bool) {
	if in.Op != "=" || len(in.Args) != 4 {
		return "", false
	}
	left, op, right := in.Args[1], in.Args[2], in.Args[3]
	if !foldableOps[op] {
		return "", false
	}
	lv, lIsInt, lok := parseNumber(left)
	rv, rIsInt, rok := parseNumber(right)
	if !lok || !rok {
		return "", false
	}

	switch op {
	case "+":
		return foldArith(lv+rv, lIsInt && rIsInt), true
	case "-":
		return foldArith(lv-rv, lIsInt && rIsInt), true
	case "*":
		return foldArith(lv*rv, lIsInt && rIsInt), true
	case "/":
		if rv == 0 {
			return "", false // let the VM raise the division-by-zero error
		}
		return foldArith(lv/rv, false), true
	case "^":
		return foldArith(ipow(lv, rv), false), true
	case "DIV":
		if rv == 0 {
			return "", false
		}
		q := int64(lv) / int64(rv) // Go's integer division already truncates toward zero
		return strconv.FormatInt(q, 10), true
	case "MOD":
		if rv == 0 {
			return "", false
		}
		m := int64(lv) % int64(rv) // Go's % already follows the dividend's sign
		return strconv.FormatInt(m, 10), true
	}
	return "", false
}

func ipow(base, exp float64) float64 {
	result := 1.0
	n := int(exp)
	neg := n < 0
	if neg {
		n = -n
	}
	for i := 0; i < n; i++ {
		result *= base
	}
	if neg {
		return 1 / result
	}
	return result
}

func foldArith(v float64, isInt bool) string {
	if isInt {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseNumber(tok string) (value float64, isInt bool, ok bool) {
	if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return float64(i), true, true
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return f, false, true
	}
	return 0, false, false
}

// eliminateDeadTemps drops "Tn = ..." instructions whose temporary is never
// referenced again, anywhere (including inside a "[...]" index expression).
// Label lines and anything that isn't a plain "Tn = ..." assignment are
// never touched: side-effecting instructions (CALL, OUTPUT, WRITEFILE, ...)
// must run regardless of whether their result is used. For the same reason a
// "Tn = BUILTIN ..." call is kept even when Tn is unused (RAND advances the
// random source, STR_TO_NUM can fail at run time).
func eliminateDeadTemps(lines []string) ([]string, bool) {
	referenced := make(map[string]bool)
	for _, line := range lines {
		in := Decode(line)
		if in.IsLabel() {
			continue
		}
		// A bare "Tn = ..." target is a definition, not a use. A target
		// like "A[T3]" or "P.T3" still uses whatever temps appear inside
		// it, so only the pure bare-temp case is skipped.
		bareTarget := in.Op == "=" && len(in.Args) > 0 && isBareTemp(in.Args[0])
		for i, tok := range in.Args {
			if bareTarget && i == 0 {
				continue
			}
			for _, word := range splitOperandWords(tok) {
				if IsTemp(word) {
					referenced[word] = true
				}
			}
		}
	}

	changed := false
	var out []string
	for _, line := range lines {
		in := Decode(line)
		if in.IsLabel() || in.Op != "=" || len(in.Args) == 0 {
			out = append(out, line)
			continue
		}
		target := in.Args[0]
		isBuiltinCall := len(in.Args) > 1 && in.Args[1] == "BUILTIN"
		if isBareTemp(target) && !referenced[target] && !isBuiltinCall {
			changed = true
			continue
		}
		out = append(out, line)
	}
	return out, changed
}

func isBareTemp(tok string) bool {
	return IsTemp(tok) && !strings.ContainsAny(tok, "[.")
}

// splitOperandWords pulls the identifier-like words out of a single token,
// so a reference inside "A[T3]" or "P.T3" (not itself a temp) still counts
// as a use of T3.
func splitOperandWords(tok string) []string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for _, r := range tok {
		switch {
		case r == '[' || r == ']' || r == ',' || r == '.':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return words
}
