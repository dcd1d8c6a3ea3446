package vm

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// callBuiltin implements the runtime side of the built-in functions whose
// compile-time signatures live in internal/semantic/builtins.go (spec.md
// §4.6). Semantic analysis has already checked arity and argument types, so
// failures here are either genuinely data-dependent (STR_TO_NUM on a
// non-numeric string) or VM-internal (an unknown builtin name).
func (vm *VM) callBuiltin(name string, args []Value) (Value, error) {
	switch name {
	case "LENGTH":
		return IntValue(len([]rune(string(args[0].(StringValue))))), nil

	case "UCASE", "TO_UPPER":
		return StringValue(strings.ToUpper(string(args[0].(StringValue)))), nil

	case "LCASE", "TO_LOWER":
		return StringValue(strings.ToLower(string(args[0].(StringValue)))), nil

	case "MID":
		s := []rune(string(args[0].(StringValue)))
		start := int(toInt(args[1]))
		length := int(toInt(args[2]))
		return StringValue(midRunes(s, start, length)), nil

	case "LEFT":
		s := []rune(string(args[0].(StringValue)))
		n := int(toInt(args[1]))
		return StringValue(midRunes(s, 1, n)), nil

	case "RIGHT":
		s := []rune(string(args[0].(StringValue)))
		n := int(toInt(args[1]))
		start := len(s) - n + 1
		return StringValue(midRunes(s, start, n)), nil

	case "INT":
		f, _ := asFloat(args[0])
		return IntValue(int64(math.Trunc(f))), nil

	case "RAND":
		n := toInt(args[0])
		if n < 0 {
			n = 0
		}
		return IntValue(vm.rng.Int63n(n + 1)), nil

	case "NUM_TO_STR":
		return StringValue(args[0].String()), nil

	case "STR_TO_NUM":
		s := strings.TrimSpace(string(args[0].(StringValue)))
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("STR_TO_NUM: %q is not numeric", s)
		}
		return RealValue(f), nil

	case "CHR":
		return StringValue(string(rune(toInt(args[0])))), nil

	case "ASC":
		s := []rune(string(args[0].(StringValue)))
		if len(s) == 0 {
			return nil, fmt.Errorf("ASC: empty string has no character code")
		}
		return IntValue(int64(s[0])), nil

	case "EOF":
		name := string(args[0].(StringValue))
		return BoolValue(vm.files.eof(name)), nil

	default:
		return nil, fmt.Errorf("unknown builtin %q", name)
	}
}

func toInt(v Value) int64 {
	switch n := v.(type) {
	case IntValue:
		return int64(n)
	case RealValue:
		return int64(n)
	default:
		return 0
	}
}

// midRunes returns the 1-based, length-bounded substring of s, clamped to
// s's actual extent (spec.md leaves out-of-range MID/LEFT/RIGHT bounds
// unspecified; clamping rather than erroring matches how CIE pseudocode
// textbooks describe these functions behaving at the edges).
func midRunes(s []rune, start, length int) string {
	if length <= 0 || start > len(s) {
		return ""
	}
	if start < 1 {
		length += start - 1
		start = 1
	}
	if length <= 0 {
		return ""
	}
	end := start - 1 + length
	if end > len(s) {
		end = len(s)
	}
	return string(s[start-1 : end])
}

// newRNG seeds from wall-clock time by default; WithRandSeed overrides this
// for tests that need RAND's output to be reproducible.
func newRNG() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
