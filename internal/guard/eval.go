package guard

import (
	"fmt"
	"strconv"
)

func compareStrings(op CompareOp, l, r string) (bool, error) {
	switch op {
	case OpEq:
		return l == r, nil
	case OpNeq:
		return l != r, nil
	}

	// Ordering comparisons: try numeric first since CompLearner-emitted
	// guards frequently compare numeric-looking parameters; fall back to
	// lexical ordering for genuinely non-numeric operands.
	lf, lerr := strconv.ParseFloat(l, 64)
	rf, rerr := strconv.ParseFloat(r, 64)

	if lerr == nil && rerr == nil {
		switch op {
		case OpLt:
			return lf < rf, nil
		case OpLe:
			return lf <= rf, nil
		case OpGt:
			return lf > rf, nil
		case OpGe:
			return lf >= rf, nil
		}
	}

	switch op {
	case OpLt:
		return l < r, nil
	case OpLe:
		return l <= r, nil
	case OpGt:
		return l > r, nil
	case OpGe:
		return l >= r, nil
	}

	return false, fmt.Errorf("guard: unsupported comparison operator %v", op)
}

// Eval evaluates a guard expression against the values of one log entry, per
// spec §4.1:
//   - an absent guard (expr == nil) is always true
//   - values is the entry's ordered value slice, already split from its
//     list-literal encoding by the caller
//   - an empty values slice makes the guard false
//   - the binding is {var0: values[0], var1: values[1], …} with interior
//     whitespace stripped from each value
func Eval(expr Expr, values []string) (bool, error) {
	if expr == nil {
		return true, nil
	}
	if len(values) == 0 {
		return false, nil
	}

	b := make(Binding, len(values))
	for i, v := range values {
		b[fmt.Sprintf("var%d", i)] = stripInteriorWhitespace(v)
	}

	return expr.eval(b)
}

func stripInteriorWhitespace(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
