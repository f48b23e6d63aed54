package builtins

import (
	"strconv"
	"strings"

	"github.com/cellengine/cellengine/internal/arena"
	"github.com/cellengine/cellengine/internal/eval"
)

func init() {
	eval.Register("num", biNum)
	eval.Register("cat", biCat)
	eval.Register("array", biArray)
}

// parseLeadingDouble parses a leading floating-point literal from the front
// of s (after trimming surrounding whitespace), stopping at the first byte
// that doesn't extend a valid number — so "1 per potato" parses as 1 — and
// treats a bare "." (optionally signed) as 0 rather than a parse failure,
// per original_source/drspread_formula_funcs.c's parse_leading_double.
func parseLeadingDouble(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	i, n := 0, len(s)
	if i < n && (s[i] == '+' || s[i] == '-') {
		i++
	}
	intStart := i
	for i < n && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	intDigits := i - intStart
	hasDot := false
	fracDigits := 0
	if i < n && s[i] == '.' {
		hasDot = true
		i++
		fracStart := i
		for i < n && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		fracDigits = i - fracStart
	}
	if intDigits == 0 && !hasDot {
		return 0, false
	}
	if intDigits == 0 && fracDigits == 0 {
		return 0, true
	}
	if i < n && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < n && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expStart := j
		for j < n && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j > expStart {
			i = j
		}
	}
	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// numOf coerces a single evaluated result to a number the way biNum does:
// a number passes through, a string is parsed as a leading double, and
// anything else (including blank) yields def.
func numOf(f *eval.Frame, v *arena.Node, def float64) *arena.Node {
	switch {
	case v.Kind == arena.KindNumber:
		return v
	case v.Kind == arena.KindString:
		if n, ok := parseLeadingDouble(f.Rt.Table().String(v.Str)); ok {
			return eval.NumberNode(f.Rt.Scratch(), n)
		}
		return eval.NumberNode(f.Rt.Scratch(), def)
	default:
		return eval.NumberNode(f.Rt.Scratch(), def)
	}
}

// biNum coerces its argument to a number (spec §4.6; original_source's
// drsp_num): numbers pass through, strings are parsed for a leading double,
// and anything else — blank, an unparseable string — yields the optional
// second argument's default (0 if omitted), never an error. Propagates
// over arrays.
func biNum(f *eval.Frame, args []*arena.Node) *arena.Node {
	if len(args) != 1 && len(args) != 2 {
		return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "num expects one or two arguments")
	}
	def := 0.0
	if len(args) == 2 {
		d, errN := scalarNumber(f, args[1])
		if errN != nil {
			return errN
		}
		def = d
	}
	v := f.Eval(args[0])
	if eval.IsError(v) {
		return v
	}
	if eval.IsArray(v) {
		elems := make([]*arena.Node, len(v.Array))
		for i, e := range v.Array {
			if eval.IsError(e) {
				return e
			}
			elems[i] = numOf(f, e, def)
		}
		return eval.ArrayNode(f.Rt.Scratch(), elems)
	}
	return numOf(f, v, def)
}

// biCat concatenates its arguments as text (spec §4.6;
// original_source/drspread_formula_funcs.c's drsp_cat, argc>2 path): if no
// argument is array-like, it's a plain string join. If any argument is
// array-like, the result is an array whose length is the longest operand;
// at each position, scalar strings are repeated, blanks contribute nothing,
// and a shorter array's missing slot contributes nothing too.
func biCat(f *eval.Frame, args []*arena.Node) *arena.Node {
	if len(args) < 2 {
		return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "cat expects at least two arguments")
	}
	vals := make([]*arena.Node, len(args))
	maxLen := 0
	anyArray := false
	for i, arg := range args {
		v := f.Eval(arg)
		if eval.IsError(v) {
			return v
		}
		switch {
		case eval.IsArray(v):
			anyArray = true
			if len(v.Array) > maxLen {
				maxLen = len(v.Array)
			}
		case v.Kind != arena.KindString && !eval.IsBlank(v):
			return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "arguments to cat() must be a string")
		}
		vals[i] = v
	}
	if !anyArray {
		var sb strings.Builder
		for _, v := range vals {
			if v.Kind == arena.KindString {
				sb.WriteString(f.Rt.Table().String(v.Str))
			}
		}
		return eval.StringNode(f.Rt.Scratch(), f.Rt.Table().InternString(sb.String()))
	}
	if maxLen == 0 {
		return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "arguments to cat() must be non-zero length")
	}
	result := make([]*arena.Node, maxLen)
	for r := 0; r < maxLen; r++ {
		var sb strings.Builder
		for _, v := range vals {
			switch {
			case v.Kind == arena.KindString:
				sb.WriteString(f.Rt.Table().String(v.Str))
			case eval.IsArray(v):
				if r >= len(v.Array) {
					continue
				}
				e := v.Array[r]
				if eval.IsError(e) {
					return e
				}
				if e.Kind == arena.KindString {
					sb.WriteString(f.Rt.Table().String(e.Str))
				} else if !eval.IsBlank(e) {
					return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "arguments to cat() must be strings")
				}
			}
		}
		result[r] = eval.StringNode(f.Rt.Scratch(), f.Rt.Table().InternString(sb.String()))
	}
	return eval.ArrayNode(f.Rt.Scratch(), result)
}

// biArray builds a computed array directly from its (up to four, per the
// function-call argument cap) evaluated arguments.
func biArray(f *eval.Frame, args []*arena.Node) *arena.Node {
	elems := make([]*arena.Node, len(args))
	for i, arg := range args {
		v := f.Eval(arg)
		if eval.IsError(v) {
			return v
		}
		elems[i] = v
	}
	return eval.ArrayNode(f.Rt.Scratch(), elems)
}
