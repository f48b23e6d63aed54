package builtins

import (
	"math"

	"github.com/cellengine/cellengine/internal/arena"
	"github.com/cellengine/cellengine/internal/eval"
)

func init() {
	eval.Register("mod", biMod)
	eval.Register("abs", biAbs)
	eval.Register("floor", biFloor)
	eval.Register("ceil", biCeil)
	eval.Register("trunc", biTrunc)
	eval.Register("round", biRound)
	eval.Register("sqrt", biSqrt)
	eval.Register("log", biLog)
	eval.Register("pow", biPow)
}

func unaryMath(f *eval.Frame, args []*arena.Node, fn func(float64) (float64, string)) *arena.Node {
	if len(args) != 1 {
		return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "expects one argument")
	}
	x, errN := scalarNumber(f, args[0])
	if errN != nil {
		return errN
	}
	v, msg := fn(x)
	if msg != "" {
		return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), msg)
	}
	return eval.NumberNode(f.Rt.Scratch(), v)
}

// biMod is a domain-specific modifier formula, not arithmetic modulo:
// mod(n) := floor((n-10)/2), the d20-style ability-score modifier (spec
// §4.6; original_source/drspread_formula_funcs.c's drsp_mod). It propagates
// over arrays, skipping blanks and erroring on any non-numeric element.
func biMod(f *eval.Frame, args []*arena.Node) *arena.Node {
	if len(args) != 1 {
		return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "mod expects one argument")
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
			if eval.IsBlank(e) {
				elems[i] = e
				continue
			}
			if e.Kind != arena.KindNumber {
				return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "argument to mod() must be a number")
			}
			elems[i] = eval.NumberNode(f.Rt.Scratch(), math.Floor((e.Num-10)/2))
		}
		return eval.ArrayNode(f.Rt.Scratch(), elems)
	}
	if v.Kind != arena.KindNumber {
		return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "argument to mod() must be a number")
	}
	return eval.NumberNode(f.Rt.Scratch(), math.Floor((v.Num-10)/2))
}

func biAbs(f *eval.Frame, args []*arena.Node) *arena.Node {
	return unaryMath(f, args, func(x float64) (float64, string) { return math.Abs(x), "" })
}

func biFloor(f *eval.Frame, args []*arena.Node) *arena.Node {
	return unaryMath(f, args, func(x float64) (float64, string) { return math.Floor(x), "" })
}

func biCeil(f *eval.Frame, args []*arena.Node) *arena.Node {
	return unaryMath(f, args, func(x float64) (float64, string) { return math.Ceil(x), "" })
}

func biTrunc(f *eval.Frame, args []*arena.Node) *arena.Node {
	return unaryMath(f, args, func(x float64) (float64, string) { return math.Trunc(x), "" })
}

// biRound supports round(x) and round(x, digits).
func biRound(f *eval.Frame, args []*arena.Node) *arena.Node {
	if len(args) != 1 && len(args) != 2 {
		return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "round expects one or two arguments")
	}
	x, errN := scalarNumber(f, args[0])
	if errN != nil {
		return errN
	}
	digits := 0.0
	if len(args) == 2 {
		digits, errN = scalarNumber(f, args[1])
		if errN != nil {
			return errN
		}
	}
	scale := math.Pow(10, digits)
	return eval.NumberNode(f.Rt.Scratch(), math.Round(x*scale)/scale)
}

func biSqrt(f *eval.Frame, args []*arena.Node) *arena.Node {
	return unaryMath(f, args, func(x float64) (float64, string) {
		if x < 0 {
			return 0, "sqrt of a negative number"
		}
		return math.Sqrt(x), ""
	})
}

// biLog supports log(x) (natural log) and log(x, base).
func biLog(f *eval.Frame, args []*arena.Node) *arena.Node {
	if len(args) != 1 && len(args) != 2 {
		return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "log expects one or two arguments")
	}
	x, errN := scalarNumber(f, args[0])
	if errN != nil {
		return errN
	}
	if x <= 0 {
		return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "log of a non-positive number")
	}
	if len(args) == 1 {
		return eval.NumberNode(f.Rt.Scratch(), math.Log(x))
	}
	base, errN := scalarNumber(f, args[1])
	if errN != nil {
		return errN
	}
	if base <= 0 || base == 1 {
		return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "invalid log base")
	}
	return eval.NumberNode(f.Rt.Scratch(), math.Log(x)/math.Log(base))
}

func biPow(f *eval.Frame, args []*arena.Node) *arena.Node {
	if len(args) != 2 {
		return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "pow expects two arguments")
	}
	base, errN := scalarNumber(f, args[0])
	if errN != nil {
		return errN
	}
	exp, errN := scalarNumber(f, args[1])
	if errN != nil {
		return errN
	}
	return eval.NumberNode(f.Rt.Scratch(), math.Pow(base, exp))
}
