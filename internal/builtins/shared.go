// Package builtins implements the named function library of spec §4.6,
// registering each function into internal/eval's dispatch table from an
// init() function, mirroring how database/sql drivers self-register. Client
// code need only blank-import this package for the functions to become
// callable from formulas.
package builtins

import (
	"github.com/cellengine/cellengine/internal/arena"
	"github.com/cellengine/cellengine/internal/eval"
)

// rangeNumbers evaluates a single range/array argument and returns its
// numeric elements, silently skipping non-numeric entries (blanks, strings)
// rather than erroring — the single-argument reducer path of sum/avg/prod
// and the one-argument form of min/max (spec §4.6;
// original_source/drspread_formula_funcs.c's drsp_sum et al.).
func rangeNumbers(f *eval.Frame, arg *arena.Node) (vals []float64, errOut *arena.Node) {
	v := f.Eval(arg)
	if eval.IsError(v) {
		return nil, v
	}
	if eval.IsArray(v) {
		for _, e := range v.Array {
			if eval.IsError(e) {
				return nil, e
			}
			if e.Kind == arena.KindNumber {
				vals = append(vals, e.Num)
			}
		}
		return vals, nil
	}
	if v.Kind == arena.KindNumber {
		vals = append(vals, v.Num)
	}
	return vals, nil
}

// rangeCount evaluates a single range/array argument and tallies entries
// that are numbers or strings, matching count()'s broader notion of
// "occupied" (original_source/drspread_formula_funcs.c's drsp_count).
func rangeCount(f *eval.Frame, arg *arena.Node) (n int, errOut *arena.Node) {
	v := f.Eval(arg)
	if eval.IsError(v) {
		return 0, v
	}
	if eval.IsArray(v) {
		for _, e := range v.Array {
			if eval.IsError(e) {
				return 0, e
			}
			if e.Kind == arena.KindNumber || e.Kind == arena.KindString {
				n++
			}
		}
		return n, nil
	}
	if v.Kind == arena.KindNumber || v.Kind == arena.KindString {
		return 1, nil
	}
	return 0, nil
}

// variadicNumbers requires every one of args to evaluate to a plain scalar
// number, erroring on anything else — min/max's multi-argument form, which
// (unlike the single-range reducer form) does not tolerate non-numeric
// operands (original_source/drspread_formula_funcs.c's drsp_min/drsp_max).
func variadicNumbers(f *eval.Frame, args []*arena.Node) (vals []float64, errOut *arena.Node) {
	for _, arg := range args {
		v, errN := scalarNumber(f, arg)
		if errN != nil {
			return nil, errN
		}
		vals = append(vals, v)
	}
	return vals, nil
}

// scalarNumber evaluates arg and requires a plain (non-blank, non-array)
// number result.
func scalarNumber(f *eval.Frame, arg *arena.Node) (float64, *arena.Node) {
	v := f.Eval(arg)
	if eval.IsError(v) {
		return 0, v
	}
	if v.Kind != arena.KindNumber {
		return 0, eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "expected a number")
	}
	return v.Num, nil
}
