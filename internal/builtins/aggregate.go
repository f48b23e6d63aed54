package builtins

import (
	"github.com/cellengine/cellengine/internal/arena"
	"github.com/cellengine/cellengine/internal/eval"
)

func init() {
	eval.Register("sum", biSum)
	eval.Register("avg", biAvg)
	eval.Register("min", biMin)
	eval.Register("max", biMax)
	eval.Register("count", biCount)
	eval.Register("prod", biProd)
}

func biSum(f *eval.Frame, args []*arena.Node) *arena.Node {
	if len(args) != 1 {
		return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "sum expects one argument")
	}
	vals, errN := rangeNumbers(f, args[0])
	if errN != nil {
		return errN
	}
	var total float64
	for _, v := range vals {
		total += v
	}
	return eval.NumberNode(f.Rt.Scratch(), total)
}

func biAvg(f *eval.Frame, args []*arena.Node) *arena.Node {
	if len(args) != 1 {
		return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "avg expects one argument")
	}
	vals, errN := rangeNumbers(f, args[0])
	if errN != nil {
		return errN
	}
	if len(vals) == 0 {
		return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "avg of no values")
	}
	var total float64
	for _, v := range vals {
		total += v
	}
	return eval.NumberNode(f.Rt.Scratch(), total/float64(len(vals)))
}

// biMin supports both min's single-range reducer form (skips non-numeric
// entries) and its variadic scalar form, which requires every argument to
// be a plain number (spec §4.6).
func biMin(f *eval.Frame, args []*arena.Node) *arena.Node {
	if len(args) == 0 {
		return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "min requires at least one argument")
	}
	var vals []float64
	var errN *arena.Node
	if len(args) == 1 {
		vals, errN = rangeNumbers(f, args[0])
	} else {
		vals, errN = variadicNumbers(f, args)
	}
	if errN != nil {
		return errN
	}
	if len(vals) == 0 {
		return eval.NumberNode(f.Rt.Scratch(), 0)
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return eval.NumberNode(f.Rt.Scratch(), m)
}

func biMax(f *eval.Frame, args []*arena.Node) *arena.Node {
	if len(args) == 0 {
		return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "max requires at least one argument")
	}
	var vals []float64
	var errN *arena.Node
	if len(args) == 1 {
		vals, errN = rangeNumbers(f, args[0])
	} else {
		vals, errN = variadicNumbers(f, args)
	}
	if errN != nil {
		return errN
	}
	if len(vals) == 0 {
		return eval.NumberNode(f.Rt.Scratch(), 0)
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return eval.NumberNode(f.Rt.Scratch(), m)
}

func biCount(f *eval.Frame, args []*arena.Node) *arena.Node {
	if len(args) != 1 {
		return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "count expects one argument")
	}
	n, errN := rangeCount(f, args[0])
	if errN != nil {
		return errN
	}
	return eval.NumberNode(f.Rt.Scratch(), float64(n))
}

func biProd(f *eval.Frame, args []*arena.Node) *arena.Node {
	if len(args) != 1 {
		return eval.ErrorNode(f.Rt.Scratch(), f.Rt.Table(), "prod expects one argument")
	}
	vals, errN := rangeNumbers(f, args[0])
	if errN != nil {
		return errN
	}
	total := 1.0
	for _, v := range vals {
		total *= v
	}
	return eval.NumberNode(f.Rt.Scratch(), total)
}
