package engine

import (
	"github.com/cellengine/cellengine/internal/arena"
	"github.com/cellengine/cellengine/internal/eval"
	"github.com/cellengine/cellengine/internal/sheet"
)

// EvaluateFormulas recomputes every formula cell on each of the given
// sheets, plus every sheet transitively reachable through their foreign
// dependants (spec §9 "foreign dependants"), so a change that only touches
// a cell referenced cross-sheet still reaches every caller. Ops is
// notified only for cells whose displayed value actually changed.
//
// The result cache exists to memoize repeated reads of one cell within a
// single pass (the same column read through several ranges, say), not to
// carry values across passes: each call clears the caches of every sheet
// it touches before recomputing, so a stale value can never survive an
// edit that the host forgot to propagate by hand.
func (c *Context) EvaluateFormulas(handles []sheet.Handle) {
	sheets := c.expandWithDependants(handles)
	prev := make(map[sheet.Handle]map[sheet.RowCol]sheet.CachedResult, len(sheets))
	for _, s := range sheets {
		prev[s.Handle] = s.SnapshotResults()
		s.ClearAllResults()
	}
	for _, s := range sheets {
		c.evaluateSheet(s, prev[s.Handle])
	}
}

func (c *Context) expandWithDependants(handles []sheet.Handle) []*sheet.Sheet {
	seen := make(map[sheet.Handle]bool, len(handles))
	queue := append([]sheet.Handle(nil), handles...)
	var out []*sheet.Sheet
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if seen[h] {
			continue
		}
		seen[h] = true
		s, ok := c.sheets[h]
		if !ok {
			continue
		}
		out = append(out, s)
		queue = append(queue, s.Dependants()...)
	}
	return out
}

func (c *Context) evaluateSheet(s *sheet.Sheet, prev map[sheet.RowCol]sheet.CachedResult) {
	for pos, a := range s.Cells() {
		raw := c.table.Bytes(a)
		if len(raw) == 0 || raw[0] != '=' {
			continue
		}
		mark := c.scratch.Checkpoint()
		result := eval.Evaluate(c, s, pos.Row, pos.Col)
		c.notifyIfChanged(s, pos.Row, pos.Col, result, prev)
		c.scratch.Restore(mark)
	}
	s.Dirty = false
}

// EvaluateString parses and evaluates src as a one-off formula in the
// context of (row, col) on h, without storing it into any cell (spec §4.7
// "evaluate_string"). Used by sheetrepl for an interactive prompt and
// by hosts previewing a formula before committing it to a cell.
func (c *Context) EvaluateString(h sheet.Handle, row, col int32, src string) (kind sheet.CachedKind, num float64, str string) {
	s, ok := c.sheets[h]
	if !ok {
		return sheet.CachedError, 0, "unknown sheet"
	}
	mark := c.scratch.Checkpoint()
	defer c.scratch.Restore(mark)

	tree := c.cache.Parse(c.table.InternString(src), c.table)
	scratchTree := arena.Clone(c.scratch, tree)
	result := eval.EvalNode(c, s, row, col, scratchTree)
	cr, ok := eval.ToCachedResult(result)
	if !ok {
		cr = sheet.CachedResult{Kind: sheet.CachedNull}
	}
	return eval.DisplayString(c.table, cr)
}

// EvaluateFunction invokes the user-defined function sheet named fnSheet
// with args (each a float64 or string, converted to a scalar Number/String
// result), without any calling cell (spec §4.7 "evaluate_function"), for
// hosts embedding the engine as a pure function evaluator.
func (c *Context) EvaluateFunction(fnSheet string, args []interface{}) (kind sheet.CachedKind, num float64, str string) {
	target, ok := c.SheetByName(c.table.InternLower([]byte(fnSheet)))
	if !ok || !target.HasFlag(sheet.IsFunction) {
		return sheet.CachedError, 0, "unknown function sheet: " + fnSheet
	}
	mark := c.scratch.Checkpoint()
	defer c.scratch.Restore(mark)

	argNodes := make([]*arena.Node, len(args))
	for i, v := range args {
		switch t := v.(type) {
		case float64:
			argNodes[i] = eval.NumberNode(c.scratch, t)
		case string:
			argNodes[i] = eval.StringNode(c.scratch, c.table.InternString(t))
		default:
			return sheet.CachedError, 0, "unsupported argument type"
		}
	}

	f := &eval.Frame{Rt: c, Sht: target, Row: target.Output.Row, Col: target.Output.Col}
	result := eval.CallUserFunction(f, target, argNodes)
	cr, ok := eval.ToCachedResult(result)
	if !ok {
		cr = sheet.CachedResult{Kind: sheet.CachedNull}
	}
	return eval.DisplayString(c.table, cr)
}

func (c *Context) notifyIfChanged(s *sheet.Sheet, row, col int32, result *arena.Node, prev map[sheet.RowCol]sheet.CachedResult) {
	projected := result
	if projected.Kind == arena.KindComputedArray {
		if len(projected.Array) == 0 {
			projected = eval.BlankNode(c.scratch)
		} else {
			projected = projected.Array[0]
		}
	}
	cr, ok := eval.ToCachedResult(projected)
	if !ok {
		cr = sheet.CachedResult{Kind: sheet.CachedNull}
	}
	if old, had := prev[sheet.RowCol{Row: row, Col: col}]; had && old.Equal(cr) {
		return
	}
	if cr.Kind != sheet.CachedError {
		s.SetResult(row, col, cr)
	}

	kind, num, str := eval.DisplayString(c.table, cr)
	switch kind {
	case sheet.CachedNumber:
		c.ops.SetDisplayNumber(s.Handle, row, col, num)
	case sheet.CachedError:
		c.ops.SetDisplayError(s.Handle, row, col, str)
	default:
		c.ops.SetDisplayString(s.Handle, row, col, str)
	}
}
