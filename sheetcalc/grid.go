package sheetcalc

import (
	"fmt"
	"io"

	"github.com/cellengine/cellengine/engine"
	"github.com/cellengine/cellengine/internal/eval"
	"github.com/cellengine/cellengine/internal/sheet"
)

// WriteDisplay prints, as "row,col: value", one per line in row-major
// order, each occupied cell that has a cached result: formula cells whose
// last evaluation did not fail. Literal cells and cells whose formula
// evaluated to an error are not printed. It is a plain stand-in
// for original_source/drspread_cli.c's write_display grid dump, which
// this engine has no terminal-grid renderer to match exactly.
func WriteDisplay(ctx *engine.Context, sht sheet.Handle, w io.Writer) {
	s, ok := ctx.Sheet(sht)
	if !ok {
		return
	}
	var maxRow, maxCol int32
	for pos := range s.Cells() {
		if pos.Row > maxRow {
			maxRow = pos.Row
		}
		if pos.Col > maxCol {
			maxCol = pos.Col
		}
	}
	for row := int32(0); row <= maxRow; row++ {
		for col := int32(0); col <= maxCol; col++ {
			if s.Cell(row, col).IsNil() {
				continue
			}
			cr, ok := s.Result(row, col)
			if !ok {
				continue
			}
			_, _, display := eval.DisplayString(ctx.Table(), cr)
			fmt.Fprintf(w, "%d,%d: %s\n", row, col, display)
		}
	}
}
