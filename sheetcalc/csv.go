// Package sheetcalc implements the "calc" subcommand: load a CSV file
// into a sheet, then either batch-evaluate formula arguments or print
// the grid and drop into an interactive prompt. Grounded on
// original_source/drspread_cli.c, translated from its read_csv +
// evaluate_formulas + REPL loop into the engine's own API.
package sheetcalc

import (
	"encoding/csv"
	"os"

	"github.com/cellengine/cellengine/engine"
	"github.com/cellengine/cellengine/internal/sheet"
)

// LoadCSV reads path and stores each field as (row, col)'s raw content on
// sht, so that cells starting with '=' are picked up as formulas by the
// evaluator exactly as any other cell content would be.
func LoadCSV(ctx *engine.Context, sht sheet.Handle, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var row int32
	for {
		record, err := r.Read()
		if err != nil {
			break
		}
		for col, field := range record {
			if field == "" {
				continue
			}
			ctx.SetCellStr(sht, row, int32(col), field)
		}
		row++
	}
	return nil
}
