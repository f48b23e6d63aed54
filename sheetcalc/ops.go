package sheetcalc

import "github.com/cellengine/cellengine/internal/sheet"

// NullOps implements engine.Ops by doing nothing: the calc subcommand
// reads results back out of the sheet's result cache directly (see
// WriteDisplay) rather than reacting to per-cell display callbacks.
type NullOps struct{}

func (NullOps) SetDisplayNumber(sheet.Handle, int32, int32, float64) {}
func (NullOps) SetDisplayString(sheet.Handle, int32, int32, string)  {}
func (NullOps) SetDisplayError(sheet.Handle, int32, int32, string)   {}
