package sheetcalc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cellengine/cellengine/engine"
	"github.com/cellengine/cellengine/internal/sheet"
	"github.com/stretchr/testify/require"
)

func TestLoadCSVAndEvaluate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sheet.csv")
	require.NoError(t, os.WriteFile(path, []byte("10,20,=A1+B1\n"), 0o644))

	ctx := engine.NewContext(NullOps{})
	sht := ctx.CreateSheet("Sheet1")
	require.NoError(t, LoadCSV(ctx, sht, path))

	ctx.EvaluateFormulas([]sheet.Handle{sht})

	kind, num, _ := ctx.EvaluateString(sht, 0, 2, "C1")
	require.Equal(t, sheet.CachedNumber, kind)
	require.Equal(t, 30.0, num)
}
