package engine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cellengine/cellengine/engine"
	"github.com/cellengine/cellengine/internal/sheet"
)

type noopOps struct{}

func (noopOps) SetDisplayNumber(sheet.Handle, int32, int32, float64) {}
func (noopOps) SetDisplayString(sheet.Handle, int32, int32, string)  {}
func (noopOps) SetDisplayError(sheet.Handle, int32, int32, string)   {}

func TestArithmeticFormula(t *testing.T) {
	ctx := engine.NewContext(noopOps{})
	sht := ctx.CreateSheet("Sheet1")
	ctx.SetCellStr(sht, 0, 0, "2")
	ctx.SetCellStr(sht, 0, 1, "3")
	ctx.SetCellStr(sht, 0, 2, "=A1*B1+1")

	ctx.EvaluateFormulas([]sheet.Handle{sht})

	kind, num, _ := ctx.EvaluateString(sht, 0, 0, "C1")
	require.Equal(t, sheet.CachedNumber, kind)
	require.Equal(t, 7.0, num)
}

func TestSumOverColumnRange(t *testing.T) {
	ctx := engine.NewContext(noopOps{})
	sht := ctx.CreateSheet("Sheet1")
	ctx.SetCellStr(sht, 0, 0, "1")
	ctx.SetCellStr(sht, 1, 0, "2")
	ctx.SetCellStr(sht, 2, 0, "3")
	ctx.SetCellStr(sht, 3, 0, "=sum(A1:A3)")

	ctx.EvaluateFormulas([]sheet.Handle{sht})

	kind, num, _ := ctx.EvaluateString(sht, 0, 0, "A4")
	require.Equal(t, sheet.CachedNumber, kind)
	require.Equal(t, 6.0, num)
}

func TestDivisionByZeroIsError(t *testing.T) {
	ctx := engine.NewContext(noopOps{})
	sht := ctx.CreateSheet("Sheet1")
	ctx.SetCellStr(sht, 0, 0, "=1/0")
	ctx.EvaluateFormulas([]sheet.Handle{sht})

	kind, _, str := ctx.EvaluateString(sht, 0, 0, "A1")
	require.Equal(t, sheet.CachedError, kind)
	require.NotEmpty(t, str)
}

func TestCrossSheetReferenceTracksDependant(t *testing.T) {
	ctx := engine.NewContext(noopOps{})
	src := ctx.CreateSheet("Source")
	dst := ctx.CreateSheet("Derived")
	ctx.SetCellStr(src, 0, 0, "10")
	ctx.SetCellStr(dst, 0, 0, "=[source, a, 1] + 1")

	ctx.EvaluateFormulas([]sheet.Handle{dst})

	kind, num, _ := ctx.EvaluateString(dst, 0, 0, "A1")
	require.Equal(t, sheet.CachedNumber, kind)
	require.Equal(t, 11.0, num)

	srcSheet, ok := ctx.Sheet(src)
	require.True(t, ok)
	require.Contains(t, srcSheet.Dependants(), dst)
}

func TestUserDefinedFunctionSheet(t *testing.T) {
	ctx := engine.NewContext(noopOps{})
	fn := ctx.CreateSheet("Square")
	ctx.SetSheetAlias(fn, "square")
	ctx.SetFunctionSheet(fn, []int32{0}, []int32{0}, 1, 0)
	ctx.SetCellStr(fn, 1, 0, "=A1*A1")

	kind, num, _ := ctx.EvaluateFunction("square", []interface{}{float64(6)})
	require.Equal(t, sheet.CachedNumber, kind)
	require.Equal(t, 36.0, num)
}

func TestTableLookupOverRanges(t *testing.T) {
	ctx := engine.NewContext(noopOps{})
	sht := ctx.CreateSheet("Sheet1")
	ctx.SetCellStr(sht, 0, 0, "red")
	ctx.SetCellStr(sht, 1, 0, "green")
	ctx.SetCellStr(sht, 2, 0, "blue")
	ctx.SetCellStr(sht, 0, 1, "1")
	ctx.SetCellStr(sht, 1, 1, "2")
	ctx.SetCellStr(sht, 2, 1, "3")
	ctx.SetCellStr(sht, 0, 2, `=tlu("green", A1:A3, B1:B3, -1)`)
	ctx.SetCellStr(sht, 1, 2, `=tlu("purple", A1:A3, B1:B3, -1)`)

	ctx.EvaluateFormulas([]sheet.Handle{sht})

	kind, num, _ := ctx.EvaluateString(sht, 0, 0, "C1")
	require.Equal(t, sheet.CachedNumber, kind)
	require.Equal(t, 2.0, num)

	kind, num, _ = ctx.EvaluateString(sht, 0, 0, "C2")
	require.Equal(t, sheet.CachedNumber, kind)
	require.Equal(t, -1.0, num)
}

func TestTryRecoversFromError(t *testing.T) {
	ctx := engine.NewContext(noopOps{})
	sht := ctx.CreateSheet("Sheet1")
	ctx.SetCellStr(sht, 0, 0, "=try(1/0, 99)")
	ctx.EvaluateFormulas([]sheet.Handle{sht})

	kind, num, _ := ctx.EvaluateString(sht, 0, 0, "A1")
	require.Equal(t, sheet.CachedNumber, kind)
	require.Equal(t, 99.0, num)
}

func TestRoundingBuiltins(t *testing.T) {
	ctx := engine.NewContext(noopOps{})
	sht := ctx.CreateSheet("Sheet1")
	ctx.SetCellStr(sht, 0, 0, "=round(2.6)")
	ctx.SetCellStr(sht, 1, 0, "=floor(2.9)")
	ctx.SetCellStr(sht, 2, 0, "=ceil(2.1)")
	ctx.SetCellStr(sht, 3, 0, "=abs(-5)")
	ctx.EvaluateFormulas([]sheet.Handle{sht})

	for i, want := range []float64{3, 2, 3, 5} {
		kind, num, _ := ctx.EvaluateString(sht, 0, 0, formatCellRef(int32(i)))
		require.Equal(t, sheet.CachedNumber, kind)
		require.Equal(t, want, num)
	}
}

func formatCellRef(row int32) string {
	return "A" + string(rune('1'+row))
}

func TestRowAndColReportPosition(t *testing.T) {
	ctx := engine.NewContext(noopOps{})
	sht := ctx.CreateSheet("Sheet1")
	ctx.SetCellStr(sht, 2, 1, "=col() * 10 + row()")
	ctx.EvaluateFormulas([]sheet.Handle{sht})

	kind, num, _ := ctx.EvaluateString(sht, 2, 1, "B3")
	require.Equal(t, sheet.CachedNumber, kind)
	require.Equal(t, 23.0, num) // col=2 (B), row=3
}

func TestEvalBuiltinParsesAdHocText(t *testing.T) {
	ctx := engine.NewContext(noopOps{})
	sht := ctx.CreateSheet("Sheet1")
	ctx.SetCellStr(sht, 0, 0, `=eval("2 + 3")`)
	ctx.EvaluateFormulas([]sheet.Handle{sht})

	kind, num, _ := ctx.EvaluateString(sht, 0, 0, "A1")
	require.Equal(t, sheet.CachedNumber, kind)
	require.Equal(t, 5.0, num)
}

func TestCallBuiltinDispatchesDynamically(t *testing.T) {
	ctx := engine.NewContext(noopOps{})
	fn := ctx.CreateSheet("Double")
	ctx.SetSheetAlias(fn, "double")
	ctx.SetFunctionSheet(fn, []int32{0}, []int32{0}, 1, 0)
	ctx.SetCellStr(fn, 1, 0, "=A1*2")

	sht := ctx.CreateSheet("Sheet1")
	ctx.SetCellStr(sht, 0, 0, `=call("double", 21)`)
	ctx.EvaluateFormulas([]sheet.Handle{sht})

	kind, num, _ := ctx.EvaluateString(sht, 0, 0, "A1")
	require.Equal(t, sheet.CachedNumber, kind)
	require.Equal(t, 42.0, num)
}

func TestDirectFunctionRecursionIsRejected(t *testing.T) {
	ctx := engine.NewContext(noopOps{})
	fn := ctx.CreateSheet("Loop")
	ctx.SetSheetAlias(fn, "loop")
	ctx.SetFunctionSheet(fn, []int32{0}, []int32{0}, 1, 0)
	ctx.SetCellStr(fn, 1, 0, "=loop(A1)")

	kind, _, str := ctx.EvaluateFunction("loop", []interface{}{float64(1)})
	require.Equal(t, sheet.CachedError, kind)
	require.NotEmpty(t, str)
}

func TestIfBuiltinShortCircuitsBranches(t *testing.T) {
	ctx := engine.NewContext(noopOps{})
	sht := ctx.CreateSheet("Sheet1")
	ctx.SetCellStr(sht, 0, 0, `=if(1, "yes", 1/0)`)
	ctx.EvaluateFormulas([]sheet.Handle{sht})

	kind, _, str := ctx.EvaluateString(sht, 0, 0, "A1")
	require.Equal(t, sheet.CachedString, kind)
	require.Equal(t, "yes", str)
}

func TestIfBroadcastsOverArrayCond(t *testing.T) {
	ctx := engine.NewContext(noopOps{})
	sht := ctx.CreateSheet("Sheet1")
	ctx.SetCellStr(sht, 0, 0, "1")
	ctx.SetCellStr(sht, 1, 0, "0")
	ctx.SetCellStr(sht, 2, 0, "1")
	ctx.SetCellStr(sht, 0, 1, `=find("no", if(A1:A3, "yes", "no"))`)
	ctx.EvaluateFormulas([]sheet.Handle{sht})

	kind, num, _ := ctx.EvaluateString(sht, 0, 0, "B1")
	require.Equal(t, sheet.CachedNumber, kind)
	require.Equal(t, 2.0, num)
}

func TestModIsAbilityScoreModifierNotArithmetic(t *testing.T) {
	ctx := engine.NewContext(noopOps{})
	sht := ctx.CreateSheet("Sheet1")
	ctx.SetCellStr(sht, 0, 0, "=mod(3)")
	ctx.SetCellStr(sht, 1, 0, "=mod(10)")
	ctx.SetCellStr(sht, 2, 0, "=mod(20)")
	ctx.EvaluateFormulas([]sheet.Handle{sht})

	for i, want := range []float64{-4, 0, 5} {
		kind, num, _ := ctx.EvaluateString(sht, 0, 0, formatCellRef(int32(i)))
		require.Equal(t, sheet.CachedNumber, kind)
		require.Equal(t, want, num)
	}
}

func TestSumSkipsNonNumericEntries(t *testing.T) {
	ctx := engine.NewContext(noopOps{})
	sht := ctx.CreateSheet("Sheet1")
	ctx.SetCellStr(sht, 0, 0, "10")
	ctx.SetCellStr(sht, 1, 0, "1")
	ctx.SetCellStr(sht, 2, 0, "50")
	ctx.SetCellStr(sht, 3, 0, "1 per potato")
	ctx.SetCellStr(sht, 4, 0, "=sum(A1:A4)")
	ctx.EvaluateFormulas([]sheet.Handle{sht})

	kind, num, _ := ctx.EvaluateString(sht, 0, 0, "A5")
	require.Equal(t, sheet.CachedNumber, kind)
	require.Equal(t, 61.0, num)
}

func TestCountTalliesNumbersAndStrings(t *testing.T) {
	ctx := engine.NewContext(noopOps{})
	sht := ctx.CreateSheet("Sheet1")
	ctx.SetCellStr(sht, 0, 0, "10")
	ctx.SetCellStr(sht, 1, 0, "1")
	ctx.SetCellStr(sht, 2, 0, "50")
	ctx.SetCellStr(sht, 3, 0, "1 per potato")
	ctx.SetCellStr(sht, 4, 0, "=count(A1:A4)")
	ctx.EvaluateFormulas([]sheet.Handle{sht})

	kind, num, _ := ctx.EvaluateString(sht, 0, 0, "A5")
	require.Equal(t, sheet.CachedNumber, kind)
	require.Equal(t, 4.0, num)
}

func TestTluAcceptsThreeArgsWithNoDefault(t *testing.T) {
	ctx := engine.NewContext(noopOps{})
	sht := ctx.CreateSheet("Sheet1")
	ctx.SetCellStr(sht, 0, 0, `=tlu(4, array(2, '4', 4, 6), array(7, 8, 9, 10))`)
	ctx.EvaluateFormulas([]sheet.Handle{sht})

	kind, num, _ := ctx.EvaluateString(sht, 0, 0, "A1")
	require.Equal(t, sheet.CachedNumber, kind)
	require.Equal(t, 9.0, num)
}

func TestTluMissWithoutDefaultErrors(t *testing.T) {
	ctx := engine.NewContext(noopOps{})
	sht := ctx.CreateSheet("Sheet1")
	ctx.SetCellStr(sht, 0, 0, `=tlu(99, array(1, 2, 3), array(7, 8, 9))`)
	ctx.EvaluateFormulas([]sheet.Handle{sht})

	kind, _, str := ctx.EvaluateString(sht, 0, 0, "A1")
	require.Equal(t, sheet.CachedError, kind)
	require.NotEmpty(t, str)
}

func TestFindReturnsDefaultOnMiss(t *testing.T) {
	ctx := engine.NewContext(noopOps{})
	sht := ctx.CreateSheet("Sheet1")
	ctx.SetCellStr(sht, 0, 0, `=find("nope", array("a", "b", "c"), -1)`)
	ctx.EvaluateFormulas([]sheet.Handle{sht})

	kind, num, _ := ctx.EvaluateString(sht, 0, 0, "A1")
	require.Equal(t, sheet.CachedNumber, kind)
	require.Equal(t, -1.0, num)
}

func TestCatAllScalarsJoinsPlainString(t *testing.T) {
	ctx := engine.NewContext(noopOps{})
	sht := ctx.CreateSheet("Sheet1")
	ctx.SetCellStr(sht, 0, 0, `=cat("a", "b", "c", "d")`)
	ctx.EvaluateFormulas([]sheet.Handle{sht})

	kind, _, str := ctx.EvaluateString(sht, 0, 0, "A1")
	require.Equal(t, sheet.CachedString, kind)
	require.Equal(t, "abcd", str)
}

func TestCatBroadcastsArraysElementWise(t *testing.T) {
	ctx := engine.NewContext(noopOps{})
	sht := ctx.CreateSheet("Sheet1")
	ctx.SetCellStr(sht, 0, 0, "x")
	ctx.SetCellStr(sht, 1, 0, "y")
	ctx.SetCellStr(sht, 0, 1, `=find("y!", cat(A1:A2, "!"))`)
	ctx.EvaluateFormulas([]sheet.Handle{sht})

	kind, num, _ := ctx.EvaluateString(sht, 0, 0, "B1")
	require.Equal(t, sheet.CachedNumber, kind)
	require.Equal(t, 2.0, num)
}

func TestNumParsesLeadingDoubleWithDefault(t *testing.T) {
	ctx := engine.NewContext(noopOps{})
	sht := ctx.CreateSheet("Sheet1")
	ctx.SetCellStr(sht, 0, 0, `=num("1 per potato")`)
	ctx.SetCellStr(sht, 1, 0, `=num(".3")`)
	ctx.SetCellStr(sht, 2, 0, `=num("nope", -1)`)
	ctx.SetCellStr(sht, 3, 0, `=num(".")`)
	ctx.EvaluateFormulas([]sheet.Handle{sht})

	for i, want := range []float64{1, 0.3, -1, 0} {
		kind, num, _ := ctx.EvaluateString(sht, 0, 0, formatCellRef(int32(i)))
		require.Equal(t, sheet.CachedNumber, kind)
		require.Equal(t, want, num)
	}
}
