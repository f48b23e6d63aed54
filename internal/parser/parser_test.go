package parser

import (
	"testing"

	"github.com/cellengine/cellengine/internal/arena"
	"github.com/cellengine/cellengine/internal/atom"
)

func parse(t *testing.T, src string) *arena.Node {
	t.Helper()
	table := atom.New()
	a := arena.New()
	n := Parse(src, table, a)
	if n.Kind == arena.KindError {
		t.Fatalf("parse(%q) returned an error node: %s", src, table.String(n.Str))
	}
	return n
}

func TestParseNumberLiteral(t *testing.T) {
	n := parse(t, "42")
	if n.Kind != arena.KindNumber || n.Num != 42 {
		t.Fatalf("expected number 42, got %+v", n)
	}
}

func TestParseArithmeticPrecedence(t *testing.T) {
	// 1 + 2 * 3 must bind as 1 + (2 * 3), not (1 + 2) * 3.
	n := parse(t, "1 + 2 * 3")
	if n.Kind != arena.KindBinary || n.Op != arena.OpAdd {
		t.Fatalf("expected top-level add, got %+v", n)
	}
	rhs := n.Kids[1]
	if rhs.Kind != arena.KindBinary || rhs.Op != arena.OpMul {
		t.Fatalf("expected right child to be a multiplication, got %+v", rhs)
	}
}

func TestParseUnaryNegationFoldsIntoLiteral(t *testing.T) {
	n := parse(t, "-5")
	if n.Kind != arena.KindNumber || n.Num != -5 {
		t.Fatalf("expected folded literal -5, got %+v", n)
	}
}

func TestParseDoubleNegationCancels(t *testing.T) {
	n := parse(t, "--5")
	if n.Kind != arena.KindNumber || n.Num != 5 {
		t.Fatalf("expected -- to cancel to 5, got %+v", n)
	}
}

func TestParseStringLiteral(t *testing.T) {
	table := atom.New()
	a := arena.New()
	n := Parse(`"hello"`, table, a)
	if n.Kind != arena.KindString {
		t.Fatalf("expected string node, got %+v", n)
	}
	if table.String(n.Str) != "hello" {
		t.Fatalf("expected \"hello\", got %q", table.String(n.Str))
	}
}

func TestParseFunctionCallArgCount(t *testing.T) {
	n := parse(t, "sum(1, 2, 3)")
	if n.Kind != arena.KindFunctionCall || n.Argc != 3 {
		t.Fatalf("expected a 3-arg call node, got %+v", n)
	}
}

func TestParseFunctionCallTooManyArgsErrors(t *testing.T) {
	table := atom.New()
	a := arena.New()
	n := Parse("sum(1, 2, 3, 4, 5)", table, a)
	if n.Kind != arena.KindError {
		t.Fatalf("expected too-many-arguments error, got %+v", n)
	}
}

func TestParseLeadingEqualsIsStripped(t *testing.T) {
	n := parse(t, "=1+1")
	if n.Kind != arena.KindBinary || n.Op != arena.OpAdd {
		t.Fatalf("expected the leading '=' to be consumed, got %+v", n)
	}
}

func TestParseCellShorthandProducesRange0D(t *testing.T) {
	n := parse(t, "A1")
	if n.Kind != arena.KindRange0D {
		t.Fatalf("expected A1 to parse as a single-cell range, got kind %v", n.Kind)
	}
}

func TestCacheReparsesOncePerAtom(t *testing.T) {
	table := atom.New()
	cache := NewCache()
	formula := table.InternString("=1+1")

	first := cache.Parse(formula, table)
	second := cache.Parse(formula, table)
	if first != second {
		t.Fatalf("expected the same cached node pointer on repeated Parse calls")
	}
	if cache.Len() != 1 {
		t.Fatalf("expected exactly one cache entry, got %d", cache.Len())
	}
}
