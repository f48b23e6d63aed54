package parser

import (
	"strconv"
	"strings"

	"github.com/cellengine/cellengine/internal/arena"
	"github.com/cellengine/cellengine/internal/atom"
)

// rowSpec is a parsed row/column-index token: absent, a literal 1-based
// number, or "$" (caller's position).
type rowSpec struct {
	present bool
	dollar  bool
	value   int32 // 1-based, only meaningful if present && !dollar
}

// rowValue resolves a parsed rowSpec to a 0-based row, or the Dollar
// sentinel when the source used "$".
func rowValue(r rowSpec, dollarSentinel int32, defZeroBased int32) int32 {
	if !r.present {
		return defZeroBased
	}
	if r.dollar {
		return dollarSentinel
	}
	return r.value - 1
}

// section is one comma-separated piece of a bracket range literal, or the
// decoded shape of an unbracketed shorthand term.
type section struct {
	isName   bool
	name     atom.Atom
	nameEnd  atom.Atom // set when a "col:col" pair
	hasPair  bool
	isNumber bool
	row      rowSpec
	rowEnd   rowSpec
	hasColon bool
}

func (p *Parser) parseNameOrPair() section {
	var s section
	s.isName = true
	s.name = p.readBareOrString()
	if p.tok.Kind == TokColon {
		p.advance()
		s.hasPair = true
		s.nameEnd = p.readBareOrString()
	}
	return s
}

func (p *Parser) readBareOrString() atom.Atom {
	if p.tok.Kind == TokString {
		lit := p.tok.Literal
		p.advance()
		return p.table.InternLower([]byte(lit))
	}
	lit := p.tok.Literal
	p.advance()
	return p.table.InternLower([]byte(lit))
}

func (p *Parser) parseNumberSection() section {
	var s section
	s.isNumber = true
	s.row = p.readRowSpec()
	if p.tok.Kind == TokColon {
		p.advance()
		s.hasColon = true
		s.rowEnd = p.readRowSpec()
	}
	return s
}

func (p *Parser) readRowSpec() rowSpec {
	switch p.tok.Kind {
	case TokDollar:
		p.advance()
		return rowSpec{present: true, dollar: true}
	case TokNumber:
		v, err := strconv.ParseFloat(p.tok.Literal, 64)
		p.advance()
		if err != nil {
			return rowSpec{}
		}
		return rowSpec{present: true, value: int32(v)}
	default:
		return rowSpec{}
	}
}

// sectionLooksNumeric reports whether the upcoming section is a row/number
// specifier rather than a name, without consuming input.
func (p *Parser) sectionLooksNumeric() bool {
	return p.tok.Kind == TokNumber || p.tok.Kind == TokDollar || p.tok.Kind == TokColon
}

func (p *Parser) parseSection() section {
	if p.sectionLooksNumeric() {
		return p.parseNumberSection()
	}
	return p.parseNameOrPair()
}

// parseRangeLiteral parses "[ ... ]" per spec §4.4's range-literal grammar.
func (p *Parser) parseRangeLiteral() *arena.Node {
	p.advance() // consume "["
	var secs []section
	if p.tok.Kind != TokRBracket {
		for {
			secs = append(secs, p.parseSection())
			if p.tok.Kind != TokComma {
				break
			}
			p.advance()
			if len(secs) >= 3 {
				return p.errorf("too many sections in range literal")
			}
		}
	}
	if !p.expect(TokRBracket) {
		return p.errorf("unterminated range literal")
	}
	switch len(secs) {
	case 1:
		return p.buildRange(atom.Nil, secs[0], section{})
	case 2:
		return p.buildRange(atom.Nil, secs[0], secs[1])
	case 3:
		if !secs[0].isName || secs[0].hasPair {
			return p.errorf("invalid sheet name in range literal")
		}
		return p.buildRange(secs[0].name, secs[1], secs[2])
	default:
		return p.errorf("empty range literal")
	}
}

// buildRange decodes (sheet?, colSection, rowSection) into the appropriate
// Range* node, per the combinations table in spec §4.4. An empty sheet atom
// means "local sheet".
func (p *Parser) buildRange(sheetName atom.Atom, colSec, rowSec section) *arena.Node {
	foreign := !sheetName.IsNil()

	if !colSec.isName {
		return p.errorf("range literal requires a column or column pair")
	}

	if colSec.hasPair {
		// [colA:colB, n] -> Range1DRow
		if rowSec.name.IsNil() && rowSec.row.present == false && rowSec.isNumber == false {
			// no row section given at all: unsupported 2-D ("[col:col]")
			return p.errorf("2-D ranges are not supported")
		}
		if !rowSec.isNumber || rowSec.hasColon {
			return p.errorf("2-D ranges are not supported")
		}
		row := rowValue(rowSec.row, arena.Dollar, 0)
		n := p.arena.Alloc()
		if foreign {
			n.Kind = arena.KindForeignRange1DRow
			n.Sheet = sheetName
		} else {
			n.Kind = arena.KindRange1DRow
		}
		n.ColName = colSec.name
		n.ColEnd = colSec.nameEnd
		n.Row = row
		return n
	}

	// Single column.
	if rowSec.name.IsNil() && !rowSec.isNumber {
		// [col] -> whole column
		n := p.arena.Alloc()
		if foreign {
			n.Kind = arena.KindForeignRange1DColumn
			n.Sheet = sheetName
		} else {
			n.Kind = arena.KindRange1DColumn
		}
		n.ColName = colSec.name
		n.Row = 0
		n.RowEnd = arena.NoEnd
		return n
	}
	if !rowSec.isNumber {
		return p.errorf("invalid row specifier in range literal")
	}
	if !rowSec.hasColon {
		// [col, n] -> single cell
		row := rowValue(rowSec.row, arena.Dollar, 0)
		n := p.arena.Alloc()
		if foreign {
			n.Kind = arena.KindForeignRange0D
			n.Sheet = sheetName
		} else {
			n.Kind = arena.KindRange0D
		}
		n.ColName = colSec.name
		n.Row = row
		return n
	}
	// [col, n:m] -> column range
	start := rowValue(rowSec.row, arena.Dollar, 0)
	end := rowValue(rowSec.rowEnd, arena.Dollar, arena.NoEnd)
	n := p.arena.Alloc()
	if foreign {
		n.Kind = arena.KindForeignRange1DColumn
		n.Sheet = sheetName
	} else {
		n.Kind = arena.KindRange1DColumn
	}
	n.ColName = colSec.name
	n.Row = start
	n.RowEnd = end
	return n
}

// parseRangeShorthand parses the unbracketed forms: a1, a$, a1:b3, a:b, a,
// per spec §4.4.
func (p *Parser) parseRangeShorthand() *arena.Node {
	col1, row1 := p.splitIdentRow(p.tok.Literal)
	p.advance()
	r1 := rowSpec{}
	if row1 != "" {
		v, _ := strconv.ParseFloat(row1, 64)
		r1 = rowSpec{present: true, value: int32(v)}
	} else if p.tok.Kind == TokDollar {
		p.advance()
		r1 = rowSpec{present: true, dollar: true}
	}

	if p.tok.Kind != TokColon {
		if !r1.present {
			n := p.arena.Alloc()
			n.Kind = arena.KindRange1DColumn
			n.ColName = p.table.InternLower([]byte(col1))
			n.Row = 0
			n.RowEnd = arena.NoEnd
			return n
		}
		n := p.arena.Alloc()
		n.Kind = arena.KindRange0D
		n.ColName = p.table.InternLower([]byte(col1))
		n.Row = rowValue(r1, arena.Dollar, 0)
		return n
	}

	p.advance() // consume ":"
	colAtom1 := p.table.InternLower([]byte(col1))

	if p.tok.Kind == TokNumber {
		// "a1:3" style: same column, numeric end.
		endLit := p.tok.Literal
		p.advance()
		v, _ := strconv.ParseFloat(endLit, 64)
		n := p.arena.Alloc()
		n.Kind = arena.KindRange1DColumn
		n.ColName = colAtom1
		n.Row = rowValue(r1, arena.Dollar, 0)
		n.RowEnd = int32(v) - 1
		return n
	}
	if p.tok.Kind != TokIdent {
		return p.errorf("expected range endpoint after ':'")
	}
	col2, row2 := p.splitIdentRow(p.tok.Literal)
	p.advance()
	r2 := rowSpec{}
	if row2 != "" {
		v, _ := strconv.ParseFloat(row2, 64)
		r2 = rowSpec{present: true, value: int32(v)}
	} else if p.tok.Kind == TokDollar {
		p.advance()
		r2 = rowSpec{present: true, dollar: true}
	}

	colAtom2 := p.table.InternLower([]byte(col2))
	sameCol := atom.Equal(colAtom1, colAtom2)

	switch {
	case sameCol:
		n := p.arena.Alloc()
		n.Kind = arena.KindRange1DColumn
		n.ColName = colAtom1
		n.Row = rowValue(r1, arena.Dollar, 0)
		n.RowEnd = rowValue(r2, arena.Dollar, arena.NoEnd)
		return n
	case !r1.present && !r2.present:
		n := p.arena.Alloc()
		n.Kind = arena.KindRange1DRow
		n.ColName = colAtom1
		n.ColEnd = colAtom2
		n.Row = arena.Dollar
		return n
	case r1.present && r2.present && r1 == r2:
		n := p.arena.Alloc()
		n.Kind = arena.KindRange1DRow
		n.ColName = colAtom1
		n.ColEnd = colAtom2
		n.Row = rowValue(r1, arena.Dollar, 0)
		return n
	default:
		return p.errorf("2-D ranges are not supported")
	}
}

// splitIdentRow splits an ident token like "a12" into ("a", "12"). Column
// letters are whatever leading non-digit runes appear in the token.
func (p *Parser) splitIdentRow(lit string) (col, row string) {
	i := 0
	for i < len(lit) && !(lit[i] >= '0' && lit[i] <= '9') {
		i++
	}
	return lit[:i], strings.TrimLeft(lit[i:], "")
}
