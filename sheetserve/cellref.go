package sheetserve

import "strconv"

// parseCellID splits a spreadsheet-style address ("A1", "AB12") into a
// zero-based (row, col) pair, the way the teacher's CellID addressing
// works but reduced to the bare column/row split this engine needs —
// named cells and column aliases are handled by the engine itself.
func parseCellID(id string) (row, col int32, ok bool) {
	i := 0
	for i < len(id) && id[i] >= 'A' && id[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(id) {
		return 0, 0, false
	}
	c := 0
	for _, r := range id[:i] {
		c = c*26 + int(r-'A'+1)
	}
	n, err := strconv.Atoi(id[i:])
	if err != nil || n < 1 {
		return 0, 0, false
	}
	return int32(n - 1), int32(c - 1), true
}

// formatCellID is the inverse of parseCellID, used to label broadcasts.
func formatCellID(row, col int32) string {
	name := ""
	n := int(col) + 1
	for n > 0 {
		n--
		name = string(rune('A'+(n%26))) + name
		n /= 26
	}
	return name + strconv.Itoa(int(row)+1)
}
