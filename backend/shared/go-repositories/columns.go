package repositories

import (
	"fmt"
	"strconv"
	"strings"
)

// ColumnLetter converts a 1-indexed column number to its A1 letters:
// 1 → A, 26 → Z, 27 → AA, 28 → AB.
func ColumnLetter(n int) string {
	if n < 1 {
		return ""
	}
	var b []byte
	for n > 0 {
		n--
		b = append(b, byte('A'+n%26))
		n /= 26
	}
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

// ColumnNumber is the inverse of ColumnLetter. It returns 0 for input that
// is not made of letters.
func ColumnNumber(letters string) int {
	n := 0
	for _, c := range strings.ToUpper(letters) {
		if c < 'A' || c > 'Z' {
			return 0
		}
		n = n*26 + int(c-'A') + 1
	}
	return n
}

// CellRef renders a single-cell A1 reference such as "AB7".
func CellRef(col, row int) string {
	return ColumnLetter(col) + strconv.Itoa(row)
}

// RowRange renders the A1 range covering columns 1..width of one row.
func RowRange(row, width int) string {
	return CellRef(1, row) + ":" + CellRef(width, row)
}

// ParseCellRef splits "AB7" into column 28 and row 7.
func ParseCellRef(ref string) (col, row int, err error) {
	i := 0
	for i < len(ref) && (ref[i] >= 'A' && ref[i] <= 'Z' || ref[i] >= 'a' && ref[i] <= 'z') {
		i++
	}
	col = ColumnNumber(ref[:i])
	row, convErr := strconv.Atoi(ref[i:])
	if col == 0 || convErr != nil || row < 1 {
		return 0, 0, fmt.Errorf("invalid cell reference %q", ref)
	}
	return col, row, nil
}
