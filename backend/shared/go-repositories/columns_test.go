package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnLetter(t *testing.T) {
	cases := map[int]string{
		0:   "",
		1:   "A",
		2:   "B",
		26:  "Z",
		27:  "AA",
		28:  "AB",
		30:  "AD",
		52:  "AZ",
		53:  "BA",
		702: "ZZ",
		703: "AAA",
	}
	for n, want := range cases {
		assert.Equal(t, want, ColumnLetter(n), "column %d", n)
	}
}

func TestColumnNumberRoundTrip(t *testing.T) {
	for n := 1; n <= 800; n++ {
		require.Equal(t, n, ColumnNumber(ColumnLetter(n)))
	}
	assert.Equal(t, 0, ColumnNumber("A1"))
}

func TestRowRangeAndCellRef(t *testing.T) {
	// 28th column of a 30 column header on sheet row 5.
	assert.Equal(t, "AB5", CellRef(28, 5))
	assert.Equal(t, "A5:AD5", RowRange(5, 30))

	col, row, err := ParseCellRef("AB5")
	require.NoError(t, err)
	assert.Equal(t, 28, col)
	assert.Equal(t, 5, row)

	_, _, err = ParseCellRef("5AB")
	assert.Error(t, err)
	_, _, err = ParseCellRef("AB")
	assert.Error(t, err)
}
