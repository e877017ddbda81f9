package internal

import (
	"fmt"
	"regexp"
	"strconv"
)

// cellAddrRe matches a bare cell address like A1, B12, AA100.
// Column letters must be uppercase and the row is 1-based.
var cellAddrRe = regexp.MustCompile(`^([A-Z]+)([1-9][0-9]*)$`)

// ParseAddress splits a cell address into its 1-indexed column and row
// numbers. It rejects anything that is not <uppercase letters><digits>.
func ParseAddress(address string) (col, row int, err error) {
	m := cellAddrRe.FindStringSubmatch(address)
	if m == nil {
		return 0, 0, fmt.Errorf("invalid cell address %q", address)
	}
	col = LetterToColumn(m[1])
	row, _ = strconv.Atoi(m[2])
	return col, row, nil
}

// ColumnToLetter converts a 1-indexed column number to Excel letter(s)
func ColumnToLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}

// LetterToColumn converts Excel column letter(s) to a 1-indexed number.
func LetterToColumn(letters string) int {
	col := 0
	for _, c := range letters {
		col = col*26 + int(c-'A'+1)
	}
	return col
}

// FormatAddress builds a cell address like "C5" from 1-indexed parts.
func FormatAddress(col, row int) string {
	return ColumnToLetter(col) + strconv.Itoa(row)
}
