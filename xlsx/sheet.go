package xlsx

import (
	"strconv"

	"github.com/clbanning/mxj/v2"
	"github.com/mavyfaby/tiny-excel/internal"
)

// cellTypeShared marks a cell whose <v> is an offset into the shared string
// table. Numeric cells carry no type marker at all.
const cellTypeShared = "s"

// Sheet is a handle over one worksheet: an index plus references into the
// workbook's tree arena and its one shared string table. Every handle for the
// same index aliases the same mutable state, so an edit through any handle is
// seen by all of them and by the next save. There is no copying and no
// isolation between handles.
type Sheet struct {
	index   int
	tree    mxj.Map
	strings *SharedStrings
	wb      *Workbook
}

// Index reports the zero-based sheet index this handle is bound to.
func (s *Sheet) Index() int { return s.index }

// normalizeWorksheet rewrites the codec's singular-vs-sequence ambiguity out
// of a freshly parsed worksheet tree: sheetData is always a map, its "row"
// child is always a slice, and every row's "c" child is always a slice.
// Everything downstream assumes these sequences exist.
func normalizeWorksheet(tree mxj.Map) {
	ws := asMap(tree["worksheet"])
	if ws == nil {
		return
	}
	sd := asMap(ws["sheetData"])
	if sd == nil {
		sd = map[string]interface{}{}
		ws["sheetData"] = sd
	}
	rows := asSlice(sd["row"])
	if rows == nil {
		rows = []interface{}{}
	}
	for _, rv := range rows {
		row := asMap(rv)
		if row == nil {
			continue
		}
		cells := asSlice(row["c"])
		if cells == nil {
			cells = []interface{}{}
		}
		row["c"] = cells
	}
	sd["row"] = rows
}

func (s *Sheet) sheetData() map[string]interface{} {
	return asMap(asMap(s.tree["worksheet"])["sheetData"])
}

// GetCell returns the text of the cell at address, resolved through the
// shared string table. The second return is false when the cell was never
// written, holds a non-string value, or references a dangling offset — all of
// which are normal absence, not errors. Only a malformed address fails.
func (s *Sheet) GetCell(address string) (string, bool, error) {
	if _, _, err := internal.ParseAddress(address); err != nil {
		return "", false, err
	}
	cell := s.findCell(address)
	if cell == nil {
		return "", false, nil
	}
	text, ok := s.cellString(cell)
	return text, ok, nil
}

// cellString resolves a cell's stored value through the shared string table.
// Non-string cells and unresolvable offsets read as absent.
func (s *Sheet) cellString(cell map[string]interface{}) (string, bool) {
	if marker, _ := cell["-t"].(string); marker != cellTypeShared {
		return "", false
	}
	offset, err := strconv.Atoi(textOf(cell["v"]))
	if err != nil {
		return "", false
	}
	return s.strings.Resolve(offset)
}

func (s *Sheet) findRow(rowNum int) map[string]interface{} {
	want := strconv.Itoa(rowNum)
	for _, rv := range asSlice(s.sheetData()["row"]) {
		row := asMap(rv)
		if row != nil && textOf(row["-r"]) == want {
			return row
		}
	}
	return nil
}

func (s *Sheet) findCell(address string) map[string]interface{} {
	for _, rv := range asSlice(s.sheetData()["row"]) {
		for _, cv := range asSlice(asMap(rv)["c"]) {
			cell := asMap(cv)
			if cell != nil && textOf(cell["-r"]) == address {
				return cell
			}
		}
	}
	return nil
}

// SetCell writes a string value: the previous resolved text (empty if none)
// and the new value go through the shared string table's Upsert, the returned
// offset lands in <v>, and the shared-string type marker is set. A stale
// formula is cleared so value kinds never coexist on one cell.
func (s *Sheet) SetCell(address, value string) error {
	return s.set(address, func(cell map[string]interface{}, old string) {
		offset := s.strings.Upsert(old, value)
		cell["v"] = strconv.Itoa(offset)
		cell["-t"] = cellTypeShared
		delete(cell, "f")
	})
}

// SetNumber writes a raw numeric literal in decimal text form. The absence of
// a type marker is what marks the cell numeric.
func (s *Sheet) SetNumber(address string, n float64) error {
	return s.set(address, func(cell map[string]interface{}, _ string) {
		cell["v"] = strconv.FormatFloat(n, 'f', -1, 64)
		delete(cell, "-t")
		delete(cell, "f")
	})
}

// SetFormula stores a formula expression (without a leading "=") and clears
// any literal value and type marker.
func (s *Sheet) SetFormula(address, expr string) error {
	return s.set(address, func(cell map[string]interface{}, _ string) {
		cell["f"] = expr
		delete(cell, "v")
		delete(cell, "-t")
	})
}

// set validates the address before touching anything, locates or appends the
// row and cell, captures the old resolved value for string interning, applies
// the mutation, and notifies the workbook. A missing row appends to the end
// of the row sequence (no re-sorting), as does a missing cell in its row.
func (s *Sheet) set(address string, mutate func(cell map[string]interface{}, old string)) error {
	_, rowNum, err := internal.ParseAddress(address)
	if err != nil {
		return err
	}

	row := s.findRow(rowNum)
	if row == nil {
		row = map[string]interface{}{
			"-r": strconv.Itoa(rowNum),
			"c":  []interface{}{},
		}
		sd := s.sheetData()
		sd["row"] = append(asSlice(sd["row"]), row)
	}

	var cell map[string]interface{}
	for _, cv := range asSlice(row["c"]) {
		if c := asMap(cv); c != nil && textOf(c["-r"]) == address {
			cell = c
			break
		}
	}
	if cell == nil {
		cell = map[string]interface{}{"-r": address}
		row["c"] = append(asSlice(row["c"]), cell)
	}

	old, _ := s.cellString(cell)
	mutate(cell, old)
	s.wb.markDirty(s.index)
	return nil
}

// Dimension reports the smallest address range covering every cell present
// in the sheet, e.g. "A1:C3". The second return is false for an empty sheet.
func (s *Sheet) Dimension() (string, bool) {
	maxCol, maxRow := 0, 0
	for _, rv := range asSlice(s.sheetData()["row"]) {
		for _, cv := range asSlice(asMap(rv)["c"]) {
			cell := asMap(cv)
			if cell == nil {
				continue
			}
			col, row, err := internal.ParseAddress(textOf(cell["-r"]))
			if err != nil {
				continue
			}
			if col > maxCol {
				maxCol = col
			}
			if row > maxRow {
				maxRow = row
			}
		}
	}
	if maxCol == 0 {
		return "", false
	}
	return "A1:" + internal.FormatAddress(maxCol, maxRow), true
}
