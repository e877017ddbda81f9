package xlsx

import (
	"strconv"
	"strings"

	"github.com/clbanning/mxj/v2"
)

const spreadsheetNS = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"

// SharedStrings is the workbook-level deduplicated pool of string literals.
// Cells of string type store an integer offset into this table instead of the
// text itself. Offsets are stable: an existing entry may be overwritten in
// place, and a new entry always appends at offset = current length.
type SharedStrings struct {
	entries []string
}

// parseSharedStrings decodes an xl/sharedStrings.xml entry. Rich-text
// entries (<si> with <r> runs) are flattened to their concatenated text.
func parseSharedStrings(data []byte) (*SharedStrings, error) {
	tree, err := parseTree(data)
	if err != nil {
		return nil, err
	}
	table := &SharedStrings{}
	root := asMap(tree["sst"])
	for _, v := range asSlice(root["si"]) {
		table.entries = append(table.entries, siText(asMap(v)))
	}
	return table, nil
}

func siText(si map[string]interface{}) string {
	if si == nil {
		return ""
	}
	if t, ok := si["t"]; ok {
		return textOf(t)
	}
	var b strings.Builder
	for _, rv := range asSlice(si["r"]) {
		b.WriteString(textOf(asMap(rv)["t"]))
	}
	return b.String()
}

// Resolve returns the string at offset, or false when out of range.
func (t *SharedStrings) Resolve(offset int) (string, bool) {
	if offset < 0 || offset >= len(t.entries) {
		return "", false
	}
	return t.entries[offset], true
}

// IndexOf returns the offset of the first entry whose current text equals
// value, or -1.
func (t *SharedStrings) IndexOf(value string) int {
	for i, s := range t.entries {
		if s == value {
			return i
		}
	}
	return -1
}

// Upsert makes the table hold newValue where it used to hold oldValue: when
// an entry with text oldValue exists, that entry is overwritten in place and
// keeps its offset, so every cell referencing the offset now resolves to
// newValue. Otherwise newValue appends at the next offset.
//
// The dedup key is the previous text, not the writing cell, so two cells that
// share an offset are repointed together by a write through either of them.
// A stricter key (cell identity) would need a format change and is left as is
// for compatibility.
func (t *SharedStrings) Upsert(oldValue, newValue string) int {
	if i := t.IndexOf(oldValue); i >= 0 {
		t.entries[i] = newValue
		return i
	}
	t.entries = append(t.entries, newValue)
	return len(t.entries) - 1
}

// Len reports the number of entries in the table.
func (t *SharedStrings) Len() int {
	return len(t.entries)
}

// serialize encodes the table back to an xl/sharedStrings.xml entry. Rich
// text runs do not survive: flattened text is written as plain <si><t>.
func (t *SharedStrings) serialize() ([]byte, error) {
	si := make([]interface{}, 0, len(t.entries))
	for _, s := range t.entries {
		si = append(si, map[string]interface{}{"t": s})
	}
	n := strconv.Itoa(len(t.entries))
	return serializeTree(mxj.Map{"sst": map[string]interface{}{
		"-xmlns":       spreadsheetNS,
		"-count":       n,
		"-uniqueCount": n,
		"si":           si,
	}})
}
