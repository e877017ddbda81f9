package xlsx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/clbanning/mxj/v2"
)

const sharedStringsPath = "xl/sharedStrings.xml"

// worksheetRe matches the worksheet entries a package stores, capturing the
// 1-based file number. File N is sheet index N-1.
var worksheetRe = regexp.MustCompile(`^xl/worksheets/sheet([0-9]+)\.xml$`)

// ErrSheetNotFound is returned by GetSheet for an index that was never
// loaded, either because the package has no such worksheet or because the
// index was excluded at load time.
var ErrSheetNotFound = errors.New("sheet not loaded")

// Change describes a completed mutation; observers registered with OnChange
// receive one per successful cell write. The live worksheet tree and shared
// string table are reachable through GetSheet, which aliases the mutated
// state rather than copying it.
type Change struct {
	Sheet int
}

// File is a named save result. Writing it to storage is the caller's job.
type File struct {
	Name string
	Data []byte
}

// LoadOptions controls which worksheets Load parses.
type LoadOptions struct {
	// ExcludeSheets lists zero-based sheet indexes to skip entirely: an
	// excluded sheet is never parsed and GetSheet fails for its index.
	ExcludeSheets []int
}

// Workbook owns a loaded package: the full archive entry set, the parsed
// worksheet trees keyed by sheet index, and the single shared string table
// all sheets intern through. Construct with New, populate with Load.
type Workbook struct {
	path string

	entries    map[string][]byte
	order      []string
	sheetPaths map[int]string
	sheets     map[int]mxj.Map
	strings    *SharedStrings

	dirty    map[int]bool
	onChange []func(Change)
}

// New creates an empty workbook bound to a source path. Nothing is read
// until Load.
func New(path string) *Workbook {
	return &Workbook{path: path}
}

// Load reads and parses the package. It fails fast when the source is
// missing or not named .xlsx, when the blob is not a zip archive, or when
// the shared-strings entry is absent; a failed load registers no sheets.
func (wb *Workbook) Load(opts LoadOptions) error {
	if ext := strings.ToLower(filepath.Ext(wb.path)); ext != ".xlsx" {
		return fmt.Errorf("%s is not an .xlsx package", wb.path)
	}
	if _, err := os.Stat(wb.path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("workbook %s does not exist", wb.path)
		}
		return fmt.Errorf("checking %s: %w", wb.path, err)
	}
	data, err := os.ReadFile(wb.path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", wb.path, err)
	}

	entries, order, err := decompress(data)
	if err != nil {
		return fmt.Errorf("%s is not a recognized .xlsx package: %w", wb.path, err)
	}

	if _, ok := entries[sharedStringsPath]; !ok {
		return fmt.Errorf("%s has no %s entry", wb.path, sharedStringsPath)
	}

	// Worksheet file N maps to sheet index N-1.
	sheetPaths := make(map[int]string)
	indexes := make([]int, 0, 4)
	for _, name := range order {
		m := worksheetRe.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			continue
		}
		sheetPaths[n-1] = name
		indexes = append(indexes, n-1)
	}
	sort.Ints(indexes)

	excluded := make(map[int]bool, len(opts.ExcludeSheets))
	for _, i := range opts.ExcludeSheets {
		excluded[i] = true
	}

	sheets := make(map[int]mxj.Map, len(indexes))
	for _, i := range indexes {
		if excluded[i] {
			continue
		}
		tree, err := parseTree(entries[sheetPaths[i]])
		if err != nil {
			return fmt.Errorf("parsing %s: %w", sheetPaths[i], err)
		}
		if asMap(tree["worksheet"]) == nil {
			return fmt.Errorf("parsing %s: no worksheet root element", sheetPaths[i])
		}
		normalizeWorksheet(tree)
		sheets[i] = tree
	}

	table, err := parseSharedStrings(entries[sharedStringsPath])
	if err != nil {
		return fmt.Errorf("parsing %s: %w", sharedStringsPath, err)
	}

	wb.entries = entries
	wb.order = order
	wb.sheetPaths = sheetPaths
	wb.sheets = sheets
	wb.strings = table
	wb.dirty = make(map[int]bool)
	return nil
}

// GetSheet returns a handle bound to the loaded worksheet at index. Handles
// are cheap and all of them share the same underlying tree and table.
func (wb *Workbook) GetSheet(index int) (*Sheet, error) {
	tree, ok := wb.sheets[index]
	if !ok {
		return nil, fmt.Errorf("sheet %d: %w", index, ErrSheetNotFound)
	}
	return &Sheet{index: index, tree: tree, strings: wb.strings, wb: wb}, nil
}

// SheetCount reports the number of worksheet entries the package holds,
// excluded ones included.
func (wb *Workbook) SheetCount() int {
	return len(wb.sheetPaths)
}

// SharedStrings exposes the workbook's one shared string table.
func (wb *Workbook) SharedStrings() *SharedStrings {
	return wb.strings
}

// OnChange registers an observer invoked synchronously after every
// successful cell write, from the caller's own goroutine.
func (wb *Workbook) OnChange(fn func(Change)) {
	wb.onChange = append(wb.onChange, fn)
}

// Dirty lists the sheet indexes written to since the last ClearDirty, in
// ascending order.
func (wb *Workbook) Dirty() []int {
	indexes := make([]int, 0, len(wb.dirty))
	for i := range wb.dirty {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	return indexes
}

// ClearDirty resets the mutation flags, typically after a save.
func (wb *Workbook) ClearDirty() {
	wb.dirty = make(map[int]bool)
}

func (wb *Workbook) markDirty(index int) {
	wb.dirty[index] = true
	for _, fn := range wb.onChange {
		fn(Change{Sheet: index})
	}
}

// SaveBuffer serializes every loaded sheet and the shared string table over
// their archive entries and recompresses the full entry set. Entries this
// model never touched pass through byte-for-byte. The workbook stays usable;
// SaveBuffer may be called repeatedly.
func (wb *Workbook) SaveBuffer() ([]byte, error) {
	if wb.entries == nil {
		return nil, fmt.Errorf("workbook %s is not loaded", wb.path)
	}
	for i, tree := range wb.sheets {
		data, err := serializeTree(tree)
		if err != nil {
			return nil, fmt.Errorf("serializing %s: %w", wb.sheetPaths[i], err)
		}
		wb.entries[wb.sheetPaths[i]] = data
	}
	table, err := wb.strings.serialize()
	if err != nil {
		return nil, fmt.Errorf("serializing %s: %w", sharedStringsPath, err)
	}
	wb.entries[sharedStringsPath] = table
	return compress(wb.entries, wb.order)
}

// Save wraps SaveBuffer into a named in-memory file. It performs no storage
// I/O; persisting the result is the caller's responsibility.
func (wb *Workbook) Save(name string) (*File, error) {
	data, err := wb.SaveBuffer()
	if err != nil {
		return nil, err
	}
	return &File{Name: name, Data: data}, nil
}
