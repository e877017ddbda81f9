package xlsx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fixture describes an in-memory .xlsx package for tests.
type fixture struct {
	// sheetBodies holds the <sheetData> inner XML per sheet, in file order.
	sheetBodies []string
	// sharedStrings holds the table entries, in offset order.
	sharedStrings []string
	// noSharedStrings drops the xl/sharedStrings.xml entry entirely.
	noSharedStrings bool
	// extraEntries are written verbatim (styles, relationships, ...).
	extraEntries map[string]string
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`

const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<styleSheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"/>`

func worksheetXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>` +
		body + `</sheetData></worksheet>`
}

func sharedStringsXML(entries []string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	fmt.Fprintf(&b, `<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="%d" uniqueCount="%d">`,
		len(entries), len(entries))
	for _, s := range entries {
		fmt.Fprintf(&b, "<si><t>%s</t></si>", s)
	}
	b.WriteString(`</sst>`)
	return b.String()
}

// buildPackage zips the fixture into .xlsx bytes.
func buildPackage(t *testing.T, f fixture) []byte {
	t.Helper()

	entries := map[string]string{
		"[Content_Types].xml": contentTypesXML,
		"xl/styles.xml":       stylesXML,
	}
	for i, body := range f.sheetBodies {
		entries[fmt.Sprintf("xl/worksheets/sheet%d.xml", i+1)] = worksheetXML(body)
	}
	if !f.noSharedStrings {
		entries["xl/sharedStrings.xml"] = sharedStringsXML(f.sharedStrings)
	}
	for name, content := range f.extraEntries {
		entries[name] = content
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("creating %s: %v", name, err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

// writePackage writes the fixture to <tempdir>/book.xlsx and returns the path.
func writePackage(t *testing.T, f fixture) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.xlsx")
	if err := os.WriteFile(path, buildPackage(t, f), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

// loadFixture builds, writes and loads a workbook from the fixture.
func loadFixture(t *testing.T, f fixture, opts LoadOptions) *Workbook {
	t.Helper()
	wb := New(writePackage(t, f))
	if err := wb.Load(opts); err != nil {
		t.Fatalf("loading fixture: %v", err)
	}
	return wb
}

// unzipEntries splits .xlsx bytes into named entries for inspection.
func unzipEntries(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	entries, _, err := decompress(data)
	if err != nil {
		t.Fatalf("unzipping output: %v", err)
	}
	return entries
}
