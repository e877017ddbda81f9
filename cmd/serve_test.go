package cmd

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mavyfaby/tiny-excel/xlsx"
)

// writeTestWorkbook builds a minimal one-sheet .xlsx in a temp dir.
func writeTestWorkbook(t *testing.T) string {
	t.Helper()

	entries := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"xl/worksheets/sheet1.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData/></worksheet>`,
		"xl/sharedStrings.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="0" uniqueCount="0"/>`,
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("creating %s: %v", name, err)
		}
		fmt.Fprint(fw, content)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}

	path := filepath.Join(t.TempDir(), "book.xlsx")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writing workbook: %v", err)
	}
	return path
}

func TestHubApplyEdit(t *testing.T) {
	path := writeTestWorkbook(t)
	wb := xlsx.New(path)
	if err := wb.Load(xlsx.LoadOptions{}); err != nil {
		t.Fatalf("loading workbook: %v", err)
	}
	h := newHub(wb, path, false)

	tests := []struct {
		name    string
		msg     editMessage
		wantErr bool
	}{
		{"string edit", editMessage{Sheet: 0, Address: "A1", Value: "hello"}, false},
		{"explicit string kind", editMessage{Sheet: 0, Address: "A2", Value: "world", Kind: kindString}, false},
		{"number edit", editMessage{Sheet: 0, Address: "B1", Value: "42", Kind: kindNumber}, false},
		{"formula edit", editMessage{Sheet: 0, Address: "C1", Value: "SUM(A1:A2)", Kind: kindFormula}, false},
		{"bad number", editMessage{Sheet: 0, Address: "B2", Value: "nope", Kind: kindNumber}, true},
		{"bad address", editMessage{Sheet: 0, Address: "1A", Value: "x"}, true},
		{"unknown sheet", editMessage{Sheet: 5, Address: "A1", Value: "x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.applyEdit(tt.msg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %+v", tt.msg)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}

	sheet, err := wb.GetSheet(0)
	if err != nil {
		t.Fatalf("getting sheet: %v", err)
	}
	got, ok, err := sheet.GetCell("A1")
	if err != nil || !ok || got != "hello" {
		t.Errorf("GetCell(A1) = (%q, %v, %v), want (\"hello\", true, nil)", got, ok, err)
	}
}

func TestHubBroadcastsChanges(t *testing.T) {
	path := writeTestWorkbook(t)
	wb := xlsx.New(path)
	if err := wb.Load(xlsx.LoadOptions{}); err != nil {
		t.Fatalf("loading workbook: %v", err)
	}
	h := newHub(wb, path, false)

	client := &wsClient{id: "test", send: make(chan changeMessage, 4)}
	h.clients[client] = true

	if err := h.applyEdit(editMessage{Sheet: 0, Address: "A1", Value: "x"}); err != nil {
		t.Fatalf("applying edit: %v", err)
	}
	if err := h.applyEdit(editMessage{Sheet: 0, Address: "A2", Value: "y"}); err != nil {
		t.Fatalf("applying edit: %v", err)
	}

	select {
	case msg := <-client.send:
		if msg.Sheet != 0 || msg.Seq != 1 {
			t.Errorf("first change = %+v, want sheet 0 seq 1", msg)
		}
	default:
		t.Fatal("expected a change notification")
	}
	select {
	case msg := <-client.send:
		if msg.Seq != 2 {
			t.Errorf("second change seq = %d, want 2", msg.Seq)
		}
	default:
		t.Fatal("expected a second change notification")
	}
}

func TestHubAutosave(t *testing.T) {
	path := writeTestWorkbook(t)
	wb := xlsx.New(path)
	if err := wb.Load(xlsx.LoadOptions{}); err != nil {
		t.Fatalf("loading workbook: %v", err)
	}
	h := newHub(wb, path, true)

	if err := h.applyEdit(editMessage{Sheet: 0, Address: "A1", Value: "persisted"}); err != nil {
		t.Fatalf("applying edit: %v", err)
	}
	h.save()

	if got := wb.Dirty(); len(got) != 0 {
		t.Errorf("dirty after save = %v, want none", got)
	}

	reloaded := xlsx.New(path)
	if err := reloaded.Load(xlsx.LoadOptions{}); err != nil {
		t.Fatalf("reloading workbook: %v", err)
	}
	sheet, err := reloaded.GetSheet(0)
	if err != nil {
		t.Fatalf("getting sheet: %v", err)
	}
	got, ok, err := sheet.GetCell("A1")
	if err != nil || !ok || got != "persisted" {
		t.Errorf("GetCell(A1) = (%q, %v, %v), want (\"persisted\", true, nil)", got, ok, err)
	}
}
