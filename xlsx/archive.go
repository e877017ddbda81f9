package xlsx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
)

// decompress unpacks a zip blob into named entries. The returned order slice
// preserves the archive's original entry order so a save can write entries
// back in the same sequence.
func decompress(data []byte) (entries map[string][]byte, order []string, err error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, err
	}

	entries = make(map[string][]byte, len(r.File))
	order = make([]string, 0, len(r.File))
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			return nil, nil, fmt.Errorf("opening entry %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("reading entry %s: %w", f.Name, err)
		}
		entries[f.Name] = content
		order = append(order, f.Name)
	}
	return entries, order, nil
}

// compress packs named entries into a zip blob, writing them in the given
// order. Entry bytes are copied verbatim, so entries never touched between a
// decompress and a compress round-trip unchanged.
func compress(entries map[string][]byte, order []string) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range order {
		fw, err := w.Create(name)
		if err != nil {
			return nil, fmt.Errorf("creating entry %s: %w", name, err)
		}
		if _, err := fw.Write(entries[name]); err != nil {
			return nil, fmt.Errorf("writing entry %s: %w", name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
