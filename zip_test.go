package enard

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
)

// TestZipRoundTrip exercises Reader as an io.ReaderAt under archive/zip,
// the "game assets such as zip archives" consumer this format targets.
func TestZipRoundTrip(t *testing.T) {
	var zipBuf bytes.Buffer
	zw := zip.NewWriter(&zipBuf)
	files := map[string]string{
		"readme.txt":     "hello from inside the archive",
		"data/level1.bin": "binary-ish level data goes here",
	}
	for name, content := range files {
		fw, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip.Create: %v", err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip.Close: %v", err)
	}

	key := mustKey32()
	dst := &seekBuffer{}
	w, err := NewWriter(dst, key, WriteOptions{
		CipherName: "chacha20",
		IVMode:     IVExplicit,
		IV:         make([]byte, 12),
		Metadata:   []MetaEntry{{Name: []byte("content-type"), Value: []byte("application/zip")}},
	})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if _, err := w.WriteAll(bytes.NewReader(zipBuf.Bytes())); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	dst.pos = 0
	r, err := NewReader(dst, key, ReadOptions{})
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	zr, err := zip.NewReader(r, r.DataSize())
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}

	got := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		got[f.Name] = string(b)
	}

	for name, want := range files {
		if got[name] != want {
			t.Errorf("file %s = %q, want %q", name, got[name], want)
		}
	}
}
