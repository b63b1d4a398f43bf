package header

import (
	"bytes"
	"testing"

	"enard/internal/enarderrors"
)

func TestSerializeParseRoundTrip(t *testing.T) {
	h := &Header{
		CipherName: "chacha12",
		IV:         bytes.Repeat([]byte{0}, 12),
		Metadata: []MetaEntry{
			{Name: []byte("filename"), Value: []byte("game.zip")},
			{Name: []byte("created"), Value: []byte("2026-08-06")},
		},
	}

	data, err := Serialize(h)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	size, err := Size(h)
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if len(data) != size {
		t.Fatalf("Size() = %d, len(Serialize()) = %d", size, len(data))
	}
	if (PrefixSize+len(data))%DataAlignment != 0 {
		t.Fatalf("serialized header does not align data start to %d bytes", DataAlignment)
	}

	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.CipherName != h.CipherName {
		t.Errorf("CipherName = %q, want %q", got.CipherName, h.CipherName)
	}
	if !bytes.Equal(got.IV, h.IV) {
		t.Errorf("IV = %x, want %x", got.IV, h.IV)
	}
	if len(got.Metadata) != len(h.Metadata) {
		t.Fatalf("Metadata len = %d, want %d", len(got.Metadata), len(h.Metadata))
	}
	for i := range h.Metadata {
		if !bytes.Equal(got.Metadata[i].Name, h.Metadata[i].Name) {
			t.Errorf("Metadata[%d].Name = %q, want %q", i, got.Metadata[i].Name, h.Metadata[i].Name)
		}
		if !bytes.Equal(got.Metadata[i].Value, h.Metadata[i].Value) {
			t.Errorf("Metadata[%d].Value = %q, want %q", i, got.Metadata[i].Value, h.Metadata[i].Value)
		}
	}
}

func TestSerializeDeterministic(t *testing.T) {
	h := &Header{CipherName: "chacha20", IV: bytes.Repeat([]byte{7}, 24)}
	a, err := Serialize(h)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	b, err := Serialize(h)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("Serialize is not deterministic")
	}
}

func TestWorkedExampleHelloChacha12(t *testing.T) {
	// scenario 1: cipher "chacha12", 12 zero-byte IV, no metadata. Header
	// size is derived rather than hardcoded: 1 (name len) + 8 (name) +
	// 1 (IV len) + 12 (IV) + 1 (meta count) = 23 unpadded bytes, then
	// padded so PrefixSize+H is a multiple of DataAlignment.
	h := &Header{CipherName: "chacha12", IV: make([]byte, 12)}
	data, err := Serialize(h)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want, err := Size(h)
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if len(data) != want {
		t.Fatalf("H = %d, want %d", len(data), want)
	}
	if (PrefixSize+len(data))%DataAlignment != 0 {
		t.Fatalf("H = %d does not align data start to %d bytes", len(data), DataAlignment)
	}
}

func TestEmptyIVAndNoMetadata(t *testing.T) {
	h := &Header{CipherName: "chacha20"}
	data, err := Serialize(h)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got.IV) != 0 {
		t.Errorf("IV = %x, want empty", got.IV)
	}
	if len(got.Metadata) != 0 {
		t.Errorf("Metadata = %v, want empty", got.Metadata)
	}
}

func TestParseTruncated(t *testing.T) {
	h := &Header{CipherName: "chacha12", IV: bytes.Repeat([]byte{1}, 12)}
	data, err := Serialize(h)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	// Cut the header off mid cipher-name.
	if _, err := Parse(data[:3]); err == nil {
		t.Fatal("expected error parsing truncated header, got nil")
	}
}

func TestParseRejectsNonZeroPadding(t *testing.T) {
	h := &Header{CipherName: "chacha12", IV: bytes.Repeat([]byte{1}, 12)}
	data, err := Serialize(h)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	n, err := unpaddedSize(h)
	if err != nil {
		t.Fatalf("unpaddedSize: %v", err)
	}
	if n >= len(data) {
		t.Skip("no padding present for this header size")
	}
	tampered := append([]byte(nil), data...)
	tampered[len(tampered)-1] = 0xFF
	if _, err := Parse(tampered); err == nil {
		t.Fatal("expected error parsing header with non-zero padding, got nil")
	}
}

func TestParseBlockTooLarge(t *testing.T) {
	// Declare a cipher-name length longer than the bytes actually present.
	data := []byte{20, 'c', 'h', 'a', 'c', 'h', 'a'}
	_, err := Parse(data)
	var blockErr *enarderrors.BlockTooLargeError
	if !enarderrors.As(err, &blockErr) {
		t.Fatalf("Parse with oversized length prefix: got %v, want BlockTooLargeError", err)
	}
	if blockErr.Size != 20 || blockErr.Limit != uint64(len(data)-1) {
		t.Errorf("BlockTooLargeError = %+v, want Size=20 Limit=%d", blockErr, len(data)-1)
	}
}

func TestMetadataOverflow(t *testing.T) {
	h := &Header{CipherName: "chacha12"}
	for i := 0; i < MaxMetadataEntries+1; i++ {
		h.Metadata = append(h.Metadata, MetaEntry{Name: []byte("a"), Value: []byte("b")})
	}
	if _, err := Serialize(h); !enarderrors.Is(err, enarderrors.ErrMetadataOverflow) {
		t.Fatalf("Serialize with too many metadata entries: got %v, want ErrMetadataOverflow", err)
	}
}

func TestCloneIsDeepCopy(t *testing.T) {
	h := &Header{
		CipherName: "chacha12",
		IV:         []byte{1, 2, 3},
		Metadata:   []MetaEntry{{Name: []byte("k"), Value: []byte("v")}},
	}
	clone := h.Clone()
	clone.IV[0] = 0xFF
	clone.Metadata[0].Value[0] = 'X'

	if h.IV[0] == 0xFF {
		t.Error("mutating clone.IV affected original header")
	}
	if h.Metadata[0].Value[0] == 'X' {
		t.Error("mutating clone.Metadata affected original header")
	}
}

func TestPaddingForAlignsToEight(t *testing.T) {
	for n := 0; n < 64; n++ {
		pad := PaddingFor(n)
		if (PrefixSize+n+pad)%DataAlignment != 0 {
			t.Errorf("PaddingFor(%d) = %d does not align to %d", n, pad, DataAlignment)
		}
		if pad < 0 || pad >= DataAlignment {
			t.Errorf("PaddingFor(%d) = %d out of range", n, pad)
		}
	}
}
