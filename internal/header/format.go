// Package header handles Enard container header reading, writing, and
// alignment. This is audit-critical code: changes here directly affect
// on-disk format compatibility and MAC coverage.
package header

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"enard/internal/enarderrors"
)

// Format limits (spec §3: Metadata entry).
const (
	MaxNameLen           = 255
	MaxIvLen             = 255
	MaxValueLen          = 65535
	MaxMetadataEntries   = 255
	DataAlignment        = 8
	// PrefixSize is the fixed 20-byte prefix preceding the header:
	// magic(6) + version(2) + H(4) + D(8).
	PrefixSize = 20
)

// Magic is the fixed 6-byte identifier at the start of every Enard file.
var Magic = [6]byte{0x03, 'E', 'N', 'A', 'R', 'D'}

// CurrentVersion is the only format version this codec understands.
const CurrentVersion uint16 = 1

// MetaEntry is a single (name, value) metadata pair. Both are opaque bytes;
// names are not required to be unique (spec §3, §9).
type MetaEntry struct {
	Name  []byte
	Value []byte
}

// Header is the typed, in-memory representation of an Enard container's
// unencrypted header (spec §4.1).
type Header struct {
	CipherName string
	IV         []byte
	Metadata   []MetaEntry
}

// Clone returns a deep copy of h so callers cannot mutate the codec's
// internal state through returned slices (spec §3: "copied by the reader's
// API rather than shared by reference").
func (h *Header) Clone() *Header {
	out := &Header{CipherName: h.CipherName}
	if h.IV != nil {
		out.IV = append([]byte(nil), h.IV...)
	}
	if h.Metadata != nil {
		out.Metadata = make([]MetaEntry, len(h.Metadata))
		for i, m := range h.Metadata {
			out.Metadata[i] = MetaEntry{
				Name:  append([]byte(nil), m.Name...),
				Value: append([]byte(nil), m.Value...),
			}
		}
	}
	return out
}

// unpaddedSize returns the serialised size of h before 8-byte padding.
func unpaddedSize(h *Header) (int, error) {
	if len(h.CipherName) > MaxNameLen {
		return 0, fmt.Errorf("enard: cipher name length %d exceeds %d", len(h.CipherName), MaxNameLen)
	}
	if len(h.IV) > MaxIvLen {
		return 0, fmt.Errorf("enard: iv length %d exceeds %d", len(h.IV), MaxIvLen)
	}
	if len(h.Metadata) > MaxMetadataEntries {
		return 0, enarderrors.ErrMetadataOverflow
	}
	n := 1 + len(h.CipherName) + 1 + len(h.IV) + 1
	for _, m := range h.Metadata {
		if len(m.Name) > MaxNameLen || len(m.Value) > MaxValueLen {
			return 0, enarderrors.ErrMetadataOverflow
		}
		n += 1 + len(m.Name) + 2 + len(m.Value)
	}
	return n, nil
}

// PaddingFor returns the number of zero padding bytes needed so that
// PrefixSize + unpaddedLen is a multiple of DataAlignment.
func PaddingFor(unpaddedLen int) int {
	return (DataAlignment - (PrefixSize+unpaddedLen)%DataAlignment) % DataAlignment
}

// Size returns the total serialised size (including padding) of h, i.e. the
// value that belongs in the container's H field.
func Size(h *Header) (int, error) {
	n, err := unpaddedSize(h)
	if err != nil {
		return 0, err
	}
	return n + PaddingFor(n), nil
}

// Serialize deterministically encodes h to its exact on-disk byte layout,
// including trailing zero padding to the next 8-byte boundary from the
// start of the file (spec §4.1). Calling Serialize twice on an unmodified
// Header MUST produce byte-identical output; the MAC binder depends on it.
func Serialize(h *Header) ([]byte, error) {
	n, err := unpaddedSize(h)
	if err != nil {
		return nil, err
	}
	pad := PaddingFor(n)
	buf := bytes.NewBuffer(make([]byte, 0, n+pad))

	buf.WriteByte(byte(len(h.CipherName)))
	buf.WriteString(h.CipherName)

	buf.WriteByte(byte(len(h.IV)))
	buf.Write(h.IV)

	buf.WriteByte(byte(len(h.Metadata)))
	for _, m := range h.Metadata {
		buf.WriteByte(byte(len(m.Name)))
		buf.Write(m.Name)
		var vlen [2]byte
		binary.LittleEndian.PutUint16(vlen[:], uint16(len(m.Value)))
		buf.Write(vlen[:])
		buf.Write(m.Value)
	}

	buf.Write(make([]byte, pad))
	return buf.Bytes(), nil
}

// Parse decodes exactly len(data) bytes into a Header. It fails with a
// BlockTooLargeError if any length-prefixed field (name, IV, metadata name
// or value) declares a size that runs past the end of data, with
// ErrTruncatedHeader if a length prefix byte itself is missing or the
// metadata count is inconsistent with the remaining bytes, or if non-zero
// bytes appear in the padding region (spec §4.1: "parsers MAY tolerate
// non-zero padding — recommended: reject"). Since padding is MAC-covered,
// rejecting tampered padding here is purely a fast, structural pre-check.
func Parse(data []byte) (*Header, error) {
	r := &reader{buf: data}

	nameLen, err := r.readByte("cipher name length")
	if err != nil {
		return nil, err
	}
	name, err := r.readN(int(nameLen), "cipher name")
	if err != nil {
		return nil, err
	}

	ivLen, err := r.readByte("iv length")
	if err != nil {
		return nil, err
	}
	iv, err := r.readN(int(ivLen), "iv")
	if err != nil {
		return nil, err
	}

	count, err := r.readByte("metadata count")
	if err != nil {
		return nil, err
	}

	meta := make([]MetaEntry, 0, count)
	for i := 0; i < int(count); i++ {
		nlen, err := r.readByte("metadata name length")
		if err != nil {
			return nil, err
		}
		mname, err := r.readN(int(nlen), "metadata name")
		if err != nil {
			return nil, err
		}
		vlo, err := r.readByte("metadata value length")
		if err != nil {
			return nil, err
		}
		vhi, err := r.readByte("metadata value length")
		if err != nil {
			return nil, err
		}
		vlen := uint16(vlo) | uint16(vhi)<<8
		mval, err := r.readN(int(vlen), "metadata value")
		if err != nil {
			return nil, err
		}
		meta = append(meta, MetaEntry{Name: mname, Value: mval})
	}

	// Whatever remains is padding: it MUST be zero.
	for _, b := range r.buf[r.pos:] {
		if b != 0 {
			return nil, enarderrors.ErrTruncatedHeader
		}
	}

	return &Header{
		CipherName: string(name),
		IV:         iv,
		Metadata:   meta,
	}, nil
}

// reader is a small bounds-checked cursor over the header bytes. A readByte
// past the end of the buffer fails with ErrTruncatedHeader; a readN whose
// length runs past the end fails with BlockTooLargeError.
type reader struct {
	buf []byte
	pos int
}

func (r *reader) readByte(what string) (byte, error) {
	if r.pos+1 > len(r.buf) {
		return 0, fmt.Errorf("enard: reading %s: %w", what, enarderrors.ErrTruncatedHeader)
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) readN(n int, what string) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if remaining := len(r.buf) - r.pos; n > remaining {
		return nil, fmt.Errorf("enard: reading %s: %w", what, &enarderrors.BlockTooLargeError{Size: uint64(n), Limit: uint64(remaining)})
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}
