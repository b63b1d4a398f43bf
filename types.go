// Package enard implements the Enard container format: an authenticated,
// seekable encryption codec for opaque byte payloads. See the Writer and
// Reader types for the encoder/decoder entry points.
package enard

import "enard/internal/header"

// MetaEntry is a single opaque (name, value) metadata pair carried in a
// container's header, alongside the cipher name and IV. Names are not
// required to be unique; order is preserved.
type MetaEntry struct {
	Name  []byte
	Value []byte
}

func toHeaderMeta(entries []MetaEntry) []header.MetaEntry {
	if entries == nil {
		return nil
	}
	out := make([]header.MetaEntry, len(entries))
	for i, e := range entries {
		out[i] = header.MetaEntry{Name: e.Name, Value: e.Value}
	}
	return out
}

func fromHeaderMeta(entries []header.MetaEntry) []MetaEntry {
	if entries == nil {
		return nil
	}
	out := make([]MetaEntry, len(entries))
	for i, e := range entries {
		out[i] = MetaEntry{Name: append([]byte(nil), e.Name...), Value: append([]byte(nil), e.Value...)}
	}
	return out
}

// IVMode selects how a Writer obtains the IV for the cipher it constructs.
type IVMode int

const (
	// IVRandom draws a fresh IV from crypto/rand for every Writer (default).
	IVRandom IVMode = iota
	// IVExplicit uses the caller-supplied bytes verbatim.
	IVExplicit
)

// VerifyPolicy controls when a Reader authenticates the container it opens.
type VerifyPolicy int

const (
	// VerifyEager streams the whole container and checks the MAC before any
	// plaintext is returned from NewReader. This is the default: no byte of
	// unauthenticated plaintext is ever surfaced to the caller.
	VerifyEager VerifyPolicy = iota
	// VerifyLazy defers verification: NewReader only parses and aligns the
	// header, allowing immediate random access. The caller must call
	// Reader.Verify to authenticate, or accept the reduced guarantee.
	VerifyLazy
)

// DefaultChunkSize is the buffer size used for chunked streaming during
// encryption and eager verification, matching the teacher's default
// buffer-pool granularity.
const DefaultChunkSize = 1 << 20 // 1 MiB

// WriteOptions configures NewWriter.
type WriteOptions struct {
	// CipherName selects the registered cipher, e.g. "chacha12" (default
	// when empty), "chacha20", or "serpent-ctr".
	CipherName string
	// IVMode selects how the IV is obtained; see IVExplicit/IVRandom.
	IVMode IVMode
	// IV is used verbatim when IVMode is IVExplicit; ignored otherwise.
	IV []byte
	// Metadata is written into the header in order.
	Metadata []MetaEntry
	// ChunkSize overrides DefaultChunkSize for streaming writes. Zero means
	// use the default.
	ChunkSize int
}

// ReadOptions configures NewReader.
type ReadOptions struct {
	// Verify selects eager (default) or lazy verification.
	Verify VerifyPolicy
	// ChunkSize overrides DefaultChunkSize for eager verification. Zero
	// means use the default.
	ChunkSize int
}

const defaultCipherName = "chacha12"

func (o WriteOptions) cipherName() string {
	if o.CipherName == "" {
		return defaultCipherName
	}
	return o.CipherName
}

func (o WriteOptions) chunkSize() int {
	if o.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return o.ChunkSize
}

func (o ReadOptions) chunkSize() int {
	if o.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return o.ChunkSize
}
