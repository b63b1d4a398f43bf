// Package mac implements the Enard container's authentication tag: a
// domain-separated HMAC-SHA-256 binder covering the serialised header
// (including its padding) followed by the ciphertext. Verification uses a
// constant-time comparison so a MAC mismatch can never be distinguished by
// timing (spec §4.3, §7).
package mac

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"hash"

	"enard/internal/enarderrors"
)

// TagSize is the length in bytes of an Enard authentication tag.
const TagSize = sha256.Size

// domainSeparator is mixed into the master key before it is ever used to
// key an HMAC, so a container's MAC key is never the raw master key. This
// keeps the MAC key independent from any future use of the same master key
// for a different purpose.
const domainSeparator = "enard-mac-v01"

// DeriveKey derives the MAC key from the container's master key. HMAC-SHA-256
// is required here, not chosen for convenience: the wire format pins this
// exact construction for interoperability, and there is no meaningful
// third-party substitute to wire in its place (see DESIGN.md).
func DeriveKey(masterKey []byte) []byte {
	h := hmac.New(sha256.New, masterKey)
	h.Write([]byte(domainSeparator))
	return h.Sum(nil)
}

// Binder accumulates a running HMAC-SHA-256 tag over header and ciphertext
// bytes fed to it incrementally, so the Writer/Reader never need to buffer
// the whole container in memory to compute or check the tag.
type Binder struct {
	h hash.Hash
}

// NewBinder derives the MAC key from masterKey and returns a fresh Binder.
func NewBinder(masterKey []byte) *Binder {
	return &Binder{h: hmac.New(sha256.New, DeriveKey(masterKey))}
}

// Write feeds p into the running tag computation. It never returns an error;
// the signature matches io.Writer so a Binder can be used as a MultiWriter
// target during streaming.
func (b *Binder) Write(p []byte) (int, error) {
	return b.h.Write(p)
}

// Sum returns the current 32-byte tag without resetting the accumulator.
func (b *Binder) Sum() []byte {
	return b.h.Sum(nil)
}

// Verify checks tag against the accumulated MAC using a constant-time
// comparison, returning ErrMacMismatch on failure.
func (b *Binder) Verify(tag []byte) error {
	computed := b.Sum()
	if len(tag) != len(computed) || subtle.ConstantTimeCompare(tag, computed) != 1 {
		return enarderrors.ErrMacMismatch
	}
	return nil
}

// Verify is a one-shot helper: it derives the MAC key from masterKey,
// computes HMAC-SHA-256(macKey, coveredBytes), and compares it against tag
// in constant time.
func Verify(masterKey, coveredBytes, tag []byte) error {
	b := NewBinder(masterKey)
	b.Write(coveredBytes)
	return b.Verify(tag)
}

// Zero resets the underlying HMAC to its initial state, discarding the bytes
// accumulated so far. The key-derived pads held inside the HMAC are not
// overwritten. Call via defer alongside the rest of a Writer/Reader's
// cleanup on Close.
func (b *Binder) Zero() {
	if b == nil || b.h == nil {
		return
	}
	b.h.Reset()
}
