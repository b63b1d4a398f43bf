// Package secure provides memory-zeroing utilities for the sensitive key
// material a Writer/Reader holds for the lifetime of a container operation.
package secure

import (
	"crypto/subtle"
	"sync"
)

// Zero overwrites b with zeros to reduce the window during which key
// material is recoverable from memory. Due to Go's garbage collector and
// possible compiler optimizations this cannot guarantee complete erasure,
// but subtle.ConstantTimeCopy prevents the compiler from eliding the write
// as dead code the way a plain loop might be.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	zeros := make([]byte, len(b))
	subtle.ConstantTimeCopy(1, b, zeros)
}

// ZeroAll zeros every slice passed to it, for cleaning up several related
// keys/buffers in one call.
func ZeroAll(slices ...[]byte) {
	for _, s := range slices {
		Zero(s)
	}
}

// KeyMaterial wraps a sensitive byte slice with automatic zeroing on Close.
// It owns a private copy of the data it's constructed with, so the caller's
// original slice is never mutated; Close zeroes only that copy.
type KeyMaterial struct {
	mu     sync.Mutex
	data   []byte
	closed bool
}

// NewKeyMaterial copies data into a new KeyMaterial.
func NewKeyMaterial(data []byte) *KeyMaterial {
	if data == nil {
		return &KeyMaterial{}
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	return &KeyMaterial{data: copied}
}

// Bytes returns the underlying key data, or nil if Close has been called.
func (km *KeyMaterial) Bytes() []byte {
	km.mu.Lock()
	defer km.mu.Unlock()
	if km.closed {
		return nil
	}
	return km.data
}

// Len returns the length of the key data, or 0 if closed.
func (km *KeyMaterial) Len() int {
	km.mu.Lock()
	defer km.mu.Unlock()
	if km.closed || km.data == nil {
		return 0
	}
	return len(km.data)
}

// Close zeros the key data and marks the KeyMaterial closed. Idempotent and
// safe to call concurrently.
func (km *KeyMaterial) Close() {
	km.mu.Lock()
	defer km.mu.Unlock()
	if km.closed || km.data == nil {
		km.closed = true
		return
	}
	Zero(km.data)
	km.data = nil
	km.closed = true
}

// IsClosed reports whether Close has been called.
func (km *KeyMaterial) IsClosed() bool {
	km.mu.Lock()
	defer km.mu.Unlock()
	return km.closed
}
