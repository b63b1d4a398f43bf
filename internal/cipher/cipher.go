// Package cipher implements the pluggable stream-cipher capability that
// Enard containers are built on: construct-from-key-and-IV, seek to an
// absolute byte offset in the keystream, and apply the keystream in place
// while advancing the internal offset. Cipher implementations are dispatched
// by ASCII name through a Registry, mirroring the teacher's CipherSuite
// factory pattern but generalised to an open set of named ciphers.
package cipher

import (
	"fmt"
	"sync"

	"enard/internal/enarderrors"
)

// StreamCipher is the capability every Enard cipher must provide (spec §4.2).
type StreamCipher interface {
	// XORKeyStream XORs src with the keystream starting at the cipher's
	// current position and writes the result to dst, advancing the
	// position by len(src). dst and src may overlap exactly.
	XORKeyStream(dst, src []byte)

	// Seek repositions the keystream to the given absolute byte offset.
	// Implementations must make this O(1) with respect to the distance
	// seeked, and the resulting keystream must be indistinguishable from
	// one generated sequentially from position 0.
	Seek(offset uint64) error
}

// Factory constructs a StreamCipher from a raw key and IV. It must validate
// key/IV lengths and return InvalidKeyLength/InvalidIvLength on mismatch.
type Factory func(key, iv []byte) (StreamCipher, error)

// Descriptor documents a registered cipher's fixed key/IV sizes, exposed so
// callers can validate before construction.
type Descriptor struct {
	Name    string
	KeySize int
	IVSize  int
}

// Registry dispatches cipher names to factories. The zero value is not
// usable; use NewRegistry or the package-level Default.
type Registry struct {
	mu    sync.RWMutex
	descs map[string]Descriptor
	fns   map[string]Factory
}

// NewRegistry returns an empty Registry with no ciphers registered.
func NewRegistry() *Registry {
	return &Registry{
		descs: make(map[string]Descriptor),
		fns:   make(map[string]Factory),
	}
}

// Register adds or replaces a named cipher. Implementers may register
// additional ciphers at runtime without modifying this package.
func (r *Registry) Register(desc Descriptor, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.descs[desc.Name] = desc
	r.fns[desc.Name] = factory
}

// New constructs the named cipher from key and iv. Returns ErrUnknownCipher
// if name isn't registered, or ErrInvalidKeyLength/ErrInvalidIvLength if the
// sizes don't match the registered descriptor; the factory is only called
// once both sizes match.
func (r *Registry) New(name string, key, iv []byte) (StreamCipher, error) {
	r.mu.RLock()
	desc, ok := r.descs[name]
	factory := r.fns[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", enarderrors.ErrUnknownCipher, name)
	}
	if len(key) != desc.KeySize {
		return nil, fmt.Errorf("%w: cipher %q wants %d bytes, got %d", enarderrors.ErrInvalidKeyLength, name, desc.KeySize, len(key))
	}
	if len(iv) != desc.IVSize {
		return nil, fmt.Errorf("%w: cipher %q wants %d bytes, got %d", enarderrors.ErrInvalidIvLength, name, desc.IVSize, len(iv))
	}
	return factory(key, iv)
}

// Descriptor returns the registered descriptor for name, if any.
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.descs[name]
	return d, ok
}

// Names returns the currently registered cipher names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.descs))
	for n := range r.descs {
		names = append(names, n)
	}
	return names
}

// Default is the package-level registry pre-populated with chacha12,
// chacha20, and serpent-ctr (spec §4.2 plus the extensibility design note
// in spec §9).
var Default = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Descriptor{Name: "chacha12", KeySize: chachaKeySize, IVSize: chachaIVSize}, newChaCha12)
	r.Register(Descriptor{Name: "chacha20", KeySize: chachaKeySize, IVSize: chachaIVSize}, newChaCha20)
	r.Register(Descriptor{Name: "serpent-ctr", KeySize: serpentKeySize, IVSize: serpentIVSize}, newSerpentCTR)
	return r
}
