package mac

import (
	"bytes"
	"testing"

	"enard/internal/enarderrors"
)

func TestDeriveKeyIsDeterministicAndKeyDependent(t *testing.T) {
	k1 := DeriveKey([]byte("master-key-one"))
	k2 := DeriveKey([]byte("master-key-one"))
	if !bytes.Equal(k1, k2) {
		t.Fatal("DeriveKey is not deterministic for the same master key")
	}
	k3 := DeriveKey([]byte("master-key-two"))
	if bytes.Equal(k1, k3) {
		t.Fatal("DeriveKey produced the same output for different master keys")
	}
	if len(k1) != TagSize {
		t.Fatalf("DeriveKey length = %d, want %d", len(k1), TagSize)
	}
}

func TestDeriveKeyDiffersFromRawKey(t *testing.T) {
	master := []byte("some-master-key-material-32byte")
	derived := DeriveKey(master)
	if bytes.Equal(derived, master) {
		t.Fatal("DeriveKey must not return the raw master key")
	}
}

func TestBinderVerifySucceedsForMatchingTag(t *testing.T) {
	key := []byte("k")
	header := []byte("serialized-header-bytes")
	ciphertext := []byte("ciphertext-bytes-go-here")

	writer := NewBinder(key)
	writer.Write(header)
	writer.Write(ciphertext)
	tag := writer.Sum()

	reader := NewBinder(key)
	reader.Write(header)
	reader.Write(ciphertext)
	if err := reader.Verify(tag); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestBinderVerifyFailsOnSingleByteMutation(t *testing.T) {
	key := []byte("k")
	header := []byte("serialized-header-bytes")
	ciphertext := []byte("ciphertext-bytes-go-here")

	writer := NewBinder(key)
	writer.Write(header)
	writer.Write(ciphertext)
	tag := writer.Sum()

	mutated := append([]byte(nil), ciphertext...)
	mutated[0] ^= 0x01

	reader := NewBinder(key)
	reader.Write(header)
	reader.Write(mutated)
	if err := reader.Verify(tag); !enarderrors.Is(err, enarderrors.ErrMacMismatch) {
		t.Fatalf("Verify after mutation: got %v, want ErrMacMismatch", err)
	}
}

func TestVerifyHelper(t *testing.T) {
	key := []byte("k")
	covered := []byte("header+ciphertext")
	b := NewBinder(key)
	b.Write(covered)
	tag := b.Sum()

	if err := Verify(key, covered, tag); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	tag[0] ^= 0xFF
	if err := Verify(key, covered, tag); !enarderrors.Is(err, enarderrors.ErrMacMismatch) {
		t.Fatalf("Verify with tampered tag: got %v, want ErrMacMismatch", err)
	}
}

func TestVerifyRejectsWrongLengthTag(t *testing.T) {
	key := []byte("k")
	covered := []byte("data")
	if err := Verify(key, covered, []byte{1, 2, 3}); !enarderrors.Is(err, enarderrors.ErrMacMismatch) {
		t.Fatalf("Verify with short tag: got %v, want ErrMacMismatch", err)
	}
}
