package enard

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	cipherpkg "enard/internal/cipher"
	"enard/internal/enarderrors"
	"enard/internal/header"
	"enard/internal/log"
	"enard/internal/mac"
	"enard/internal/util"
)

// Writer encrypts a plaintext stream into a single Enard container written
// to dst. Callers must call Close when done to backpatch the container's
// data size and finalise the authentication tag;
// Write panics on nothing but simply errors if called after Close.
//
// Writer implements io.Writer so callers can io.Copy directly into it.
type Writer struct {
	dst        io.WriteSeeker
	cipher     cipherpkg.StreamCipher
	binder     *mac.Binder
	pool       *util.BufferPool
	chunkSize  int
	startPos   int64
	headerSize int
	dataLen    int64
	finished   bool
}

// NewWriter builds and writes an Enard container header to dst at its
// current position, then returns a Writer ready to accept plaintext via
// Write/WriteAll. dst must support Seek because the final data size is
// backpatched into the fixed prefix once the full length is known.
func NewWriter(dst io.WriteSeeker, masterKey []byte, opts WriteOptions) (*Writer, error) {
	name := opts.cipherName()
	desc, ok := cipherpkg.Default.Descriptor(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", enarderrors.ErrUnknownCipher, name)
	}

	iv, err := resolveIV(opts, desc)
	if err != nil {
		return nil, err
	}

	c, err := cipherpkg.Default.New(name, masterKey, iv)
	if err != nil {
		return nil, err
	}

	h := &header.Header{CipherName: name, IV: iv, Metadata: toHeaderMeta(opts.Metadata)}
	headerBytes, err := header.Serialize(h)
	if err != nil {
		return nil, err
	}

	startPos, err := dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, enarderrors.WrapIO("seek", err)
	}

	if _, err := dst.Write(header.Magic[:]); err != nil {
		return nil, enarderrors.WrapIO("write-magic", err)
	}
	var verBuf [2]byte
	binary.LittleEndian.PutUint16(verBuf[:], header.CurrentVersion)
	if _, err := dst.Write(verBuf[:]); err != nil {
		return nil, enarderrors.WrapIO("write-version", err)
	}
	// Placeholder for H (u32) and D (u64), backpatched in Close.
	if _, err := dst.Write(make([]byte, 4+8)); err != nil {
		return nil, enarderrors.WrapIO("write-size-placeholder", err)
	}

	binder := mac.NewBinder(masterKey)
	binder.Write(headerBytes)
	if _, err := dst.Write(headerBytes); err != nil {
		return nil, enarderrors.WrapIO("write-header", err)
	}

	chunkSize := opts.chunkSize()
	pool := util.NewBufferPool(chunkSize)
	if chunkSize == DefaultChunkSize {
		pool = util.MiBPool
	}

	log.Debug("writer opened", log.String("cipher", name), log.Int("iv_len", len(iv)), log.Int("header_size", len(headerBytes)))

	return &Writer{
		dst:        dst,
		cipher:     c,
		binder:     binder,
		pool:       pool,
		chunkSize:  chunkSize,
		startPos:   startPos,
		headerSize: len(headerBytes),
	}, nil
}

func resolveIV(opts WriteOptions, desc cipherpkg.Descriptor) ([]byte, error) {
	if opts.IVMode == IVExplicit {
		iv := append([]byte(nil), opts.IV...)
		return iv, nil
	}
	if desc.IVSize == 0 {
		return nil, nil
	}
	iv := make([]byte, desc.IVSize)
	for {
		if _, err := rand.Read(iv); err != nil {
			return nil, enarderrors.WrapIO("rand-iv", err)
		}
		if !allZero(iv) {
			return iv, nil
		}
	}
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// Write encrypts p and writes it to the underlying destination, feeding the
// ciphertext into the running authentication tag. It implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	if w.finished {
		return 0, fmt.Errorf("enard: write called after Close")
	}
	total := 0
	for len(p) > 0 {
		n := len(p)
		if n > w.chunkSize {
			n = w.chunkSize
		}
		buf := w.pool.Get()
		chunk := buf[:n]
		copy(chunk, p[:n])
		w.cipher.XORKeyStream(chunk, chunk)
		if _, err := w.dst.Write(chunk); err != nil {
			w.pool.Put(buf)
			return total, enarderrors.WrapIO("write", err)
		}
		w.binder.Write(chunk)
		w.pool.Put(buf)

		w.dataLen += int64(n)
		total += n
		p = p[n:]
	}
	return total, nil
}

// WriteAll copies all of r into the container via Write.
func (w *Writer) WriteAll(r io.Reader) (int64, error) {
	return io.Copy(w, r)
}

// Close finalises the container: it writes the authentication tag, then
// backpatches the header/data size fields in the fixed prefix. Close is
// idempotent; subsequent calls are no-ops. It also resets the writer's MAC
// state via mac.Binder.Zero, which does not overwrite the derived MAC key
// held inside the HMAC; the master key itself was never retained past
// cipher/MAC-key derivation in NewWriter.
func (w *Writer) Close() error {
	if w.finished {
		return nil
	}
	w.finished = true
	defer w.binder.Zero()

	if w.dataLen < 0 {
		log.Error("payload too large", log.Uint64("data_len", uint64(w.dataLen)))
		return enarderrors.ErrPayloadTooLarge
	}

	tag := w.binder.Sum()
	if _, err := w.dst.Write(tag); err != nil {
		return enarderrors.WrapIO("write-tag", err)
	}

	endPos, err := w.dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return enarderrors.WrapIO("seek", err)
	}
	if _, err := w.dst.Seek(w.startPos+6+2, io.SeekStart); err != nil {
		return enarderrors.WrapIO("seek", err)
	}
	var hBuf [4]byte
	binary.LittleEndian.PutUint32(hBuf[:], uint32(w.headerSize))
	if _, err := w.dst.Write(hBuf[:]); err != nil {
		return enarderrors.WrapIO("write-header-size", err)
	}
	var dBuf [8]byte
	binary.LittleEndian.PutUint64(dBuf[:], uint64(w.dataLen))
	if _, err := w.dst.Write(dBuf[:]); err != nil {
		return enarderrors.WrapIO("write-data-size", err)
	}
	if _, err := w.dst.Seek(endPos, io.SeekStart); err != nil {
		return enarderrors.WrapIO("seek", err)
	}
	log.Info("writer closed", log.Int("header_size", w.headerSize), log.Uint64("data_size", uint64(w.dataLen)))
	return nil
}
