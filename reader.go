package enard

import (
	"encoding/binary"
	"io"

	cipherpkg "enard/internal/cipher"
	"enard/internal/enarderrors"
	"enard/internal/header"
	"enard/internal/log"
	"enard/internal/mac"
	"enard/internal/secure"
)

// Reader decrypts a single Enard container read from src, presenting the
// plaintext as an io.Reader/io.Seeker/io.ReaderAt over [0, DataSize()).
//
// With VerifyEager (the default), NewReader authenticates the entire
// container before returning: no unauthenticated byte is ever surfaced.
// With VerifyLazy, NewReader only parses and aligns the header, so random
// access is available immediately; the caller must call Verify explicitly
// to authenticate. A MAC failure during eager construction makes NewReader
// return that error and no Reader. A failure found by an explicit Verify
// call poisons the Reader: every subsequent Read/Seek/ReadAt returns that
// same error.
type Reader struct {
	src       io.ReadSeeker
	dataStart int64
	dataSize  int64
	current   int64
	cipher    cipherpkg.StreamCipher
	hdr       *header.Header
	rawHeader []byte
	key       *secure.KeyMaterial
	policy    VerifyPolicy
	verified  bool
	verifyErr error
	chunkSize int
}

// NewReader parses the container's fixed prefix and header starting at src's
// current position, constructs the cipher it names, and — per opts.Verify —
// authenticates the container before returning.
func NewReader(src io.ReadSeeker, masterKey []byte, opts ReadOptions) (*Reader, error) {
	startPos, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, enarderrors.WrapIO("seek", err)
	}

	var magicBuf [6]byte
	if _, err := io.ReadFull(src, magicBuf[:]); err != nil {
		return nil, enarderrors.WrapIO("read-magic", err)
	}
	if magicBuf != header.Magic {
		return nil, enarderrors.ErrBadMagic
	}

	var verBuf [2]byte
	if _, err := io.ReadFull(src, verBuf[:]); err != nil {
		return nil, enarderrors.WrapIO("read-version", err)
	}
	version := binary.LittleEndian.Uint16(verBuf[:])
	if version != header.CurrentVersion {
		return nil, &enarderrors.UnsupportedVersionError{Version: version}
	}

	var hBuf [4]byte
	if _, err := io.ReadFull(src, hBuf[:]); err != nil {
		return nil, enarderrors.WrapIO("read-header-size", err)
	}
	H := binary.LittleEndian.Uint32(hBuf[:])

	var dBuf [8]byte
	if _, err := io.ReadFull(src, dBuf[:]); err != nil {
		return nil, enarderrors.WrapIO("read-data-size", err)
	}
	D := binary.LittleEndian.Uint64(dBuf[:])

	if (header.PrefixSize+int64(H))%header.DataAlignment != 0 {
		return nil, enarderrors.ErrMisalignedHeader
	}

	headerStart := startPos + header.PrefixSize
	dataStart := headerStart + int64(H)

	rawHeader := make([]byte, H)
	if _, err := io.ReadFull(src, rawHeader); err != nil {
		return nil, enarderrors.WrapIO("read-header", err)
	}

	chunkSize := opts.chunkSize()

	if opts.Verify != VerifyLazy {
		if err := verifyRange(src, masterKey, rawHeader, D, chunkSize); err != nil {
			return nil, err
		}
		if _, err := src.Seek(dataStart, io.SeekStart); err != nil {
			return nil, enarderrors.WrapIO("seek", err)
		}
	}

	hdr, err := header.Parse(rawHeader)
	if err != nil {
		return nil, err
	}

	c, err := cipherpkg.Default.New(hdr.CipherName, masterKey, hdr.IV)
	if err != nil {
		return nil, err
	}

	log.Debug("reader opened", log.String("cipher", hdr.CipherName), log.Uint64("header_size", uint64(H)), log.Uint64("data_size", D))

	return &Reader{
		src:       src,
		dataStart: dataStart,
		dataSize:  int64(D),
		cipher:    c,
		hdr:       hdr,
		rawHeader: rawHeader,
		key:       secure.NewKeyMaterial(masterKey),
		policy:    opts.Verify,
		verified:  opts.Verify != VerifyLazy,
		chunkSize: chunkSize,
	}, nil
}

// verifyRange feeds rawHeader then D bytes of ciphertext read from r into a
// fresh Binder, reads the trailing 32-byte tag, and checks it. r must be
// positioned at the start of the ciphertext.
func verifyRange(r io.Reader, masterKey, rawHeader []byte, dataSize uint64, chunkSize int) error {
	binder := mac.NewBinder(masterKey)
	binder.Write(rawHeader)
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(binder, io.LimitReader(r, int64(dataSize)), buf); err != nil {
		return enarderrors.WrapIO("read-data", err)
	}
	tag := make([]byte, mac.TagSize)
	if _, err := io.ReadFull(r, tag); err != nil {
		return enarderrors.WrapIO("read-tag", err)
	}
	if err := binder.Verify(tag); err != nil {
		log.Error("mac verification failed", log.Err(err))
		return err
	}
	log.Debug("mac verified", log.Uint64("data_size", dataSize))
	return nil
}

// Read implements io.Reader over the plaintext range [0, DataSize()).
func (r *Reader) Read(p []byte) (int, error) {
	if r.verifyErr != nil {
		return 0, r.verifyErr
	}
	if r.current >= r.dataSize {
		return 0, io.EOF
	}
	if limit := r.dataSize - r.current; int64(len(p)) > limit {
		p = p[:limit]
	}
	n, err := r.src.Read(p)
	if n > 0 {
		r.cipher.XORKeyStream(p[:n], p[:n])
		r.current += int64(n)
	}
	if err != nil && err != io.EOF {
		return n, enarderrors.WrapIO("read", err)
	}
	return n, err
}

// Seek implements io.Seeker over the plaintext range [0, DataSize()]. An
// out-of-range seek returns ErrInvalidSeek and leaves the Reader's position
// unchanged.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	if r.verifyErr != nil {
		return r.current, r.verifyErr
	}
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = r.current + offset
	case io.SeekEnd:
		newPos = r.dataSize + offset
	default:
		return r.current, enarderrors.ErrInvalidSeek
	}
	if newPos < 0 || newPos > r.dataSize {
		return r.current, enarderrors.ErrInvalidSeek
	}
	if _, err := r.src.Seek(r.dataStart+newPos, io.SeekStart); err != nil {
		return r.current, enarderrors.WrapIO("seek", err)
	}
	if err := r.cipher.Seek(uint64(newPos)); err != nil {
		return r.current, err
	}
	r.current = newPos
	return newPos, nil
}

// ReadAt implements io.ReaderAt, letting a Reader back consumers like
// archive/zip.NewReader that require random access without disturbing the
// Reader's own Read/Seek cursor. Each call constructs its own ephemeral
// cipher instance seeked independently, so ReadAt never touches the cipher
// used by Read. The underlying src position is shared and not guarded by a
// lock; ReadAt saves it and restores it after its own read, matching the
// single-threaded-per-instance resource model.
func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	if r.verifyErr != nil {
		return 0, r.verifyErr
	}
	if off < 0 {
		return 0, enarderrors.ErrInvalidSeek
	}
	if off >= r.dataSize {
		return 0, io.EOF
	}
	toRead := int64(len(p))
	if remain := r.dataSize - off; toRead > remain {
		toRead = remain
	}

	saved, err := r.src.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, enarderrors.WrapIO("seek", err)
	}
	defer r.src.Seek(saved, io.SeekStart)

	if _, err := r.src.Seek(r.dataStart+off, io.SeekStart); err != nil {
		return 0, enarderrors.WrapIO("seek", err)
	}
	n, err := io.ReadFull(r.src, p[:toRead])
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return n, enarderrors.WrapIO("read", err)
	}

	ephemeral, cerr := cipherpkg.Default.New(r.hdr.CipherName, r.key.Bytes(), r.hdr.IV)
	if cerr != nil {
		return n, cerr
	}
	if err := ephemeral.Seek(uint64(off)); err != nil {
		return n, err
	}
	ephemeral.XORKeyStream(p[:n], p[:n])

	if int64(n) < int64(len(p)) {
		return n, io.EOF
	}
	return n, nil
}

// Verify performs (or, for an eagerly-verified Reader, re-reports) full-range
// authentication. Only meaningful for a Reader opened with VerifyLazy; for
// VerifyEager it just returns the outcome already established at
// construction time (nil, since construction would have failed otherwise).
func (r *Reader) Verify() error {
	if r.policy != VerifyLazy {
		return r.verifyErr
	}
	if r.verified {
		return nil
	}
	saved, err := r.src.Seek(0, io.SeekCurrent)
	if err != nil {
		return enarderrors.WrapIO("seek", err)
	}
	defer r.src.Seek(saved, io.SeekStart)

	if _, err := r.src.Seek(r.dataStart, io.SeekStart); err != nil {
		return enarderrors.WrapIO("seek", err)
	}
	verr := verifyRange(r.src, r.key.Bytes(), r.rawHeader, uint64(r.dataSize), r.chunkSize)
	r.verified = verr == nil
	r.verifyErr = verr
	return verr
}

// Verified reports whether this Reader's contents have been authenticated,
// either eagerly at construction or via an explicit Verify call.
func (r *Reader) Verified() bool {
	return r.verified
}

// Meta returns a defensive copy of the container's metadata entries.
func (r *Reader) Meta() []MetaEntry {
	return fromHeaderMeta(r.hdr.Metadata)
}

// CipherName returns the name of the cipher this container was written
// with.
func (r *Reader) CipherName() string {
	return r.hdr.CipherName
}

// IV returns a copy of the container's IV.
func (r *Reader) IV() []byte {
	return append([]byte(nil), r.hdr.IV...)
}

// DataSize returns the size in bytes of the plaintext payload.
func (r *Reader) DataSize() int64 {
	return r.dataSize
}

// Close zeroes the Reader's copy of the master key. The cipher's internal
// state is not cleared. Safe to call multiple times.
func (r *Reader) Close() error {
	r.key.Close()
	return nil
}
