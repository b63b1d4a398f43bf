package cipher

import (
	stdcipher "crypto/cipher"
	"fmt"

	"enard/internal/enarderrors"
	"github.com/Picocrypt/serpent"
)

const (
	serpentKeySize = 32
	serpentIVSize  = 16
	serpentBlock   = 16
)

// serpentCTRCipher is a bonus registered cipher demonstrating that the
// registry is not hardcoded to the two required names. It composes the
// Serpent block cipher in CTR mode exactly the way the teacher composes
// Serpent-CTR for its paranoid encryption mode, but standalone rather than
// cascaded with ChaCha20.
type serpentCTRCipher struct {
	block stdcipher.Block
	iv    [serpentIVSize]byte
	s     stdcipher.Stream
}

func newSerpentCTR(key, iv []byte) (StreamCipher, error) {
	if len(key) != serpentKeySize {
		return nil, fmt.Errorf("%w: serpent-ctr wants %d byte key", enarderrors.ErrInvalidKeyLength, serpentKeySize)
	}
	if len(iv) != serpentIVSize {
		return nil, fmt.Errorf("%w: serpent-ctr wants %d byte iv", enarderrors.ErrInvalidIvLength, serpentIVSize)
	}
	block, err := serpent.NewCipher(key)
	if err != nil {
		return nil, enarderrors.WrapCipher("serpent-ctr-init", err)
	}
	c := &serpentCTRCipher{block: block}
	copy(c.iv[:], iv)
	c.s = stdcipher.NewCTR(block, c.iv[:])
	return c, nil
}

func (c *serpentCTRCipher) XORKeyStream(dst, src []byte) {
	c.s.XORKeyStream(dst, src)
}

// counterIV returns the base IV advanced by delta CTR blocks, treating the
// 16-byte IV as a big-endian 128-bit counter, matching how crypto/cipher's
// CTR mode increments its own internal counter block-by-block.
func counterIV(base [serpentIVSize]byte, delta uint64) [serpentIVSize]byte {
	var out [serpentIVSize]byte
	copy(out[:], base[:])
	carry := delta
	for i := serpentIVSize - 1; i >= 0 && carry > 0; i-- {
		sum := uint64(out[i]) + carry&0xFF
		out[i] = byte(sum)
		carry = carry>>8 + sum>>8
	}
	return out
}

func (c *serpentCTRCipher) Seek(offset uint64) error {
	blockIndex := offset / serpentBlock
	remainder := int(offset % serpentBlock)
	newIV := counterIV(c.iv, blockIndex)
	c.s = stdcipher.NewCTR(c.block, newIV[:])
	if remainder > 0 {
		discard := make([]byte, remainder)
		c.s.XORKeyStream(discard, discard)
	}
	return nil
}
