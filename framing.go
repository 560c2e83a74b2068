package revlog

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// decodeFrame strips a revision's single-byte framing discriminator (§6)
// and returns the decompressed bytes: a literal payload for the 0x00/'u'
// cases, or the inflated stream for 'x'. An empty frame decodes to an
// empty (non-nil) slice.
func decodeFrame(frame []byte) ([]byte, error) {
	if len(frame) == 0 {
		return []byte{}, nil
	}

	switch frame[0] {
	case framingLiteralZero:
		// The discriminator byte is itself the first content byte.
		return frame, nil
	case framingLiteralU:
		return frame[1:], nil
	case framingZlib:
		zr, err := zlib.NewReader(bytes.NewReader(frame))
		if err != nil {
			return nil, fmt.Errorf("revlog: zlib header: %w", ErrCorruptIndex)
		}
		defer zr.Close()

		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("revlog: zlib stream: %w", ErrCorruptIndex)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("revlog: framing byte 0x%02x: %w", frame[0], ErrCorruptIndex)
	}
}
