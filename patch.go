package revlog

import (
	"encoding/binary"
	"fmt"
)

// hunk is one decoded (a, b, data) triple from a patch stream (§4.6): the
// bytes src[a:b] are replaced by data.
type hunk struct {
	a, b uint32
	data []byte // borrowed from the stream it was parsed from
}

const hunkHeaderSize = 12

// parsePatchStream decodes a single patch stream into its ordered hunks.
// It does not validate a hunk against any particular source buffer length
// (that depends on which buffer the stream is applied to, and is checked
// by applyHunks); it only validates the stream's own framing and that
// a <= b within each hunk.
func parsePatchStream(stream []byte) ([]hunk, error) {
	var hunks []hunk

	pos := 0
	for pos < len(stream) {
		if len(stream)-pos < hunkHeaderSize {
			return nil, fmt.Errorf("revlog: truncated hunk header at byte %d: %w", pos, ErrBadPatch)
		}

		a := binary.BigEndian.Uint32(stream[pos : pos+4])
		b := binary.BigEndian.Uint32(stream[pos+4 : pos+8])
		c := binary.BigEndian.Uint32(stream[pos+8 : pos+12])
		pos += hunkHeaderSize

		if a > b {
			return nil, fmt.Errorf("revlog: hunk at byte %d: a=%d > b=%d: %w", pos-hunkHeaderSize, a, b, ErrBadPatch)
		}

		if uint64(len(stream)-pos) < uint64(c) {
			return nil, fmt.Errorf("revlog: truncated hunk data at byte %d: %w", pos, ErrBadPatch)
		}

		data := stream[pos : pos+int(c)]
		pos += int(c)

		hunks = append(hunks, hunk{a: a, b: b, data: data})
	}

	return hunks, nil
}

// applyHunks applies a stream's hunks to src, where every hunk's (a, b)
// pair is interpreted relative to src itself -- the state of the buffer
// at the *start* of this stream, not a running buffer mutated hunk by
// hunk within the stream (§4.6, §9). Hunks must be non-overlapping and
// given in non-decreasing order of a.
func applyHunks(src []byte, hunks []hunk) ([]byte, error) {
	out := make([]byte, 0, len(src))

	cursor := uint32(0)
	srcLen := uint32(len(src))

	for _, h := range hunks {
		if h.b > srcLen {
			return nil, fmt.Errorf("revlog: hunk b=%d exceeds source length %d: %w", h.b, srcLen, ErrBadPatch)
		}

		if h.a < cursor {
			return nil, fmt.Errorf("revlog: hunk a=%d precedes previous hunk end %d: %w", h.a, cursor, ErrBadPatch)
		}

		out = append(out, src[cursor:h.a]...)
		out = append(out, h.data...)
		cursor = h.b
	}

	out = append(out, src[cursor:]...)

	return out, nil
}

// Patch applies a sequence of patch streams to base, in order. Each
// stream's hunks are interpreted against the buffer as it stood after the
// previous stream (or against base itself, for the first stream) -- that
// is the only sense in which application is "sequential"; within a single
// stream, every hunk still addresses the pre-stream buffer (see
// applyHunks).
func Patch(base []byte, streams [][]byte) ([]byte, error) {
	buf := base

	for i, stream := range streams {
		hunks, err := parsePatchStream(stream)
		if err != nil {
			return nil, fmt.Errorf("stream %d: %w", i, err)
		}

		buf, err = applyHunks(buf, hunks)
		if err != nil {
			return nil, fmt.Errorf("stream %d: %w", i, err)
		}
	}

	return buf, nil
}
