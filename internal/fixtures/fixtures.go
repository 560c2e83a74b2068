// Package fixtures builds synthetic revlog `.i`/`.d` byte streams from a
// compact JSONC description, for use in tests. It exists so revlog tests
// can describe a handful of revisions declaratively instead of hand-
// assembling 64-byte records byte by byte.
package fixtures

import (
	"bytes"
	"compress/zlib"
	"crypto/sha1" //nolint:gosec // mirrors the revlog node id algorithm under test, not a security use
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// Framing names accepted in a Revision's "framing" field.
const (
	FramingZero = "zero" // 0x00 discriminator
	FramingU    = "u"    // 'u' discriminator
	FramingZlib = "x"    // 'x' (zlib) discriminator
)

// Revision describes one revlog revision to synthesize.
type Revision struct {
	// Text is this revision's correctly reconstructed fulltext, used for
	// node id hashing and test assertions. By default it is also what
	// gets stored on disk (base_rev == revno, a literal fulltext); set
	// IsDelta to store DeltaPatch against DeltaBase instead.
	Text string `json:"text"`

	Parent1 int32 `json:"parent1"`
	Parent2 int32 `json:"parent2"`
	LinkRev int32 `json:"link_rev"`

	// Framing selects the data framing discriminator; defaults to "u"
	// if empty.
	Framing string `json:"framing"`

	// CorruptNodeID, if true, flips a byte of the stored node id so
	// Verify is expected to report false for this revision.
	CorruptNodeID bool `json:"corrupt_node_id"`

	// IsDelta, if true, stores DeltaPatch (an already hunk-encoded patch
	// stream, see Hunk/EncodePatch) against DeltaBase instead of storing
	// Text as a literal fulltext. Text must still be set to this
	// revision's correctly reconstructed content: it is what node id
	// hashing and test assertions use, independent of how the bytes are
	// physically stored.
	IsDelta    bool   `json:"is_delta"`
	DeltaBase  int32  `json:"delta_base"`
	DeltaPatch []byte `json:"-"`
}

// Hunk is one (a, b, c, data) patch unit, matching the on-disk format
// consumed by the revlog patch engine.
type Hunk struct {
	A, B uint32
	Data []byte
}

// EncodePatch concatenates hunks into a single raw (pre-framing) patch
// stream.
func EncodePatch(hunks ...Hunk) []byte {
	var buf bytes.Buffer

	for _, h := range hunks {
		var hdr [12]byte
		binary.BigEndian.PutUint32(hdr[0:4], h.A)
		binary.BigEndian.PutUint32(hdr[4:8], h.B)
		binary.BigEndian.PutUint32(hdr[8:12], uint32(len(h.Data)))
		buf.Write(hdr[:])
		buf.Write(h.Data)
	}

	return buf.Bytes()
}

// Spec is the top-level JSONC fixture description.
type Spec struct {
	Inline       bool       `json:"inline"`
	GeneralDelta bool       `json:"general_delta"`
	Revisions    []Revision `json:"revisions"`
}

// ParseSpec standardizes JSONC (comments, trailing commas) to JSON and
// unmarshals it, following the same hujson.Standardize convention the
// rest of this module's ecosystem uses for config files.
func ParseSpec(jsonc []byte) (Spec, error) {
	standardized, err := hujson.Standardize(jsonc)
	if err != nil {
		return Spec{}, fmt.Errorf("fixtures: invalid JSONC: %w", err)
	}

	var spec Spec
	if err := json.Unmarshal(standardized, &spec); err != nil {
		return Spec{}, fmt.Errorf("fixtures: %w", err)
	}

	return spec, nil
}

const flagNG = 1 << 0
const flagInline = 1 << 16
const flagGeneralDelta = 1 << 17

var nullID [20]byte

func nodeIDOf(p1, p2 [20]byte, text []byte) [20]byte {
	lo, hi := p1, p2
	if bytes.Compare(lo[:], hi[:]) > 0 {
		lo, hi = hi, lo
	}

	h := sha1.New() //nolint:gosec
	h.Write(lo[:])
	h.Write(hi[:])
	h.Write(text)

	var out [20]byte
	copy(out[:], h.Sum(nil))

	return out
}

func frame(framing string, text []byte) ([]byte, error) {
	switch framing {
	case "", FramingU:
		return append([]byte{'u'}, text...), nil
	case FramingZero:
		return append([]byte{0x00}, text...), nil
	case FramingZlib:
		var buf bytes.Buffer

		zw := zlib.NewWriter(&buf)
		if _, err := zw.Write(text); err != nil {
			return nil, err
		}

		if err := zw.Close(); err != nil {
			return nil, err
		}

		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("fixtures: unknown framing %q", framing)
	}
}

// Build synthesizes index (and, in separate mode, data) file contents
// from spec. It computes real node ids for every revision so built
// fixtures verify successfully unless CorruptNodeID is set.
func Build(spec Spec) (index, data []byte, err error) {
	nodeIDs := make([][20]byte, len(spec.Revisions))

	var dataBuf bytes.Buffer

	var indexBuf bytes.Buffer

	for i, rev := range spec.Revisions {
		storedBytes := []byte(rev.Text)
		if rev.IsDelta {
			storedBytes = rev.DeltaPatch
		}

		payload, err := frame(rev.Framing, storedBytes)
		if err != nil {
			return nil, nil, err
		}

		p1ID, p2ID := nullID, nullID
		if rev.Parent1 != -1 {
			p1ID = nodeIDs[rev.Parent1]
		}

		if rev.Parent2 != -1 {
			p2ID = nodeIDs[rev.Parent2]
		}

		nodeID := nodeIDOf(p1ID, p2ID, []byte(rev.Text))
		if rev.CorruptNodeID {
			nodeID[0] ^= 0xFF
		}

		nodeIDs[i] = nodeID

		var dataOffset int64
		if i == 0 {
			dataOffset = 0
		} else if spec.Inline {
			dataOffset = 0 // unused; inline payload follows in .i
		} else {
			dataOffset = int64(dataBuf.Len())
		}

		var offsetFlags uint64
		if i == 0 {
			var flags uint32
			flags |= flagNG

			if spec.Inline {
				flags |= flagInline
			}

			if spec.GeneralDelta {
				flags |= flagGeneralDelta
			}

			offsetFlags = uint64(flags) << 32
		} else {
			offsetFlags = uint64(dataOffset) & 0x0000_FFFF_FFFF_FFFF
		}

		baseRev := uint32(i) // base_rev == revno: fulltext
		if rev.IsDelta {
			baseRev = uint32(rev.DeltaBase)
		}

		buf := make([]byte, 64)
		binary.BigEndian.PutUint64(buf[0:8], offsetFlags)
		binary.BigEndian.PutUint32(buf[8:12], uint32(len(payload)))
		binary.BigEndian.PutUint32(buf[12:16], uint32(len(rev.Text)))
		binary.BigEndian.PutUint32(buf[16:20], baseRev)
		binary.BigEndian.PutUint32(buf[20:24], uint32(rev.LinkRev))
		binary.BigEndian.PutUint32(buf[24:28], uint32(rev.Parent1))
		binary.BigEndian.PutUint32(buf[28:32], uint32(rev.Parent2))
		copy(buf[32:52], nodeID[:])

		indexBuf.Write(buf)

		if spec.Inline {
			indexBuf.Write(payload)
		} else {
			dataBuf.Write(payload)
		}
	}

	if spec.Inline {
		return indexBuf.Bytes(), nil, nil
	}

	return indexBuf.Bytes(), dataBuf.Bytes(), nil
}

// WriteFiles builds spec and writes the resulting `<stem>.i` (and, in
// separate mode, `<stem>.d`) files into dir, returning the index file's
// path for [revlog.Open] (or the caller's package of choice).
func WriteFiles(dir, stem string, spec Spec) (string, error) {
	index, data, err := Build(spec)
	if err != nil {
		return "", err
	}

	indexPath := filepath.Join(dir, stem+".i")
	if err := os.WriteFile(indexPath, index, 0o644); err != nil {
		return "", fmt.Errorf("fixtures: writing %s: %w", indexPath, err)
	}

	if data != nil {
		dataPath := filepath.Join(dir, stem+".d")
		if err := os.WriteFile(dataPath, data, 0o644); err != nil {
			return "", fmt.Errorf("fixtures: writing %s: %w", dataPath, err)
		}
	}

	return indexPath, nil
}
