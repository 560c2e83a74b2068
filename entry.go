package revlog

import "fmt"

// nullID is the all-zero node id used as a sentinel parent (parent field
// value -1, §3).
var nullID [20]byte

// Entry is a decoded view of one revision's index record, bound to its
// compressed payload. Entries are produced by [Revlog.Index] and
// [Iterator.Next] and borrow from their owning Revlog's mappings.
type Entry struct {
	revlog     *Revlog
	revno      int
	rec        record
	byteOffset int64
	payload    []byte // compressed bytes, borrowed from the mapping
}

// Revno returns this entry's revision number.
func (e *Entry) Revno() int { return e.revno }

// LinkRev returns the link_rev field (§3): the changelog revision that
// introduced this revision, meaningful only when this is not itself the
// changelog.
func (e *Entry) LinkRev() int32 { return e.rec.linkRev }

// CompLen returns the on-disk (compressed/framed) length of the payload.
func (e *Entry) CompLen() int32 { return e.rec.compLen }

// UncompLen returns the uncomp_len field: the declared length of this
// revision's uncompressed fulltext.
func (e *Entry) UncompLen() int32 { return e.rec.uncompLen }

// Parent1 returns the parent_1 field: a revno, or -1 for "no parent".
func (e *Entry) Parent1() int32 { return e.rec.parent1 }

// Parent2 returns the parent_2 field: a revno, or -1 for "no parent".
func (e *Entry) Parent2() int32 { return e.rec.parent2 }

// NodeID returns the 20-byte content hash stored for this revision.
func (e *Entry) NodeID() [20]byte { return e.rec.nodeIDBytes() }

// Payload returns the raw, still-framed/compressed bytes stored for this
// revision. Most callers want [Entry.Text] instead.
func (e *Entry) Payload() []byte { return e.payload }

// Offset returns the byte offset of this revision's data: 0 for revision
// 0 (§3 invariant 6), otherwise the decoded data offset field.
func (e *Entry) Offset() int64 {
	if e.byteOffset == 0 {
		return 0
	}

	return int64(e.rec.dataOffset())
}

// parentID resolves a parent field (a revno or -1) to the referenced
// revision's node id, or the null id for -1. Entries are only ever
// constructed with parent fields already validated against invariant 3
// (see Revlog.entryAt), so no further range check is needed here.
func (e *Entry) parentID(parent int32) ([20]byte, error) {
	if parent == -1 {
		return nullID, nil
	}

	pe, err := e.revlog.Index(int(parent))
	if err != nil {
		return [20]byte{}, err
	}

	return pe.NodeID(), nil
}

// Parent1ID resolves Parent1 to a node id.
func (e *Entry) Parent1ID() ([20]byte, error) { return e.parentID(e.rec.parent1) }

// Parent2ID resolves Parent2 to a node id.
func (e *Entry) Parent2ID() ([20]byte, error) { return e.parentID(e.rec.parent2) }

// EffectiveBaseRev applies the general-delta fulltext sentinel (§4.5): in
// general-delta mode, a base_rev equal to this entry's own revno means
// "this revision stores a fulltext, not a delta", reported here as -1.
// Outside general-delta mode, base_rev equal to revno is the legacy
// chain-termination convention and is returned unchanged; [DeltaChain]
// recognizes that case itself.
func (e *Entry) EffectiveBaseRev() int32 {
	if e.revlog.generalDelta && e.rec.baseRev == int32(e.revno) {
		return -1
	}

	return e.rec.baseRev
}

// DeltaChain returns a lazy iterator over this entry's delta chain. It
// walks from this entry back toward the base, newest first, matching
// storage order; yielding base-first would require buffering the whole
// chain up front.
func (e *Entry) DeltaChain() *DeltaChain { return newDeltaChain(e) }

// Text reconstructs this revision's full, decompressed content by walking
// its delta chain back to a fulltext and replaying patches forward.
func (e *Entry) Text() ([]byte, error) {
	chain := e.DeltaChain()

	var framesNewestFirst [][]byte

	for chain.Next() {
		framesNewestFirst = append(framesNewestFirst, chain.Payload())

		if len(framesNewestFirst) > maxDeltaChainLength {
			return nil, fmt.Errorf("revlog: revno %d: delta chain exceeds %d links: %w", e.revno, maxDeltaChainLength, ErrCorruptIndex)
		}
	}

	if err := chain.Err(); err != nil {
		return nil, err
	}

	if len(framesNewestFirst) == 0 {
		return nil, fmt.Errorf("revlog: revno %d: empty delta chain: %w", e.revno, ErrCorruptIndex)
	}

	base, patches := framesNewestFirst[len(framesNewestFirst)-1], framesNewestFirst[:len(framesNewestFirst)-1]

	baseText, err := decodeFrame(base)
	if err != nil {
		return nil, fmt.Errorf("revlog: revno %d: base frame: %w", e.revno, err)
	}

	streams := make([][]byte, len(patches))
	for i := range patches {
		// patches is newest-first; streams must be applied base-first.
		stream, err := decodeFrame(patches[len(patches)-1-i])
		if err != nil {
			return nil, fmt.Errorf("revlog: revno %d: patch frame: %w", e.revno, err)
		}

		streams[i] = stream
	}

	text, err := Patch(baseText, streams)
	if err != nil {
		return nil, fmt.Errorf("revlog: revno %d: %w", e.revno, err)
	}

	return text, nil
}
