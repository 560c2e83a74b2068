package revlog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hgrevlog/revlog/internal/mmapfile"
)

// Revlog is an open handle to one revlog: a `.i` index file and, in
// separate-storage mode, its sibling `.d` data file.
//
// A Revlog owns both memory mappings for its lifetime; [Entry], [Iterator],
// and [DeltaChain] values returned from it borrow from those mappings and
// must not outlive the Revlog. A fully opened Revlog is immutable and may
// be shared by any number of readers without coordination, provided the
// backing files are never truncated or rewritten (see package mmapfile).
//
// The zero value is not usable; obtain a Revlog via [Open].
type Revlog struct {
	index *mmapfile.File
	data  *mmapfile.File // nil in inline mode

	inline       bool
	generalDelta bool

	// offsetTable maps revno -> byte offset of that revision's index
	// record. Only populated (and only consulted) in inline mode; in
	// separate mode the offset is always recordSize*revno.
	//
	// ready is false while offsetTable is being built during init(); in
	// that window entryAt must not attempt to resolve a revno from an
	// offset (see §4.3's Opening -> Scanning -> Ready state machine, and
	// §4.3.4 / §9 "Jump-table revno resolution during init").
	offsetTable []int64
	ready       bool
}

// Open opens the revlog whose index file is at path, which must end in
// ".i". In separate-storage mode the sibling data file (same stem, ".d"
// extension) is also mapped; its absence is fatal.
//
// Open fails with [ErrBadName], [ErrUnsupportedVersion], [ErrCorruptIndex],
// or a wrapped I/O error. It never succeeds partially: on any error the
// partially constructed Revlog's mappings are released before returning.
func Open(path string) (rl *Revlog, err error) {
	if !strings.HasSuffix(path, ".i") {
		return nil, fmt.Errorf("revlog: %q: %w", path, ErrBadName)
	}

	index, err := mmapfile.Open(path)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			_ = index.Close()
		}
	}()

	if index.Len() < recordSize {
		return nil, fmt.Errorf("revlog: %q: index shorter than one record: %w", path, ErrCorruptIndex)
	}

	first, err := index.View(0, recordSize)
	if err != nil {
		return nil, err
	}

	rec0 := decodeRecord(first)
	flags := rec0.flags()

	if flags&flagNG == 0 {
		return nil, fmt.Errorf("revlog: %q: %w", path, ErrUnsupportedVersion)
	}

	// Open Question (spec.md §9) resolved here: record 0's data offset is
	// defined to always report 0 (invariant 6). The flag word fills the
	// high 32 bits of offset_flags, so the low 32 bits are the only part of
	// the offset field the flags do not occupy; we enforce that they are
	// zero rather than silently ignoring whatever value they hold, so a
	// non-canonical record 0 is rejected instead of misread.
	if uint32(rec0.offsetFlags) != 0 {
		return nil, fmt.Errorf("revlog: %q: revision 0 has a non-zero data offset field: %w", path, ErrCorruptIndex)
	}

	rl = &Revlog{
		index:        index,
		inline:       flags&flagInline != 0,
		generalDelta: flags&flagGeneralDelta != 0,
	}

	if !rl.inline {
		dataPath := strings.TrimSuffix(path, ".i") + ".d"

		data, dataErr := mmapfile.Open(dataPath)
		if dataErr != nil {
			return nil, fmt.Errorf("revlog: opening data file %q: %w", dataPath, dataErr)
		}

		rl.data = data

		defer func() {
			if err != nil {
				_ = rl.data.Close()
			}
		}()
	}

	if initErr := rl.init(); initErr != nil {
		return nil, initErr
	}

	return rl, nil
}

// Close releases the index and (if present) data file mappings.
func (rl *Revlog) Close() error {
	var err error

	if rl.data != nil {
		err = rl.data.Close()
	}

	if idxErr := rl.index.Close(); idxErr != nil && err == nil {
		err = idxErr
	}

	return err
}

// init builds the inline jump table (a single forward scan, §4.3's
// "init() / jump-table construction") or, in separate mode, does nothing:
// the record offset is always computable from the revno directly.
func (rl *Revlog) init() error {
	if !rl.inline {
		rl.ready = true
		return nil
	}

	var table []int64

	offset := int64(0)
	for {
		entry, err := rl.entryAt(offset, revnoUnknown)
		if err != nil {
			if errors.Is(err, ErrOutOfBounds) {
				return fmt.Errorf("revlog: inline scan at offset %d overshoots file end: %w: %w", offset, ErrCorruptIndex, err)
			}

			return err
		}

		table = append(table, offset)

		next := offset + recordSize + int64(entry.rec.compLen)

		switch {
		case next == rl.index.Len():
			rl.offsetTable = table
			rl.ready = true

			return nil
		case next <= offset || next > rl.index.Len():
			return fmt.Errorf("revlog: inline scan at offset %d overshoots file end: %w", offset, ErrCorruptIndex)
		default:
			offset = next
		}
	}
}

// Len returns the number of revisions in the revlog.
func (rl *Revlog) Len() int {
	if rl.inline {
		return len(rl.offsetTable)
	}

	return int(rl.index.Len() / recordSize)
}

// Index returns the entry for the given revision number.
func (rl *Revlog) Index(revno int) (*Entry, error) {
	if revno < 0 {
		return nil, fmt.Errorf("revlog: revno %d is negative: %w", revno, ErrOutOfBounds)
	}

	if rl.inline {
		if revno >= len(rl.offsetTable) {
			return nil, fmt.Errorf("revlog: revno %d >= length %d: %w", revno, len(rl.offsetTable), ErrOutOfBounds)
		}

		return rl.entryAt(rl.offsetTable[revno], revno)
	}

	offset := int64(revno) * recordSize
	if offset+recordSize > rl.index.Len() {
		return nil, fmt.Errorf("revlog: revno %d out of bounds: %w", revno, ErrOutOfBounds)
	}

	return rl.entryAt(offset, revno)
}

// revnoUnknown is the sentinel passed to entryAt when the caller cannot
// supply the revno up front (only happens mid-scan in init(), §4.3.4).
const revnoUnknown = -1

// entryAt decodes the record at byte offset in the index file and binds it
// to its compressed payload slice.
//
// knownRevno, if not revnoUnknown, is used as-is (the caller already knows
// it, e.g. from the jump table or from i*recordSize). Otherwise the revno
// is resolved from the offset: offset/recordSize in separate mode, or a
// binary search of the (already-built) jump table in inline mode. During
// inline init(), the jump table isn't built yet, so resolution falls back
// to the revnoUnknown sentinel itself -- that's fine, because init() never
// needs an entry's own revno, only its compLen to find the next offset.
func (rl *Revlog) entryAt(offset int64, knownRevno int) (*Entry, error) {
	if !rl.inline && offset%recordSize != 0 {
		return nil, fmt.Errorf("revlog: offset %d is not record-aligned: %w", offset, ErrCorruptIndex)
	}

	buf, err := rl.index.View(offset, recordSize)
	if err != nil {
		return nil, fmt.Errorf("revlog: record at offset %d: %w: %w", offset, ErrOutOfBounds, err)
	}

	rec := decodeRecord(buf)

	payload, err := rl.payloadSlice(offset, rec)
	if err != nil {
		return nil, fmt.Errorf("revlog: payload of record at offset %d: %w: %w", offset, ErrOutOfBounds, err)
	}

	revno := knownRevno
	if revno == revnoUnknown {
		revno, err = rl.revnoFromOffset(offset)
		if err != nil {
			return nil, err
		}
	}

	if !rec.trailingZero() {
		return nil, fmt.Errorf("revlog: revno %d: node id trailing bytes are non-zero: %w", revno, ErrCorruptIndex)
	}

	// base_rev must be -1 (legacy "no delta" sentinel), equal to revno
	// (fulltext, in either the general-delta or legacy chain-termination
	// sense), or an earlier revision. Anything else -- forward or
	// self-inconsistent references -- is rejected here rather than left
	// for the delta-chain walker to loop on. parent_1/parent_2 carry the
	// same {-1} ∪ [0, revno) constraint (invariant 3) and are checked
	// the same way. Both checks are skipped mid-inline-scan, when revno
	// isn't known yet and isn't needed (see the doc comment above).
	if revno != revnoUnknown {
		if base := rec.baseRev; base != -1 && base != int32(revno) && (base < 0 || base >= int32(revno)) {
			return nil, fmt.Errorf("revlog: revno %d: base_rev %d is not an earlier revision: %w", revno, base, ErrCorruptIndex)
		}

		for _, parent := range [2]int32{rec.parent1, rec.parent2} {
			if parent != -1 && (parent < 0 || int(parent) >= revno) {
				return nil, fmt.Errorf("revlog: revno %d: parent %d is not an earlier revision: %w", revno, parent, ErrCorruptIndex)
			}
		}
	}

	if len(payload) > 0 {
		switch payload[0] {
		case framingLiteralZero, framingLiteralU, framingZlib:
			// ok
		default:
			return nil, fmt.Errorf("revlog: revno %d: unrecognized framing byte 0x%02x: %w", revno, payload[0], ErrCorruptIndex)
		}
	}

	return &Entry{
		revlog:     rl,
		revno:      revno,
		rec:        rec,
		byteOffset: offset,
		payload:    payload,
	}, nil
}

// payloadSlice locates the compressed payload for a record: immediately
// following the record in inline mode, or in the sibling data file at the
// record's decoded data offset in separate mode (0 for revision 0, whose
// low 48 bits encode flags instead of an offset; see §3 invariant 6).
func (rl *Revlog) payloadSlice(offset int64, rec record) ([]byte, error) {
	if rl.inline {
		return rl.index.View(offset+recordSize, int64(rec.compLen))
	}

	dataOffset := int64(0)
	if offset != 0 {
		dataOffset = int64(rec.dataOffset())
	}

	return rl.data.View(dataOffset, int64(rec.compLen))
}

// revnoFromOffset resolves a revno from a byte offset when the caller
// didn't already know it. See the entryAt doc comment for when this is
// (and isn't) reachable during initialization.
func (rl *Revlog) revnoFromOffset(offset int64) (int, error) {
	if !rl.inline {
		return int(offset / recordSize), nil
	}

	if !rl.ready {
		// Mid-scan: the jump table doesn't exist yet. The only caller in
		// this state is init() itself, which never uses the returned
		// revno (see entryAt's doc comment), so the sentinel is correct
		// and final here, not a placeholder error.
		return revnoUnknown, nil
	}

	lo, hi := 0, len(rl.offsetTable)
	for lo < hi {
		mid := (lo + hi) / 2
		if rl.offsetTable[mid] < offset {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	if lo >= len(rl.offsetTable) || rl.offsetTable[lo] != offset {
		return 0, fmt.Errorf("revlog: no revision at offset %d: %w", offset, ErrCorruptIndex)
	}

	return lo, nil
}

// Iterator walks a Revlog's revisions in file order (which is revno
// order). Obtain one with [Revlog.Iter].
type Iterator struct {
	rl      *Revlog
	entry   *Entry
	started bool
	done    bool
	err     error
}

// Iter returns a fresh [Iterator] positioned before the first revision.
func (rl *Revlog) Iter() *Iterator {
	return &Iterator{rl: rl}
}

// Next advances the iterator and reports whether a new entry is available.
// On false, check [Iterator.Err] to distinguish natural exhaustion from a
// structural error.
func (it *Iterator) Next() bool {
	if it.done {
		return false
	}

	var offset int64

	var revno int

	if !it.started {
		it.started = true
		offset, revno = 0, 0
	} else {
		prev := it.entry

		var next int64
		if it.rl.inline {
			next = prev.byteOffset + recordSize + int64(prev.rec.compLen)
		} else {
			next = prev.byteOffset + recordSize
		}

		if next == it.rl.index.Len() {
			it.done = true
			return false
		}

		offset, revno = next, prev.revno+1
	}

	entry, err := it.rl.entryAt(offset, revno)
	if err != nil {
		it.err = err
		it.done = true

		return false
	}

	it.entry = entry

	return true
}

// Entry returns the entry produced by the most recent call to Next.
func (it *Iterator) Entry() *Entry {
	return it.entry
}

// Err returns the error, if any, that stopped iteration early.
func (it *Iterator) Err() error {
	return it.err
}
