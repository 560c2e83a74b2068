package revlog

import "encoding/binary"

// Flag bits within the 32-bit flag word (record.flags()), itself held in
// the high 32 bits of revision 0's offset_flags field (§3, §6).
const (
	flagNG           uint32 = 1 << 0
	flagInline       uint32 = 1 << 16
	flagGeneralDelta uint32 = 1 << 17
)

// Data framing discriminator: the first byte of a nonempty compressed
// payload (§6).
const (
	framingLiteralZero byte = 0x00
	framingLiteralU    byte = 'u'
	framingZlib        byte = 'x'
)

// record is a decoded 64-byte index record (§3). Fields that can hold the
// sentinel -1 (parent_1, parent_2, base_rev) are kept as signed, matching
// the on-disk sign-extension requirement noted in §9.
type record struct {
	offsetFlags uint64 // raw field; see flags() and dataOffset()
	compLen     int32
	uncompLen   int32
	baseRev     int32
	linkRev     int32
	parent1     int32
	parent2     int32
	nodeID      [32]byte // bytes [0:20] are the node id, [20:32] must be zero
}

// decodeRecord decodes the 64-byte big-endian record at the start of buf.
// buf must be at least recordSize bytes; callers get that guarantee from
// mmapfile.File.View.
func decodeRecord(buf []byte) record {
	_ = buf[recordSize-1] // bounds check hint, mirrors the rest of the codec

	var r record
	r.offsetFlags = binary.BigEndian.Uint64(buf[0:8])
	r.compLen = int32(binary.BigEndian.Uint32(buf[8:12]))
	r.uncompLen = int32(binary.BigEndian.Uint32(buf[12:16]))
	r.baseRev = int32(binary.BigEndian.Uint32(buf[16:20]))
	r.linkRev = int32(binary.BigEndian.Uint32(buf[20:24]))
	r.parent1 = int32(binary.BigEndian.Uint32(buf[24:28]))
	r.parent2 = int32(binary.BigEndian.Uint32(buf[28:32]))
	copy(r.nodeID[:], buf[32:64])

	return r
}

// flags returns the 32-bit flag word occupying the high 32 bits of
// offset_flags. It is only meaningful when decoded from revision 0; other
// records carry zero in this position (§3).
func (r record) flags() uint32 {
	return uint32(r.offsetFlags >> 32)
}

// dataOffset returns the low 48 bits of offset_flags: the byte offset of
// this revision's data, meaningful on every record except revision 0. On
// revision 0 the low 16 bits of the flag word (including NG) fall inside
// these 48 bits, so the raw value is non-zero there; it is never used as an
// offset (see Revlog.payloadSlice and Entry.Offset for the rev-0 special
// case, §3 invariant 6).
func (r record) dataOffset() uint64 {
	return r.offsetFlags & 0x0000_FFFF_FFFF_FFFF
}

// nodeIDBytes returns the leading 20 bytes of the stored node id.
func (r record) nodeIDBytes() [20]byte {
	var id [20]byte
	copy(id[:], r.nodeID[:20])

	return id
}

// trailingZero reports whether nodeID[20:32] is all zero, per invariant 1.
func (r record) trailingZero() bool {
	for _, b := range r.nodeID[20:32] {
		if b != 0 {
			return false
		}
	}

	return true
}
