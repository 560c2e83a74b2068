package revlog

import "errors"

// Sentinel errors returned by this package.
//
// Callers classify errors with [errors.Is]; implementations wrap these
// with [fmt.Errorf]'s %w verb to attach context.
var (
	// ErrBadName indicates the path passed to [Open] does not end in ".i".
	ErrBadName = errors.New("revlog: path must end in .i")

	// ErrUnsupportedVersion indicates the NG flag bit is clear on revision
	// 0. Only the NG ("next-generation") revlog layout is supported; the
	// legacy version 0 layout is out of scope.
	ErrUnsupportedVersion = errors.New("revlog: unsupported version (NG flag not set)")

	// ErrCorruptIndex indicates a size, alignment, or invariant violation in
	// the index: misaligned record offset in separate mode, non-zero
	// trailing bytes of a node id, a payload framing byte outside
	// {0x00, 'u', 'x'}, an inline scan that overshoots the file end, or a
	// base_rev that refers to a later or otherwise invalid revision.
	ErrCorruptIndex = errors.New("revlog: corrupt index")

	// ErrOutOfBounds indicates a revision number is out of range, or a
	// computed byte offset exceeds the bounds of the mapped file.
	ErrOutOfBounds = errors.New("revlog: out of bounds")

	// ErrBadPatch indicates a patch stream is truncated, contains
	// non-monotone or overlapping hunks, or has an out-of-range offset.
	ErrBadPatch = errors.New("revlog: bad patch")
)
