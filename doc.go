// Package revlog reads Mercurial's revlog storage format: the append-only,
// delta-compressed, content-addressed file format that backs every
// versioned object (changelog, manifest, each tracked file) in a Mercurial
// repository.
//
// # Basic usage
//
//	rl, err := revlog.Open("00changelog.i")
//	if err != nil {
//	    // ErrBadName, ErrUnsupportedVersion, ErrCorruptIndex, or an I/O error
//	}
//	defer rl.Close()
//
//	entry, err := rl.Index(0)
//	text, err := entry.Text()       // replays the delta chain
//	ok, err := rl.Verify(entry)     // checks the stored node id
//
// # Scope
//
// This package is read-only: it does not write, lock, or mutate revlogs,
// and it does not implement the pre-NG (version 0) layout. See each type's
// doc comment for the invariants it enforces and the errors it returns.
//
// # Error handling
//
// Structural errors ([ErrBadName], [ErrUnsupportedVersion],
// [ErrCorruptIndex], [ErrOutOfBounds], [ErrBadPatch]) abort the operation
// that produced them. A node id mismatch is not structural: [Revlog.Verify]
// reports it as a bool, not an error, so that callers iterating a whole
// revlog can tally good/bad revisions instead of aborting on the first
// mismatch.
package revlog
