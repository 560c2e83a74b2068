// Package mmapfile provides a read-only memory-mapped file with
// bounds-checked, zero-copy byte access.
//
// A File must not outlive the lifetime implied by its Close call, and the
// backing path must not be truncated or rewritten while mapped - both are
// the same append-only discipline Mercurial itself relies on for revlogs.
// Violating it manifests as a platform bus fault, not a Go panic; this
// package does not and cannot guard against that.
package mmapfile

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// ErrOutOfBounds is returned when a requested view would read past the end
// of the mapped file, or when offset/length are negative.
var ErrOutOfBounds = errors.New("mmapfile: out of bounds")

// File is a read-only mapping of a single file's full contents.
//
// The zero value is not usable; obtain a File via Open.
type File struct {
	data []byte // mmap'd region; length is the rounded-up map length
	size int64  // authoritative file length, distinct from len(data)
}

// Open maps path read-only for its full length.
//
// The file length (not the mmap length, which platforms may round up to a
// page boundary) is the bound enforced by View and is returned by Len.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmapfile: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("mmapfile: stat %s: %w", path, err)
	}

	size := info.Size()
	if size == 0 {
		// A zero-length mapping is rejected by mmap on most platforms; an
		// empty revlog index is never valid anyway (it must contain at
		// least the flags word of revision 0), so callers always fail on
		// this before relying on zero-length semantics.
		return &File{data: nil, size: 0}, nil
	}

	if size < 0 || uint64(size) > uint64(^uint(0)>>1) {
		return nil, fmt.Errorf("mmapfile: %s: size %d out of range: %w", path, size, ErrOutOfBounds)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmapfile: mmap %s: %w", path, err)
	}

	return &File{data: data, size: size}, nil
}

// Close unmaps the file. It is safe to call on a zero-length File.
func (f *File) Close() error {
	if f.data == nil {
		return nil
	}

	data := f.data
	f.data = nil

	return unix.Munmap(data)
}

// Len returns the file length in bytes. This is the authoritative bound for
// View, not the (possibly page-rounded) length of the underlying mapping.
func (f *File) Len() int64 {
	return f.size
}

// View returns a borrowed, zero-copy slice over [offset, offset+length) of
// the mapped file. The returned slice aliases the mapping and is valid only
// for the lifetime of f.
func (f *File) View(offset, length int64) ([]byte, error) {
	if offset < 0 || length < 0 {
		return nil, fmt.Errorf("mmapfile: negative offset=%d length=%d: %w", offset, length, ErrOutOfBounds)
	}

	end := offset + length
	if end < offset || end > f.size {
		return nil, fmt.Errorf("mmapfile: view [%d:%d) exceeds length %d: %w", offset, end, f.size, ErrOutOfBounds)
	}

	return f.data[offset:end], nil
}
