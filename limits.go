package revlog

// Hardcoded implementation limits.
//
// These exist to keep a malformed or adversarial file from turning a
// reader into an unbounded loop or allocation; they are not part of the
// on-disk format.
const (
	// recordSize is the fixed size in bytes of one index record (§3).
	recordSize = 64

	// maxDeltaChainLength bounds how many links of a delta chain Text
	// walks before giving up. A well-formed revlog never approaches this;
	// it exists only so a cyclic or forward-pointing base_rev (which
	// Revlog.entryAt already rejects) cannot turn Text into an infinite
	// loop if that validation is ever bypassed.
	maxDeltaChainLength = 1 << 20
)
