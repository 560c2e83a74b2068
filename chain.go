package revlog

// DeltaChain lazily walks an entry's delta chain from the entry itself
// back to (and including) its base fulltext. Obtain one with
// [Entry.DeltaChain]; most callers want [Entry.Text] instead, which
// drives a DeltaChain to completion and replays the patches.
type DeltaChain struct {
	rl      *Revlog
	cur     *Entry // nil once exhausted
	payload []byte
	err     error
}

func newDeltaChain(start *Entry) *DeltaChain {
	return &DeltaChain{rl: start.revlog, cur: start}
}

// Next advances to the next link in the chain (base-ward) and reports
// whether a payload is available via [DeltaChain.Payload]. It returns
// false both on natural exhaustion (the base fulltext was the last link)
// and on error; use [DeltaChain.Err] to tell them apart.
func (c *DeltaChain) Next() bool {
	if c.cur == nil {
		return false
	}

	cur := c.cur
	c.payload = cur.payload

	nextRev := cur.EffectiveBaseRev()
	if nextRev == -1 || (!c.rl.generalDelta && nextRev == int32(cur.revno)) {
		c.cur = nil
		return true
	}

	next, err := c.rl.Index(int(nextRev))
	if err != nil {
		// The current payload is still valid and was already captured
		// above; surface the error on the call after this one returns
		// false, rather than discarding a link we already have.
		c.err = err
		c.cur = nil

		return true
	}

	c.cur = next

	return true
}

// Payload returns the compressed/framed payload produced by the most
// recent call to Next.
func (c *DeltaChain) Payload() []byte { return c.payload }

// Err returns the error, if any, that stopped the walk early.
func (c *DeltaChain) Err() error { return c.err }
