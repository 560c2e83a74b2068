package revlog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hgrevlog/revlog/internal/fixtures"
)

// A three-revision general-delta chain: rev 0 is a fulltext, rev 1 is a
// delta against rev 0, rev 2 is a delta against rev 1. Text()
// reconstructs each by walking the chain and replaying patches.
func generalDeltaChainSpec() fixtures.Spec {
	rev0 := "hello world"
	rev1 := "hello brave world" // insert "brave " at offset 6
	rev2 := "hello brave new world"

	patch1 := fixtures.EncodePatch(fixtures.Hunk{A: 6, B: 6, Data: []byte("brave ")})
	patch2 := fixtures.EncodePatch(fixtures.Hunk{A: 12, B: 12, Data: []byte("new ")})

	return fixtures.Spec{
		Inline:       true,
		GeneralDelta: true,
		Revisions: []fixtures.Revision{
			{Text: rev0, Parent1: -1, Parent2: -1},
			{Text: rev1, Parent1: 0, Parent2: -1, IsDelta: true, DeltaBase: 0, DeltaPatch: patch1},
			{Text: rev2, Parent1: 1, Parent2: -1, IsDelta: true, DeltaBase: 1, DeltaPatch: patch2},
		},
	}
}

func Test_Entry_Text_ReconstructsFulltext_By_ReplayingDeltaChain(t *testing.T) {
	t.Parallel()

	rl := openFixture(t, generalDeltaChainSpec())

	e, err := rl.Index(2)
	require.NoError(t, err)

	text, err := e.Text()
	require.NoError(t, err)
	assert.Equal(t, "hello brave new world", string(text))
}

func Test_Entry_Text_Of_MiddleRevision_Stops_At_ItsOwnBase(t *testing.T) {
	t.Parallel()

	rl := openFixture(t, generalDeltaChainSpec())

	e, err := rl.Index(1)
	require.NoError(t, err)

	text, err := e.Text()
	require.NoError(t, err)
	assert.Equal(t, "hello brave world", string(text))
}

func Test_Entry_EffectiveBaseRev_Reports_MinusOne_For_GeneralDelta_Fulltext(t *testing.T) {
	t.Parallel()

	rl := openFixture(t, generalDeltaChainSpec())

	e, err := rl.Index(0)
	require.NoError(t, err)
	assert.EqualValues(t, -1, e.EffectiveBaseRev())

	chain := e.DeltaChain()

	links := 0
	for chain.Next() {
		links++
	}

	require.NoError(t, chain.Err())
	assert.Equal(t, 1, links) // a fulltext's chain is itself, one link
}

func Test_Verify_Succeeds_For_GeneralDelta_Chain(t *testing.T) {
	t.Parallel()

	rl := openFixture(t, generalDeltaChainSpec())

	tally, err := rl.VerifyAll()
	require.NoError(t, err)
	assert.Equal(t, 3, tally.Good)
	assert.Zero(t, tally.Bad)
}

func Test_Entry_Parent2ID_Returns_NullID_When_NoSecondParent(t *testing.T) {
	t.Parallel()

	rl := openFixture(t, generalDeltaChainSpec())

	e, err := rl.Index(1)
	require.NoError(t, err)

	p2, err := e.Parent2ID()
	require.NoError(t, err)
	assert.Equal(t, [20]byte{}, p2)
}

// Scenario (S6): for a merge with lexicographically p1 > p2, the node id
// hashes p2 before p1. Revision 1's node id sorts above revision 0's, so
// declaring revision 1 as parent_1 gives p1 > p2.
func Test_NodeID_Sorts_ParentIDs_Lexicographically_Before_Hashing(t *testing.T) {
	t.Parallel()

	spec := fixtures.Spec{
		Inline:       true,
		GeneralDelta: true,
		Revisions: []fixtures.Revision{
			{Text: "zzzz parent candidate one", Parent1: -1, Parent2: -1},
			{Text: "aaaa parent candidate two", Parent1: -1, Parent2: -1},
			{Text: "merge revision", Parent1: 1, Parent2: 0},
		},
	}

	rl := openFixture(t, spec)

	tally, err := rl.VerifyAll()
	require.NoError(t, err)
	assert.Equal(t, 3, tally.Good)
}
