package revlog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hgrevlog/revlog/internal/fixtures"
)

// In legacy (non-general-delta) mode, a chain terminates when base_rev
// equals the revision's own revno -- the same bit pattern general-delta
// mode also uses for "I am a fulltext", but here EffectiveBaseRev returns
// base_rev unchanged and DeltaChain.Next itself recognizes the end (§4.4).
func Test_DeltaChain_Terminates_When_LegacyBaseRev_Equals_Revno(t *testing.T) {
	t.Parallel()

	rev0 := "legacy base text"
	rev1 := "legacy base text, extended"

	patch := fixtures.EncodePatch(fixtures.Hunk{A: uint32(len(rev0)), B: uint32(len(rev0)), Data: []byte(", extended")})

	spec := fixtures.Spec{
		Inline:       true,
		GeneralDelta: false,
		Revisions: []fixtures.Revision{
			{Text: rev0, Parent1: -1, Parent2: -1},
			{Text: rev1, Parent1: 0, Parent2: -1, IsDelta: true, DeltaBase: 0, DeltaPatch: patch},
		},
	}

	rl := openFixture(t, spec)

	e, err := rl.Index(1)
	require.NoError(t, err)

	text, err := e.Text()
	require.NoError(t, err)
	assert.Equal(t, rev1, string(text))

	tally, err := rl.VerifyAll()
	require.NoError(t, err)
	assert.Equal(t, 2, tally.Good)
}

func Test_DeltaChain_Payload_Returns_CompressedBytes_Of_VisitedEntry(t *testing.T) {
	t.Parallel()

	spec := fixtures.Spec{
		Inline:       true,
		GeneralDelta: true,
		Revisions: []fixtures.Revision{
			{Text: "base", Parent1: -1, Parent2: -1},
		},
	}

	rl := openFixture(t, spec)

	e, err := rl.Index(0)
	require.NoError(t, err)

	chain := e.DeltaChain()
	require.True(t, chain.Next())
	assert.Equal(t, e.Payload(), chain.Payload())
	require.False(t, chain.Next())
	require.NoError(t, chain.Err())
}
