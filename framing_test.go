package revlog

import (
	"bytes"
	"compress/zlib"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_DecodeFrame_Returns_Empty_When_Frame_Empty(t *testing.T) {
	t.Parallel()

	out, err := decodeFrame(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func Test_DecodeFrame_Includes_Discriminator_Byte_For_LiteralZero(t *testing.T) {
	t.Parallel()

	out, err := decodeFrame([]byte{0x00, 'h', 'i'})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 'h', 'i'}, out)
}

func Test_DecodeFrame_Excludes_Discriminator_Byte_For_LiteralU(t *testing.T) {
	t.Parallel()

	out, err := decodeFrame([]byte{'u', 'h', 'i'})
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), out)
}

func Test_DecodeFrame_Inflates_ZlibStream(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	zw := zlib.NewWriter(&buf)
	_, err := zw.Write([]byte("hello, revlog"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	out, err := decodeFrame(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "hello, revlog", string(out))
}

func Test_DecodeFrame_Returns_ErrCorruptIndex_When_Discriminator_Unknown(t *testing.T) {
	t.Parallel()

	_, err := decodeFrame([]byte{'Z', 'x'})
	require.ErrorIs(t, err, ErrCorruptIndex)
}

func Test_DecodeFrame_Returns_ErrCorruptIndex_When_Zlib_Stream_Malformed(t *testing.T) {
	t.Parallel()

	_, err := decodeFrame([]byte{'x', 0x00, 0x01, 0x02})
	require.ErrorIs(t, err, ErrCorruptIndex)
}
