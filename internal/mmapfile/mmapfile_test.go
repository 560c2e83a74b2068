package mmapfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hgrevlog/revlog/internal/mmapfile"
)

func writeTemp(t *testing.T, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "mapped.bin")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	return path
}

func Test_Open_Returns_File_With_Correct_Len(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, []byte("0123456789"))

	f, err := mmapfile.Open(path)
	require.NoError(t, err)
	defer f.Close()

	assert.EqualValues(t, 10, f.Len())
}

func Test_View_Returns_ExactSlice_Within_Bounds(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, []byte("0123456789"))

	f, err := mmapfile.Open(path)
	require.NoError(t, err)
	defer f.Close()

	view, err := f.View(3, 4)
	require.NoError(t, err)
	assert.Equal(t, "3456", string(view))
}

func Test_View_Returns_ErrOutOfBounds_When_Range_Exceeds_Length(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, []byte("short"))

	f, err := mmapfile.Open(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.View(0, 100)
	require.ErrorIs(t, err, mmapfile.ErrOutOfBounds)
}

func Test_View_Returns_ErrOutOfBounds_When_Offset_Negative(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, []byte("short"))

	f, err := mmapfile.Open(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.View(-1, 1)
	require.ErrorIs(t, err, mmapfile.ErrOutOfBounds)
}

func Test_Open_Succeeds_For_EmptyFile(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, nil)

	f, err := mmapfile.Open(path)
	require.NoError(t, err)
	defer f.Close()

	assert.EqualValues(t, 0, f.Len())
}

func Test_Close_Is_Safe_To_Call_On_Empty_File(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, nil)

	f, err := mmapfile.Open(path)
	require.NoError(t, err)

	assert.NoError(t, f.Close())
}

func Test_Open_Returns_Error_When_Path_Does_Not_Exist(t *testing.T) {
	t.Parallel()

	_, err := mmapfile.Open(filepath.Join(t.TempDir(), "missing.bin"))
	require.Error(t, err)
}
