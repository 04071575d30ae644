package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novasql/internal/dberror"
	"github.com/tuannm99/novasql/internal/storage"
)

func tempFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "t.bin")
}

func TestCreateOpenRoundTrip(t *testing.T) {
	name := tempFile(t)
	require.NoError(t, storage.CreatePageFile(name))

	fh, err := storage.OpenPageFile(name)
	require.NoError(t, err)
	defer func() { _ = storage.ClosePageFile(fh) }()

	require.Equal(t, 1, fh.TotalNumPages)
	require.Equal(t, 0, fh.CurPagePos)

	want := make([]byte, storage.PageSize)
	for i := range want {
		want[i] = byte(i%10) + '0'
	}
	require.NoError(t, storage.WriteBlock(0, fh, want))

	got := make([]byte, storage.PageSize)
	require.NoError(t, storage.ReadFirstBlock(fh, got))
	require.Equal(t, want, got)
}

func TestEnsureCapacity(t *testing.T) {
	name := tempFile(t)
	require.NoError(t, storage.CreatePageFile(name))

	fh, err := storage.OpenPageFile(name)
	require.NoError(t, err)
	defer func() { _ = storage.ClosePageFile(fh) }()

	require.NoError(t, storage.EnsureCapacity(4, fh))
	require.Equal(t, 4, fh.TotalNumPages)

	buf := make([]byte, storage.PageSize)
	require.NoError(t, storage.ReadBlock(3, fh, buf))
	require.Equal(t, make([]byte, storage.PageSize), buf)
}

func TestReadNonExistingPage(t *testing.T) {
	name := tempFile(t)
	require.NoError(t, storage.CreatePageFile(name))

	fh, err := storage.OpenPageFile(name)
	require.NoError(t, err)
	defer func() { _ = storage.ClosePageFile(fh) }()

	buf := make([]byte, storage.PageSize)
	err = storage.ReadBlock(5, fh, buf)
	require.ErrorIs(t, err, dberror.ErrReadNonExistingPage)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := storage.OpenPageFile(filepath.Join(t.TempDir(), "missing.bin"))
	require.ErrorIs(t, err, dberror.ErrFileNotFound)
}

func TestWriteBlockAutoExtends(t *testing.T) {
	name := tempFile(t)
	require.NoError(t, storage.CreatePageFile(name))

	fh, err := storage.OpenPageFile(name)
	require.NoError(t, err)
	defer func() { _ = storage.ClosePageFile(fh) }()

	payload := make([]byte, storage.PageSize)
	payload[0] = 0xAB
	require.NoError(t, storage.WriteBlock(3, fh, payload))
	require.Equal(t, 4, fh.TotalNumPages)

	got := make([]byte, storage.PageSize)
	require.NoError(t, storage.ReadBlock(3, fh, got))
	require.Equal(t, payload, got)
}

func TestAppendEmptyBlockRestoresCursor(t *testing.T) {
	name := tempFile(t)
	require.NoError(t, storage.CreatePageFile(name))

	fh, err := storage.OpenPageFile(name)
	require.NoError(t, err)
	defer func() { _ = storage.ClosePageFile(fh) }()

	fh.CurPagePos = 0
	require.NoError(t, storage.AppendEmptyBlock(fh))
	require.Equal(t, 2, fh.TotalNumPages)
	require.Equal(t, 0, fh.CurPagePos)
}
