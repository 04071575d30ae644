package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novasql/internal/catalog"
)

func TestAddLookupRoundTrip(t *testing.T) {
	dir := t.TempDir()
	reg, err := catalog.Open(dir)
	require.NoError(t, err)

	require.NoError(t, reg.Add("users", dir+"/users.tbl"))

	file, ok := reg.Lookup("users")
	require.True(t, ok)
	require.Equal(t, dir+"/users.tbl", file)
}

func TestAddRejectsDuplicate(t *testing.T) {
	dir := t.TempDir()
	reg, err := catalog.Open(dir)
	require.NoError(t, err)

	require.NoError(t, reg.Add("users", dir+"/users.tbl"))
	require.Error(t, reg.Add("users", dir+"/users2.tbl"))
}

func TestRemoveThenLookupMisses(t *testing.T) {
	dir := t.TempDir()
	reg, err := catalog.Open(dir)
	require.NoError(t, err)

	require.NoError(t, reg.Add("users", dir+"/users.tbl"))
	require.NoError(t, reg.Remove("users"))

	_, ok := reg.Lookup("users")
	require.False(t, ok)
}

func TestReopenPersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	reg, err := catalog.Open(dir)
	require.NoError(t, err)
	require.NoError(t, reg.Add("users", dir+"/users.tbl"))
	require.NoError(t, reg.Add("orders", dir+"/orders.tbl"))

	reopened, err := catalog.Open(dir)
	require.NoError(t, err)
	require.Len(t, reopened.List(), 2)

	file, ok := reopened.Lookup("orders")
	require.True(t, ok)
	require.Equal(t, dir+"/orders.tbl", file)
}
