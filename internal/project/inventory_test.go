package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/woodcut/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func offcut(id string, l, w float64) model.Offcut {
	return model.Offcut{ID: id, Material: "plywood", Thickness: 0.75, Length: l, Width: w}
}

func TestLoadInventoryMissingFile(t *testing.T) {
	inv, err := LoadInventory(filepath.Join(t.TempDir(), "offcuts.json"))
	require.NoError(t, err)
	assert.NotNil(t, inv.Offcuts)
	assert.Empty(t, inv.Offcuts)
}

func TestSaveAndLoadInventory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "offcuts.json")
	inv := Inventory{Offcuts: []model.Offcut{offcut("a", 48, 24), offcut("b", 30, 12)}}

	require.NoError(t, SaveInventory(path, inv))
	loaded, err := LoadInventory(path)
	require.NoError(t, err)
	assert.Equal(t, inv, loaded)
}

func TestLoadInventoryCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offcuts.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err := LoadInventory(path)
	assert.Error(t, err)
}

func TestInventoryMergeSkipsDuplicates(t *testing.T) {
	inv := Inventory{Offcuts: []model.Offcut{offcut("a", 48, 24)}}
	added := inv.Merge([]model.Offcut{offcut("x", 48, 24), offcut("b", 30, 12), offcut("c", 30, 12)})

	assert.Equal(t, 1, added)
	require.Len(t, inv.Offcuts, 2)
	assert.Equal(t, "a", inv.Offcuts[0].ID)
	assert.Equal(t, "b", inv.Offcuts[1].ID)
}

func TestInventoryMergeKeepsOtherSources(t *testing.T) {
	desk := offcut("a", 48, 24)
	desk.Source = "Desk"
	inv := Inventory{Offcuts: []model.Offcut{offcut("a", 48, 24)}}

	assert.Equal(t, 1, inv.Merge([]model.Offcut{desk}))
	assert.Len(t, inv.Offcuts, 2)
}

func TestDefaultInventoryPath(t *testing.T) {
	path := DefaultInventoryPath()
	assert.Equal(t, "offcuts.json", filepath.Base(path))
	assert.Equal(t, DefaultConfigDir(), filepath.Dir(path))
}

func TestInventoryMatching(t *testing.T) {
	mdf := offcut("m", 60, 30)
	mdf.Material = "mdf"
	inv := Inventory{Offcuts: []model.Offcut{offcut("a", 48, 24), offcut("b", 30, 12), mdf}}

	got := inv.Matching("plywood", 0.75, 20, 40)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)

	assert.Empty(t, inv.Matching("plywood", 0.5, 10, 10))
}

func TestAddOffcuts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offcuts.json")

	added, err := AddOffcuts(path, []model.Offcut{offcut("a", 48, 24)})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	added, err = AddOffcuts(path, []model.Offcut{offcut("a", 48, 24), offcut("b", 30, 12)})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	inv, err := LoadInventory(path)
	require.NoError(t, err)
	assert.Len(t, inv.Offcuts, 2)
}
