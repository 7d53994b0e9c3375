package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/piwi3910/woodcut/internal/model"
)

// Inventory is the saved list of reusable offcuts.
type Inventory struct {
	Offcuts []model.Offcut `json:"offcuts"`
}

// DefaultInventoryPath returns ~/.woodcut/offcuts.json.
func DefaultInventoryPath() string {
	return filepath.Join(DefaultConfigDir(), "offcuts.json")
}

// SaveInventory writes the inventory to the specified JSON file.
// It creates parent directories if they do not exist.
func SaveInventory(path string, inv Inventory) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(inv, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadInventory reads the inventory. A missing file is an empty inventory.
func LoadInventory(path string) (Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Inventory{Offcuts: []model.Offcut{}}, nil
		}
		return Inventory{}, err
	}
	var inv Inventory
	if err := json.Unmarshal(data, &inv); err != nil {
		return Inventory{}, err
	}
	if inv.Offcuts == nil {
		inv.Offcuts = []model.Offcut{}
	}
	return inv, nil
}

// Merge appends offcuts not already in the inventory and returns how many
// were added. Offcuts are the same when their keys match, so rerunning a
// project does not add its remnants twice.
func (inv *Inventory) Merge(offcuts []model.Offcut) int {
	seen := make(map[string]bool, len(inv.Offcuts))
	for _, o := range inv.Offcuts {
		seen[o.Key()] = true
	}
	added := 0
	for _, o := range offcuts {
		if seen[o.Key()] {
			continue
		}
		inv.Offcuts = append(inv.Offcuts, o)
		seen[o.Key()] = true
		added++
	}
	return added
}

// Matching returns the offcuts of a material and thickness that could hold
// a piece of the given size in either orientation.
func (inv Inventory) Matching(material string, thickness, length, width float64) []model.Offcut {
	var out []model.Offcut
	for _, o := range inv.Offcuts {
		if o.Material != material || o.Thickness != thickness {
			continue
		}
		if (o.Length >= length && o.Width >= width) || (o.Length >= width && o.Width >= length) {
			out = append(out, o)
		}
	}
	return out
}

// AddOffcuts loads the inventory at path, merges the offcuts and saves it.
func AddOffcuts(path string, offcuts []model.Offcut) (int, error) {
	inv, err := LoadInventory(path)
	if err != nil {
		return 0, err
	}
	added := inv.Merge(offcuts)
	if err := SaveInventory(path, inv); err != nil {
		return 0, err
	}
	return added, nil
}
