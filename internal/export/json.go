package export

import (
	"encoding/json"
	"io"

	"github.com/piwi3910/woodcut/internal/model"
)

// ExportJSON writes the result as indented JSON: sheets with their stock and
// pieces, unplaced pieces, area totals and waste percentage.
func ExportJSON(w io.Writer, result model.PackingResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
