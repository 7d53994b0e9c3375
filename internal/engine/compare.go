package engine

import (
	"fmt"

	"github.com/piwi3910/woodcut/internal/model"
)

// ComparisonScenario is a named stock and kerf combination to try.
type ComparisonScenario struct {
	Name  string
	Stock model.StockSpec
	Kerf  float64
}

// ComparisonResult holds the packing result and headline numbers for one scenario.
type ComparisonResult struct {
	Scenario      ComparisonScenario
	Result        model.PackingResult
	SheetsUsed    int
	WastePercent  float64
	UnplacedCount int
}

// CompareStocks packs the same parts once per scenario and returns the
// results in scenario order.
func CompareStocks(parts []model.Part, scenarios []ComparisonScenario) ([]ComparisonResult, error) {
	results := make([]ComparisonResult, 0, len(scenarios))
	for _, sc := range scenarios {
		result, err := Pack(parts, sc.Stock, sc.Kerf)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
		}
		results = append(results, ComparisonResult{
			Scenario:      sc,
			Result:        result,
			SheetsUsed:    result.SheetCount(),
			WastePercent:  result.WastePercentage,
			UnplacedCount: len(result.Unplaced),
		})
	}
	return results, nil
}

// BestComparison picks the result with the fewest unplaced pieces, then the
// fewest sheets, then the least waste. Earlier scenarios win ties.
// Returns -1 for an empty slice.
func BestComparison(results []ComparisonResult) int {
	best := -1
	for i, r := range results {
		if best < 0 {
			best = i
			continue
		}
		b := results[best]
		switch {
		case r.UnplacedCount != b.UnplacedCount:
			if r.UnplacedCount < b.UnplacedCount {
				best = i
			}
		case r.SheetsUsed != b.SheetsUsed:
			if r.SheetsUsed < b.SheetsUsed {
				best = i
			}
		case r.WastePercent < b.WastePercent:
			best = i
		}
	}
	return best
}

// BuildStockScenarios makes one scenario per preset at the given kerf.
func BuildStockScenarios(presets []model.StockPreset, thickness, kerf float64) []ComparisonScenario {
	scenarios := make([]ComparisonScenario, 0, len(presets))
	for _, p := range presets {
		scenarios = append(scenarios, ComparisonScenario{
			Name:  p.String(),
			Stock: p.ToStock(thickness),
			Kerf:  kerf,
		})
	}
	return scenarios
}

// BuildKerfScenarios varies the blade width around the current setup to
// show what a thinner blade would save.
func BuildKerfScenarios(stock model.StockSpec, kerf float64) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{Name: "Current Settings", Stock: stock, Kerf: kerf},
	}
	if kerf > 0 {
		scenarios = append(scenarios,
			ComparisonScenario{Name: fmt.Sprintf("Kerf %g (half)", kerf/2), Stock: stock, Kerf: kerf / 2},
			ComparisonScenario{Name: "No Kerf", Stock: stock, Kerf: 0},
		)
	}
	return scenarios
}
