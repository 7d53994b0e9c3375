package engine

import (
	"errors"
	"testing"

	"github.com/piwi3910/woodcut/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareStocks_ResultsInScenarioOrder(t *testing.T) {
	parts := []model.Part{part("P", 40, 20, 10)}
	scenarios := BuildStockScenarios(model.PresetsForMaterial("plywood"), 0.75, 0.125)
	require.Len(t, scenarios, 3)

	results, err := CompareStocks(parts, scenarios)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "plywood standard (96 x 48)", results[0].Scenario.Name)
	assert.Equal(t, 2, results[0].SheetsUsed)
	assert.Equal(t, 0, results[0].UnplacedCount)
	assert.Equal(t, 0.75, results[0].Result.Sheets[0].Stock.Thickness)

	assert.Equal(t, 5, results[1].SheetsUsed)
	assert.Equal(t, 10, results[2].SheetsUsed)

	assert.Equal(t, 0, BestComparison(results))
}

func TestCompareStocks_PropagatesInvalidInput(t *testing.T) {
	scenarios := []ComparisonScenario{{Name: "bad", Stock: model.StockSpec{Length: 0, Width: 48}}}
	_, err := CompareStocks([]model.Part{part("A", 10, 10, 1)}, scenarios)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Contains(t, err.Error(), `scenario "bad"`)
}

func TestBestComparison(t *testing.T) {
	tests := []struct {
		name    string
		results []ComparisonResult
		want    int
	}{
		{"empty", nil, -1},
		{"fewest unplaced wins over sheets", []ComparisonResult{
			{SheetsUsed: 1, UnplacedCount: 2, WastePercent: 5},
			{SheetsUsed: 3, UnplacedCount: 0, WastePercent: 40},
		}, 1},
		{"fewest sheets wins over waste", []ComparisonResult{
			{SheetsUsed: 3, WastePercent: 5},
			{SheetsUsed: 2, WastePercent: 30},
		}, 1},
		{"lowest waste breaks sheet ties", []ComparisonResult{
			{SheetsUsed: 2, WastePercent: 30},
			{SheetsUsed: 2, WastePercent: 10},
		}, 1},
		{"first wins full ties", []ComparisonResult{
			{SheetsUsed: 2, WastePercent: 10},
			{SheetsUsed: 2, WastePercent: 10},
		}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, BestComparison(tc.results))
		})
	}
}

func TestBuildKerfScenarios(t *testing.T) {
	scenarios := BuildKerfScenarios(plywood(), 0.125)
	require.Len(t, scenarios, 3)
	assert.Equal(t, "Current Settings", scenarios[0].Name)
	assert.Equal(t, 0.125, scenarios[0].Kerf)
	assert.Equal(t, "Kerf 0.0625 (half)", scenarios[1].Name)
	assert.Equal(t, 0.0625, scenarios[1].Kerf)
	assert.Equal(t, "No Kerf", scenarios[2].Name)
	assert.Equal(t, 0.0, scenarios[2].Kerf)

	assert.Len(t, BuildKerfScenarios(plywood(), 0), 1)
}
