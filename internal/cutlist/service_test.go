package cutlist

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/piwi3910/woodcut/internal/engine"
	"github.com/piwi3910/woodcut/internal/model"
	"github.com/piwi3910/woodcut/internal/project"
	"github.com/piwi3910/woodcut/internal/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func bookcase() []model.Part {
	return []model.Part{
		{ID: "side", Label: "Side", Length: 72, Width: 11.25, Quantity: 2},
		{ID: "shelf", Label: "Shelf", Length: 34.5, Width: 11.25, Quantity: 4},
		{ID: "back", Label: "Back", Length: 72, Width: 36, Quantity: 1},
	}
}

func newService(t *testing.T) (*Service, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	return New(zap.New(core), project.DefaultAppConfig()), logs
}

func TestRun_PacksAndExports(t *testing.T) {
	svc, logs := newService(t)
	dir := t.TempDir()

	req := Request{
		Name:      "My Bookcase",
		Parts:     bookcase(),
		Stock:     model.DefaultStock(),
		Kerf:      0.125,
		Units:     units.Inches,
		OutputDir: dir,
		Formats:   []string{project.FormatXLSX, project.FormatJSON, project.FormatSVG, project.FormatPDF, project.FormatLabels, project.FormatDXF, project.FormatPNG},
	}

	report, err := svc.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 7, report.Result.PieceCount())
	assert.Empty(t, report.Result.Unplaced)
	assert.GreaterOrEqual(t, report.Result.SheetCount(), report.Estimate.SheetsNeededMin)

	want := []string{
		"my-bookcase.json", "my-bookcase.pdf", "my-bookcase-labels.pdf",
		"my-bookcase.svg", "my-bookcase.png", "my-bookcase.dxf", "my-bookcase.xlsx",
	}
	require.Len(t, report.Files, len(want))
	for i, name := range want {
		assert.Equal(t, filepath.Join(dir, name), report.Files[i])
		info, err := os.Stat(report.Files[i])
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0), name)
	}

	assert.Equal(t, 1, logs.FilterMessage("packed").Len())
	assert.Equal(t, len(want), logs.FilterMessage("exported").Len())
}

func TestRun_ImportsPartsFile(t *testing.T) {
	svc, _ := newService(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "parts.csv")
	require.NoError(t, os.WriteFile(path, []byte("Label,Length,Width\nShelf,30,12\nTop,36,12\n"), 0644))

	report, err := svc.Run(context.Background(), Request{
		PartsFile: path,
		Stock:     model.DefaultStock(),
		Kerf:      0.125,
		Units:     units.Inches,
		OutputDir: dir,
	})
	require.NoError(t, err)

	assert.Len(t, report.Parts, 2)
	assert.Equal(t, 2, report.Result.PlacedCount())
	assert.Contains(t, report.Warnings, "No quantity column, defaulting every part to 1")
	assert.Empty(t, report.Files)
}

func TestRun_ImportErrors(t *testing.T) {
	svc, _ := newService(t)
	path := filepath.Join(t.TempDir(), "parts.csv")
	require.NoError(t, os.WriteFile(path, []byte("Label,Length,Width,Qty\nShelf,abc,12,1\n"), 0644))

	_, err := svc.Run(context.Background(), Request{PartsFile: path, Stock: model.DefaultStock()})
	assert.ErrorIs(t, err, ErrImport)
	assert.ErrorContains(t, err, "Invalid length")
}

func TestRun_InvalidInput(t *testing.T) {
	svc, logs := newService(t)

	_, err := svc.Run(context.Background(), Request{
		Parts: bookcase(),
		Stock: model.StockSpec{Length: 0, Width: 48},
	})
	assert.ErrorIs(t, err, engine.ErrInvalidInput)
	assert.Equal(t, 1, logs.FilterMessage("packing failed").Len())
}

func TestRun_CancelledContext(t *testing.T) {
	svc, _ := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx, Request{Parts: bookcase(), Stock: model.DefaultStock()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_AllUnplacedSkipsSheetExports(t *testing.T) {
	svc, logs := newService(t)
	dir := t.TempDir()

	report, err := svc.Run(context.Background(), Request{
		Parts:     []model.Part{{ID: "huge", Length: 200, Width: 100, Quantity: 1}},
		Stock:     model.DefaultStock(),
		Units:     units.Inches,
		OutputDir: dir,
		Formats:   []string{project.FormatJSON, project.FormatPDF},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "cutlist.json")}, report.Files)
	assert.Contains(t, report.Warnings, "skipped pdf export: no sheets")
	assert.Equal(t, 1, logs.FilterMessage("piece does not fit stock").Len())
}

func TestRun_UnknownFormat(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Run(context.Background(), Request{
		Parts:     bookcase(),
		Stock:     model.DefaultStock(),
		OutputDir: t.TempDir(),
		Formats:   []string{"bmp"},
	})
	assert.ErrorContains(t, err, `unknown export format "bmp"`)
}

func TestRun_SavesOffcutsToInventory(t *testing.T) {
	svc, _ := newService(t)
	inv := filepath.Join(t.TempDir(), "offcuts.json")

	report, err := svc.Run(context.Background(), Request{
		Parts:     []model.Part{{ID: "a", Length: 24, Width: 12, Quantity: 1}},
		Stock:     model.DefaultStock(),
		Kerf:      0.125,
		Inventory: inv,
	})
	require.NoError(t, err)
	require.NotEmpty(t, report.Offcuts)

	saved, err := project.LoadInventory(inv)
	require.NoError(t, err)
	assert.Len(t, saved.Offcuts, len(report.Offcuts))
	assert.InDelta(t, model.TotalOffcutArea(report.Offcuts), report.OffcutArea, 1e-9)
}

func TestRun_RerunDoesNotDuplicateInventory(t *testing.T) {
	svc, _ := newService(t)
	inv := filepath.Join(t.TempDir(), "offcuts.json")
	req := Request{
		Name:      "Bookcase",
		Parts:     []model.Part{{ID: "a", Length: 24, Width: 12, Quantity: 1}},
		Stock:     model.DefaultStock(),
		Kerf:      0.125,
		Inventory: inv,
	}

	first, err := svc.Run(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, first.Offcuts)

	second, err := svc.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.Offcuts, second.Offcuts)

	saved, err := project.LoadInventory(inv)
	require.NoError(t, err)
	assert.Len(t, saved.Offcuts, len(first.Offcuts))
	for _, o := range saved.Offcuts {
		assert.Equal(t, "Bookcase", o.Source)
	}
}

func TestRun_ReportsInventoryMatchesForUnplaced(t *testing.T) {
	svc, _ := newService(t)
	inv := filepath.Join(t.TempDir(), "offcuts.json")
	stock := model.DefaultStock()
	big := model.Offcut{ID: "big", Material: stock.Material, Thickness: stock.Thickness, Length: 210, Width: 110}
	mdf := model.Offcut{ID: "mdf", Material: "mdf", Thickness: stock.Thickness, Length: 210, Width: 110}
	require.NoError(t, project.SaveInventory(inv, project.Inventory{Offcuts: []model.Offcut{big, mdf}}))

	report, err := svc.Run(context.Background(), Request{
		Parts:     []model.Part{{ID: "huge", Length: 200, Width: 100, Quantity: 1}},
		Stock:     stock,
		Inventory: inv,
	})
	require.NoError(t, err)

	require.Contains(t, report.InventoryMatches, "huge")
	require.Len(t, report.InventoryMatches["huge"], 1)
	assert.Equal(t, "big", report.InventoryMatches["huge"][0].ID)
}

func TestNewRequest(t *testing.T) {
	svc, _ := newService(t)
	p := model.NewProject()
	p.Name = "Desk"
	p.Units = "mm"
	p.Parts = bookcase()

	req := svc.NewRequest(p)
	assert.Equal(t, "Desk", req.Name)
	assert.Equal(t, units.Millimeters, req.Units)
	assert.Equal(t, p.Stock, req.Stock)
	assert.Equal(t, project.DefaultAppConfig().Formats, req.Formats)
}

func TestCompare(t *testing.T) {
	svc, logs := newService(t)

	stock := model.DefaultStock()
	stock.Thickness = 0.5
	results, best, err := svc.Compare(context.Background(), []model.Part{{ID: "P", Length: 40, Width: 20, Quantity: 10}}, stock, 0.125)
	require.NoError(t, err)
	require.Len(t, results, len(model.PresetsForMaterial("plywood")))
	assert.Equal(t, 0, best)
	assert.Equal(t, 0, results[best].UnplacedCount)
	for _, r := range results {
		assert.Equal(t, 0.5, r.Scenario.Stock.Thickness)
	}
	assert.Equal(t, 1, logs.FilterMessage("stock comparison").Len())
}

func TestCompare_UnknownMaterialUsesWholeCatalog(t *testing.T) {
	svc, _ := newService(t)
	stock := model.StockSpec{Length: 60, Width: 30, Material: "walnut", Thickness: 1}

	results, _, err := svc.Compare(context.Background(), []model.Part{{ID: "P", Length: 20, Width: 10, Quantity: 1}}, stock, 0)
	require.NoError(t, err)
	assert.Len(t, results, len(model.StandardSheets))
}

func TestCompareKerf(t *testing.T) {
	svc, _ := newService(t)

	// 24" squares: any kerf leaves room for three per 96x48 sheet, no kerf for eight.
	parts := []model.Part{{ID: "P", Length: 24, Width: 24, Quantity: 8}}
	results, best, err := svc.CompareKerf(context.Background(), parts, model.DefaultStock(), 0.125)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "Current Settings", results[0].Scenario.Name)
	assert.Equal(t, 3, results[0].SheetsUsed)
	assert.Equal(t, 3, results[1].SheetsUsed)
	assert.Equal(t, 2, best)
	assert.Equal(t, 0.0, results[best].Scenario.Kerf)
	assert.Equal(t, 1, results[best].SheetsUsed)
}

func TestLinear(t *testing.T) {
	svc, _ := newService(t)

	result, err := svc.Linear(context.Background(), []model.Part{{ID: "rail", Length: 30, Quantity: 3}}, []float64{96}, 0.125)
	require.NoError(t, err)
	assert.Len(t, result.Boards, 1)
	assert.Len(t, result.Boards[0].Cuts, 3)
}

func TestLinear_DefaultsToStandardLumber(t *testing.T) {
	svc, _ := newService(t)

	result, err := svc.Linear(context.Background(), []model.Part{{ID: "rail", Length: 30, Quantity: 1}}, nil, 0.125)
	require.NoError(t, err)
	require.Len(t, result.Boards, 1)
	assert.Equal(t, model.StandardLumberLengths[0], result.Boards[0].StockLength)
}

func TestRunAsync_ReturnsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	release := make(chan struct{})
	defer close(release)

	_, err := runAsync(ctx, func() (int, error) {
		<-release
		return 1, nil
	})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestFileBase(t *testing.T) {
	assert.Equal(t, "cutlist", fileBase(""))
	assert.Equal(t, "kitchen-cabinets-2", fileBase(" Kitchen Cabinets #2 "))
	assert.Equal(t, "棚", fileBase("棚"))
	assert.Equal(t, "étagère", fileBase("Étagère"))
	assert.Equal(t, "cutlist", fileBase("###"))
}
