// Package cutlist runs the packing engine for a project and writes the
// requested exports.
package cutlist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/piwi3910/woodcut/internal/engine"
	"github.com/piwi3910/woodcut/internal/export"
	"github.com/piwi3910/woodcut/internal/importer"
	"github.com/piwi3910/woodcut/internal/model"
	"github.com/piwi3910/woodcut/internal/project"
	"github.com/piwi3910/woodcut/internal/units"
	"go.uber.org/zap"
)

// DefaultEstimateWaste is the waste factor, in percent, for sheet estimates.
const DefaultEstimateWaste = 15.0

// ErrImport is returned when a parts file has row errors.
var ErrImport = errors.New("import failed")

// Request describes one packing run. Parts wins over PartsFile.
type Request struct {
	Name      string
	Parts     []model.Part
	PartsFile string
	Stock     model.StockSpec
	Kerf      float64
	Units     units.Unit
	OutputDir string
	Formats   []string
	// Inventory, when set, is the offcut inventory file that detected offcuts are added to.
	Inventory string
}

// Report is the outcome of Run.
type Report struct {
	Parts      []model.Part
	Result     model.PackingResult
	Offcuts    []model.Offcut
	OffcutArea float64
	Estimate   model.SheetEstimate
	// InventoryMatches lists, per unplaced piece ID, the saved offcuts it
	// could be cut from instead.
	InventoryMatches map[string][]model.Offcut
	Files            []string
	Warnings         []string
}

// Service orchestrates import, packing and export.
type Service struct {
	logger *zap.Logger
	cfg    project.AppConfig
}

// New creates a service. A nil logger is replaced with a no-op logger.
func New(logger *zap.Logger, cfg project.AppConfig) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, cfg: cfg}
}

// NewRequest fills a request from the project and the service defaults.
func (s *Service) NewRequest(p model.Project) Request {
	u, err := units.Parse(p.Units)
	if err != nil {
		u = units.Inches
	}
	return Request{
		Name:      p.Name,
		Parts:     p.Parts,
		Stock:     p.Stock,
		Kerf:      p.Kerf,
		Units:     u,
		OutputDir: s.cfg.OutputDir,
		Formats:   s.cfg.Formats,
	}
}

// Run resolves the parts, packs them and writes every requested export.
// The packing runs on its own goroutine; Run returns ctx.Err() if the
// context ends first.
func (s *Service) Run(ctx context.Context, req Request) (Report, error) {
	var report Report

	parts, warnings, err := s.resolveParts(req)
	if err != nil {
		return report, err
	}
	report.Parts = parts
	report.Warnings = append(report.Warnings, warnings...)

	s.logger.Info("packing",
		zap.String("op", "cutlist.Run"),
		zap.Int("parts", len(parts)),
		zap.Float64("stock_length", req.Stock.Length),
		zap.Float64("stock_width", req.Stock.Width),
		zap.Float64("kerf", req.Kerf),
	)

	result, err := runAsync(ctx, func() (model.PackingResult, error) {
		return engine.Pack(parts, req.Stock, req.Kerf)
	})
	if err != nil {
		s.logger.Error("packing failed", zap.String("op", "cutlist.Run"), zap.Error(err))
		return report, err
	}
	report.Result = result

	s.logger.Info("packed",
		zap.String("op", "cutlist.Run"),
		zap.Int("sheets", result.SheetCount()),
		zap.Int("placed", result.PlacedCount()),
		zap.Int("unplaced", len(result.Unplaced)),
		zap.Float64("waste_pct", result.WastePercentage),
	)
	for _, u := range result.Unplaced {
		s.logger.Warn("piece does not fit stock",
			zap.String("op", "cutlist.Run"),
			zap.String("piece", u.PieceID),
			zap.Float64("length", u.Length),
			zap.Float64("width", u.Width),
		)
	}

	report.Estimate = model.EstimateSheets(parts, req.Stock, req.Kerf, DefaultEstimateWaste)
	report.Offcuts = model.WithSource(model.DetectAllOffcuts(result, s.cfg.Offcuts), req.Name)
	report.OffcutArea = model.TotalOffcutArea(report.Offcuts)

	if req.Inventory != "" {
		inv, err := project.LoadInventory(req.Inventory)
		if err != nil {
			return report, fmt.Errorf("load offcut inventory: %w", err)
		}
		report.InventoryMatches = matchUnplaced(inv, req.Stock, result.Unplaced)
		for id, matches := range report.InventoryMatches {
			s.logger.Info("unplaced piece fits a saved offcut",
				zap.String("op", "cutlist.Run"),
				zap.String("piece", id),
				zap.String("offcut", matches[0].ID),
				zap.Int("matches", len(matches)),
			)
		}
	}

	if req.Inventory != "" && len(report.Offcuts) > 0 {
		added, err := project.AddOffcuts(req.Inventory, report.Offcuts)
		if err != nil {
			return report, fmt.Errorf("update offcut inventory: %w", err)
		}
		s.logger.Info("offcuts saved",
			zap.String("op", "cutlist.Run"),
			zap.String("path", req.Inventory),
			zap.Int("added", added),
		)
	}

	files, skipped, err := s.writeExports(req, result)
	report.Files = files
	report.Warnings = append(report.Warnings, skipped...)
	if err != nil {
		return report, err
	}
	return report, nil
}

// ResolveParts returns the request's parts, importing PartsFile when no
// parts are given.
func (s *Service) ResolveParts(req Request) ([]model.Part, error) {
	parts, _, err := s.resolveParts(req)
	return parts, err
}

// matchUnplaced finds inventory offcuts of the stock's material and
// thickness for each unplaced piece. Pieces without a match are left out.
func matchUnplaced(inv project.Inventory, stock model.StockSpec, unplaced []model.UnplacedPiece) map[string][]model.Offcut {
	matches := make(map[string][]model.Offcut)
	for _, u := range unplaced {
		if m := inv.Matching(stock.Material, stock.Thickness, u.Length, u.Width); len(m) > 0 {
			matches[u.PieceID] = m
		}
	}
	return matches
}

func (s *Service) resolveParts(req Request) ([]model.Part, []string, error) {
	if len(req.Parts) > 0 || req.PartsFile == "" {
		return req.Parts, nil, nil
	}

	imported := importer.Import(req.PartsFile)
	for _, w := range imported.Warnings {
		s.logger.Warn(w, zap.String("op", "cutlist.resolveParts"), zap.String("path", req.PartsFile))
	}
	if len(imported.Errors) > 0 {
		return nil, imported.Warnings, fmt.Errorf("%w: %s: %s", ErrImport, req.PartsFile, strings.Join(imported.Errors, "; "))
	}
	s.logger.Info("parts imported",
		zap.String("op", "cutlist.resolveParts"),
		zap.String("path", req.PartsFile),
		zap.Int("parts", len(imported.Parts)),
	)
	return imported.Parts, imported.Warnings, nil
}

// writeExports writes the requested formats in a fixed order. Formats that
// need sheets are skipped with a warning when nothing was placed.
func (s *Service) writeExports(req Request, result model.PackingResult) ([]string, []string, error) {
	if len(req.Formats) == 0 {
		return nil, nil, nil
	}
	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("create output directory: %w", err)
	}

	requested := make(map[string]bool, len(req.Formats))
	for _, f := range req.Formats {
		if !project.IsKnownFormat(f) {
			return nil, nil, fmt.Errorf("unknown export format %q", f)
		}
		requested[f] = true
	}

	base := fileBase(req.Name)
	title := "Cut List"
	if req.Name != "" {
		title += " - " + req.Name
	}

	var files, skipped []string
	for _, format := range project.KnownFormats {
		if !requested[format] {
			continue
		}
		path := filepath.Join(req.OutputDir, base+"."+format)
		if format == project.FormatLabels {
			path = filepath.Join(req.OutputDir, base+"-labels.pdf")
		}

		err := writeFormat(format, path, title, req.Units, result)
		if errors.Is(err, export.ErrNoSheets) {
			msg := fmt.Sprintf("skipped %s export: no sheets", format)
			s.logger.Warn(msg, zap.String("op", "cutlist.writeExports"))
			skipped = append(skipped, msg)
			continue
		}
		if err != nil {
			return files, skipped, fmt.Errorf("export %s: %w", format, err)
		}

		s.logger.Info("exported",
			zap.String("op", "cutlist.writeExports"),
			zap.String("format", format),
			zap.String("path", path),
		)
		files = append(files, path)
	}
	return files, skipped, nil
}

func writeFormat(format, path, title string, unit units.Unit, result model.PackingResult) error {
	switch format {
	case project.FormatPDF:
		return export.ExportPDF(path, result, unit)
	case project.FormatLabels:
		return export.ExportLabels(path, result, unit)
	case project.FormatPNG:
		return export.ExportPNG(path, result, export.DefaultPNGScale)
	case project.FormatDXF:
		return export.ExportDXF(path, result)
	case project.FormatXLSX:
		return export.ExportXLSX(path, result, unit)
	case project.FormatJSON:
		return writeFile(path, func(f *os.File) error { return export.ExportJSON(f, result) })
	case project.FormatSVG:
		return writeFile(path, func(f *os.File) error {
			return export.ExportSVG(f, result, title, export.DefaultSVGScale)
		})
	}
	return fmt.Errorf("unknown export format %q", format)
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// fileBase turns a project name into a file name stem. Letters and digits
// of any script are kept; a name with none of them becomes "cutlist".
func fileBase(name string) string {
	base := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			return r
		case r == ' ':
			return '-'
		}
		return -1
	}, strings.ToLower(strings.TrimSpace(name)))
	if strings.Trim(base, "-_") == "" {
		return "cutlist"
	}
	return base
}

// Compare packs the parts on every standard sheet size of the stock's
// material, or on the whole catalog for other materials, and returns the
// results with the index of the best one.
func (s *Service) Compare(ctx context.Context, parts []model.Part, stock model.StockSpec, kerf float64) ([]engine.ComparisonResult, int, error) {
	presets := model.PresetsForMaterial(stock.Material)
	if len(presets) == 0 {
		presets = model.StandardSheets
	}
	return s.compare(ctx, parts, engine.BuildStockScenarios(presets, stock.Thickness, kerf))
}

// CompareKerf packs the parts on the given stock with the current kerf, half
// of it and none.
func (s *Service) CompareKerf(ctx context.Context, parts []model.Part, stock model.StockSpec, kerf float64) ([]engine.ComparisonResult, int, error) {
	return s.compare(ctx, parts, engine.BuildKerfScenarios(stock, kerf))
}

func (s *Service) compare(ctx context.Context, parts []model.Part, scenarios []engine.ComparisonScenario) ([]engine.ComparisonResult, int, error) {
	results, err := runAsync(ctx, func() ([]engine.ComparisonResult, error) {
		return engine.CompareStocks(parts, scenarios)
	})
	if err != nil {
		return nil, -1, err
	}

	best := engine.BestComparison(results)
	if best >= 0 {
		s.logger.Info("stock comparison",
			zap.String("op", "cutlist.Compare"),
			zap.Int("scenarios", len(results)),
			zap.String("best", results[best].Scenario.Name),
			zap.Int("sheets", results[best].SheetsUsed),
		)
	}
	return results, best, nil
}

// Linear cuts the parts from boards of the given lengths. No lengths means
// the standard lumber lengths.
func (s *Service) Linear(ctx context.Context, parts []model.Part, lengths []float64, kerf float64) (engine.LinearResult, error) {
	if len(lengths) == 0 {
		lengths = model.StandardLumberLengths
	}
	result, err := runAsync(ctx, func() (engine.LinearResult, error) {
		return engine.PackLinear(parts, lengths, kerf)
	})
	if err != nil {
		return result, err
	}
	s.logger.Info("linear cut list",
		zap.String("op", "cutlist.Linear"),
		zap.Int("boards", len(result.Boards)),
		zap.Int("unplaced", len(result.Unplaced)),
		zap.Float64("waste_pct", result.WastePercentage),
	)
	return result, nil
}

type outcome[T any] struct {
	value T
	err   error
}

// runAsync runs fn on its own goroutine and waits for it or for ctx.
func runAsync[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	done := make(chan outcome[T], 1)
	go func() {
		v, err := fn()
		done <- outcome[T]{v, err}
	}()
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case out := <-done:
		return out.value, out.err
	}
}
