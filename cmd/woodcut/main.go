// woodcut packs rectangular parts onto sheet stock and writes cut diagrams,
// labels and spreadsheets for the shop.
//
// Build:
//
//	go build -o woodcut ./cmd/woodcut
//
// Example:
//
//	woodcut -parts parts.csv -kerf 0.125 -formats pdf,labels,xlsx -out build
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/piwi3910/woodcut/internal/cutlist"
	"github.com/piwi3910/woodcut/internal/engine"
	"github.com/piwi3910/woodcut/internal/logging"
	"github.com/piwi3910/woodcut/internal/model"
	"github.com/piwi3910/woodcut/internal/project"
	"github.com/piwi3910/woodcut/internal/units"
	"go.uber.org/zap"
)

type options struct {
	config       string
	project      string
	saveProject  string
	parts        string
	name         string
	stockLength  float64
	stockWidth   float64
	material     string
	thickness    float64
	kerf         float64
	units        string
	out          string
	formats      string
	preset       string
	offcuts      string
	useInventory bool
	logLevel     string
	compare      bool
	compareKerf  bool
	linear       bool
	boardLengths string
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.config, "config", project.DefaultConfigPath(), "path to configuration file")
	flag.StringVar(&o.project, "project", "", "project file to load ("+project.Extension+")")
	flag.StringVar(&o.saveProject, "save-project", "", "write the project and its result to this file")
	flag.StringVar(&o.parts, "parts", "", "CSV or Excel parts list")
	flag.StringVar(&o.name, "name", "", "project name, used for output file names")
	flag.Float64Var(&o.stockLength, "stock-length", 0, "stock sheet length override")
	flag.Float64Var(&o.stockWidth, "stock-width", 0, "stock sheet width override")
	flag.StringVar(&o.material, "material", "", "stock material override")
	flag.Float64Var(&o.thickness, "thickness", 0, "stock thickness override")
	flag.Float64Var(&o.kerf, "kerf", -1, "saw kerf override")
	flag.StringVar(&o.units, "units", "", "display units override (inches, mm, cm, feet)")
	flag.StringVar(&o.out, "out", "", "output directory override")
	flag.StringVar(&o.formats, "formats", "", "comma separated exports: "+strings.Join(project.KnownFormats, ","))
	flag.StringVar(&o.preset, "preset", "", "standard stock as material/name, e.g. plywood/half_sheet")
	flag.StringVar(&o.offcuts, "offcuts", "", "offcut inventory file to add detected offcuts to")
	flag.BoolVar(&o.useInventory, "use-inventory", false, "use the default offcut inventory ("+project.DefaultInventoryPath()+")")
	flag.StringVar(&o.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flag.BoolVar(&o.compare, "compare", false, "compare the parts across standard sheet sizes")
	flag.BoolVar(&o.compareKerf, "compare-kerf", false, "compare the current kerf with half and no kerf")
	flag.BoolVar(&o.linear, "linear", false, "cut the parts from boards instead of sheets")
	flag.StringVar(&o.boardLengths, "board-lengths", "", "comma separated board lengths for -linear (default standard lumber lengths)")
	flag.Parse()
	return o
}

func main() {
	opts := parseFlags()

	conf, err := project.LoadAppConfig(opts.config)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", opts.config, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, opts.logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, logger, conf, opts); err != nil {
		logger.Error("woodcut failed", zap.String("op", "main"), zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *zap.Logger, conf project.AppConfig, opts options) error {
	proj, err := loadProject(conf, opts)
	if err != nil {
		return err
	}
	if opts.project != "" {
		conf.AddRecentProject(opts.project)
		if err := project.SaveAppConfig(opts.config, conf); err != nil {
			logger.Warn("failed to record recent project", zap.String("op", "main"), zap.Error(err))
		}
	}

	svc := cutlist.New(logger, conf)
	req := svc.NewRequest(proj)
	req.PartsFile = opts.parts
	if opts.parts != "" {
		req.Parts = nil
	}
	if opts.out != "" {
		req.OutputDir = opts.out
	}
	if opts.formats != "" {
		req.Formats = splitList(opts.formats)
	}
	req.Inventory = opts.offcuts
	if req.Inventory == "" && opts.useInventory {
		req.Inventory = project.DefaultInventoryPath()
	}

	switch {
	case opts.linear:
		return runLinear(ctx, svc, req, opts.boardLengths)
	case opts.compare:
		return runCompare(ctx, svc, req, svc.Compare)
	case opts.compareKerf:
		return runCompare(ctx, svc, req, svc.CompareKerf)
	}

	report, err := svc.Run(ctx, req)
	if err != nil {
		return err
	}
	printReport(report, req.Units)

	if opts.saveProject != "" {
		proj.Parts = report.Parts
		proj.Units = string(req.Units)
		proj.Result = &report.Result
		if err := project.SaveProject(opts.saveProject, proj); err != nil {
			return fmt.Errorf("save project: %w", err)
		}
		logger.Info("project saved", zap.String("op", "main"), zap.String("path", opts.saveProject))
	}
	return nil
}

// loadProject starts from the project file, or from the configured defaults,
// and applies the command line overrides.
func loadProject(conf project.AppConfig, opts options) (model.Project, error) {
	proj := model.NewProject()
	conf.ApplyToProject(&proj)
	if opts.project != "" {
		loaded, err := project.LoadProject(opts.project)
		if err != nil {
			return proj, err
		}
		proj = loaded
	}

	if opts.name != "" {
		proj.Name = opts.name
	}
	if opts.preset != "" {
		preset, err := model.LookupPreset(opts.preset)
		if err != nil {
			return proj, err
		}
		proj.Stock = preset.ToStock(proj.Stock.Thickness)
	}
	if opts.stockLength > 0 {
		proj.Stock.Length = opts.stockLength
	}
	if opts.stockWidth > 0 {
		proj.Stock.Width = opts.stockWidth
	}
	if opts.material != "" {
		proj.Stock.Material = opts.material
	}
	if opts.thickness > 0 {
		proj.Stock.Thickness = opts.thickness
	}
	if opts.kerf >= 0 {
		proj.Kerf = opts.kerf
	}
	if opts.units != "" {
		u, err := units.Parse(opts.units)
		if err != nil {
			return proj, err
		}
		proj.Units = string(u)
	}
	if len(proj.Parts) == 0 && opts.parts == "" {
		return proj, fmt.Errorf("no parts: pass -parts or a -project with parts")
	}
	return proj, nil
}

func printReport(report cutlist.Report, u units.Unit) {
	r := report.Result
	fmt.Printf("Sheets used:     %d (estimate %d, %d with waste)\n",
		r.SheetCount(), report.Estimate.SheetsNeededMin, report.Estimate.SheetsWithWaste)
	fmt.Printf("Pieces placed:   %d\n", r.PlacedCount())
	fmt.Printf("Waste:           %.1f%%\n", r.WastePercentage)
	for i, sheet := range r.Sheets {
		fmt.Printf("  Sheet %d: %s, %d pieces, %.1f%% used\n", i+1,
			units.FormatDimensions(sheet.Stock.Length, sheet.Stock.Width, u),
			len(sheet.Placements), sheet.Efficiency())
	}
	if len(r.Unplaced) > 0 {
		fmt.Printf("WARNING: %d piece(s) do not fit the stock:\n", len(r.Unplaced))
		for _, p := range r.Unplaced {
			fmt.Printf("  %s (%s)\n", p.PieceID, units.FormatDimensions(p.Length, p.Width, u))
		}
	}
	if len(report.Offcuts) > 0 {
		fmt.Printf("Usable offcuts:  %d (%s total)\n", len(report.Offcuts), formatArea(report.OffcutArea, u))
	}
	for id, matches := range report.InventoryMatches {
		fmt.Printf("  %s fits saved offcut %s (%s)\n", id, matches[0].ID,
			units.FormatDimensions(matches[0].Length, matches[0].Width, u))
	}
	for _, f := range report.Files {
		fmt.Printf("Wrote %s\n", f)
	}
}

func formatArea(area float64, u units.Unit) string {
	switch u {
	case units.Inches:
		return fmt.Sprintf("%.1f sq ft", area/144)
	case units.Feet:
		return fmt.Sprintf("%.1f sq ft", area)
	}
	return fmt.Sprintf("%.0f sq %s", area, u)
}

type compareFunc func(context.Context, []model.Part, model.StockSpec, float64) ([]engine.ComparisonResult, int, error)

func runCompare(ctx context.Context, svc *cutlist.Service, req cutlist.Request, compare compareFunc) error {
	parts, err := svc.ResolveParts(req)
	if err != nil {
		return err
	}
	results, best, err := compare(ctx, parts, req.Stock, req.Kerf)
	if err != nil {
		return err
	}
	for i, c := range results {
		marker := " "
		if i == best {
			marker = "*"
		}
		fmt.Printf("%s %-28s sheets %3d  waste %5.1f%%  unplaced %d\n",
			marker, c.Scenario.Name, c.SheetsUsed, c.WastePercent, c.UnplacedCount)
	}
	return nil
}

func runLinear(ctx context.Context, svc *cutlist.Service, req cutlist.Request, list string) error {
	var lengths []float64
	for _, field := range splitList(list) {
		v, err := units.ParseFraction(field)
		if err != nil {
			return fmt.Errorf("%w: board length %q", engine.ErrInvalidInput, field)
		}
		lengths = append(lengths, v)
	}
	parts, err := svc.ResolveParts(req)
	if err != nil {
		return err
	}
	result, err := svc.Linear(ctx, parts, lengths, req.Kerf)
	if err != nil {
		return err
	}
	for i, b := range result.Boards {
		fmt.Printf("Board %d (%s): ", i+1, units.FormatLength(b.StockLength, req.Units))
		cuts := make([]string, len(b.Cuts))
		for j, c := range b.Cuts {
			cuts[j] = c.PieceID + " " + units.FormatLength(c.Length, req.Units)
		}
		fmt.Printf("%s, %s left\n", strings.Join(cuts, ", "), units.FormatLength(b.Remaining, req.Units))
	}
	fmt.Printf("Waste: %.1f%%\n", result.WastePercentage)
	if len(result.Unplaced) > 0 {
		fmt.Printf("WARNING: %d piece(s) longer than any board\n", len(result.Unplaced))
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(strings.ToLower(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
