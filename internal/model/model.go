package model

import "github.com/google/uuid"

// Part is a catalog entry: a rectangular piece needed Quantity times.
// Length and Width are just two side lengths; neither implies an axis.
type Part struct {
	ID       string  `json:"id"`
	Label    string  `json:"label,omitempty"`
	Length   float64 `json:"length"`
	Width    float64 `json:"width"`
	Quantity int     `json:"quantity"`
}

// NewPart creates a part with a short generated ID.
func NewPart(label string, length, width float64, qty int) Part {
	return Part{
		ID:       uuid.New().String()[:8],
		Label:    label,
		Length:   length,
		Width:    width,
		Quantity: qty,
	}
}

// DisplayLabel returns the label, falling back to the ID.
func (p Part) DisplayLabel() string {
	if p.Label != "" {
		return p.Label
	}
	return p.ID
}

// Area returns the area of a single instance.
func (p Part) Area() float64 {
	return p.Length * p.Width
}

// Piece is one expanded instance of a Part, ready for packing.
type Piece struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
}

func (p Piece) Area() float64 {
	return p.Length * p.Width
}

// StockSpec describes the sheet goods being cut. Only Length and Width
// affect packing; Material and Thickness are carried into the result.
type StockSpec struct {
	Length    float64 `json:"length"`
	Width     float64 `json:"width"`
	Material  string  `json:"material"`
	Thickness float64 `json:"thickness"`
}

func (s StockSpec) Area() float64 {
	return s.Length * s.Width
}

// PlacedPiece is a piece positioned on a sheet. X runs along the stock
// length, Y along the stock width. Width and Height are the placed extents
// after rotation; a piece in normal orientation has its length along X.
type PlacedPiece struct {
	PieceID      string  `json:"part_id"`
	Label        string  `json:"label"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Rotated      bool    `json:"rotated"`
	Length       float64 `json:"length"`        // nominal piece length
	NominalWidth float64 `json:"nominal_width"` // nominal piece width
}

// Area returns the placed area, excluding kerf.
func (p PlacedPiece) Area() float64 {
	return p.Width * p.Height
}

// SheetLayout is one opened stock sheet with its placements in placement order.
type SheetLayout struct {
	Stock      StockSpec     `json:"stock"`
	Placements []PlacedPiece `json:"pieces"`
}

// UsedArea returns the total area covered by placed pieces.
func (sl SheetLayout) UsedArea() float64 {
	var total float64
	for _, p := range sl.Placements {
		total += p.Area()
	}
	return total
}

// TotalArea returns the stock sheet area.
func (sl SheetLayout) TotalArea() float64 {
	return sl.Stock.Area()
}

// Efficiency returns the usage percentage.
func (sl SheetLayout) Efficiency() float64 {
	ta := sl.TotalArea()
	if ta == 0 {
		return 0
	}
	return (sl.UsedArea() / ta) * 100.0
}

// UnplacedPiece is a piece that does not fit the stock in any orientation.
type UnplacedPiece struct {
	PieceID string  `json:"part_id"`
	Length  float64 `json:"length"`
	Width   float64 `json:"width"`
}

// PackingResult holds the full multi-sheet solution.
type PackingResult struct {
	Sheets          []SheetLayout   `json:"sheets"`
	Unplaced        []UnplacedPiece `json:"unplaced"`
	TotalStockArea  float64         `json:"total_stock_area"`
	TotalPartsArea  float64         `json:"total_parts_area"`
	WastePercentage float64         `json:"waste_percentage"`
	Kerf            float64         `json:"kerf"`
}

// SheetCount returns the number of sheets opened.
func (r PackingResult) SheetCount() int {
	return len(r.Sheets)
}

// PlacedCount returns the number of placed pieces across all sheets.
func (r PackingResult) PlacedCount() int {
	total := 0
	for _, s := range r.Sheets {
		total += len(s.Placements)
	}
	return total
}

// PieceCount returns placed plus unplaced pieces.
func (r PackingResult) PieceCount() int {
	return r.PlacedCount() + len(r.Unplaced)
}

// Efficiency returns overall material usage of the opened sheets.
func (r PackingResult) Efficiency() float64 {
	var used, total float64
	for _, s := range r.Sheets {
		used += s.UsedArea()
		total += s.TotalArea()
	}
	if total == 0 {
		return 0
	}
	return (used / total) * 100.0
}

// Project ties parts, stock and kerf together for save/load.
type Project struct {
	Name   string         `json:"name"`
	Units  string         `json:"units"`
	Parts  []Part         `json:"parts"`
	Stock  StockSpec      `json:"stock"`
	Kerf   float64        `json:"kerf"`
	Result *PackingResult `json:"result,omitempty"`
}

// Woodworking defaults: a 4'x8' sheet of 3/4" plywood and a 1/8" blade.
const (
	DefaultStockLength = 96.0
	DefaultStockWidth  = 48.0
	DefaultThickness   = 0.75
	DefaultMaterial    = "plywood"
	DefaultKerf        = 0.125
	DefaultUnits       = "inches"
)

// DefaultStock returns a standard 96x48 plywood sheet.
func DefaultStock() StockSpec {
	return StockSpec{
		Length:    DefaultStockLength,
		Width:     DefaultStockWidth,
		Material:  DefaultMaterial,
		Thickness: DefaultThickness,
	}
}

func NewProject() Project {
	return Project{
		Name:  "Untitled",
		Units: DefaultUnits,
		Parts: []Part{},
		Stock: DefaultStock(),
		Kerf:  DefaultKerf,
	}
}
