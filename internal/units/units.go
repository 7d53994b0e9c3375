// Package units converts and formats woodworking measurements.
package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Unit is a length unit a project can be measured in.
type Unit string

const (
	Inches      Unit = "inches"
	Millimeters Unit = "mm"
	Centimeters Unit = "cm"
	Feet        Unit = "feet"
)

// DefaultPrecision is the fraction denominator used for inch output.
const DefaultPrecision = 16

var toInches = map[Unit]float64{
	Inches:      1.0,
	Millimeters: 1 / 25.4,
	Centimeters: 1 / 2.54,
	Feet:        12.0,
}

// Parse resolves a unit name or common abbreviation.
func Parse(name string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "in", "inch", "inches", `"`:
		return Inches, nil
	case "mm", "millimeter", "millimeters":
		return Millimeters, nil
	case "cm", "centimeter", "centimeters":
		return Centimeters, nil
	case "ft", "foot", "feet", "'":
		return Feet, nil
	}
	return "", fmt.Errorf("unknown unit %q", name)
}

// Valid reports whether u is a supported unit.
func (u Unit) Valid() bool {
	_, ok := toInches[u]
	return ok
}

// Suffix returns the short symbol printed after a value.
func (u Unit) Suffix() string {
	switch u {
	case Inches:
		return `"`
	case Feet:
		return " ft"
	default:
		return " " + string(u)
	}
}

// ToInches converts a value in unit u to inches. Unknown units are treated as inches.
func ToInches(value float64, u Unit) float64 {
	if f, ok := toInches[u]; ok {
		return value * f
	}
	return value
}

// FromInches converts a value in inches to unit u.
func FromInches(value float64, u Unit) float64 {
	if f, ok := toInches[u]; ok {
		return value / f
	}
	return value
}

// Convert converts a value between any two units.
func Convert(value float64, from, to Unit) float64 {
	return FromInches(ToInches(value, from), to)
}

// BoardFeet returns (L x W x T) / 144 with all dimensions taken in inches.
func BoardFeet(length, width, thickness float64, u Unit) float64 {
	return ToInches(length, u) * ToInches(width, u) * ToInches(thickness, u) / 144
}

// SquareFeet returns the area of a length x width panel in square feet.
func SquareFeet(length, width float64, u Unit) float64 {
	return ToInches(length, u) * ToInches(width, u) / 144
}

// LinearFeet returns a length in feet.
func LinearFeet(length float64, u Unit) float64 {
	return ToInches(length, u) / 12
}

// FormatFraction renders a value as a whole number plus the nearest
// fraction of 1/precision, e.g. "3 1/2" or "3/4".
func FormatFraction(value float64, precision int) string {
	if precision <= 0 {
		precision = DefaultPrecision
	}
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}

	whole := int(value)
	frac := value - float64(whole)
	if frac < 1/(float64(precision)*2) {
		if whole == 0 {
			return "0"
		}
		return sign + strconv.Itoa(whole)
	}

	num := int(math.Round(frac * float64(precision)))
	if num == precision {
		return sign + strconv.Itoa(whole+1)
	}
	d := gcd(num, precision)
	num, den := num/d, precision/d

	if whole != 0 {
		return fmt.Sprintf("%s%d %d/%d", sign, whole, num, den)
	}
	return fmt.Sprintf("%s%d/%d", sign, num, den)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// ParseFraction parses "3 1/2", "3/4", "2.5" or "2".
func ParseFraction(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if !strings.Contains(text, "/") {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, fmt.Errorf("parse %q: %w", text, err)
		}
		return v, nil
	}

	var whole float64
	fracStr := text
	if wholeStr, rest, ok := strings.Cut(text, " "); ok {
		w, err := strconv.ParseFloat(wholeStr, 64)
		if err != nil {
			return 0, fmt.Errorf("parse whole part of %q: %w", text, err)
		}
		whole = w
		fracStr = strings.TrimSpace(rest)
	}

	numStr, denStr, _ := strings.Cut(fracStr, "/")
	num, err := strconv.ParseFloat(strings.TrimSpace(numStr), 64)
	if err != nil {
		return 0, fmt.Errorf("parse numerator of %q: %w", text, err)
	}
	den, err := strconv.ParseFloat(strings.TrimSpace(denStr), 64)
	if err != nil {
		return 0, fmt.Errorf("parse denominator of %q: %w", text, err)
	}
	if den == 0 {
		return 0, fmt.Errorf("parse %q: zero denominator", text)
	}

	if whole < 0 {
		return whole - num/den, nil
	}
	return whole + num/den, nil
}

// FormatLength renders a value already expressed in unit u. Inches use
// sixteenth fractions, everything else decimals.
func FormatLength(value float64, u Unit) string {
	switch u {
	case Inches:
		return FormatFraction(value, DefaultPrecision) + u.Suffix()
	case Millimeters:
		return strconv.FormatFloat(value, 'f', 1, 64) + u.Suffix()
	default:
		return strconv.FormatFloat(value, 'f', 2, 64) + u.Suffix()
	}
}

// FormatDimensions renders "L x W" in unit u.
func FormatDimensions(length, width float64, u Unit) string {
	return FormatLength(length, u) + " x " + FormatLength(width, u)
}
