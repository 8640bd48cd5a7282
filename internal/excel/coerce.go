package excel

import (
	"math"
	"strconv"
	"strings"
)

// numberCleaner strips currency decoration before parsing.
var numberCleaner = strings.NewReplacer("$", "", ",", "", " ", "")

// ParseNumber converts a raw cell value to a number. Empty cells and values
// that cannot be parsed come back nil; this never returns an error. Vendor
// sheets routinely carry "$1,234.50", stray spaces and placeholder text in
// numeric columns, and a nil here just means "no data".
func ParseNumber(raw string) *float64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	v, err := strconv.ParseFloat(numberCleaner.Replace(trimmed), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// CoercionStats counts cells that held something but still coerced to nil.
// Purely observational: it feeds the import summary and never changes
// row-level success or failure.
type CoercionStats struct {
	NullFromNonEmpty int
}

func (s *CoercionStats) coerce(raw string) *float64 {
	v := ParseNumber(raw)
	if v == nil && strings.TrimSpace(raw) != "" {
		s.NullFromNonEmpty++
	}
	return v
}
