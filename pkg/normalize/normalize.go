// Package normalize converts loosely formatted export values into the
// numeric forms stored on graph nodes and relationships.
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts a revenue or cost value to a float64.
//
// Numbers are returned as-is. Strings may carry currency symbols, thousands
// separators and surrounding whitespace ("€911,750", "12 500 $"); these are
// stripped before parsing. Anything that still fails to parse yields 0.
// Source files are produced by hand and by spreadsheets, so a bad amount
// degrades to zero instead of rejecting the record.
func ParseAmount(v any) float64 {
	switch n := v.(type) {
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return finite(f)
	case string:
		return parseAmountString(n)
	default:
		return 0
	}
}

func parseAmountString(s string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r), unicode.Is(unicode.Sc, r):
			return -1
		case r == ',', r == '\'', r == '_':
			return -1
		}
		return r
	}, s)
	if cleaned == "" {
		return 0
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return finite(f)
}

// finite maps NaN and ±Inf to 0; neither is a usable amount.
func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// quantitySep separates a product reference from its count in "PG-M01 x3".
const quantitySep = " x"

// Quantity is a product reference parsed from "<id> x<n>" shorthand.
type Quantity struct {
	ID    string
	Count int
	// Defaulted is set when the input had no usable " x<n>" suffix. ID is
	// then the whole input and Count is 1.
	Defaulted bool
}

// Explicit reports whether the count came from the input.
func (q Quantity) Explicit() bool { return !q.Defaulted }

// ParseQuantity parses "<id> x<n>" shorthand. Input that does not split into
// exactly two parts on " x", or whose count is not an integer, is returned as
// a bare identifier with a defaulted count of 1.
func ParseQuantity(s string) Quantity {
	parts := strings.Split(s, quantitySep)
	if len(parts) == 2 {
		if n, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			return Quantity{ID: parts[0], Count: n}
		}
	}
	return Quantity{ID: s, Count: 1, Defaulted: true}
}
