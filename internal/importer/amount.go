package importer

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

type amountFormat int

const (
	// formatMinorUnits is an integer count of minor units: "-5000".
	formatMinorUnits amountFormat = iota
	// formatDecimal uses '.' for decimals and optional ',' grouping: "-1,234.56".
	formatDecimal
	// formatEuropean uses ',' for decimals and '.' grouping: "-1.234,56".
	formatEuropean
)

var (
	hundred  = decimal.NewFromInt(100)
	minMinor = decimal.NewFromInt(math.MinInt64)
	maxMinor = decimal.NewFromInt(math.MaxInt64)
)

func (f amountFormat) parse(s string) (int64, error) {
	clean := strings.ReplaceAll(s, " ", "")

	switch f {
	case formatDecimal:
		clean = strings.ReplaceAll(clean, ",", "")
	case formatEuropean:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	if f != formatMinorUnits {
		d = d.Mul(hundred)
	}

	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("amount %q has fractional minor units", s)
	}

	return toMinor(d, s)
}

// toMinor converts a whole number of minor units to int64, rejecting values
// that do not fit.
func toMinor(d decimal.Decimal, s string) (int64, error) {
	if d.LessThan(minMinor) || d.GreaterThan(maxMinor) {
		return 0, fmt.Errorf("amount %q is out of range", s)
	}

	return d.IntPart(), nil
}
