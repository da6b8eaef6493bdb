package view

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/smartcity/internal/export"
)

// FormatAmount formats minor units with two decimals.
func FormatAmount(minor int64) string {
	return export.FormatAmount(minor)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseAmount reads a signed amount with at most two decimals ("-50",
// "12.5", "1234,56") into minor units.
func ParseAmount(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, fmt.Errorf("amount is required")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	minor := d.Shift(2)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than two decimals", s)
	}

	if minor.LessThan(decimal.NewFromInt(math.MinInt64)) || minor.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return 0, fmt.Errorf("amount %q is out of range", s)
	}

	if minor.IsZero() {
		return 0, fmt.Errorf("amount cannot be zero")
	}

	return minor.IntPart(), nil
}
