package importer

import "github.com/shopspring/decimal"

type amountMode int

const (
	// amountSingle is one signed column.
	amountSingle amountMode = iota
	// amountSplit is a pair of unsigned debit and credit columns.
	amountSplit
)

// Profile describes one supported column layout. Column names are matched
// case-insensitively.
type Profile struct {
	Name       string
	AmountMode amountMode
	Format     amountFormat
	AmountCol  string
	DebitCol   string
	CreditCol  string
}

func (p Profile) requiredCols() []string {
	if p.AmountMode == amountSplit {
		return []string{p.DebitCol, p.CreditCol}
	}

	return []string{p.AmountCol}
}

func (p Profile) matches(cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// delta returns the signed movement of row. ok is false for rows that carry
// no movement (blank or zero amounts, footers).
func (p Profile) delta(cols colIndex, row []string) (delta int64, ok bool, err error) {
	if p.AmountMode == amountSingle {
		return parseCell(p.Format, cellValue(row, cols[p.AmountCol]))
	}

	debit, hasDebit, err := parseCell(p.Format, cellValue(row, cols[p.DebitCol]))
	if err != nil {
		return 0, false, err
	}

	credit, hasCredit, err := parseCell(p.Format, cellValue(row, cols[p.CreditCol]))
	if err != nil {
		return 0, false, err
	}

	if !hasDebit && !hasCredit {
		return 0, false, nil
	}

	net := decimal.NewFromInt(credit).Abs().Sub(decimal.NewFromInt(debit).Abs())

	delta, err = toMinor(net, net.String())
	if err != nil {
		return 0, false, err
	}

	return delta, true, nil
}

func parseCell(f amountFormat, s string) (int64, bool, error) {
	if s == "" {
		return 0, false, nil
	}

	v, err := f.parse(s)
	if err != nil {
		return 0, false, err
	}

	return v, v != 0, nil
}

// profiles is tried in order; the first whose columns all appear in a row
// wins and that row is taken as the header.
var profiles = []Profile{
	{
		Name:       "ledger",
		AmountMode: amountSingle,
		Format:     formatMinorUnits,
		AmountCol:  "transaction_budget",
	},
	{
		Name:       "debit-credit",
		AmountMode: amountSplit,
		Format:     formatDecimal,
		DebitCol:   "debit",
		CreditCol:  "credit",
	},
	{
		Name:       "amount",
		AmountMode: amountSingle,
		Format:     formatDecimal,
		AmountCol:  "amount",
	},
	{
		Name:       "montante",
		AmountMode: amountSingle,
		Format:     formatEuropean,
		AmountCol:  "montante",
	},
}

func knownColumns() []string {
	var names []string
	for _, p := range profiles {
		names = append(names, p.requiredCols()...)
	}

	return names
}
