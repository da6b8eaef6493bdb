// Package export renders a task's ledger as a CSV statement.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/smartcity/internal/transaction"
)

// TimeLayout matches the layout the API accepts for date filters.
const TimeLayout = "2006-01-02T15:04:05.000"

var header = []string{"id", "created_at", "transaction_budget", "current_budget", "expected_budget", "drift"}

// WriteStatement writes one row per ledger entry in creation order. Entries
// whose balance drifted carry the expected balance and the difference; the
// file can be fed back to the importer, which only reads transaction_budget.
func WriteStatement(w io.Writer, st *transaction.Statement) error {
	drifts := make(map[int64]transaction.Drift, len(st.Reconciliation.Drifts))
	for _, d := range st.Reconciliation.Drifts {
		drifts[d.TransactionID] = d
	}

	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, tx := range st.Transactions {
		expected, drift := tx.CurrentBudget, ""
		if d, ok := drifts[tx.ID]; ok {
			expected = d.Expected
			drift = strconv.FormatInt(d.Actual-d.Expected, 10)
		}

		row := []string{
			strconv.FormatInt(tx.ID, 10),
			tx.CreatedAt.UTC().Format(TimeLayout),
			strconv.FormatInt(tx.TransactionBudget, 10),
			strconv.FormatInt(tx.CurrentBudget, 10),
			strconv.FormatInt(expected, 10),
			drift,
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing transaction %d: %w", tx.ID, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// Filename is the attachment name offered for a statement.
func Filename(taskID int64, at time.Time) string {
	return fmt.Sprintf("task-%d-ledger-%s.csv", taskID, at.UTC().Format("20060102"))
}

// FormatAmount renders minor units with two decimals: -123456 -> "-1234.56".
func FormatAmount(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}

// Summary is a short plain-text description of a statement.
func Summary(st *transaction.Statement) string {
	var sb strings.Builder

	rec := st.Reconciliation

	fmt.Fprintf(&sb, "%s: %d entries, approved %s, balance %s",
		st.Task.Title, rec.Entries, FormatAmount(rec.OpeningBalance), FormatAmount(rec.ClosingBalance))

	if !rec.Consistent() {
		fmt.Fprintf(&sb, ", %d drifted", len(rec.Drifts))
	}

	return sb.String()
}
