package transaction

import (
	"errors"
	"log/slog"
	"time"
)

var ErrNotFound = errors.New("transaction not found")

// Transaction is one ledger entry of a task. TransactionBudget is the signed
// delta the entry applies; CurrentBudget is the task's approved-budget
// position after it. Amounts are in minor currency units.
type Transaction struct {
	ID                int64
	TaskID            int64
	CurrentBudget     int64
	TransactionBudget int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (tx *Transaction) LogValue() slog.Value {
	if tx == nil {
		return slog.AnyValue(nil)
	}

	return slog.GroupValue(
		slog.Int64("id", tx.ID),
		slog.Int64("task_id", tx.TaskID),
		slog.Int64("current_budget", tx.CurrentBudget),
		slog.Int64("transaction_budget", tx.TransactionBudget),
	)
}

// Drift is a ledger entry whose CurrentBudget does not match the running
// balance implied by the entries before it.
type Drift struct {
	TransactionID int64
	Expected      int64
	Actual        int64
}

type Reconciliation struct {
	OpeningBalance int64
	ClosingBalance int64
	Entries        int
	Drifts         []Drift
}

func (r Reconciliation) Consistent() bool { return len(r.Drifts) == 0 }

// Reconcile walks txs in creation order starting from approvedBudget. Each
// entry is expected to hold the previous position plus its own delta. The
// walk continues from the stored CurrentBudget after a drift, so one bad
// edit is reported once instead of cascading to every later entry.
func Reconcile(approvedBudget int64, txs []*Transaction) Reconciliation {
	r := Reconciliation{
		OpeningBalance: approvedBudget,
		ClosingBalance: approvedBudget,
		Entries:        len(txs),
	}

	balance := approvedBudget

	for _, tx := range txs {
		expected := balance + tx.TransactionBudget
		if tx.CurrentBudget != expected {
			r.Drifts = append(r.Drifts, Drift{
				TransactionID: tx.ID,
				Expected:      expected,
				Actual:        tx.CurrentBudget,
			})
		}

		balance = tx.CurrentBudget
	}

	r.ClosingBalance = balance

	return r
}
