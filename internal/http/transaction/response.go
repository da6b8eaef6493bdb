package transaction

import (
	"github.com/MrJamesThe3rd/smartcity/internal/facade"
	"github.com/MrJamesThe3rd/smartcity/internal/transaction"
)

type transactionResponse struct {
	ID                int64  `json:"id"`
	TaskID            int64  `json:"taskId"`
	CurrentBudget     int64  `json:"currentBudget"`
	TransactionBudget int64  `json:"transactionBudget"`
	CreatedDate       string `json:"createdDate"`
	UpdatedDate       string `json:"updatedDate"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:                tx.ID,
		TaskID:            tx.TaskID,
		CurrentBudget:     tx.CurrentBudget,
		TransactionBudget: tx.TransactionBudget,
		CreatedDate:       tx.CreatedAt.UTC().Format(facade.TimeLayout),
		UpdatedDate:       tx.UpdatedAt.UTC().Format(facade.TimeLayout),
	}
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}

type driftResponse struct {
	TransactionID int64 `json:"transactionId"`
	Expected      int64 `json:"expected"`
	Actual        int64 `json:"actual"`
}

type auditResponse struct {
	TaskID         int64                 `json:"taskId"`
	ApprovedBudget int64                 `json:"approvedBudget"`
	ClosingBalance int64                 `json:"closingBalance"`
	Entries        int                   `json:"entries"`
	Consistent     bool                  `json:"consistent"`
	Drifts         []driftResponse       `json:"drifts"`
	Transactions   []transactionResponse `json:"transactions"`
}

func toAuditResponse(st *transaction.Statement) auditResponse {
	rec := st.Reconciliation

	drifts := make([]driftResponse, len(rec.Drifts))
	for i, d := range rec.Drifts {
		drifts[i] = driftResponse{TransactionID: d.TransactionID, Expected: d.Expected, Actual: d.Actual}
	}

	return auditResponse{
		TaskID:         st.Task.ID,
		ApprovedBudget: rec.OpeningBalance,
		ClosingBalance: rec.ClosingBalance,
		Entries:        rec.Entries,
		Consistent:     rec.Consistent(),
		Drifts:         drifts,
		Transactions:   toResponseList(st.Transactions),
	}
}
