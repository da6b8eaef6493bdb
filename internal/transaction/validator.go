package transaction

import (
	"context"
	"log/slog"

	"github.com/MrJamesThe3rd/smartcity/internal/apperr"
	"github.com/MrJamesThe3rd/smartcity/internal/task"
)

// Validator checks a proposed entry against the task it references, so the
// ledger never stores an entry for a task the registry cannot resolve,
// whatever the underlying store would accept.
type Validator struct {
	tasks TaskResolver
}

func NewValidator(tasks TaskResolver) *Validator {
	return &Validator{tasks: tasks}
}

// ValidateReferencedTask returns the referenced task, or a validation
// failure when the reference is empty or does not resolve.
func (v *Validator) ValidateReferencedTask(ctx context.Context, taskID int64) (*task.Task, error) {
	if taskID <= 0 {
		return nil, apperr.Validation("transaction.validate", "task reference is required")
	}

	t, err := v.tasks.Get(ctx, taskID)
	if err == nil {
		return t, nil
	}

	if apperr.KindOf(err) == apperr.KindNotFound {
		slog.Warn("transaction references unknown task", "op", "transaction.validate", "task_id", taskID)
		return nil, apperr.Validation("transaction.validate", "task %d does not exist", taskID)
	}

	return nil, err
}
