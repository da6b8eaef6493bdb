// Package facade is the entry point the transports use. Every call resolves
// the organization owning the target resource with read-only lookups,
// authorizes the caller against it, and only then dispatches to the task
// registry, the ledger engine or the organization directory. A call that
// fails authorization has no side effects.
package facade

import (
	"context"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/smartcity/internal/access"
	"github.com/MrJamesThe3rd/smartcity/internal/apperr"
	"github.com/MrJamesThe3rd/smartcity/internal/importer"
	"github.com/MrJamesThe3rd/smartcity/internal/organization"
	"github.com/MrJamesThe3rd/smartcity/internal/task"
	"github.com/MrJamesThe3rd/smartcity/internal/transaction"
)

// TimeLayout is the only accepted format for date filters
// (yyyy-MM-ddTHH:mm:ss.SSS, read as UTC).
const TimeLayout = "2006-01-02T15:04:05.000"

type Facade struct {
	tasks    *task.Service
	ledger   *transaction.Service
	orgs     *organization.Service
	resolver *access.Resolver
	parser   *importer.Parser
}

func New(
	tasks *task.Service,
	ledger *transaction.Service,
	orgs *organization.Service,
	resolver *access.Resolver,
) *Facade {
	return &Facade{
		tasks:    tasks,
		ledger:   ledger,
		orgs:     orgs,
		resolver: resolver,
		parser:   importer.NewParser(),
	}
}

// Caller loads the identity and memberships of an authenticated user.
func (f *Facade) Caller(ctx context.Context, userID int64) (*access.Caller, error) {
	return f.orgs.Caller(ctx, userID)
}

// ParseTime reads s in TimeLayout.
func ParseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimeLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, apperr.Validation("facade.parse_time",
			"invalid date %q: expected yyyy-MM-ddTHH:mm:ss.SSS", s)
	}

	return t, nil
}

func parseRange(from, to string) (time.Time, time.Time, error) {
	f, err := ParseTime(from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	t, err := ParseTime(to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	return f, t, nil
}

// taskOwner resolves a task for authorization.
func (f *Facade) taskOwner(ctx context.Context, taskID int64) (*task.Task, error) {
	return f.tasks.Get(ctx, taskID)
}

func filterTasks(tasks []*task.Task, keep func(*task.Task) bool) []*task.Task {
	out := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}

	return out
}
