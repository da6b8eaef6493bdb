package facade

import (
	"context"

	"github.com/MrJamesThe3rd/smartcity/internal/access"
	"github.com/MrJamesThe3rd/smartcity/internal/apperr"
	"github.com/MrJamesThe3rd/smartcity/internal/task"
)

func (f *Facade) CreateTask(ctx context.Context, caller *access.Caller, params task.CreateParams) (*task.Task, error) {
	if params.OrganizationID <= 0 {
		return nil, apperr.Validation("task.create", "organization is required")
	}

	if err := f.resolver.Require(caller, access.TaskCreate, params.OrganizationID); err != nil {
		return nil, err
	}

	return f.tasks.Create(ctx, params)
}

func (f *Facade) GetTask(ctx context.Context, caller *access.Caller, id int64) (*task.Task, error) {
	return f.authorizeTask(ctx, caller, access.TaskRead, id)
}

// UpdateTask stores t under id; t.ID is ignored. Moving a task to another
// organization needs task.update in both.
func (f *Facade) UpdateTask(ctx context.Context, caller *access.Caller, id int64, t task.Task) (*task.Task, error) {
	existing, err := f.authorizeTask(ctx, caller, access.TaskUpdate, id)
	if err != nil {
		return nil, err
	}

	if t.OrganizationID != existing.OrganizationID {
		if err := f.resolver.Require(caller, access.TaskUpdate, t.OrganizationID); err != nil {
			return nil, err
		}
	}

	t.ID = id

	return f.tasks.Update(ctx, &t)
}

func (f *Facade) DeleteTask(ctx context.Context, caller *access.Caller, id int64) error {
	if _, err := f.authorizeTask(ctx, caller, access.TaskDelete, id); err != nil {
		return err
	}

	return f.tasks.Delete(ctx, id)
}

// ListTasks returns every task the caller may read.
func (f *Facade) ListTasks(ctx context.Context, caller *access.Caller) ([]*task.Task, error) {
	tasks, err := f.tasks.List(ctx)
	if err != nil {
		return nil, err
	}

	return f.readable(caller, tasks), nil
}

func (f *Facade) ListTasksByOrganization(ctx context.Context, caller *access.Caller, orgID int64) ([]*task.Task, error) {
	if err := f.resolver.Require(caller, access.TaskRead, orgID); err != nil {
		return nil, err
	}

	return f.tasks.ListByOrganization(ctx, orgID)
}

func (f *Facade) ListTasksByDate(ctx context.Context, caller *access.Caller, orgID int64, from, to string) ([]*task.Task, error) {
	start, end, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}

	if err := f.resolver.Require(caller, access.TaskRead, orgID); err != nil {
		return nil, err
	}

	return f.tasks.ListCreatedBetween(ctx, orgID, start, end)
}

// ListTasksByUser is only open to the user themselves and returns the
// tasks of organizations where they may read tasks.
func (f *Facade) ListTasksByUser(ctx context.Context, caller *access.Caller, userID int64) ([]*task.Task, error) {
	if caller == nil || caller.UserID != userID {
		return nil, apperr.Unauthorized("task.list_by_user", "tasks of user %d are not visible to the caller", userID)
	}

	tasks, err := f.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return f.readable(caller, tasks), nil
}

func (f *Facade) readable(caller *access.Caller, tasks []*task.Task) []*task.Task {
	return filterTasks(tasks, func(t *task.Task) bool {
		return f.resolver.Allowed(caller, access.TaskRead, t.OrganizationID)
	})
}
