package task

import (
	"time"

	"github.com/MrJamesThe3rd/smartcity/internal/facade"
	"github.com/MrJamesThe3rd/smartcity/internal/task"
)

type taskResponse struct {
	ID             int64       `json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Deadline       string      `json:"deadlineDate"`
	Status         task.Status `json:"taskStatus"`
	Budget         int64       `json:"budget"`
	ApprovedBudget int64       `json:"approvedBudget"`
	OrganizationID int64       `json:"organizationId"`
	CreatedDate    string      `json:"createdDate"`
	UpdatedDate    string      `json:"updatedDate"`
}

func toResponse(t *task.Task) taskResponse {
	return taskResponse{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Deadline:       t.Deadline.Format(time.DateOnly),
		Status:         t.Status,
		Budget:         t.Budget,
		ApprovedBudget: t.ApprovedBudget,
		OrganizationID: t.OrganizationID,
		CreatedDate:    t.CreatedAt.UTC().Format(facade.TimeLayout),
		UpdatedDate:    t.UpdatedAt.UTC().Format(facade.TimeLayout),
	}
}

func toResponseList(tasks []*task.Task) []taskResponse {
	resp := make([]taskResponse, len(tasks))
	for i, t := range tasks {
		resp[i] = toResponse(t)
	}

	return resp
}
