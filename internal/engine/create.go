package engine

import (
	"time"

	"github.com/ShayCichocki/aide/pkg/models"
)

// NewTask builds a durable task record from a builder plan. Continuous
// tasks get the default short poll interval; discrete tasks are due
// immediately and then follow the same interval between steps that defer.
func NewTask(request string, plan *models.BuilderResult, now time.Time) *models.Task {
	title := plan.Title
	if title == "" {
		title = request
	}

	task := &models.Task{
		ID:              models.NewTaskID(title),
		Title:           title,
		Status:          models.TaskStatusPending,
		TaskType:        plan.TaskType,
		Created:         now,
		LastUpdated:     now,
		PollFrequency:   models.DefaultPollFrequency(),
		OriginalRequest: request,
		StructuredPlan:  plan.Plan,
		ContextMemory:   make(map[string]string),
	}
	if task.TaskType == "" {
		task.TaskType = models.TaskTypeDiscrete
	}

	for _, step := range plan.Plan {
		task.Plan = append(task.Plan, step.Description)
	}
	if len(plan.Plan) > 0 {
		task.CurrentStep = models.CurrentStep{
			Step:        1,
			Description: plan.Plan[0].Description,
		}
	}

	next := now
	task.NextCheck = &next
	return task
}
