package usecase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/taskify-api/internal/apperror"
	"github.com/vasapolrittideah/taskify-api/internal/model"
	"github.com/vasapolrittideah/taskify-api/internal/repository"
)

// TaskUsecase defines the interface for task-related use cases. Every
// operation is scoped to the calling identity.
type TaskUsecase interface {
	ListTasks(ctx context.Context, caller Identity, params repository.FilterTasksParams) ([]*model.Task, error)
	ListOverdueTasks(ctx context.Context, caller Identity) ([]*model.Task, error)
	GetTaskStats(ctx context.Context, caller Identity) (*TaskStats, error)
	CreateTask(ctx context.Context, caller Identity, params CreateTaskParams) (*model.Task, error)
	GetTask(ctx context.Context, caller Identity, taskID string) (*model.Task, error)
	UpdateTask(ctx context.Context, caller Identity, taskID string, params UpdateTaskParams) (*model.Task, error)
	DeleteTask(ctx context.Context, caller Identity, taskID string) error
	AddSubtask(ctx context.Context, caller Identity, taskID, title string) (*model.Task, error)
	UpdateSubtask(ctx context.Context, caller Identity, taskID, subtaskID string, completed bool) (*model.Task, error)
}

// CreateTaskParams defines the parameters for creating a task.
type CreateTaskParams struct {
	Title       string
	Description string
	DueDate     *time.Time
	Priority    model.Priority
	Tags        []string
}

// UpdateTaskParams defines the client-settable parameters for updating a
// task. The owner and the completion timestamp are deliberately absent: the
// former is immutable, the latter is derived from the completed transition.
type UpdateTaskParams struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Priority    *model.Priority
	Tags        *[]string
	Completed   *bool
}

// TaskStats is the per-user statistics view. Each count is an independent
// query under the same ownership scope and the same bucket boundaries as the
// list filters.
type TaskStats struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	DueToday  int64 `json:"dueToday"`
	Overdue   int64 `json:"overdue"`
	Important int64 `json:"important"`
}

var (
	ErrInvalidTaskID    = apperror.New(apperror.InvalidID, "invalid task ID format")
	ErrInvalidSubtaskID = apperror.New(apperror.InvalidID, "invalid subtask ID format")
	ErrTaskNotFound     = apperror.New(apperror.NotFound, "task not found")
	ErrSubtaskNotFound  = apperror.New(apperror.NotFound, "subtask not found")
	ErrTaskForbidden    = apperror.New(apperror.Forbidden, "not authorized to access this task")
)

type taskUsecase struct {
	taskRepo repository.TaskRepository
}

func NewTaskUsecase(taskRepo repository.TaskRepository) TaskUsecase {
	return &taskUsecase{taskRepo: taskRepo}
}

func (u *taskUsecase) ListTasks(
	ctx context.Context,
	caller Identity,
	params repository.FilterTasksParams,
) ([]*model.Task, error) {
	sort := repository.ListTasksSort{Field: "created_at", Desc: true}
	return u.taskRepo.ListTasks(ctx, caller.ID, params, sort)
}

func (u *taskUsecase) ListOverdueTasks(ctx context.Context, caller Identity) ([]*model.Task, error) {
	params := repository.FilterTasksParams{DueDate: repository.DueOverdue}
	sort := repository.ListTasksSort{Field: "due_date"}
	return u.taskRepo.ListTasks(ctx, caller.ID, params, sort)
}

func (u *taskUsecase) GetTaskStats(ctx context.Context, caller Identity) (*TaskStats, error) {
	incomplete := false
	completed := true

	stats := &TaskStats{}
	counts := []struct {
		dst    *int64
		params repository.FilterTasksParams
	}{
		{&stats.Total, repository.FilterTasksParams{}},
		{&stats.Completed, repository.FilterTasksParams{Completed: &completed}},
		{&stats.DueToday, repository.FilterTasksParams{DueDate: repository.DueToday, Completed: &incomplete}},
		{&stats.Overdue, repository.FilterTasksParams{DueDate: repository.DueOverdue}},
		{&stats.Important, repository.FilterTasksParams{Tags: []string{"important"}, Completed: &incomplete}},
	}

	for _, c := range counts {
		n, err := u.taskRepo.CountTasks(ctx, caller.ID, c.params)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}

	return stats, nil
}

func (u *taskUsecase) CreateTask(
	ctx context.Context,
	caller Identity,
	params CreateTaskParams,
) (*model.Task, error) {
	priority := params.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	return u.taskRepo.CreateTask(ctx, &model.Task{
		UserID:      caller.ID,
		Title:       params.Title,
		Description: params.Description,
		DueDate:     params.DueDate,
		Priority:    priority,
		Tags:        params.Tags,
		Completed:   false,
	})
}

func (u *taskUsecase) GetTask(ctx context.Context, caller Identity, taskID string) (*model.Task, error) {
	return u.ownedTask(ctx, caller, taskID)
}

func (u *taskUsecase) UpdateTask(
	ctx context.Context,
	caller Identity,
	taskID string,
	params UpdateTaskParams,
) (*model.Task, error) {
	task, err := u.ownedTask(ctx, caller, taskID)
	if err != nil {
		return nil, err
	}

	if params == (UpdateTaskParams{}) {
		return task, nil
	}

	repoParams := repository.UpdateTaskParams{
		Title:       params.Title,
		Description: params.Description,
		DueDate:     params.DueDate,
		Priority:    params.Priority,
		Tags:        params.Tags,
		Completed:   params.Completed,
	}

	// The completion timestamp is derived from the transition between the
	// prior persisted flag and the requested one, read in this same call.
	if params.Completed != nil {
		switch {
		case !task.Completed && *params.Completed:
			now := time.Now()
			repoParams.CompletedAt = &now
		case task.Completed && !*params.Completed:
			repoParams.ClearCompletedAt = true
		}
	}

	return u.taskRepo.UpdateTask(ctx, task.ID, repoParams)
}

func (u *taskUsecase) DeleteTask(ctx context.Context, caller Identity, taskID string) error {
	task, err := u.ownedTask(ctx, caller, taskID)
	if err != nil {
		return err
	}

	if err := u.taskRepo.DeleteTask(ctx, task.ID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrTaskNotFound
		}
		return err
	}

	return nil
}

func (u *taskUsecase) AddSubtask(
	ctx context.Context,
	caller Identity,
	taskID, title string,
) (*model.Task, error) {
	task, err := u.ownedTask(ctx, caller, taskID)
	if err != nil {
		return nil, err
	}

	subtask := model.Subtask{
		ID:        bson.NewObjectID(),
		Title:     title,
		Completed: false,
	}

	return u.taskRepo.AddSubtask(ctx, task.ID, subtask)
}

func (u *taskUsecase) UpdateSubtask(
	ctx context.Context,
	caller Identity,
	taskID, subtaskID string,
	completed bool,
) (*model.Task, error) {
	subtaskOID, err := bson.ObjectIDFromHex(subtaskID)
	if err != nil {
		return nil, ErrInvalidSubtaskID
	}

	task, err := u.ownedTask(ctx, caller, taskID)
	if err != nil {
		return nil, err
	}

	if task.Subtask(subtaskOID) == nil {
		return nil, ErrSubtaskNotFound
	}

	updated, err := u.taskRepo.SetSubtaskCompleted(ctx, task.ID, subtaskOID, completed)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSubtaskNotFound
		}
		return nil, err
	}

	return updated, nil
}

// ownedTask enforces the single-resource access checks in order: identifier
// syntax, existence, then ownership.
func (u *taskUsecase) ownedTask(ctx context.Context, caller Identity, taskID string) (*model.Task, error) {
	oid, err := bson.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, ErrInvalidTaskID
	}

	task, err := u.taskRepo.GetTask(ctx, oid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if task.UserID != caller.ID {
		return nil, ErrTaskForbidden
	}

	return task, nil
}
