package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/taskify-api/internal/model"
	"github.com/vasapolrittideah/taskify-api/internal/repository"
	"github.com/vasapolrittideah/taskify-api/internal/usecase"
	"github.com/vasapolrittideah/taskify-api/shared/validation"
)

// TaskHandler serves the /api/tasks endpoints. All of them require an
// authenticated caller.
type TaskHandler struct {
	taskUsecase usecase.TaskUsecase
	validator   *validation.Validator
	logger      *zerolog.Logger
}

func NewTaskHandler(
	taskUsecase usecase.TaskUsecase,
	validator *validation.Validator,
	logger *zerolog.Logger,
) *TaskHandler {
	return &TaskHandler{
		taskUsecase: taskUsecase,
		validator:   validator,
		logger:      logger,
	}
}

type createTaskRequest struct {
	Title       string     `json:"title"       validate:"required,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	DueDate     *time.Time `json:"due_date"`
	Priority    string     `json:"priority"    validate:"omitempty,oneof=low medium high"`
	Tags        []string   `json:"tags"`
}

type updateTaskRequest struct {
	Title       *string    `json:"title"       validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	DueDate     *time.Time `json:"due_date"`
	Priority    *string    `json:"priority"    validate:"omitempty,oneof=low medium high"`
	Tags        *[]string  `json:"tags"`
	Completed   *bool      `json:"completed"`
}

type addSubtaskRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

type updateSubtaskRequest struct {
	Completed bool `json:"completed"`
}

type taskResponse struct {
	Success bool        `json:"success"`
	Task    *model.Task `json:"task"`
}

type taskListResponse struct {
	Success bool          `json:"success"`
	Count   int           `json:"count"`
	Tasks   []*model.Task `json:"tasks"`
}

type taskStatsResponse struct {
	Success bool               `json:"success"`
	Stats   *usecase.TaskStats `json:"stats"`
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	tasks, err := h.taskUsecase.ListTasks(r.Context(), caller, filterParamsFromQuery(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, taskListResponse{Success: true, Count: len(tasks), Tasks: tasks})
}

// filterParamsFromQuery reads the optional filter criteria off the query
// string. The completed criterion only recognizes the strings "true" and
// "false"; anything else imposes no constraint.
func filterParamsFromQuery(r *http.Request) repository.FilterTasksParams {
	query := r.URL.Query()
	params := repository.FilterTasksParams{DueDate: query.Get("dueDate")}

	switch query.Get("completed") {
	case "true":
		completed := true
		params.Completed = &completed
	case "false":
		completed := false
		params.Completed = &completed
	}

	if priority := query.Get("priority"); priority != "" {
		params.Priority = &priority
	}

	if tags, ok := query["tags"]; ok && len(tags) > 0 {
		params.Tags = tags
	}

	if search := query.Get("search"); search != "" {
		params.Search = &search
	}

	return params
}

func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	stats, err := h.taskUsecase.GetTaskStats(r.Context(), caller)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, taskStatsResponse{Success: true, Stats: stats})
}

func (h *TaskHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	tasks, err := h.taskUsecase.ListOverdueTasks(r.Context(), caller)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, taskListResponse{Success: true, Count: len(tasks), Tasks: tasks})
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := h.validator.Struct(req); msg != "" {
		writeValidationError(w, msg)
		return
	}

	task, err := h.taskUsecase.CreateTask(r.Context(), caller, usecase.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    model.Priority(req.Priority),
		Tags:        req.Tags,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, taskResponse{Success: true, Task: task})
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	task, err := h.taskUsecase.GetTask(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, taskResponse{Success: true, Task: task})
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	var req updateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := h.validator.Struct(req); msg != "" {
		writeValidationError(w, msg)
		return
	}

	params := usecase.UpdateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
		Completed:   req.Completed,
	}
	if req.Priority != nil {
		priority := model.Priority(*req.Priority)
		params.Priority = &priority
	}

	task, err := h.taskUsecase.UpdateTask(r.Context(), caller, chi.URLParam(r, "id"), params)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, taskResponse{Success: true, Task: task})
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	if err := h.taskUsecase.DeleteTask(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Task deleted"})
}

func (h *TaskHandler) AddSubtask(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	var req addSubtaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := h.validator.Struct(req); msg != "" {
		writeValidationError(w, msg)
		return
	}

	task, err := h.taskUsecase.AddSubtask(r.Context(), caller, chi.URLParam(r, "id"), req.Title)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, taskResponse{Success: true, Task: task})
}

func (h *TaskHandler) UpdateSubtask(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	var req updateSubtaskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	task, err := h.taskUsecase.UpdateSubtask(
		r.Context(),
		caller,
		chi.URLParam(r, "id"),
		chi.URLParam(r, "subtaskID"),
		req.Completed,
	)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, taskResponse{Success: true, Task: task})
}
