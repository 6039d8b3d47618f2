package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/taskify-api/internal/model"
)

// TaskRepository defines the interface for task-related database operations.
type TaskRepository interface {
	CreateTask(ctx context.Context, task *model.Task) (*model.Task, error)
	GetTask(ctx context.Context, id bson.ObjectID) (*model.Task, error)
	UpdateTask(ctx context.Context, id bson.ObjectID, params UpdateTaskParams) (*model.Task, error)
	DeleteTask(ctx context.Context, id bson.ObjectID) error
	ListTasks(ctx context.Context, owner bson.ObjectID, params FilterTasksParams, sort ListTasksSort) ([]*model.Task, error)
	CountTasks(ctx context.Context, owner bson.ObjectID, params FilterTasksParams) (int64, error)
	AddSubtask(ctx context.Context, taskID bson.ObjectID, subtask model.Subtask) (*model.Task, error)
	SetSubtaskCompleted(ctx context.Context, taskID, subtaskID bson.ObjectID, completed bool) (*model.Task, error)
}

// UpdateTaskParams defines the optional parameters for updating a task. Only
// the fields that are not nil will be updated; the owner is never touched.
// CompletedAt and ClearCompletedAt are set by the usecase when the completion
// flag transitions, never from client input.
type UpdateTaskParams struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Priority    *model.Priority
	Tags        *[]string
	Completed   *bool

	CompletedAt      *time.Time
	ClearCompletedAt bool
}

// ListTasksSort selects the sort order for task listings.
type ListTasksSort struct {
	Field string
	Desc  bool
}

const taskCollection = "tasks"

type taskMongoRepository struct {
	db *mongo.Database
}

func NewTaskMongoRepository(db *mongo.Database) TaskRepository {
	return &taskMongoRepository{db: db}
}

func (r *taskMongoRepository) CreateTask(ctx context.Context, task *model.Task) (*model.Task, error) {
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Tags == nil {
		task.Tags = []string{}
	}
	if task.Subtasks == nil {
		task.Subtasks = []model.Subtask{}
	}

	result, err := r.db.Collection(taskCollection).InsertOne(ctx, task)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		task.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return task, nil
}

func (r *taskMongoRepository) GetTask(ctx context.Context, id bson.ObjectID) (*model.Task, error) {
	result := r.db.Collection(taskCollection).FindOne(ctx, bson.M{"_id": id})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var task model.Task
	if err := result.Decode(&task); err != nil {
		return nil, err
	}

	return &task, nil
}

func (r *taskMongoRepository) UpdateTask(
	ctx context.Context,
	id bson.ObjectID,
	params UpdateTaskParams,
) (*model.Task, error) {
	setMap := bson.M{}
	if params.Title != nil {
		setMap["title"] = *params.Title
	}
	if params.Description != nil {
		setMap["description"] = *params.Description
	}
	if params.DueDate != nil {
		setMap["due_date"] = *params.DueDate
	}
	if params.Priority != nil {
		setMap["priority"] = *params.Priority
	}
	if params.Tags != nil {
		setMap["tags"] = *params.Tags
	}
	if params.Completed != nil {
		setMap["completed"] = *params.Completed
	}
	if params.CompletedAt != nil {
		setMap["completed_at"] = *params.CompletedAt
	}

	if len(setMap) == 0 && !params.ClearCompletedAt {
		return nil, errors.New("no task fields to update")
	}

	setMap["updated_at"] = time.Now()

	update := bson.M{"$set": setMap}
	if params.ClearCompletedAt {
		update["$unset"] = bson.M{"completed_at": ""}
	}

	result := r.db.Collection(taskCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var task model.Task
	if err := result.Decode(&task); err != nil {
		return nil, err
	}

	return &task, nil
}

func (r *taskMongoRepository) DeleteTask(ctx context.Context, id bson.ObjectID) error {
	result := r.db.Collection(taskCollection).FindOneAndDelete(ctx, bson.M{"_id": id})
	return result.Err()
}

func (r *taskMongoRepository) ListTasks(
	ctx context.Context,
	owner bson.ObjectID,
	params FilterTasksParams,
	sort ListTasksSort,
) ([]*model.Task, error) {
	sortField := "created_at"
	if sort.Field != "" {
		sortField = sort.Field
	}
	sortOrder := 1
	if sort.Desc {
		sortOrder = -1
	}
	findOptions := options.Find().SetSort(bson.D{{Key: sortField, Value: sortOrder}})

	filter := taskPredicate(owner, params, time.Now())

	cursor, err := r.db.Collection(taskCollection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tasks := []*model.Task{}
	for cursor.Next(ctx) {
		var task model.Task
		if err := cursor.Decode(&task); err != nil {
			return nil, err
		}
		tasks = append(tasks, &task)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *taskMongoRepository) CountTasks(
	ctx context.Context,
	owner bson.ObjectID,
	params FilterTasksParams,
) (int64, error) {
	filter := taskPredicate(owner, params, time.Now())
	return r.db.Collection(taskCollection).CountDocuments(ctx, filter)
}

func (r *taskMongoRepository) AddSubtask(
	ctx context.Context,
	taskID bson.ObjectID,
	subtask model.Subtask,
) (*model.Task, error) {
	result := r.db.Collection(taskCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": taskID},
		bson.M{
			"$push": bson.M{"subtasks": subtask},
			"$set":  bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var task model.Task
	if err := result.Decode(&task); err != nil {
		return nil, err
	}

	return &task, nil
}

func (r *taskMongoRepository) SetSubtaskCompleted(
	ctx context.Context,
	taskID, subtaskID bson.ObjectID,
	completed bool,
) (*model.Task, error) {
	result := r.db.Collection(taskCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": taskID, "subtasks._id": subtaskID},
		bson.M{
			"$set": bson.M{
				"subtasks.$.completed": completed,
				"updated_at":           time.Now(),
			},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var task model.Task
	if err := result.Decode(&task); err != nil {
		return nil, err
	}

	return &task, nil
}
