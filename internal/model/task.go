package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Priority of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Subtask is embedded in its parent task and has no independent existence.
// Only the completed flag is mutable after creation.
type Subtask struct {
	ID        bson.ObjectID `bson:"_id"       json:"id"`
	Title     string        `bson:"title"     json:"title"`
	Completed bool          `bson:"completed" json:"completed"`
}

// Task belongs to exactly one user; ownership is immutable after creation.
// CompletedAt is derived from the completed flag: stamped on the
// incomplete->complete transition, cleared on the reverse one.
type Task struct {
	ID          bson.ObjectID `bson:"_id,omitempty"          json:"id"`
	UserID      bson.ObjectID `bson:"user_id"                json:"user_id"`
	Title       string        `bson:"title"                  json:"title"`
	Description string        `bson:"description,omitempty"  json:"description,omitempty"`
	DueDate     *time.Time    `bson:"due_date,omitempty"     json:"due_date,omitempty"`
	Priority    Priority      `bson:"priority"               json:"priority"`
	Tags        []string      `bson:"tags"                   json:"tags"`
	Completed   bool          `bson:"completed"              json:"completed"`
	CompletedAt *time.Time    `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	Subtasks    []Subtask     `bson:"subtasks"               json:"subtasks"`
	CreatedAt   time.Time     `bson:"created_at"             json:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at"             json:"updated_at"`
}

// Subtask returns the embedded subtask with the given id, or nil.
func (t *Task) Subtask(id bson.ObjectID) *Subtask {
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == id {
			return &t.Subtasks[i]
		}
	}
	return nil
}
