package usecase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/taskify-api/internal/model"
	"github.com/vasapolrittideah/taskify-api/internal/repository"
	"github.com/vasapolrittideah/taskify-api/shared/provider"
)

// fakeTaskRepository is an in-memory TaskRepository that records the filter
// parameters it was called with.
type fakeTaskRepository struct {
	tasks map[bson.ObjectID]*model.Task

	listCalls   []repository.FilterTasksParams
	listSorts   []repository.ListTasksSort
	countCalls  []repository.FilterTasksParams
	counts      []int64
	updateCalls int
}

func newFakeTaskRepository() *fakeTaskRepository {
	return &fakeTaskRepository{tasks: make(map[bson.ObjectID]*model.Task)}
}

func (r *fakeTaskRepository) put(task *model.Task) *model.Task {
	if task.ID.IsZero() {
		task.ID = bson.NewObjectID()
	}
	r.tasks[task.ID] = task
	return task
}

func (r *fakeTaskRepository) CreateTask(_ context.Context, task *model.Task) (*model.Task, error) {
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	return r.put(task), nil
}

func (r *fakeTaskRepository) GetTask(_ context.Context, id bson.ObjectID) (*model.Task, error) {
	task, ok := r.tasks[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *task
	return &copied, nil
}

func (r *fakeTaskRepository) UpdateTask(
	_ context.Context,
	id bson.ObjectID,
	params repository.UpdateTaskParams,
) (*model.Task, error) {
	r.updateCalls++

	task, ok := r.tasks[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	if params.Title != nil {
		task.Title = *params.Title
	}
	if params.Description != nil {
		task.Description = *params.Description
	}
	if params.DueDate != nil {
		task.DueDate = params.DueDate
	}
	if params.Priority != nil {
		task.Priority = *params.Priority
	}
	if params.Tags != nil {
		task.Tags = *params.Tags
	}
	if params.Completed != nil {
		task.Completed = *params.Completed
	}
	if params.CompletedAt != nil {
		task.CompletedAt = params.CompletedAt
	}
	if params.ClearCompletedAt {
		task.CompletedAt = nil
	}
	task.UpdatedAt = time.Now()

	copied := *task
	return &copied, nil
}

func (r *fakeTaskRepository) DeleteTask(_ context.Context, id bson.ObjectID) error {
	if _, ok := r.tasks[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepository) ListTasks(
	_ context.Context,
	owner bson.ObjectID,
	params repository.FilterTasksParams,
	sort repository.ListTasksSort,
) ([]*model.Task, error) {
	r.listCalls = append(r.listCalls, params)
	r.listSorts = append(r.listSorts, sort)

	var out []*model.Task
	for _, task := range r.tasks {
		if task.UserID == owner {
			copied := *task
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeTaskRepository) CountTasks(
	_ context.Context,
	_ bson.ObjectID,
	params repository.FilterTasksParams,
) (int64, error) {
	r.countCalls = append(r.countCalls, params)
	if len(r.counts) >= len(r.countCalls) {
		return r.counts[len(r.countCalls)-1], nil
	}
	return 0, nil
}

func (r *fakeTaskRepository) AddSubtask(
	_ context.Context,
	taskID bson.ObjectID,
	subtask model.Subtask,
) (*model.Task, error) {
	task, ok := r.tasks[taskID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	task.Subtasks = append(task.Subtasks, subtask)
	copied := *task
	return &copied, nil
}

func (r *fakeTaskRepository) SetSubtaskCompleted(
	_ context.Context,
	taskID, subtaskID bson.ObjectID,
	completed bool,
) (*model.Task, error) {
	task, ok := r.tasks[taskID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	sub := task.Subtask(subtaskID)
	if sub == nil {
		return nil, mongo.ErrNoDocuments
	}
	sub.Completed = completed
	copied := *task
	return &copied, nil
}

// fakeUserRepository is an in-memory UserRepository.
type fakeUserRepository struct {
	users map[bson.ObjectID]*model.User

	updateErr error
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[bson.ObjectID]*model.User)}
}

func (r *fakeUserRepository) put(user *model.User) *model.User {
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	r.users[user.ID] = user
	return user
}

func (r *fakeUserRepository) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	copied := *r.put(user)
	return &copied, nil
}

func (r *fakeUserRepository) GetUser(_ context.Context, id bson.ObjectID) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepository) findOne(match func(*model.User) bool) (*model.User, error) {
	for _, user := range r.users {
		if match(user) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeUserRepository) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	return r.findOne(func(u *model.User) bool { return u.Email == email })
}

func (r *fakeUserRepository) GetUserByGoogleID(_ context.Context, googleID string) (*model.User, error) {
	return r.findOne(func(u *model.User) bool { return u.GoogleID != "" && u.GoogleID == googleID })
}

func (r *fakeUserRepository) GetUserByVerificationToken(_ context.Context, token string) (*model.User, error) {
	return r.findOne(func(u *model.User) bool {
		return u.VerificationToken != "" && u.VerificationToken == token
	})
}

func (r *fakeUserRepository) GetUserByResetToken(
	_ context.Context,
	digest string,
	now time.Time,
) (*model.User, error) {
	return r.findOne(func(u *model.User) bool {
		return u.ResetTokenDigest == digest &&
			u.ResetTokenExpiresAt != nil &&
			u.ResetTokenExpiresAt.After(now)
	})
}

func (r *fakeUserRepository) UpdateUser(
	_ context.Context,
	id bson.ObjectID,
	params repository.UpdateUserParams,
) (*model.User, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}

	user, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	if params.Name != nil {
		user.Name = *params.Name
	}
	if params.Email != nil {
		user.Email = *params.Email
	}
	if params.PasswordHash != nil {
		user.PasswordHash = *params.PasswordHash
	}
	if params.GoogleID != nil {
		user.GoogleID = *params.GoogleID
	}
	if params.AvatarURL != nil {
		user.AvatarURL = *params.AvatarURL
	}
	if params.Verified != nil {
		user.Verified = *params.Verified
	}
	if params.LastLoginAt != nil {
		user.LastLoginAt = params.LastLoginAt
	}
	if params.ResetTokenDigest != nil {
		user.ResetTokenDigest = *params.ResetTokenDigest
	}
	if params.ResetTokenExpiresAt != nil {
		user.ResetTokenExpiresAt = params.ResetTokenExpiresAt
	}
	if params.ClearVerificationToken {
		user.VerificationToken = ""
	}
	if params.ClearResetToken {
		user.ResetTokenDigest = ""
		user.ResetTokenExpiresAt = nil
	}
	user.UpdatedAt = time.Now()

	copied := *user
	return &copied, nil
}

func (r *fakeUserRepository) SearchUsers(_ context.Context, _ string) ([]*model.User, error) {
	var out []*model.User
	for _, user := range r.users {
		copied := *user
		out = append(out, &copied)
	}
	return out, nil
}

// sentEmail is one recorded notifier delivery.
type sentEmail struct {
	email string
	token string
}

// fakeNotifier records sent emails and can be told to fail.
type fakeNotifier struct {
	verifications []sentEmail
	resets        []sentEmail
	failWith      error
}

func (n *fakeNotifier) SendVerification(email, token string) error {
	if n.failWith != nil {
		return n.failWith
	}
	n.verifications = append(n.verifications, sentEmail{email: email, token: token})
	return nil
}

func (n *fakeNotifier) SendPasswordReset(email, token string) error {
	if n.failWith != nil {
		return n.failWith
	}
	n.resets = append(n.resets, sentEmail{email: email, token: token})
	return nil
}

// fakeGoogleVerifier returns a fixed profile or error.
type fakeGoogleVerifier struct {
	profile *provider.Profile
	err     error
}

func (v *fakeGoogleVerifier) ResolveProfile(_ context.Context, _ string) (*provider.Profile, error) {
	if v.err != nil {
		return nil, v.err
	}
	if v.profile == nil {
		return nil, errors.New("no profile configured")
	}
	return v.profile, nil
}
