// Package mockstorage provides a testify-based mock implementation
// of the storage contract. It is used for unit testing HTTP handlers
// by simulating storage behavior, in particular the failure paths the
// memory storage can never produce on its own.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/voicetodo/internal/models"
	"github.com/patric-chuzhbe/voicetodo/internal/user"
)

// StorageMock implements storage.Storage via testify's mock.Mock.
type StorageMock struct {
	mock.Mock
}

// GetUser mocks fetching a user by ID.
func (m *StorageMock) GetUser(ctx context.Context, id string) (*user.User, bool, error) {
	args := m.Called(ctx, id)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

// GetUserByUsername mocks the username linear scan.
func (m *StorageMock) GetUserByUsername(ctx context.Context, username string) (*user.User, bool, error) {
	args := m.Called(ctx, username)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

// CreateUser mocks user creation and returns a generated ID.
func (m *StorageMock) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	args := m.Called(ctx, usr)
	return args.String(0), args.Error(1)
}

// GetTasks mocks listing a user's tasks.
func (m *StorageMock) GetTasks(ctx context.Context, userID string) ([]models.Task, error) {
	args := m.Called(ctx, userID)
	tasks, _ := args.Get(0).([]models.Task)
	return tasks, args.Error(1)
}

// GetTask mocks fetching a single task without ownership checks.
func (m *StorageMock) GetTask(ctx context.Context, id string) (*models.Task, bool, error) {
	args := m.Called(ctx, id)
	task, _ := args.Get(0).(*models.Task)
	return task, args.Bool(1), args.Error(2)
}

// CreateTask mocks task creation.
func (m *StorageMock) CreateTask(ctx context.Context, taskData models.NewTask) (*models.Task, error) {
	args := m.Called(ctx, taskData)
	task, _ := args.Get(0).(*models.Task)
	return task, args.Error(1)
}

// UpdateTask mocks the partial task merge.
func (m *StorageMock) UpdateTask(ctx context.Context, id string, updates models.TaskUpdate) (*models.Task, bool, error) {
	args := m.Called(ctx, id, updates)
	task, _ := args.Get(0).(*models.Task)
	return task, args.Bool(1), args.Error(2)
}

// DeleteTask mocks task removal.
func (m *StorageMock) DeleteTask(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// CreateSession mocks session creation at login.
func (m *StorageMock) CreateSession(ctx context.Context, userID string) (*models.Session, error) {
	args := m.Called(ctx, userID)
	session, _ := args.Get(0).(*models.Session)
	return session, args.Error(1)
}

// GetSession mocks the session lookup including the lazily-expired case.
func (m *StorageMock) GetSession(ctx context.Context, id string) (*models.Session, bool, error) {
	args := m.Called(ctx, id)
	session, _ := args.Get(0).(*models.Session)
	return session, args.Bool(1), args.Error(2)
}

// DeleteSession mocks the explicit logout deletion.
func (m *StorageMock) DeleteSession(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// PruneExpiredSessions mocks the background sweep.
func (m *StorageMock) PruneExpiredSessions(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// GetNumberOfTasks mocks the stats counter over all tasks.
func (m *StorageMock) GetNumberOfTasks(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// GetNumberOfUsers mocks the stats counter over all users.
func (m *StorageMock) GetNumberOfUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Ping mocks the health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks closing the storage and releasing resources.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
