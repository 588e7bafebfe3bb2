// Package storage declares the contract every task-manager backend has
// to satisfy. The memory implementation is the only one shipped; a
// durable backend would plug in here without caller changes.
package storage

import (
	"context"

	"github.com/patric-chuzhbe/voicetodo/internal/models"
	"github.com/patric-chuzhbe/voicetodo/internal/user"
)

type Storage interface {
	// Users.
	GetUser(ctx context.Context, id string) (*user.User, bool, error)
	GetUserByUsername(ctx context.Context, username string) (*user.User, bool, error)
	CreateUser(ctx context.Context, usr *user.User) (string, error)

	// Tasks. GetTask performs no ownership check; ownership scoping is
	// the caller's responsibility.
	GetTasks(ctx context.Context, userID string) ([]models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, bool, error)
	CreateTask(ctx context.Context, task models.NewTask) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, updates models.TaskUpdate) (*models.Task, bool, error)
	DeleteTask(ctx context.Context, id string) (bool, error)

	// Sessions. GetSession hides and lazily deletes expired records.
	CreateSession(ctx context.Context, userID string) (*models.Session, error)
	GetSession(ctx context.Context, id string) (*models.Session, bool, error)
	DeleteSession(ctx context.Context, id string) (bool, error)
	PruneExpiredSessions(ctx context.Context) (int, error)

	GetNumberOfTasks(ctx context.Context) (int64, error)
	GetNumberOfUsers(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error

	Close() error
}
