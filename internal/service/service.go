// Package service implements the application operations: credential
// login, session logout, and ownership-scoped task CRUD. Every task
// operation takes the authenticated user id as an implicit scope.
package service

import (
	"context"
	"fmt"
	"strings"

	validator "github.com/go-playground/validator/v10"

	"github.com/patric-chuzhbe/voicetodo/internal/models"
	"github.com/patric-chuzhbe/voicetodo/internal/user"
)

type userKeeper interface {
	GetUser(ctx context.Context, id string) (*user.User, bool, error)
	GetUserByUsername(ctx context.Context, username string) (*user.User, bool, error)
}

type taskKeeper interface {
	GetTasks(ctx context.Context, userID string) ([]models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, bool, error)
	CreateTask(ctx context.Context, task models.NewTask) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, updates models.TaskUpdate) (*models.Task, bool, error)
	DeleteTask(ctx context.Context, id string) (bool, error)
}

type sessionKeeper interface {
	CreateSession(ctx context.Context, userID string) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) (bool, error)
}

type statsKeeper interface {
	GetNumberOfTasks(ctx context.Context) (int64, error)
	GetNumberOfUsers(ctx context.Context) (int64, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type storage interface {
	userKeeper
	taskKeeper
	sessionKeeper
	statsKeeper
	pinger
}

type Service struct {
	db       storage
	validate *validator.Validate
}

func New(db storage) *Service {
	return &Service{
		db:       db,
		validate: validator.New(),
	}
}

// Login checks the credentials with a plain string compare and opens a
// new session for the user. Unknown username and wrong password are
// deliberately indistinguishable.
func (s *Service) Login(ctx context.Context, credentials models.LoginRequest) (*user.User, *models.Session, error) {
	if err := s.validate.Struct(credentials); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	usr, found, err := s.db.GetUserByUsername(ctx, credentials.Username)
	if err != nil {
		return nil, nil, err
	}
	if !found || usr.Password != credentials.Password {
		return nil, nil, models.ErrInvalidCredentials
	}

	session, err := s.db.CreateSession(ctx, usr.ID)
	if err != nil {
		return nil, nil, err
	}

	return usr, session, nil
}

// Logout removes the session if it still exists. A missing session is
// not an error; the client ends up logged out either way.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	_, err := s.db.DeleteSession(ctx, sessionID)
	return err
}

func (s *Service) GetUser(ctx context.Context, userID string) (*user.User, error) {
	usr, found, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.ErrUserNotFound
	}

	return usr, nil
}

// GetTasks returns the user's tasks in store order (newest first).
func (s *Service) GetTasks(ctx context.Context, userID string) ([]models.Task, error) {
	return s.db.GetTasks(ctx, userID)
}

func (s *Service) CreateTask(ctx context.Context, userID string, request models.NewTaskRequest) (*models.Task, error) {
	request.Title = strings.TrimSpace(request.Title)
	if err := s.validate.Struct(request); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	return s.db.CreateTask(ctx, models.NewTask{
		Title:             request.Title,
		Priority:          request.Priority,
		ReminderDate:      request.ReminderDate,
		VoiceNoteData:     request.VoiceNoteData,
		VoiceNoteDuration: request.VoiceNoteDuration,
		UserID:            userID,
	})
}

// UpdateTask merges the provided fields into the task. A task that does
// not exist and a task owned by another user both yield ErrNotFound, so
// existence of foreign tasks never leaks.
func (s *Service) UpdateTask(ctx context.Context, userID, taskID string, updates models.TaskUpdate) (*models.Task, error) {
	if err := validateUpdates(updates); err != nil {
		return nil, err
	}

	if err := s.checkOwnership(ctx, userID, taskID); err != nil {
		return nil, err
	}

	task, found, err := s.db.UpdateTask(ctx, taskID, updates)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.ErrNotFound
	}

	return task, nil
}

// DeleteTask applies the same ownership-or-not-found conflation as
// UpdateTask before removing the task.
func (s *Service) DeleteTask(ctx context.Context, userID, taskID string) error {
	if err := s.checkOwnership(ctx, userID, taskID); err != nil {
		return err
	}

	found, err := s.db.DeleteTask(ctx, taskID)
	if err != nil {
		return err
	}
	if !found {
		return models.ErrNotFound
	}

	return nil
}

// GetInternalStats returns totals over all users and tasks for the
// trusted-subnet stats endpoint.
func (s *Service) GetInternalStats(ctx context.Context) (models.InternalStatsResponse, error) {
	tasks, err := s.db.GetNumberOfTasks(ctx)
	if err != nil {
		return models.InternalStatsResponse{}, err
	}

	users, err := s.db.GetNumberOfUsers(ctx)
	if err != nil {
		return models.InternalStatsResponse{}, err
	}

	return models.InternalStatsResponse{
		Tasks: tasks,
		Users: users,
	}, nil
}

// Ping checks the health of the storage layer.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Service) checkOwnership(ctx context.Context, userID, taskID string) error {
	task, found, err := s.db.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if !found || task.UserID != userID {
		return models.ErrNotFound
	}

	return nil
}

func validateUpdates(updates models.TaskUpdate) error {
	if updates.Title != nil && strings.TrimSpace(*updates.Title) == "" {
		return fmt.Errorf("%w: title must not be empty", models.ErrValidation)
	}
	if updates.Priority != nil {
		switch *updates.Priority {
		case models.PriorityLow, models.PriorityNormal, models.PriorityHigh:
		default:
			return fmt.Errorf("%w: unknown priority %q", models.ErrValidation, *updates.Priority)
		}
	}

	return nil
}
