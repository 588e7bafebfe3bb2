// Package memorystorage implements the storage contract over plain
// in-process maps. Nothing survives a restart; that is by contract,
// the service keeps a single user's to-do list for the lifetime of
// the process.
package memorystorage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	funk "github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/voicetodo/internal/models"
	"github.com/patric-chuzhbe/voicetodo/internal/user"
)

// DefaultSessionTTL is how long a session stays valid after login.
const DefaultSessionTTL = 24 * time.Hour

// MemoryStorage keeps users, tasks and sessions in maps guarded by a
// single RWMutex, so read-modify-write sequences like "check expiry,
// then delete" stay atomic under concurrent requests.
type MemoryStorage struct {
	mu         sync.RWMutex
	users      map[string]*user.User
	tasks      map[string]*models.Task
	sessions   map[string]*models.Session
	clock      clockwork.Clock
	sessionTTL time.Duration
}

type Option func(*MemoryStorage)

// WithClock substitutes the wall clock, letting tests drive session
// expiry and timestamp monotonicity with a fake clock.
func WithClock(clock clockwork.Clock) Option {
	return func(s *MemoryStorage) {
		s.clock = clock
	}
}

// WithSessionTTL overrides the default 24h session lifetime.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *MemoryStorage) {
		s.sessionTTL = ttl
	}
}

func New(options ...Option) (*MemoryStorage, error) {
	theStorage := &MemoryStorage{
		users:      map[string]*user.User{},
		tasks:      map[string]*models.Task{},
		sessions:   map[string]*models.Session{},
		clock:      clockwork.NewRealClock(),
		sessionTTL: DefaultSessionTTL,
	}
	for _, option := range options {
		option(theStorage)
	}

	return theStorage, nil
}

func (s *MemoryStorage) GetUser(ctx context.Context, id string) (*user.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	usr, found := s.users[id]
	if !found {
		return nil, false, nil
	}
	copied := *usr

	return &copied, true, nil
}

// GetUserByUsername is a linear scan, acceptable at this scale.
func (s *MemoryStorage) GetUserByUsername(ctx context.Context, username string) (*user.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	match := funk.Find(funk.Values(s.users), func(usr *user.User) bool {
		return usr.Username == username
	})
	if match == nil {
		return nil, false, nil
	}
	copied := *match.(*user.User)

	return &copied, true, nil
}

func (s *MemoryStorage) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	taken := funk.Contains(funk.Values(s.users), func(existing *user.User) bool {
		return existing.Username == usr.Username
	})
	if taken {
		return "", fmt.Errorf("username %q is already taken", usr.Username)
	}

	usr.ID = uuid.New().String()
	stored := *usr
	s.users[usr.ID] = &stored

	return usr.ID, nil
}

func (s *MemoryStorage) GetTasks(ctx context.Context, userID string) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := funk.Filter(funk.Values(s.tasks), func(task *models.Task) bool {
		return task.UserID == userID
	}).([]*models.Task)

	result := make([]models.Task, 0, len(owned))
	for _, task := range owned {
		result = append(result, *task)
	}

	// Most recent first.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (s *MemoryStorage) GetTask(ctx context.Context, id string) (*models.Task, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, found := s.tasks[id]
	if !found {
		return nil, false, nil
	}
	copied := *task

	return &copied, true, nil
}

func (s *MemoryStorage) CreateTask(ctx context.Context, taskData models.NewTask) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	priority := taskData.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}

	now := s.clock.Now()
	task := &models.Task{
		ID:                uuid.New().String(),
		Title:             taskData.Title,
		Completed:         false,
		Priority:          priority,
		ReminderDate:      taskData.ReminderDate,
		VoiceNoteData:     taskData.VoiceNoteData,
		VoiceNoteDuration: taskData.VoiceNoteDuration,
		UserID:            taskData.UserID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	s.tasks[task.ID] = task
	copied := *task

	return &copied, nil
}

// UpdateTask merges the set fields of `updates` over the stored task
// and refreshes UpdatedAt. The merge is shallow field replacement.
func (s *MemoryStorage) UpdateTask(ctx context.Context, id string, updates models.TaskUpdate) (*models.Task, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, found := s.tasks[id]
	if !found {
		return nil, false, nil
	}

	if updates.Title != nil {
		task.Title = *updates.Title
	}
	if updates.Completed != nil {
		task.Completed = *updates.Completed
	}
	if updates.Priority != nil {
		task.Priority = *updates.Priority
	}
	if updates.ReminderDate != nil {
		task.ReminderDate = updates.ReminderDate
	}
	if updates.VoiceNoteData != nil {
		task.VoiceNoteData = updates.VoiceNoteData
	}
	if updates.VoiceNoteDuration != nil {
		task.VoiceNoteDuration = updates.VoiceNoteDuration
	}
	task.UpdatedAt = s.clock.Now()
	copied := *task

	return &copied, true, nil
}

func (s *MemoryStorage) DeleteTask(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, found := s.tasks[id]
	if found {
		delete(s.tasks, id)
	}

	return found, nil
}

func (s *MemoryStorage) CreateSession(ctx context.Context, userID string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	session := &models.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	s.sessions[session.ID] = session
	copied := *session

	return &copied, nil
}

// GetSession treats an expired session exactly like an absent one and
// prunes the record on first access past its expiry.
func (s *MemoryStorage) GetSession(ctx context.Context, id string) (*models.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, found := s.sessions[id]
	if !found {
		return nil, false, nil
	}

	if session.ExpiresAt.Before(s.clock.Now()) {
		delete(s.sessions, id)
		return nil, false, nil
	}
	copied := *session

	return &copied, true, nil
}

func (s *MemoryStorage) DeleteSession(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, found := s.sessions[id]
	if found {
		delete(s.sessions, id)
	}

	return found, nil
}

// PruneExpiredSessions removes every session past its expiry and
// reports how many were dropped. Lazy deletion in GetSession already
// guarantees correctness; this only bounds physical growth.
func (s *MemoryStorage) PruneExpiredSessions(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	pruned := 0
	for id, session := range s.sessions {
		if session.ExpiresAt.Before(now) {
			delete(s.sessions, id)
			pruned++
		}
	}

	return pruned, nil
}

func (s *MemoryStorage) GetNumberOfTasks(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.tasks)), nil
}

func (s *MemoryStorage) GetNumberOfUsers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.users)), nil
}

func (s *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStorage) Close() error {
	return nil
}
