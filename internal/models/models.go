package models

import (
	"errors"
	"time"
)

// Priority holds the display priority of a task. It has no behavioral
// effect server-side beyond being stored and returned.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Task is the central entity of the service. Voice note fields are
// opaque to the core: VoiceNoteData carries a data-URI-style base64
// audio payload, VoiceNoteDuration a display string such as "0:15".
type Task struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Completed         bool       `json:"completed"`
	Priority          Priority   `json:"priority"`
	ReminderDate      *time.Time `json:"reminderDate"`
	VoiceNoteData     *string    `json:"voiceNoteData"`
	VoiceNoteDuration *string    `json:"voiceNoteDuration"`
	UserID            string     `json:"userId"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// Session binds an opaque token to a user for a fixed time-to-live.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewTask carries the fields the storage layer needs to create a task
// on behalf of a user. Optional fields stay nil when absent.
type NewTask struct {
	Title             string
	Priority          Priority
	ReminderDate      *time.Time
	VoiceNoteData     *string
	VoiceNoteDuration *string
	UserID            string
}

// TaskUpdate is a partial task: nil fields are left unchanged by the
// merge. There is no way to null-out an already set optional field.
type TaskUpdate struct {
	Title             *string    `json:"title"`
	Completed         *bool      `json:"completed"`
	Priority          *Priority  `json:"priority"`
	ReminderDate      *time.Time `json:"reminderDate"`
	VoiceNoteData     *string    `json:"voiceNoteData"`
	VoiceNoteDuration *string    `json:"voiceNoteDuration"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type NewTaskRequest struct {
	Title             string     `json:"title" validate:"required"`
	Priority          Priority   `json:"priority" validate:"omitempty,oneof=low normal high"`
	ReminderDate      *time.Time `json:"reminderDate"`
	VoiceNoteData     *string    `json:"voiceNoteData"`
	VoiceNoteDuration *string    `json:"voiceNoteDuration"`
}

// UserInfo is the public projection of a user returned by the auth
// endpoints. The password never leaves the server.
type UserInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type AuthResponse struct {
	User UserInfo `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// InternalStatsResponse is served to the trusted subnet only.
type InternalStatsResponse struct {
	Tasks int64 `json:"tasks"`
	Users int64 `json:"users"`
}

var (
	// ErrValidation marks malformed or missing required fields (HTTP 400).
	ErrValidation = errors.New("invalid request data")

	// ErrNotFound covers both a missing task and a task owned by another
	// user, so that existence of foreign tasks never leaks (HTTP 404).
	ErrNotFound = errors.New("task not found")

	// ErrInvalidCredentials is returned on a failed login (HTTP 401).
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotAuthenticated means no session cookie was presented (HTTP 401).
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionExpired means the cookie's session is gone or past its
	// expiry; the two cases are indistinguishable (HTTP 401).
	ErrSessionExpired = errors.New("session expired")

	// ErrUserNotFound means a session resolved to a user that no longer
	// exists (HTTP 401). Defensive: users are never deleted.
	ErrUserNotFound = errors.New("user not found")
)
