// Package router maps the HTTP surface onto the service operations and
// translates domain outcomes into status codes. All bodies are JSON;
// errors carry a short human-readable message and nothing more.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/voicetodo/internal/auth"
	"github.com/patric-chuzhbe/voicetodo/internal/gzippedhttp"
	"github.com/patric-chuzhbe/voicetodo/internal/logger"
	"github.com/patric-chuzhbe/voicetodo/internal/models"
	"github.com/patric-chuzhbe/voicetodo/internal/user"
)

type taskService interface {
	Login(ctx context.Context, credentials models.LoginRequest) (*user.User, *models.Session, error)
	Logout(ctx context.Context, sessionID string) error
	GetUser(ctx context.Context, userID string) (*user.User, error)
	GetTasks(ctx context.Context, userID string) ([]models.Task, error)
	CreateTask(ctx context.Context, userID string, request models.NewTaskRequest) (*models.Task, error)
	UpdateTask(ctx context.Context, userID, taskID string, updates models.TaskUpdate) (*models.Task, error)
	DeleteTask(ctx context.Context, userID, taskID string) error
	GetInternalStats(ctx context.Context) (models.InternalStatsResponse, error)
	Ping(ctx context.Context) error
}

type authenticator interface {
	AuthenticateUser(h http.Handler) http.Handler
	SessionIDFromRequest(request *http.Request) (string, bool)
	SetSessionCookie(response http.ResponseWriter, sessionID string)
	ClearSessionCookie(response http.ResponseWriter)
}

type trustChecker interface {
	IsTrusted(request *http.Request) bool
}

type Router struct {
	service   taskService
	auth      authenticator
	ipChecker trustChecker
}

// New wires the routes. Task routes sit behind the session gate and
// gzip response compression; the login and logout routes manage the
// cookie themselves.
func New(service taskService, theAuth authenticator, ipChecker trustChecker) http.Handler {
	theRouter := &Router{
		service:   service,
		auth:      theAuth,
		ipChecker: ipChecker,
	}

	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		gzippedhttp.UngzipRequest,
	)

	router.Get(`/ping`, theRouter.GetPing)

	router.Post(`/api/auth/login`, theRouter.PostApiauthlogin)
	router.Post(`/api/auth/logout`, theRouter.PostApiauthlogout)
	router.With(theAuth.AuthenticateUser).Get(`/api/auth/me`, theRouter.GetApiauthme)

	router.Route(`/api/tasks`, func(tasks chi.Router) {
		tasks.Use(
			gzippedhttp.GzipResponse,
			theAuth.AuthenticateUser,
		)
		tasks.Get(`/`, theRouter.GetApitasks)
		tasks.Post(`/`, theRouter.PostApitasks)
		tasks.Patch(`/{taskID}`, theRouter.PatchApitasks)
		tasks.Delete(`/{taskID}`, theRouter.DeleteApitasks)
	})

	router.Get(`/api/internal/stats`, theRouter.GetApiinternalstats)

	return router
}

// GetPing reports storage health.
func (r *Router) GetPing(response http.ResponseWriter, request *http.Request) {
	if err := r.service.Ping(request.Context()); err != nil {
		logger.Log.Debugln("Error calling the `r.service.Ping()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	response.WriteHeader(http.StatusOK)
}

// PostApiauthlogin checks the credentials and opens a session,
// delivered to the client as an httpOnly cookie.
func (r *Router) PostApiauthlogin(response http.ResponseWriter, request *http.Request) {
	var credentials models.LoginRequest
	if err := json.NewDecoder(request.Body).Decode(&credentials); err != nil {
		writeMessage(response, http.StatusBadRequest, "Invalid request data")
		return
	}

	usr, session, err := r.service.Login(request.Context(), credentials)
	switch {
	case errors.Is(err, models.ErrValidation):
		writeMessage(response, http.StatusBadRequest, "Invalid request data")
		return
	case errors.Is(err, models.ErrInvalidCredentials):
		writeMessage(response, http.StatusUnauthorized, "Invalid credentials")
		return
	case err != nil:
		logger.Log.Debugln("Error calling the `r.service.Login()`: ", zap.Error(err))
		writeMessage(response, http.StatusInternalServerError, "Login failed")
		return
	}

	r.auth.SetSessionCookie(response, session.ID)
	writeJSON(response, http.StatusOK, models.AuthResponse{
		User: models.UserInfo{ID: usr.ID, Username: usr.Username},
	})
}

// PostApiauthlogout drops the session if the cookie still references
// one and clears the cookie either way.
func (r *Router) PostApiauthlogout(response http.ResponseWriter, request *http.Request) {
	if sessionID, ok := r.auth.SessionIDFromRequest(request); ok {
		if err := r.service.Logout(request.Context(), sessionID); err != nil {
			logger.Log.Debugln("Error calling the `r.service.Logout()`: ", zap.Error(err))
		}
	}

	r.auth.ClearSessionCookie(response)
	writeMessage(response, http.StatusOK, "Logged out successfully")
}

// GetApiauthme returns the authenticated user's public projection.
func (r *Router) GetApiauthme(response http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())

	usr, err := r.service.GetUser(request.Context(), userID)
	if err != nil {
		writeMessage(response, http.StatusUnauthorized, "User not found")
		return
	}

	writeJSON(response, http.StatusOK, models.AuthResponse{
		User: models.UserInfo{ID: usr.ID, Username: usr.Username},
	})
}

// GetApitasks lists the caller's tasks, newest first.
func (r *Router) GetApitasks(response http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())

	tasks, err := r.service.GetTasks(request.Context(), userID)
	if err != nil {
		logger.Log.Debugln("Error calling the `r.service.GetTasks()`: ", zap.Error(err))
		writeMessage(response, http.StatusInternalServerError, "Failed to fetch tasks")
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	writeJSON(response, http.StatusOK, tasks)
}

// PostApitasks creates a task owned by the caller.
func (r *Router) PostApitasks(response http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())

	var taskData models.NewTaskRequest
	if err := json.NewDecoder(request.Body).Decode(&taskData); err != nil {
		writeMessage(response, http.StatusBadRequest, "Invalid task data")
		return
	}

	task, err := r.service.CreateTask(request.Context(), userID, taskData)
	switch {
	case errors.Is(err, models.ErrValidation):
		writeMessage(response, http.StatusBadRequest, "Invalid task data")
		return
	case err != nil:
		logger.Log.Debugln("Error calling the `r.service.CreateTask()`: ", zap.Error(err))
		writeMessage(response, http.StatusInternalServerError, "Failed to create task")
		return
	}

	writeJSON(response, http.StatusCreated, task)
}

// PatchApitasks merges partial fields into the caller's task.
func (r *Router) PatchApitasks(response http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())
	taskID := chi.URLParam(request, "taskID")

	var updates models.TaskUpdate
	if err := json.NewDecoder(request.Body).Decode(&updates); err != nil {
		writeMessage(response, http.StatusBadRequest, "Failed to update task")
		return
	}

	task, err := r.service.UpdateTask(request.Context(), userID, taskID, updates)
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeMessage(response, http.StatusNotFound, "Task not found")
		return
	case err != nil:
		writeMessage(response, http.StatusBadRequest, "Failed to update task")
		return
	}

	writeJSON(response, http.StatusOK, task)
}

// DeleteApitasks removes the caller's task.
func (r *Router) DeleteApitasks(response http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())
	taskID := chi.URLParam(request, "taskID")

	err := r.service.DeleteTask(request.Context(), userID, taskID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeMessage(response, http.StatusNotFound, "Task not found")
		return
	case err != nil:
		writeMessage(response, http.StatusBadRequest, "Failed to delete task")
		return
	}

	writeMessage(response, http.StatusOK, "Task deleted successfully")
}

// GetApiinternalstats serves store totals to the trusted subnet only.
func (r *Router) GetApiinternalstats(response http.ResponseWriter, request *http.Request) {
	if !r.ipChecker.IsTrusted(request) {
		writeMessage(response, http.StatusForbidden, "Forbidden")
		return
	}

	stats, err := r.service.GetInternalStats(request.Context())
	if err != nil {
		logger.Log.Debugln("Error calling the `r.service.GetInternalStats()`: ", zap.Error(err))
		writeMessage(response, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}

	writeJSON(response, http.StatusOK, stats)
}

func writeJSON(response http.ResponseWriter, statusCode int, payload interface{}) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(statusCode)
	if err := json.NewEncoder(response).Encode(payload); err != nil {
		logger.Log.Debugln("Error encoding the response body: ", zap.Error(err))
	}
}

func writeMessage(response http.ResponseWriter, statusCode int, message string) {
	writeJSON(response, statusCode, models.MessageResponse{Message: message})
}
