// Package auth provides the session-cookie middleware and helpers that
// gate every protected HTTP request. The cookie value is the opaque
// session token issued by the storage layer; there is nothing to sign
// or decode.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/patric-chuzhbe/voicetodo/internal/logger"
	"github.com/patric-chuzhbe/voicetodo/internal/models"
	"github.com/patric-chuzhbe/voicetodo/internal/user"
)

type sessionKeeper interface {
	GetSession(ctx context.Context, id string) (*models.Session, bool, error)
}

type userKeeper interface {
	GetUser(ctx context.Context, id string) (*user.User, bool, error)
}

type sessionStorage interface {
	sessionKeeper
	userKeeper
}

// Auth resolves the session cookie into an authenticated user id.
// The check runs on every protected request; nothing is cached between
// requests.
type Auth struct {
	db             sessionStorage
	authCookieName string
	cookieMaxAge   time.Duration
	secureCookies  bool
}

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

// UserIDKey is the context key used to store and retrieve the authenticated user's ID.
const UserIDKey ContextKey = "userID"

// New creates an Auth gate over the given session storage.
// secureCookies should be true in production environments only.
func New(
	db sessionStorage,
	authCookieName string,
	cookieMaxAge time.Duration,
	secureCookies bool,
) *Auth {
	return &Auth{
		db:             db,
		authCookieName: authCookieName,
		cookieMaxAge:   cookieMaxAge,
		secureCookies:  secureCookies,
	}
}

// UserIDFromContext extracts the authenticated user id placed into the
// request context by AuthenticateUser.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

// SessionIDFromRequest reads the raw session token from the request
// cookie, reporting whether the cookie was present at all.
func (a *Auth) SessionIDFromRequest(request *http.Request) (string, bool) {
	cookie, err := request.Cookie(a.authCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	return cookie.Value, true
}

// SetSessionCookie writes the session cookie: httpOnly, SameSite=Lax,
// Max-Age equal to the session TTL, Secure in production.
func (a *Auth) SetSessionCookie(response http.ResponseWriter, sessionID string) {
	http.SetCookie(response, &http.Cookie{
		Name:     a.authCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(a.cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   a.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie on the client.
func (a *Auth) ClearSessionCookie(response http.ResponseWriter) {
	http.SetCookie(response, &http.Cookie{
		Name:     a.authCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// AuthenticateUser is an HTTP middleware that resolves the session
// cookie to a user id and stores it in the request context. It rejects
// with 401 when the cookie is absent, the session is missing or
// expired, or the session's user no longer exists.
func (a *Auth) AuthenticateUser(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		userID, err := a.resolveUserID(request)
		switch {
		case errors.Is(err, models.ErrNotAuthenticated):
			writeUnauthorized(response, "Not authenticated")
			return
		case errors.Is(err, models.ErrSessionExpired):
			writeUnauthorized(response, "Session expired")
			return
		case errors.Is(err, models.ErrUserNotFound):
			writeUnauthorized(response, "User not found")
			return
		case err != nil:
			logger.Log.Debugln("Error calling the `a.resolveUserID()`: ", zap.Error(err))
			response.WriteHeader(http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(request.Context(), UserIDKey, userID)
		h.ServeHTTP(response, request.WithContext(ctx))
	}

	return http.HandlerFunc(middleware)
}

// resolveUserID walks the cookie through the session and user lookups
// and classifies every dead end with a sentinel from models.
func (a *Auth) resolveUserID(request *http.Request) (string, error) {
	sessionID, ok := a.SessionIDFromRequest(request)
	if !ok {
		return "", models.ErrNotAuthenticated
	}

	session, found, err := a.db.GetSession(request.Context(), sessionID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", models.ErrSessionExpired
	}

	_, found, err = a.db.GetUser(request.Context(), session.UserID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", models.ErrUserNotFound
	}

	return session.UserID, nil
}

func writeUnauthorized(response http.ResponseWriter, message string) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(response).Encode(models.MessageResponse{Message: message})
}
