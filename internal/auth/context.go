// Package auth keeps the current authenticated identity. It supplies the
// owner email for event creation and the logout capability; credential
// verification itself happens upstream.
package auth

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/eventhub/event-gateway/internal/clients"
)

const sessionKey = "auth_session"

// Storage persists the session across restarts.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Context holds the logged-in user's session.
type Context struct {
	mu       sync.RWMutex
	session  clients.Session
	loggedIn bool

	storage Storage
	logger  *zap.Logger
}

func NewContext(storage Storage, logger *zap.Logger) *Context {
	return &Context{
		storage: storage,
		logger:  logger,
	}
}

// Restore loads a persisted session, discarding it when its access token has
// already expired.
func (c *Context) Restore(ctx context.Context) error {
	raw, ok, err := c.storage.Get(ctx, sessionKey)
	if err != nil || !ok {
		return err
	}

	var session clients.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		c.logger.Warn("Discarding unreadable persisted session", zap.Error(err))
		return c.storage.Delete(ctx, sessionKey)
	}

	if tokenExpired(session.AccessToken) {
		c.logger.Info("Persisted session expired", zap.String("email", session.User.Email))
		return c.storage.Delete(ctx, sessionKey)
	}

	c.mu.Lock()
	c.session = session
	c.loggedIn = true
	c.mu.Unlock()

	c.logger.Info("Session restored", zap.String("email", session.User.Email))
	return nil
}

// SetSession installs and persists a freshly obtained session.
func (c *Context) SetSession(ctx context.Context, session clients.Session) error {
	c.mu.Lock()
	c.session = session
	c.loggedIn = true
	c.mu.Unlock()

	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.storage.Set(ctx, sessionKey, string(raw))
}

// Logout drops the current session, both in memory and persisted.
func (c *Context) Logout(ctx context.Context) error {
	c.mu.Lock()
	c.session = clients.Session{}
	c.loggedIn = false
	c.mu.Unlock()

	return c.storage.Delete(ctx, sessionKey)
}

// Current returns the active session, with ok false when nobody is logged in.
func (c *Context) Current() (clients.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session, c.loggedIn
}

// Email returns the authenticated user's email, or "" when logged out.
func (c *Context) Email() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loggedIn {
		return ""
	}
	return c.session.User.Email
}

// tokenExpired checks the token's registered expiry claim without verifying
// the signature; verification is the server's job, this only avoids
// restoring a session the server would reject anyway. Tokens without an
// expiry claim, or that do not parse at all, are kept and left to the
// server to judge.
func tokenExpired(tokenString string) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(time.Now())
}
