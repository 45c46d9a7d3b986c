package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eventhub/event-gateway/internal/auth"
	"github.com/eventhub/event-gateway/internal/clients"
	"github.com/eventhub/event-gateway/internal/models"
)

// Authenticator performs the upstream credential exchange.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (clients.Session, error)
	Register(ctx context.Context, fullName, email, password string) (clients.Session, error)
}

type AuthHandler struct {
	client  Authenticator
	authCtx *auth.Context
	logger  *zap.Logger
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func NewAuthHandler(client Authenticator, authCtx *auth.Context, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		client:  client,
		authCtx: authCtx,
		logger:  logger,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.client.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Error("Login failed", zap.String("email", req.Email), zap.Error(err))
		respondAuthError(c, err)
		return
	}

	if err := h.authCtx.SetSession(c.Request.Context(), session); err != nil {
		h.logger.Warn("Failed to persist session", zap.Error(err))
	}

	h.logger.Info("User logged in", zap.String("email", session.User.Email))
	c.JSON(http.StatusOK, gin.H{"user": session.User})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.client.Register(c.Request.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		h.logger.Error("Registration failed", zap.String("email", req.Email), zap.Error(err))
		respondAuthError(c, err)
		return
	}

	if err := h.authCtx.SetSession(c.Request.Context(), session); err != nil {
		h.logger.Warn("Failed to persist session", zap.Error(err))
	}

	h.logger.Info("User registered", zap.String("email", session.User.Email))
	c.JSON(http.StatusCreated, gin.H{"user": session.User})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authCtx.Logout(c.Request.Context()); err != nil {
		h.logger.Warn("Failed to clear persisted session", zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// respondAuthError passes upstream credential rejections through with their
// status instead of blaming the gateway.
func respondAuthError(c *gin.Context, err error) {
	var srvErr *models.ServerError
	if errors.As(err, &srvErr) && srvErr.Status >= 400 && srvErr.Status < 500 {
		message := srvErr.Message
		if message == "" {
			message = "Authentication failed"
		}
		c.JSON(srvErr.Status, gin.H{"error": message})
		return
	}
	respondError(c, err)
}

// Me reports the current identity for the presentation layer.
func (h *AuthHandler) Me(c *gin.Context) {
	session, ok := h.authCtx.Current()
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not logged in"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": session.User})
}
