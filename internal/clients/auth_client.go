package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eventhub/event-gateway/internal/models"
)

// User is the authenticated identity the remote service hands back.
type User struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// Session is the result of a successful login or registration.
type Session struct {
	AccessToken string `json:"accessToken"`
	User        User   `json:"user"`
}

// AuthClient handles login and registration against the remote service.
// Token storage is not its concern; the auth context keeps the session.
type AuthClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewAuthClient(baseURL string, timeout time.Duration, logger *zap.Logger) *AuthClient {
	return &AuthClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for an access token and user identity.
func (c *AuthClient) Login(ctx context.Context, email, password string) (Session, error) {
	return c.post(ctx, "/api/v1/login", loginRequest{Email: email, Password: password})
}

// Register creates a new account and returns its session.
func (c *AuthClient) Register(ctx context.Context, fullName, email, password string) (Session, error) {
	return c.post(ctx, "/api/v1/register", registerRequest{
		FullName: fullName,
		Email:    email,
		Password: password,
	})
}

func (c *AuthClient) post(ctx context.Context, path string, body interface{}) (Session, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return Session{}, err
	}

	url := fmt.Sprintf("%s%s", c.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return Session{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("Auth request failed", zap.String("path", path), zap.Error(err))
		return Session{}, &models.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errBody errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		message := errBody.Message
		if message == "" {
			message = errBody.Error
		}
		c.logger.Error("Auth request rejected",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", message))
		return Session{}, &models.ServerError{Status: resp.StatusCode, Message: message}
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		c.logger.Error("Failed to decode auth response", zap.Error(err))
		return Session{}, &models.ServerError{Status: resp.StatusCode, Message: "malformed auth payload"}
	}
	if session.AccessToken == "" {
		return Session{}, &models.ServerError{Status: resp.StatusCode, Message: "auth response missing access token"}
	}
	return session, nil
}
