// Package api is the HTTP client for the auth API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/quiz-auth/internal/domain/entity"
	"github.com/oksasatya/quiz-auth/pkg/response"
)

// TokenSource returns the bearer token to attach, or "" for none.
type TokenSource func() string

type Client struct {
	BaseURL string
	HTTP    *http.Client
	Token   TokenSource
	Logger  *logrus.Logger
}

// New returns a client for baseURL (e.g. http://localhost:5000/api) with a bounded timeout.
func New(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Logger:  logger,
	}
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string            `json:"token"`
	User  entity.PublicUser `json:"user"`
}

type UserList struct {
	Count int                 `json:"count"`
	Users []entity.PublicUser `json:"users"`
}

type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type registerRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     entity.Role `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Register(ctx context.Context, name, email, password string, role entity.Role) (*AuthResult, error) {
	var out AuthResult
	body := registerRequest{Name: name, Email: email, Password: password, Role: role}
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var out AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListUsers(ctx context.Context) (*UserList, error) {
	var out UserList
	if err := c.do(ctx, http.MethodGet, "/auth/users", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me resolves the current token to its user.
func (c *Client) Me(ctx context.Context) (*entity.PublicUser, error) {
	var out struct {
		User entity.PublicUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != nil {
		if tok := c.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		c.Logger.WithError(err).WithField("path", path).Debug("api request failed")
		return networkError(err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return networkError(err)
	}

	var env response.APIResponse[json.RawMessage]
	if err := json.Unmarshal(raw, &env); err != nil {
		c.Logger.WithFields(logrus.Fields{"path": path, "status": res.StatusCode}).Debug("non-envelope response")
		if res.StatusCode >= 400 {
			return statusError(res.StatusCode, "")
		}
		return &Error{Kind: ErrInternal, Status: res.StatusCode, Message: "unexpected response from server", Err: err}
	}

	if res.StatusCode >= 400 || !env.Success {
		return statusError(res.StatusCode, env.Message)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &Error{Kind: ErrInternal, Status: res.StatusCode, Message: "unexpected response from server", Err: err}
		}
	}
	return nil
}
