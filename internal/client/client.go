// Package client is a typed HTTP client for the taskpad API. It wraps the
// envelope protocol: callers get decoded payloads or an *APIError carrying
// the status and server message.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/taskpad/taskpad-go/internal/model"
)

// APIError is a non-success response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// Client calls the taskpad API. It is safe for concurrent use once the
// token is set.
type Client struct {
	baseURL string
	hc      *http.Client
	token   string
}

// New creates a Client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: 10 * time.Second},
	}
}

// SetToken installs the bearer token used on protected routes.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Signup registers a new account and returns the issued token and user.
func (c *Client) Signup(ctx context.Context, name, email, password string) (*model.AuthData, error) {
	var data model.AuthData
	err := c.do(ctx, http.MethodPost, "/api/auth/signup",
		model.SignupRequest{Name: name, Email: email, Password: password}, &data)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// Login authenticates and returns the issued token and user.
func (c *Client) Login(ctx context.Context, email, password string) (*model.AuthData, error) {
	var data model.AuthData
	err := c.do(ctx, http.MethodPost, "/api/auth/login",
		model.LoginRequest{Email: email, Password: password}, &data)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// ForgotPassword requests a password reset for the given email.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/forgot-password",
		model.ForgotPasswordRequest{Email: email}, nil)
}

// ResetPassword redeems a reset token for a new password.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/reset-password",
		model.ResetPasswordRequest{Token: token, NewPassword: newPassword}, nil)
}

// Todos lists the caller's todos, newest first.
func (c *Client) Todos(ctx context.Context) ([]model.Todo, error) {
	var todos []model.Todo
	if err := c.do(ctx, http.MethodGet, "/api/todos", nil, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// CreateTodo creates a todo.
func (c *Client) CreateTodo(ctx context.Context, title, description string) (*model.Todo, error) {
	var todo model.Todo
	err := c.do(ctx, http.MethodPost, "/api/todos",
		model.CreateTodoRequest{Title: title, Description: description}, &todo)
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// UpdateTodo applies a partial update; nil fields in req are left unchanged.
func (c *Client) UpdateTodo(ctx context.Context, id string, req model.UpdateTodoRequest) (*model.Todo, error) {
	var todo model.Todo
	if err := c.do(ctx, http.MethodPut, "/api/todos/"+url.PathEscape(id), req, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// DeleteTodo removes a todo.
func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/todos/"+url.PathEscape(id), nil, nil)
}

// ToggleTodo flips a todo's completion flag and returns the updated record.
func (c *Client) ToggleTodo(ctx context.Context, id string) (*model.Todo, error) {
	var todo model.Todo
	err := c.do(ctx, http.MethodPatch, "/api/todos/"+url.PathEscape(id)+"/toggle", nil, &todo)
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// envelope mirrors model.Envelope with the payload left raw so each caller
// can decode into its own type.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	if resp.StatusCode >= 400 || !env.Success {
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decoding payload: %w", err)
		}
	}
	return nil
}
