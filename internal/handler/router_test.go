package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskpad/taskpad-go/internal/crypto"
	"github.com/taskpad/taskpad-go/internal/model"
	"github.com/taskpad/taskpad-go/internal/repository"
	"github.com/taskpad/taskpad-go/internal/service"
)

type testEnv struct {
	router http.Handler
	users  *repository.MemoryUserStore
	errs   *repository.MemoryErrorLogStore
	tokens *crypto.TokenManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := repository.NewMemoryUserStore()
	todos := repository.NewMemoryTodoStore()
	errs := repository.NewMemoryErrorLogStore()
	tokens := crypto.NewTokenManager("test-secret", time.Hour, time.Hour)

	respond := NewResponder(errs, "test")
	router := NewRouter(RouterConfig{
		Auth:    NewAuthHandler(service.NewAuthService(users, tokens, "test"), respond),
		Todos:   NewTodoHandler(service.NewTodoService(todos), respond),
		Respond: respond,
		Tokens:  tokens,
		Users:   users,
	})

	return &testEnv{router: router, users: users, errs: errs, tokens: tokens}
}

type response struct {
	status  int
	Success bool
	Message string
	Data    json.RawMessage
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "192.0.2.1:1234"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var payload struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload), "every response must be an envelope")

	return response{
		status:  rec.Code,
		Success: payload.Success,
		Message: payload.Message,
		Data:    payload.Data,
	}
}

func (e *testEnv) signup(t *testing.T, name, email, password string) model.AuthData {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/auth/signup", "", model.SignupRequest{
		Name: name, Email: email, Password: password,
	})
	require.Equal(t, http.StatusCreated, resp.status)

	var data model.AuthData
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return data
}

func decodeTodo(t *testing.T, raw json.RawMessage) model.Todo {
	t.Helper()
	var todo model.Todo
	require.NoError(t, json.Unmarshal(raw, &todo))
	return todo
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.status)
	assert.True(t, resp.Success)
}

func TestSignupCreateToggleListScenario(t *testing.T) {
	env := newTestEnv(t)

	data := env.signup(t, "Ann", "ann@x.com", "secret1")
	assert.Equal(t, "ann@x.com", data.User.Email)
	assert.NotEmpty(t, data.Token)

	created := env.do(t, http.MethodPost, "/api/todos", data.Token, model.CreateTodoRequest{Title: "Buy milk"})
	require.Equal(t, http.StatusCreated, created.status)
	todo := decodeTodo(t, created.Data)
	assert.False(t, todo.Completed)

	toggled := env.do(t, http.MethodPatch, "/api/todos/"+todo.ID+"/toggle", data.Token, nil)
	require.Equal(t, http.StatusOK, toggled.status)
	assert.True(t, decodeTodo(t, toggled.Data).Completed)

	list := env.do(t, http.MethodGet, "/api/todos", data.Token, nil)
	require.Equal(t, http.StatusOK, list.status)
	var todos []model.Todo
	require.NoError(t, json.Unmarshal(list.Data, &todos))
	require.Len(t, todos, 1)
	assert.Equal(t, todo.ID, todos[0].ID)
	assert.True(t, todos[0].Completed)
}

func TestSignupFailures(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "Ann", "ann@x.com", "secret1")

	resp := env.do(t, http.MethodPost, "/api/auth/signup", "", model.SignupRequest{
		Name: "A", Email: "new@x.com", Password: "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.status)
	assert.False(t, resp.Success)

	resp = env.do(t, http.MethodPost, "/api/auth/signup", "", model.SignupRequest{
		Name: "Ann", Email: "ann@x.com", Password: "secret1",
	})
	assert.Equal(t, http.StatusConflict, resp.status)
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "Ann", "ann@x.com", "secret1")

	resp := env.do(t, http.MethodPost, "/api/auth/login", "", model.LoginRequest{
		Email: "ann@x.com", Password: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.status)
	assert.Equal(t, "invalid email or password", resp.Message)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/todos", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)

	expiring := crypto.NewTokenManager("test-secret", -time.Minute, time.Hour)
	data := env.signup(t, "Ann", "ann@x.com", "secret1")
	expired, err := expiring.IssueSession(data.User.ID)
	require.NoError(t, err)

	resp = env.do(t, http.MethodGet, "/api/todos", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)
	assert.Equal(t, "Token expired", resp.Message)
}

func TestUpdatePartialViaAPI(t *testing.T) {
	env := newTestEnv(t)
	data := env.signup(t, "Ann", "ann@x.com", "secret1")

	created := env.do(t, http.MethodPost, "/api/todos", data.Token, model.CreateTodoRequest{
		Title: "Buy milk", Description: "2 liters",
	})
	todo := decodeTodo(t, created.Data)

	resp := env.do(t, http.MethodPut, "/api/todos/"+todo.ID, data.Token, map[string]any{"completed": true})
	require.Equal(t, http.StatusOK, resp.status)
	updated := decodeTodo(t, resp.Data)
	assert.True(t, updated.Completed)
	assert.Equal(t, "Buy milk", updated.Title)
	assert.Equal(t, "2 liters", updated.Description)
}

func TestTodoIDValidation(t *testing.T) {
	env := newTestEnv(t)
	data := env.signup(t, "Ann", "ann@x.com", "secret1")

	resp := env.do(t, http.MethodPut, "/api/todos/not-a-uuid", data.Token, map[string]any{"completed": true})
	assert.Equal(t, http.StatusBadRequest, resp.status)
	assert.Equal(t, "Invalid todo ID", resp.Message)

	resp = env.do(t, http.MethodDelete, "/api/todos/8f8e8d8c-0000-4000-8000-000000000000", data.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.status)
	assert.Equal(t, "Todo not found", resp.Message)
}

func TestCrossUserAccessIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	ann := env.signup(t, "Ann", "ann@x.com", "secret1")
	bob := env.signup(t, "Bob", "bob@x.com", "secret1")

	created := env.do(t, http.MethodPost, "/api/todos", ann.Token, model.CreateTodoRequest{Title: "private"})
	todo := decodeTodo(t, created.Data)

	for _, attempt := range []struct {
		method, path string
		body         any
	}{
		{http.MethodPut, "/api/todos/" + todo.ID, map[string]any{"title": "stolen"}},
		{http.MethodDelete, "/api/todos/" + todo.ID, nil},
		{http.MethodPatch, "/api/todos/" + todo.ID + "/toggle", nil},
	} {
		resp := env.do(t, attempt.method, attempt.path, bob.Token, attempt.body)
		assert.Equal(t, http.StatusNotFound, resp.status, "%s %s", attempt.method, attempt.path)
	}

	list := env.do(t, http.MethodGet, "/api/todos", bob.Token, nil)
	var todos []model.Todo
	require.NoError(t, json.Unmarshal(list.Data, &todos))
	assert.Empty(t, todos)
}

func TestDeleteTodo(t *testing.T) {
	env := newTestEnv(t)
	data := env.signup(t, "Ann", "ann@x.com", "secret1")

	created := env.do(t, http.MethodPost, "/api/todos", data.Token, model.CreateTodoRequest{Title: "task"})
	todo := decodeTodo(t, created.Data)

	resp := env.do(t, http.MethodDelete, "/api/todos/"+todo.ID, data.Token, nil)
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "Todo deleted successfully", resp.Message)

	resp = env.do(t, http.MethodDelete, "/api/todos/"+todo.ID, data.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.status)
}

func TestResetPasswordFlow(t *testing.T) {
	env := newTestEnv(t)
	data := env.signup(t, "Ann", "ann@x.com", "secret1")

	resp := env.do(t, http.MethodPost, "/api/auth/forgot-password", "", model.ForgotPasswordRequest{Email: "ann@x.com"})
	assert.Equal(t, http.StatusOK, resp.status)

	// The token travels out of band; mint one directly for the flow.
	reset, err := env.tokens.IssueReset(data.User.ID)
	require.NoError(t, err)

	resp = env.do(t, http.MethodPost, "/api/auth/reset-password", "", model.ResetPasswordRequest{
		Token: reset, NewPassword: "newsecret",
	})
	assert.Equal(t, http.StatusOK, resp.status)

	login := env.do(t, http.MethodPost, "/api/auth/login", "", model.LoginRequest{
		Email: "ann@x.com", Password: "newsecret",
	})
	assert.Equal(t, http.StatusOK, login.status)
}

func TestResetPasswordRejectsSessionToken(t *testing.T) {
	env := newTestEnv(t)
	data := env.signup(t, "Ann", "ann@x.com", "secret1")

	resp := env.do(t, http.MethodPost, "/api/auth/reset-password", "", model.ResetPasswordRequest{
		Token: data.Token, NewPassword: "newsecret",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.status)
	assert.Equal(t, "Invalid reset token", resp.Message)
}

func TestUnmatchedRouteRecorded(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.status)
	assert.Equal(t, "Not Found - /api/nothing-here", resp.Message)

	entries := env.errs.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, http.StatusNotFound, entries[0].StatusCode)
	assert.Equal(t, http.MethodGet, entries[0].Method)
	assert.Equal(t, "/api/nothing-here", entries[0].Path)
	assert.Equal(t, "192.0.2.1", entries[0].IP)
}

func TestPanicRecordedWithStack(t *testing.T) {
	errs := repository.NewMemoryErrorLogStore()
	respond := NewResponder(errs, "test")

	panicky := respond.Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	rec := httptest.NewRecorder()
	panicky.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	entries := errs.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, http.StatusInternalServerError, entries[0].StatusCode)
	assert.NotEmpty(t, entries[0].Stack)
}

func TestMalformedBody(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
