package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/taskpad/taskpad-go/internal/model"
)

// In-memory store implementations mirroring the SQL repositories. They back
// the test suites and DB-less local runs; the semantics (sentinel errors,
// owner scoping, ordering) match the MySQL versions exactly.

// MemoryUserStore is an in-memory UserRepository equivalent.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]model.User
}

// NewMemoryUserStore creates an empty MemoryUserStore.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]model.User)}
}

func (s *MemoryUserStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			copied := u
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *MemoryUserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := u
	return &copied, nil
}

func (s *MemoryUserStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	s.users[id] = u
	return nil
}

// Delete removes a user. Only the in-memory store offers this; it exists so
// tests can exercise the deleted-account path of the auth gate.
func (s *MemoryUserStore) Delete(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

// MemoryTodoStore is an in-memory TodoRepository equivalent.
type MemoryTodoStore struct {
	mu    sync.RWMutex
	todos map[string]model.Todo
}

// NewMemoryTodoStore creates an empty MemoryTodoStore.
func NewMemoryTodoStore() *MemoryTodoStore {
	return &MemoryTodoStore{todos: make(map[string]model.Todo)}
}

func (s *MemoryTodoStore) Create(_ context.Context, todo *model.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	todo.ID = uuid.NewString()
	now := time.Now().UTC()
	todo.CreatedAt = now
	todo.UpdatedAt = now
	s.todos[todo.ID] = *todo
	return nil
}

func (s *MemoryTodoStore) ListByUser(_ context.Context, userID string) ([]model.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	todos := []model.Todo{}
	for _, t := range s.todos {
		if t.UserID == userID {
			todos = append(todos, t)
		}
	}
	sort.Slice(todos, func(i, j int) bool {
		return todos[i].CreatedAt.After(todos[j].CreatedAt)
	})
	return todos, nil
}

func (s *MemoryTodoStore) GetByID(_ context.Context, userID, id string) (*model.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.todos[id]
	if !ok || t.UserID != userID {
		return nil, ErrTodoNotFound
	}
	copied := t
	return &copied, nil
}

func (s *MemoryTodoStore) Update(_ context.Context, todo *model.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.todos[todo.ID]
	if !ok || existing.UserID != todo.UserID {
		return ErrTodoNotFound
	}
	s.todos[todo.ID] = *todo
	return nil
}

func (s *MemoryTodoStore) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.todos[id]
	if !ok || t.UserID != userID {
		return ErrTodoNotFound
	}
	delete(s.todos, id)
	return nil
}

// MemoryErrorLogStore is an in-memory ErrorLogRepository equivalent.
type MemoryErrorLogStore struct {
	mu      sync.Mutex
	nextID  int64
	entries []model.ErrorLog
}

// NewMemoryErrorLogStore creates an empty MemoryErrorLogStore.
func NewMemoryErrorLogStore() *MemoryErrorLogStore {
	return &MemoryErrorLogStore{}
}

func (s *MemoryErrorLogStore) Insert(_ context.Context, entry *model.ErrorLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	entry.ID = s.nextID
	entry.CreatedAt = time.Now().UTC()
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *MemoryErrorLogStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	var purged int64
	for _, e := range s.entries {
		if e.CreatedAt.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return purged, nil
}

// Entries returns a snapshot of the stored entries.
func (s *MemoryErrorLogStore) Entries() []model.ErrorLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.ErrorLog, len(s.entries))
	copy(out, s.entries)
	return out
}
