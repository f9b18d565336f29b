package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/taskpad/taskpad-go/internal/model"
	"github.com/taskpad/taskpad-go/internal/repository"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 1000
)

var (
	ErrTitleRequired      = errors.New("title is required")
	ErrTitleTooLong       = errors.New("title cannot exceed 200 characters")
	ErrDescriptionTooLong = errors.New("description cannot exceed 1000 characters")
	ErrInvalidTodoID      = errors.New("invalid todo id")
	ErrTodoNotFound       = errors.New("todo not found")
)

// TodoStore is the persistence surface TodoService needs. Implementations
// scope every operation to the owning user id.
type TodoStore interface {
	Create(ctx context.Context, todo *model.Todo) error
	ListByUser(ctx context.Context, userID string) ([]model.Todo, error)
	GetByID(ctx context.Context, userID, id string) (*model.Todo, error)
	Update(ctx context.Context, todo *model.Todo) error
	Delete(ctx context.Context, userID, id string) error
}

// TodoService handles todo business logic. The userID argument on every
// method is the authenticated caller; a todo owned by anyone else is
// indistinguishable from a missing one.
type TodoService struct {
	todos TodoStore
}

// NewTodoService creates a new TodoService.
func NewTodoService(todos TodoStore) *TodoService {
	return &TodoService{todos: todos}
}

// List returns all todos owned by the caller, newest-created first.
func (s *TodoService) List(ctx context.Context, userID string) ([]model.Todo, error) {
	return s.todos.ListByUser(ctx, userID)
}

// Create validates and stores a new todo. The completion flag starts false
// regardless of input.
func (s *TodoService) Create(ctx context.Context, userID string, req model.CreateTodoRequest) (model.Todo, error) {
	title, err := validateTitle(req.Title)
	if err != nil {
		return model.Todo{}, err
	}

	description, err := validateDescription(req.Description)
	if err != nil {
		return model.Todo{}, err
	}

	todo := model.Todo{
		UserID:      userID,
		Title:       title,
		Description: description,
		Completed:   false,
	}

	if err := s.todos.Create(ctx, &todo); err != nil {
		return model.Todo{}, err
	}
	return todo, nil
}

// Update applies a partial update: nil fields keep their stored value,
// non-nil fields overwrite after trimming and validation.
func (s *TodoService) Update(ctx context.Context, userID, id string, req model.UpdateTodoRequest) (model.Todo, error) {
	if err := validateID(id); err != nil {
		return model.Todo{}, err
	}

	todo, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return model.Todo{}, err
	}

	if req.Title != nil {
		title, err := validateTitle(*req.Title)
		if err != nil {
			return model.Todo{}, err
		}
		todo.Title = title
	}
	if req.Description != nil {
		description, err := validateDescription(*req.Description)
		if err != nil {
			return model.Todo{}, err
		}
		todo.Description = description
	}
	if req.Completed != nil {
		todo.Completed = *req.Completed
	}

	todo.UpdatedAt = time.Now().UTC()
	if err := s.todos.Update(ctx, todo); err != nil {
		return model.Todo{}, err
	}
	return *todo, nil
}

// Delete removes a todo owned by the caller.
func (s *TodoService) Delete(ctx context.Context, userID, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := s.todos.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return ErrTodoNotFound
		}
		return err
	}
	return nil
}

// Toggle flips the completion flag. The new value is never client-supplied.
func (s *TodoService) Toggle(ctx context.Context, userID, id string) (model.Todo, error) {
	if err := validateID(id); err != nil {
		return model.Todo{}, err
	}

	todo, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return model.Todo{}, err
	}

	todo.Completed = !todo.Completed
	todo.UpdatedAt = time.Now().UTC()
	if err := s.todos.Update(ctx, todo); err != nil {
		return model.Todo{}, err
	}
	return *todo, nil
}

// getOwned loads a todo scoped to the caller, translating the store's
// not-found sentinel.
func (s *TodoService) getOwned(ctx context.Context, userID, id string) (*model.Todo, error) {
	todo, err := s.todos.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, err
	}
	return todo, nil
}

func validateID(id string) error {
	if uuid.Validate(id) != nil {
		return ErrInvalidTodoID
	}
	return nil
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "", ErrTitleTooLong
	}
	return title, nil
}

func validateDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "", ErrDescriptionTooLong
	}
	return description, nil
}
