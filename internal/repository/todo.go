package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/taskpad/taskpad-go/internal/model"
)

var ErrTodoNotFound = errors.New("todo not found")

// TodoRepository handles todo persistence. Every query is filtered on the
// owning user id; there is no way to reach another user's rows through it.
type TodoRepository struct {
	db *sql.DB
}

// NewTodoRepository creates a new TodoRepository.
func NewTodoRepository(db *sql.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

// Create inserts a new todo, assigning its id and timestamps.
func (r *TodoRepository) Create(ctx context.Context, todo *model.Todo) error {
	todo.ID = uuid.NewString()
	now := time.Now().UTC()
	todo.CreatedAt = now
	todo.UpdatedAt = now

	query := `INSERT INTO todos (id, user_id, title, description, completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		todo.ID, todo.UserID, todo.Title, todo.Description, todo.Completed, todo.CreatedAt, todo.UpdatedAt)
	return err
}

// ListByUser retrieves all todos owned by a user, newest-created first.
func (r *TodoRepository) ListByUser(ctx context.Context, userID string) ([]model.Todo, error) {
	query := `SELECT id, user_id, title, description, completed, created_at, updated_at
		FROM todos WHERE user_id = ? ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := []model.Todo{}
	for rows.Next() {
		var t model.Todo
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}

	return todos, rows.Err()
}

// GetByID retrieves a todo scoped to its owner.
func (r *TodoRepository) GetByID(ctx context.Context, userID, id string) (*model.Todo, error) {
	query := `SELECT id, user_id, title, description, completed, created_at, updated_at
		FROM todos WHERE id = ? AND user_id = ?`

	todo := &model.Todo{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&todo.ID, &todo.UserID, &todo.Title, &todo.Description, &todo.Completed, &todo.CreatedAt, &todo.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		return nil, err
	}
	return todo, nil
}

// Update persists the mutable fields of a todo, scoped to its owner.
func (r *TodoRepository) Update(ctx context.Context, todo *model.Todo) error {
	query := `UPDATE todos SET title = ?, description = ?, completed = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`
	_, err := r.db.ExecContext(ctx, query,
		todo.Title, todo.Description, todo.Completed, todo.UpdatedAt, todo.ID, todo.UserID)
	return err
}

// Delete removes a todo scoped to its owner.
func (r *TodoRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTodoNotFound
	}
	return nil
}
