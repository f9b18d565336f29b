package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/taskpad/taskpad-go/internal/model"
)

// ErrorLogRepository appends request-failure records and purges old ones.
type ErrorLogRepository struct {
	db *sql.DB
}

// NewErrorLogRepository creates a new ErrorLogRepository.
func NewErrorLogRepository(db *sql.DB) *ErrorLogRepository {
	return &ErrorLogRepository{db: db}
}

// Insert appends an error log entry.
func (r *ErrorLogRepository) Insert(ctx context.Context, entry *model.ErrorLog) error {
	entry.CreatedAt = time.Now().UTC()

	query := `INSERT INTO error_logs (message, stack, status_code, method, path, user_id, ip, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query,
		entry.Message,
		nullable(entry.Stack),
		entry.StatusCode,
		entry.Method,
		entry.Path,
		nullable(entry.UserID),
		nullable(entry.IP),
		nullable(entry.UserAgent),
		entry.CreatedAt,
	)
	if err != nil {
		return err
	}

	entry.ID, err = result.LastInsertId()
	return err
}

// DeleteOlderThan removes entries created before the cutoff and reports how
// many were purged.
func (r *ErrorLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM error_logs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
