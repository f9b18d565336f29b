package model

import "time"

// ErrorLog is an append-only record of an unhandled request failure.
// UserID is a weak reference: it survives user deletion and carries no
// foreign key.
type ErrorLog struct {
	ID         int64
	Message    string
	Stack      string
	StatusCode int
	Method     string
	Path       string
	UserID     string
	IP         string
	UserAgent  string
	CreatedAt  time.Time
}
