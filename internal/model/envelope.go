package model

// Envelope is the uniform JSON response wrapper. Stack is populated only in
// non-production mode for internal failures.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Stack   string `json:"stack,omitempty"`
}
