package models

import (
	"encoding/json"
	"time"
)

// Error log levels
const (
	LevelError = "ERROR"
	LevelWarn  = "WARN"
)

// ErrorLog is one upstream or internal failure kept in memory for the admin diagnostics view.
type ErrorLog struct {
	ID        int             `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Level     string          `json:"level"`
	Source    string          `json:"source"` // mail, spotify, http, auth, storage
	Message   string          `json:"message"`
	Detail    string          `json:"detail,omitempty"`
	Stack     string          `json:"stack,omitempty"`
	Context   json.RawMessage `json:"context,omitempty"`
}
