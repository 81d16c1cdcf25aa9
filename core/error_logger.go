package core

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"memoryvault/models"
)

// Error log sources
const (
	SourceMail    = "mail"
	SourceSpotify = "spotify"
	SourceHTTP    = "http"
	SourceAuth    = "auth"
	SourceStorage = "storage"
)

// ErrorLogger keeps the most recent failures in memory for the owner-only error log endpoint.
type ErrorLogger struct {
	mu      sync.RWMutex
	logs    []*models.ErrorLog
	maxLogs int
	nextID  int
	byLevel map[string]uint64
}

var ErrorLoggerInstance = NewErrorLogger(200)

// NewErrorLogger creates a logger retaining at most maxLogs entries.
func NewErrorLogger(maxLogs int) *ErrorLogger {
	if maxLogs < 1 {
		maxLogs = 1
	}
	return &ErrorLogger{
		logs:    make([]*models.ErrorLog, 0, maxLogs),
		maxLogs: maxLogs,
		byLevel: make(map[string]uint64),
	}
}

// LogError records an entry, evicting the oldest when full.
func (e *ErrorLogger) LogError(level, source, message, detail string, contextData map[string]interface{}) {
	stack := stackTrace(3)

	var contextJSON json.RawMessage
	if len(contextData) > 0 {
		if data, err := json.Marshal(contextData); err == nil {
			contextJSON = data
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.logs) >= e.maxLogs {
		e.logs = e.logs[1:]
	}

	e.nextID++
	now := time.Now()
	e.logs = append(e.logs, &models.ErrorLog{
		ID:        e.nextID,
		Timestamp: now,
		Level:     level,
		Source:    source,
		Message:   message,
		Detail:    detail,
		Stack:     stack,
		Context:   contextJSON,
	})
	e.byLevel[level]++
}

// GetErrorLogs returns up to limit entries, newest first. An empty level matches all;
// limit <= 0 returns everything retained.
func (e *ErrorLogger) GetErrorLogs(level string, limit int) []*models.ErrorLog {
	e.mu.RLock()
	defer e.mu.RUnlock()

	level = strings.ToUpper(strings.TrimSpace(level))
	result := make([]*models.ErrorLog, 0, len(e.logs))
	for i := len(e.logs) - 1; i >= 0; i-- {
		if level != "" && e.logs[i].Level != level {
			continue
		}
		result = append(result, e.logs[i])
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result
}

// GetErrorLogByID returns a single retained entry, or nil.
func (e *ErrorLogger) GetErrorLogByID(id int) *models.ErrorLog {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, l := range e.logs {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// Totals returns how many entries were ever recorded per level, including evicted ones.
func (e *ErrorLogger) Totals() map[string]uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]uint64, len(e.byLevel))
	for k, v := range e.byLevel {
		out[k] = v
	}
	return out
}

// ClearErrorLogs removes retained entries. Totals are kept.
func (e *ErrorLogger) ClearErrorLogs() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.logs = make([]*models.ErrorLog, 0, e.maxLogs)
}

func stackTrace(skip int) string {
	const maxDepth = 10
	var b strings.Builder

	for i := skip; i < skip+maxDepth; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		funcName := "unknown"
		if fn := runtime.FuncForPC(pc); fn != nil {
			funcName = fn.Name()
		}

		fmt.Fprintf(&b, "%s:%d %s\n", file, line, funcName)
	}

	return b.String()
}

// LogErrorWithDetail records an error with details
func LogErrorWithDetail(source, message, detail string) {
	ErrorLoggerInstance.LogError(models.LevelError, source, message, detail, nil)
}

// LogErrorWithContext records an error with context
func LogErrorWithContext(source, message, detail string, context map[string]interface{}) {
	ErrorLoggerInstance.LogError(models.LevelError, source, message, detail, context)
}

// LogWarn records a warning
func LogWarn(source, message, detail string) {
	ErrorLoggerInstance.LogError(models.LevelWarn, source, message, detail, nil)
}
