package database

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"gorm.io/gorm"
)

var queryErrors uint64
var sqliteBusyErrors uint64
var sqliteLockedErrors uint64

func classifySQLiteError(err error) (busy bool, locked bool) {
	if err == nil {
		return false, false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false, false
	}

	msg := strings.ToLower(err.Error())

	if strings.Contains(msg, "sqlite_busy") || strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy timeout") {
		busy = true
	}
	if strings.Contains(msg, "sqlite_locked") || strings.Contains(msg, "database table is locked") {
		locked = true
	}

	return busy, locked
}

func recordQueryError(err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return
	}
	atomic.AddUint64(&queryErrors, 1)

	busy, locked := classifySQLiteError(err)
	if busy {
		atomic.AddUint64(&sqliteBusyErrors, 1)
	}
	if locked {
		atomic.AddUint64(&sqliteLockedErrors, 1)
	}
}

func QueryErrorsTotal() uint64 {
	return atomic.LoadUint64(&queryErrors)
}

func SQLiteBusyErrorsTotal() uint64 {
	return atomic.LoadUint64(&sqliteBusyErrors)
}

func SQLiteLockedErrorsTotal() uint64 {
	return atomic.LoadUint64(&sqliteLockedErrors)
}
