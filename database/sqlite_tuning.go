package database

import (
	"fmt"
	"net/url"
	"strings"

	"memoryvault/config"

	"gorm.io/gorm"
)

type sqlitePoolConfig struct {
	maxOpenConns int
	maxIdleConns int
	maxIdleSec   int
	maxLifeSec   int
}

// sanitizeSQLitePoolConfig clamps maxIdleConns to [0, maxOpenConns] with at least one open connection.
func sanitizeSQLitePoolConfig(cfg sqlitePoolConfig) sqlitePoolConfig {
	if cfg.maxOpenConns < 1 {
		cfg.maxOpenConns = 1
	}
	if cfg.maxIdleConns < 0 {
		cfg.maxIdleConns = 0
	}
	if cfg.maxIdleConns > cfg.maxOpenConns {
		cfg.maxIdleConns = cfg.maxOpenConns
	}
	if cfg.maxIdleSec < 0 {
		cfg.maxIdleSec = 0
	}
	if cfg.maxLifeSec < 0 {
		cfg.maxLifeSec = 0
	}
	return cfg
}

// buildSQLiteDSN appends the configured PRAGMAs as _pragma query parameters,
// keeping any query the path already carries. In-memory databases never get
// journal_mode since WAL is meaningless there.
func buildSQLiteDSN(dbPath string, settings *config.Config) string {
	base, rawQuery, _ := strings.Cut(dbPath, "?")

	query, _ := url.ParseQuery(rawQuery)

	if settings.SQLitePragmasEnabled {
		if settings.SQLiteBusyTimeoutMS > 0 {
			query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", settings.SQLiteBusyTimeoutMS))
		}
		if journalMode := normalizeSQLiteJournalMode(settings.SQLiteJournalMode); journalMode != "" && !isMemoryPath(base) {
			query.Add("_pragma", fmt.Sprintf("journal_mode(%s)", journalMode))
		}
		if synchronous := normalizeSQLiteSynchronous(settings.SQLiteSynchronous); synchronous != "" {
			query.Add("_pragma", fmt.Sprintf("synchronous(%s)", synchronous))
		}
		if settings.SQLiteForeignKeys {
			query.Add("_pragma", "foreign_keys(1)")
		} else {
			query.Add("_pragma", "foreign_keys(0)")
		}
	}

	encoded := query.Encode()
	if encoded == "" {
		return base
	}
	return base + "?" + encoded
}

func isMemoryPath(path string) bool {
	return path == ":memory:" || strings.HasPrefix(path, "file::memory:")
}

// applySQLitePragmas re-applies PRAGMAs on the live handle. The DSN covers new
// connections; this covers existing database files opened before the change.
func applySQLitePragmas(db *gorm.DB, settings *config.Config) {
	if !settings.SQLitePragmasEnabled {
		return
	}
	if settings.SQLiteBusyTimeoutMS > 0 {
		db.Exec("PRAGMA busy_timeout = ?", settings.SQLiteBusyTimeoutMS)
	}
	if journalMode := normalizeSQLiteJournalMode(settings.SQLiteJournalMode); journalMode != "" && !isMemoryPath(settings.DatabaseURL) {
		db.Exec("PRAGMA journal_mode = " + journalMode)
	}
	if synchronous := normalizeSQLiteSynchronous(settings.SQLiteSynchronous); synchronous != "" {
		db.Exec("PRAGMA synchronous = " + synchronous)
	}
	if settings.SQLiteForeignKeys {
		db.Exec("PRAGMA foreign_keys = ON")
	} else {
		db.Exec("PRAGMA foreign_keys = OFF")
	}
}

// currentSQLitePoolConfig reads the pool settings and enforces sane bounds.
func currentSQLitePoolConfig(settings *config.Config) sqlitePoolConfig {
	return sanitizeSQLitePoolConfig(sqlitePoolConfig{
		maxOpenConns: settings.SQLiteMaxOpenConns,
		maxIdleConns: settings.SQLiteMaxIdleConns,
		maxIdleSec:   settings.SQLiteConnMaxIdleSec,
		maxLifeSec:   settings.SQLiteConnMaxLifeSec,
	})
}

// normalizeSQLiteJournalMode converts the input to an accepted uppercase SQLite journal mode or returns an empty string if the value is invalid.
// Accepted modes: "WAL", "DELETE", "TRUNCATE", "PERSIST", "MEMORY", "OFF".
func normalizeSQLiteJournalMode(value string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	switch value {
	case "WAL", "DELETE", "TRUNCATE", "PERSIST", "MEMORY", "OFF":
		return value
	default:
		return ""
	}
}

// normalizeSQLiteSynchronous normalizes and validates a SQLite `synchronous` pragma value.
// It returns the trimmed, uppercased value if it is one of `OFF`, `NORMAL`, `FULL`, `EXTRA` or one of the numeric strings `0`, `1`, `2`, `3`; otherwise it returns an empty string.
func normalizeSQLiteSynchronous(value string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	switch value {
	case "OFF", "NORMAL", "FULL", "EXTRA":
		return value
	case "0", "1", "2", "3":
		return value
	default:
		return ""
	}
}
