package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"memoryvault/config"
	"memoryvault/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB opens the database described by config.Settings, runs automigrations
// and assigns the resulting handle to DB.
func InitDB() error {
	db, err := Open(config.Settings)
	if err != nil {
		return err
	}
	DB = db
	log.Printf("Database initialized successfully (driver=%s)", config.Settings.DatabaseDriver)
	return nil
}

// Open connects to SQLite or PostgreSQL according to cfg, tunes the pool and
// migrates every table MemoryVault owns.
func Open(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.LogLevel == "DEBUG" {
		logLevel = logger.Info
	}
	gormCfg := &gorm.Config{
		Logger: metricsLogger{inner: logger.New(
			log.New(log.Writer(), "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:                  logLevel,
				IgnoreRecordNotFoundError: true,
			},
		)},
	}

	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseURL)
	case "sqlite", "":
		dialector = sqlite.Open(buildSQLiteDSN(cfg.DatabaseURL, cfg))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if cfg.DatabaseDriver != "postgres" {
		pool := currentSQLitePoolConfig(cfg)
		sqlDB.SetMaxIdleConns(pool.maxIdleConns)
		sqlDB.SetMaxOpenConns(pool.maxOpenConns)
		sqlDB.SetConnMaxIdleTime(time.Duration(pool.maxIdleSec) * time.Second)
		sqlDB.SetConnMaxLifetime(time.Duration(pool.maxLifeSec) * time.Second)
		applySQLitePragmas(db, cfg)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// OpenMemory returns a migrated private in-memory SQLite database.
func OpenMemory() (*gorm.DB, error) {
	return Open(&config.Config{
		DatabaseDriver:     "sqlite",
		DatabaseURL:        ":memory:",
		SQLiteMaxOpenConns: 1,
		SQLiteMaxIdleConns: 1,
	})
}

// Migrate creates or updates all tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.VerificationToken{},
		&models.Memory{},
		&models.Reason{},
		&models.Event{},
		&models.ProposalResponse{},
		&models.Setting{},
	)
}

// Ping reports whether db answers within a short deadline.
func Ping(ctx context.Context, db *gorm.DB) bool {
	if db == nil {
		return false
	}

	sqlDB, err := db.DB()
	if err != nil {
		return false
	}

	if deadline, ok := ctx.Deadline(); !ok || time.Until(deadline) <= 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 200*time.Millisecond)
		defer cancel()
	}

	return sqlDB.PingContext(ctx) == nil
}

// CloseDB closes the database connection and releases resources
func CloseDB() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	log.Println("Closing database connection...")
	return sqlDB.Close()
}
