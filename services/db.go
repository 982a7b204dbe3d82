package services

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tadeyemo32/vanguard-staffing/internal/logging"
	"github.com/tadeyemo32/vanguard-staffing/models"
)

// OpenDB opens (creating if needed) the SQLite database at dbPath and
// migrates every model. ":memory:" gives a private in-memory database.
func OpenDB(dbPath string, debug bool) (*gorm.DB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), os.ModePerm); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	level := logger.Silent
	if debug {
		level = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if dbPath == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logging.New("store").Info("SQLite database ready", "path", dbPath)
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Client{},
		&models.Pipeline{},
		&models.PipelineStage{},
		&models.StaffingPlan{},
		&models.PlanRole{},
		&models.CandidateRecord{},
		&models.PlanSnapshot{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}
