package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"relay-chat/config"
	"relay-chat/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func DSN(cfg *config.Config) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
}

// Connect opens the Postgres pool. Driver errors are translated so that
// unique violations surface as gorm.ErrDuplicatedKey.
func Connect(cfg *config.Config, l *logger.Logger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.AppMode == "debug" {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get generic database object: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if l != nil {
		l.Infof("Database connection established (%s:%s/%s)", cfg.DBHost, cfg.DBPort, cfg.DBName)
	}
	return db, nil
}

func HealthCheck(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("database not initialized")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type TableStatus struct {
	Name   string
	Exists bool
	Rows   int64
}

// TableStatuses reports every application table and its row count.
func TableStatuses(db *gorm.DB) ([]TableStatus, error) {
	names := []string{"users", "conversations", "conversation_participants", "messages", "message_reads", "outbox_events"}
	out := make([]TableStatus, 0, len(names))
	for _, name := range names {
		st := TableStatus{Name: name, Exists: db.Migrator().HasTable(name)}
		if st.Exists {
			if err := db.Table(name).Count(&st.Rows).Error; err != nil {
				return nil, fmt.Errorf("count %s: %w", name, err)
			}
		}
		out = append(out, st)
	}
	return out, nil
}
