package db

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"co2-monitor/internal/model"
)

// PoolConfig bounds the shared connection pool. Waiting for a slot is
// the backpressure mechanism; the busy timeout bounds how long a
// writer blocks on a locked database before failing.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	BusyTimeout     time.Duration
}

func (p PoolConfig) withDefaults() PoolConfig {
	if p.MaxOpenConns <= 0 {
		p.MaxOpenConns = 10
	}
	if p.MaxIdleConns <= 0 {
		p.MaxIdleConns = 5
	}
	if p.ConnMaxLifetime <= 0 {
		p.ConnMaxLifetime = time.Hour
	}
	if p.BusyTimeout <= 0 {
		p.BusyTimeout = 5 * time.Second
	}
	return p
}

// openORM opens a GORM SQLite connection with foreign keys enforced and
// WAL journaling. TranslateError maps driver errors onto
// gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated, which the error
// taxonomy in errors.go relies on.
func openORM(path string, pool PoolConfig) (*gorm.DB, error) {
	pool = pool.withDefaults()
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=%d",
		path, pool.BusyTimeout.Milliseconds())
	g, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB, err := g.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	return g, nil
}

// migrateORM ensures the schema for all models exists, including the
// unique index on mac_address and the (sensor_id, reading_time) index.
func migrateORM(g *gorm.DB) error {
	return g.AutoMigrate(&model.Sensor{}, &model.Reading{})
}

// closeORM closes the underlying SQL DB associated with the GORM connection.
func closeORM(g *gorm.DB) error {
	sqlDB, err := g.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
