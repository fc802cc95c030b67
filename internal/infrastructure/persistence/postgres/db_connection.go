// Package postgres provides the PostgreSQL-backed identity store. It owns
// connection lifecycle, schema migration, and the identity repository
// implementation over gorm.
package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/curelink/curelink/internal/config"
	"github.com/curelink/curelink/internal/domain/models"
	"github.com/curelink/curelink/pkg/logger"
)

// DBConnection manages the gorm database handle and its pool settings.
type DBConnection struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewDBConnection opens the database, applies pool settings, runs the
// schema migration, and verifies connectivity.
func NewDBConnection(ctx context.Context, cfg *config.DatabaseConfig, log logger.Logger) (*DBConnection, error) {
	log.Info(ctx, "initializing PostgreSQL connection",
		logger.String("host", cfg.Host),
		logger.Int("port", cfg.Port),
		logger.String("database", cfg.Database),
	)

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConns)
	sqlDB.SetMaxIdleConns(cfg.MinConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxConnLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.MaxConnIdleTime) * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&models.AnonymousIdentity{}); err != nil {
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}

	log.Info(ctx, "PostgreSQL connection established")

	return &DBConnection{db: db, logger: log}, nil
}

// DB returns the gorm handle for repository construction.
func (c *DBConnection) DB() *gorm.DB {
	return c.db
}

// Ping verifies database connectivity.
func (c *DBConnection) Ping(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close shuts the connection pool down.
func (c *DBConnection) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	c.logger.Info(context.Background(), "closing PostgreSQL connection pool")
	return sqlDB.Close()
}
