package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/harentsoaR/smart-health-api/internal/models"
)

const maxRetries = 5

var retryDelay = 3 * time.Second

// backoff waits before the next connection attempt unless ctx ends first.
func backoff(ctx context.Context) error {
	t := time.NewTimer(retryDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ConnectPostgres opens the relational store, retrying while the server starts.
func ConnectPostgres(ctx context.Context, dsn string, log *zap.Logger) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL is not configured")
	}
	var (
		db  *gorm.DB
		err error
	)
	for i := 1; i <= maxRetries; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			TranslateError:       true,
			DisableAutomaticPing: true,
			Logger:               gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err == nil {
			sqlDB, pingErr := db.DB()
			if pingErr == nil {
				pingErr = sqlDB.PingContext(ctx)
				if pingErr != nil {
					_ = sqlDB.Close()
				}
			}
			if pingErr == nil {
				sqlDB.SetMaxOpenConns(25)
				sqlDB.SetMaxIdleConns(5)
				sqlDB.SetConnMaxLifetime(30 * time.Minute)
				log.Info("connected to postgres")
				return db, nil
			}
			err = pingErr
		}
		log.Warn("failed to connect to postgres", zap.Int("attempt", i), zap.Int("max", maxRetries), zap.Error(err))
		if i == maxRetries {
			break
		}
		if werr := backoff(ctx); werr != nil {
			return nil, fmt.Errorf("connect postgres: %w", werr)
		}
	}
	return nil, fmt.Errorf("connect postgres: %w", err)
}

// Migrate creates or updates every table the API uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.PatientProfile{},
		&models.DoctorProfile{},
		&models.Availability{},
		&models.Appointment{},
		&models.Diagnosis{},
		&models.Prescription{},
		&models.Report{},
	)
}
