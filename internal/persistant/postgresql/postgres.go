package postgresql

import (
	"context"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Initialize opens the db session, retrying while the server comes up, and auto migrates given models
func Initialize(ctx context.Context, connStr string, models []any) (db *gorm.DB, err error) {
	retryTicker := time.NewTicker(time.Second * 2)
	defer retryTicker.Stop()

	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	// retry connect
	for range 5 {
		db, err = gorm.Open(postgres.Open(connStr), cfg)
		if err == nil {
			break
		}
		select {
		case <-retryTicker.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return
	}

	err = db.WithContext(ctx).AutoMigrate(models...)

	return
}

func Close(db *gorm.DB) error {
	sqlDb, err := db.DB()
	if err != nil {
		return err
	}

	return sqlDb.Close()
}
