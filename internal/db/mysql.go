package db

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"coursemarket/internal/model"
)

// NewMySQL returns a connected GORM DB instance. Driver unique-key violations
// are translated to gorm.ErrDuplicatedKey.
func NewMySQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the schema, including the unique indexes on
// identity emails and on purchase (user_id, course_id).
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Admin{},
		&model.User{},
		&model.Course{},
		&model.Purchase{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Reset drops every table Migrate creates. Missing tables are skipped.
func Reset(db *gorm.DB) error {
	tables := []interface{}{
		&model.Purchase{},
		&model.Course{},
		&model.User{},
		&model.Admin{},
	}
	for _, table := range tables {
		if !db.Migrator().HasTable(table) {
			continue
		}
		if err := db.Migrator().DropTable(table); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}
