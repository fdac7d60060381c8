package infra

import (
	"fmt"

	"invoicehub/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and runs
// AutoMigrate for all models. The composite unique index on
// (company_id, number) is what ultimately guarantees no document number is
// ever duplicated within a tenant, even if application logic misbehaves.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return db, nil
}

// RunMigrations applies the schema. Also used by integration tests against
// a fresh container database.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Company{},
		&model.User{},
		&model.Customer{},
		&model.Product{},
		&model.Document{},
		&model.DocumentItem{},
		&model.AuditEntry{},
		&model.Delivery{},
	)
}
