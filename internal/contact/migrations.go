package contact

import (
	"fmt"
	"log/slog"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// Each migration declares only the columns it touches, so it can run
// against tables created by any earlier version of the service.

type contactV1 struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"not null"`
	Email     string `gorm:"not null"`
	Message   string `gorm:"type:text;not null"`
	Timestamp string `gorm:"not null"`
}

func (contactV1) TableName() string { return "contacts" }

type contactV2 struct {
	Phone   *string
	Subject *string
}

func (contactV2) TableName() string { return "contacts" }

type contactV3 struct {
	Company     *string
	ProjectType *string `gorm:"column:project_type"`
	Budget      *string
	Timeline    *string
}

func (contactV3) TableName() string { return "contacts" }

func createContacts(tx *gorm.DB) error {
	if tx.Migrator().HasTable(&contactV1{}) {
		slog.Info("contacts table already exists, skipping create")
		return nil
	}
	if err := tx.Migrator().CreateTable(&contactV1{}); err != nil {
		return fmt.Errorf("create contacts table: %w", err)
	}
	return nil
}

func addColumns(model any, columns ...string) func(*gorm.DB) error {
	return func(tx *gorm.DB) error {
		for _, col := range columns {
			if tx.Migrator().HasColumn(model, col) {
				continue
			}
			if err := tx.Migrator().AddColumn(model, col); err != nil {
				return fmt.Errorf("add column %s: %w", col, err)
			}
			slog.Info("added column to contacts table", "column", col)
		}
		return nil
	}
}

func dropColumns(model any, columns ...string) func(*gorm.DB) error {
	return func(tx *gorm.DB) error {
		for _, col := range columns {
			if !tx.Migrator().HasColumn(model, col) {
				continue
			}
			if err := tx.Migrator().DropColumn(model, col); err != nil {
				return fmt.Errorf("drop column %s: %w", col, err)
			}
		}
		return nil
	}
}

// GetMigrator returns the versioned contacts schema migrations. Every step
// only adds tables or nullable columns; existing rows are never rewritten.
func GetMigrator(db *gorm.DB) *gormigrate.Gormigrate {
	return gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID:      "0001_create_contacts",
			Migrate: createContacts,
		},
		{
			ID:       "0002_add_phone_subject",
			Migrate:  addColumns(&contactV2{}, "Phone", "Subject"),
			Rollback: dropColumns(&contactV2{}, "Phone", "Subject"),
		},
		{
			ID:       "0003_add_project_details",
			Migrate:  addColumns(&contactV3{}, "Company", "ProjectType", "Budget", "Timeline"),
			Rollback: dropColumns(&contactV3{}, "Company", "ProjectType", "Budget", "Timeline"),
		},
	})
}

// Migrate brings the contacts schema up to date. It is safe to run on
// every startup.
func Migrate(db *gorm.DB) error {
	if err := GetMigrator(db).Migrate(); err != nil {
		return fmt.Errorf("migrate contacts schema: %w", err)
	}
	return nil
}
