package database

import (
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/rmitchellscott/halftone/internal/logging"
)

// GetAllModels returns every model managed by the schema.
func GetAllModels() []interface{} {
	return []interface{}{
		&HalftoneJob{},
	}
}

// RunMigrations runs any pending database migrations using gormigrate
func RunMigrations(db *gorm.DB) error {
	logging.InfoWithComponent(logging.ComponentDatabase, "Running database migrations")

	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "202609010000_add_output_sha256_to_halftone_jobs",
			Migrate: func(tx *gorm.DB) error {
				if tx.Migrator().HasColumn(&HalftoneJob{}, "output_sha256") {
					return nil
				}
				return tx.Migrator().AddColumn(&HalftoneJob{}, "OutputSHA256")
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropColumn(&HalftoneJob{}, "OutputSHA256")
			},
		},
		{
			ID: "202609150000_index_halftone_jobs_status_created",
			Migrate: func(tx *gorm.DB) error {
				if tx.Migrator().HasIndex(&HalftoneJob{}, "idx_halftone_jobs_status_created") {
					return nil
				}
				return tx.Migrator().CreateIndex(&HalftoneJob{}, "idx_halftone_jobs_status_created")
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropIndex(&HalftoneJob{}, "idx_halftone_jobs_status_created")
			},
		},
	})

	// Set initial schema if this is a fresh database
	m.InitSchema(func(tx *gorm.DB) error {
		for _, model := range GetAllModels() {
			if err := tx.AutoMigrate(model); err != nil {
				return fmt.Errorf("failed to migrate %T: %w", model, err)
			}
		}
		return nil
	})

	if err := m.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logging.InfoWithComponent(logging.ComponentDatabase, "Migrations completed")
	return nil
}
