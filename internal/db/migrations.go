package db

import (
	"fmt"
	"log"
)

// RunMigrations applies any pending database migrations
func (db *DB) RunMigrations() error {
	// Run odometer columns migration
	if err := db.runOdometerMigration(); err != nil {
		return err
	}

	// Run metadata columns migration
	if err := db.runMetadataMigration(); err != nil {
		return err
	}

	return nil
}

func (db *DB) runOdometerMigration() error {
	// Check if odometer columns exist
	var count int
	err := db.conn.QueryRow(`
		SELECT COUNT(*)
		FROM pragma_table_info('tasks')
		WHERE name IN ('last_odometer', 'odometer_source')
	`).Scan(&count)

	if err != nil {
		return fmt.Errorf("checking for odometer columns: %w", err)
	}

	// If columns don't exist, add them
	if count < 2 {
		log.Println("Running migration: Adding odometer tracking columns...")

		tx, err := db.conn.Begin()
		if err != nil {
			return fmt.Errorf("starting transaction: %w", err)
		}
		defer tx.Rollback()

		// Add last_odometer column
		_, err = tx.Exec(`ALTER TABLE tasks ADD COLUMN last_odometer REAL`)
		if err != nil && err.Error() != "duplicate column name: last_odometer" {
			return fmt.Errorf("adding last_odometer column: %w", err)
		}

		// Add odometer_source column
		_, err = tx.Exec(`ALTER TABLE tasks ADD COLUMN odometer_source TEXT`)
		if err != nil && err.Error() != "duplicate column name: odometer_source" {
			return fmt.Errorf("adding odometer_source column: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration: %w", err)
		}

		log.Println("Migration completed successfully")
	}

	return nil
}

func (db *DB) runMetadataMigration() error {
	// Check if metadata columns exist
	var count int
	err := db.conn.QueryRow(`
		SELECT COUNT(*)
		FROM pragma_table_info('tasks')
		WHERE name IN ('category', 'item_name')
	`).Scan(&count)

	if err != nil {
		return fmt.Errorf("checking for metadata columns: %w", err)
	}

	// If columns don't exist, add them
	if count < 2 {
		log.Println("Running migration: Adding task metadata columns...")

		tx, err := db.conn.Begin()
		if err != nil {
			return fmt.Errorf("starting transaction: %w", err)
		}
		defer tx.Rollback()

		// Add category column
		_, err = tx.Exec(`ALTER TABLE tasks ADD COLUMN category TEXT`)
		if err != nil && err.Error() != "duplicate column name: category" {
			return fmt.Errorf("adding category column: %w", err)
		}

		// Add item_name column
		_, err = tx.Exec(`ALTER TABLE tasks ADD COLUMN item_name TEXT`)
		if err != nil && err.Error() != "duplicate column name: item_name" {
			return fmt.Errorf("adding item_name column: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing metadata migration: %w", err)
		}

		log.Println("Metadata migration completed successfully")
	}

	return nil
}
