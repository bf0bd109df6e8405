package database

import (
	"fmt"
	"log/slog"
)

// MigrateUp applies every pending migration
func MigrateUp(connString string) error {
	m, err := GetMigrate(connString)
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if err := ignoreNoChange(m.Up()); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	logVersion(m, "Migrations applied")
	return nil
}

// MigrateDown rolls back steps migrations, or every migration when steps is zero or less
func MigrateDown(connString string, steps int) error {
	m, err := GetMigrate(connString)
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if steps <= 0 {
		err = m.Down()
	} else {
		err = m.Steps(-steps)
	}
	if err := ignoreNoChange(err); err != nil {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	logVersion(m, "Migrations rolled back")
	return nil
}

func closeMigrator(m Migrator) {
	srcErr, dbErr := m.Close()
	if srcErr != nil || dbErr != nil {
		slog.Warn("Failed to close migrator", "source_error", srcErr, "database_error", dbErr)
	}
}

func logVersion(m Migrator, msg string) {
	version, dirty, err := m.Version()
	if err != nil {
		slog.Info(msg, "version", "none")
		return
	}
	slog.Info(msg, "version", version, "dirty", dirty)
}
