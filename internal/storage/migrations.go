package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/common"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial ledger schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS persons (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					email TEXT NOT NULL DEFAULT '',
					avatar TEXT NOT NULL DEFAULT '',
					is_owner INTEGER NOT NULL DEFAULT 0,
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL
				)`,

				`CREATE TABLE IF NOT EXISTS accounts (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					type TEXT NOT NULL CHECK (type IN ('checking', 'savings', 'credit', 'debit')),
					bank_name TEXT NOT NULL DEFAULT '',
					balance TEXT NOT NULL DEFAULT '0',
					opening_balance TEXT NOT NULL DEFAULT '0',
					currency TEXT NOT NULL DEFAULT 'BRL',
					is_active INTEGER NOT NULL DEFAULT 1,
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL
				)`,

				`CREATE TABLE IF NOT EXISTS categories (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					icon TEXT NOT NULL,
					color TEXT NOT NULL,
					type TEXT NOT NULL CHECK (type IN ('income', 'expense')),
					parent_id TEXT,
					is_active INTEGER NOT NULL DEFAULT 1,
					FOREIGN KEY (parent_id) REFERENCES categories(id)
				)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					description TEXT NOT NULL,
					amount TEXT NOT NULL,
					type TEXT NOT NULL CHECK (type IN ('income', 'expense')),
					category_id TEXT NOT NULL,
					account_id TEXT NOT NULL,
					assigned_to_person_id TEXT NOT NULL,
					paid_by_person_id TEXT NOT NULL,
					date TEXT NOT NULL,
					notes TEXT NOT NULL DEFAULT '',
					is_recurring INTEGER NOT NULL DEFAULT 0,
					recurring_frequency TEXT NOT NULL DEFAULT '',
					attachments TEXT NOT NULL DEFAULT '[]',
					tags TEXT NOT NULL DEFAULT '[]',
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL,
					FOREIGN KEY (category_id) REFERENCES categories(id),
					FOREIGN KEY (account_id) REFERENCES accounts(id),
					FOREIGN KEY (assigned_to_person_id) REFERENCES persons(id),
					FOREIGN KEY (paid_by_person_id) REFERENCES persons(id)
				)`,
				`CREATE INDEX idx_transactions_date ON transactions(date, created_at)`,
				`CREATE INDEX idx_transactions_assigned_to ON transactions(assigned_to_person_id)`,
				`CREATE INDEX idx_transactions_account ON transactions(account_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Seed owner, default account and default categories",
		Up: func(tx *sql.Tx) error {
			now := formatTime(time.Now())

			if _, err := tx.Exec(`
				INSERT OR IGNORE INTO persons (id, name, is_owner, created_at, updated_at)
				VALUES (?, ?, 1, ?, ?)`,
				SeedOwner.ID, SeedOwner.Name, now, now,
			); err != nil {
				return fmt.Errorf("failed to seed owner: %w", err)
			}

			if _, err := tx.Exec(`
				INSERT OR IGNORE INTO accounts (id, name, type, balance, opening_balance, currency, is_active, created_at, updated_at)
				VALUES (?, ?, ?, '0', '0', ?, 1, ?, ?)`,
				SeedAccount.ID, SeedAccount.Name, string(SeedAccount.Type), SeedAccount.Currency, now, now,
			); err != nil {
				return fmt.Errorf("failed to seed default account: %w", err)
			}

			for _, cat := range DefaultCategories {
				if _, err := tx.Exec(`
					INSERT OR IGNORE INTO categories (id, name, icon, color, type, is_active)
					VALUES (?, ?, ?, ?, ?, 1)`,
					cat.ID, cat.Name, cat.Icon, cat.Color, string(cat.Type),
				); err != nil {
					return fmt.Errorf("failed to seed category %s: %w", cat.ID, err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Add checkpoint metadata table",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS checkpoint_metadata (
					id TEXT PRIMARY KEY,
					created_at TEXT NOT NULL,
					description TEXT,
					file_size INTEGER,
					row_counts TEXT,
					schema_version INTEGER,
					is_auto BOOLEAN DEFAULT 0
				)`,
				`CREATE INDEX idx_checkpoint_metadata_created_at ON checkpoint_metadata(created_at)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
}

// SchemaVersion returns the schema version recorded in the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, common.NewStorageError("read schema version", err)
	}
	return version, nil
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
