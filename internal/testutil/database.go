// Package testutil provides helpers for tests that need a real ledger
// database: a migrated SQLite file per test and a fluent builder for
// transaction inputs.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/service"
	"github.com/Veraticus/the-books-must-balance/internal/storage"
	"github.com/shopspring/decimal"
)

// TestDB is a migrated and seeded database that lives for one test.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// TestDBOptions configures SetupTestDBWithOptions.
type TestDBOptions struct {
	CustomSetup    func(context.Context, service.Storage) error
	SkipMigrations bool
}

// SetupTestDB creates a migrated database in the test's temp directory. The
// seeded owner, default account and default categories are present.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	partner := db.MustAddPerson("Partner")
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "books.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{Storage: store, t: t}
}

// MustAddPerson creates a person or fails the test.
func (db *TestDB) MustAddPerson(name string) *model.Person {
	db.t.Helper()
	person, err := db.Storage.CreatePerson(context.Background(), model.PersonInput{Name: name})
	if err != nil {
		db.t.Fatalf("failed to create person %q: %v", name, err)
	}
	return person
}

// MustAddAccount creates a checking account with an opening balance or
// fails the test.
func (db *TestDB) MustAddAccount(name, balance string) *model.Account {
	db.t.Helper()
	account, err := db.Storage.CreateAccount(context.Background(), model.AccountInput{
		Name:    name,
		Type:    model.AccountTypeChecking,
		Balance: decimal.RequireFromString(balance),
	})
	if err != nil {
		db.t.Fatalf("failed to create account %q: %v", name, err)
	}
	return account
}

// MustBalance reads an account's stored balance or fails the test.
func (db *TestDB) MustBalance(accountID string) decimal.Decimal {
	db.t.Helper()
	account, err := db.Storage.GetAccountByID(context.Background(), accountID)
	if err != nil {
		db.t.Fatalf("failed to read account %q: %v", accountID, err)
	}
	return account.Balance
}

// WithTransaction executes fn within a database transaction that is always
// rolled back afterwards.
func (db *TestDB) WithTransaction(fn func(tx service.Transaction) error) error {
	ctx := context.Background()
	tx, err := db.Storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	return fn(tx)
}
