package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/service"
	"github.com/shopspring/decimal"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// timeLayout is fixed width so that text comparison orders chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	now    func() time.Time
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, common.NewStorageError("open database", err)
	}

	// One connection: the ledger has a single writer and SQLite gains
	// nothing from more.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, common.NewStorageError("ping database", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// SetClock replaces the timestamp source. Tests use it to control ordering.
func (s *SQLiteStorage) SetClock(now func() time.Time) {
	s.now = func() time.Time { return now().UTC() }
}

// NewCheckpointManager creates a new checkpoint manager for this storage instance.
func (s *SQLiteStorage) NewCheckpointManager() (*CheckpointManager, error) {
	return NewCheckpointManager(s.db, s.dbPath)
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.NewStorageError("begin transaction", err)
	}

	return &sqliteTransaction{
		tx:      tx,
		storage: s,
	}, nil
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTransaction) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return common.NewStorageError("commit", err)
	}
	return nil
}

func (t *sqliteTransaction) Rollback() error {
	if err := t.tx.Rollback(); err != nil {
		return common.NewStorageError("rollback", err)
	}
	return nil
}

func (t *sqliteTransaction) CreateTransaction(ctx context.Context, input model.TransactionInput) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.createTransactionTx(ctx, t.tx, input)
}

func (t *sqliteTransaction) ApplyTransactionDelta(ctx context.Context, accountID string, amount decimal.Decimal, txnType model.TransactionType) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.applyTransactionDeltaTx(ctx, t.tx, accountID, amount, txnType)
}

// Read methods delegate to the main storage with the transaction.

func (t *sqliteTransaction) GetPersons(ctx context.Context) ([]model.Person, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getPersons(ctx, t.tx)
}

func (t *sqliteTransaction) GetPersonByID(ctx context.Context, id string) (*model.Person, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getPersonByID(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetAccounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getAccounts(ctx, t.tx)
}

func (t *sqliteTransaction) GetAccountByID(ctx context.Context, id string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getAccountByID(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getCategories(ctx, t.tx)
}

func (t *sqliteTransaction) GetCategoryByID(ctx context.Context, id string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getCategoryByID(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getTransactions(ctx, t.tx, filter)
}

func (t *sqliteTransaction) GetTransactionsByPerson(ctx context.Context, personID string, limit int) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getTransactionsByPerson(ctx, t.tx, personID, limit)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}
