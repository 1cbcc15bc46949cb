// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/shopspring/decimal"
)

// DefaultPersonTransactionLimit bounds per-person transaction queries when
// the caller does not supply a limit.
const DefaultPersonTransactionLimit = 50

// TransactionFilter defines paging options for transaction queries.
// A zero Limit returns every row.
type TransactionFilter struct {
	Limit  int
	Offset int
}

// Reader is the read side of the entity store. Every list is ordered
// deterministically.
type Reader interface {
	GetPersons(ctx context.Context) ([]model.Person, error)
	GetPersonByID(ctx context.Context, id string) (*model.Person, error)
	GetAccounts(ctx context.Context) ([]model.Account, error)
	GetAccountByID(ctx context.Context, id string) (*model.Account, error)
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, id string) (*model.Category, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetTransactionsByPerson(ctx context.Context, personID string, limit int) ([]model.Transaction, error)
}

// Storage defines the contract for our persistence layer.
//
// Transactions can only be created through BeginTx so that the row insert
// and its balance delta always share one database transaction.
type Storage interface {
	Reader

	// Person operations
	CreatePerson(ctx context.Context, input model.PersonInput) (*model.Person, error)

	// Account operations
	CreateAccount(ctx context.Context, input model.AccountInput) (*model.Account, error)
	DeactivateAccount(ctx context.Context, id string) error

	// Category operations
	CreateCategory(ctx context.Context, input model.CategoryInput) (*model.Category, error)
	DeactivateCategory(ctx context.Context, id string) error

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Reader

	// CreateTransaction validates and inserts a ledger transaction row.
	CreateTransaction(ctx context.Context, input model.TransactionInput) (*model.Transaction, error)
	// ApplyTransactionDelta is the only writer of an account balance.
	ApplyTransactionDelta(ctx context.Context, accountID string, amount decimal.Decimal, txnType model.TransactionType) error

	Commit() error
	Rollback() error
}
