// Package ledger is the single entry point for reading and changing the
// household books. It keeps account balances, transaction rows and
// per-person attribution consistent and publishes an immutable Snapshot
// after every change.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/service"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Ledger composes the entity store and the balance maintainer.
//
// Mutations and refreshes are serialized by mu. Readers never take the
// lock: they load the current snapshot pointer.
type Ledger struct {
	store       service.Storage
	snapshot    atomic.Pointer[Snapshot]
	now         func() time.Time
	personLimit int
	mu          sync.Mutex
	loading     atomic.Bool
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithPersonTransactionLimit bounds GetTransactionsByPerson. Non-positive
// values keep service.DefaultPersonTransactionLimit.
func WithPersonTransactionLimit(limit int) Option {
	return func(l *Ledger) {
		if limit > 0 {
			l.personLimit = limit
		}
	}
}

// WithClock replaces the time source used to stamp snapshots.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// New creates a Ledger over store. It starts loading with an empty
// snapshot; call Init before use.
func New(store service.Storage, opts ...Option) *Ledger {
	l := &Ledger{
		store:       store,
		now:         time.Now,
		personLimit: service.DefaultPersonTransactionLimit,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.loading.Store(true)
	l.snapshot.Store(emptySnapshot())
	return l
}

// Init migrates and seeds the store, then loads the first snapshot.
// IsLoading reports true until Init returns.
func (l *Ledger) Init(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	defer l.loading.Store(false)

	if err := l.store.Migrate(ctx); err != nil {
		slog.Error("failed to migrate ledger store", "error", err)
		return fmt.Errorf("failed to initialize ledger: %w", err)
	}
	if err := l.refreshLocked(ctx); err != nil {
		return fmt.Errorf("failed to initialize ledger: %w", err)
	}
	return nil
}

// IsLoading reports whether the first snapshot is still being loaded.
func (l *Ledger) IsLoading() bool {
	return l.loading.Load()
}

// Snapshot returns the most recently published snapshot. It is never nil.
func (l *Ledger) Snapshot() *Snapshot {
	return l.snapshot.Load()
}

// Transactions returns the current snapshot's transactions, newest first.
func (l *Ledger) Transactions() []model.Transaction {
	return l.Snapshot().Transactions()
}

// Persons returns the current snapshot's persons, owner first.
func (l *Ledger) Persons() []model.Person {
	return l.Snapshot().Persons()
}

// Accounts returns the current snapshot's active accounts.
func (l *Ledger) Accounts() []model.Account {
	return l.Snapshot().Accounts()
}

// Categories returns the current snapshot's active categories.
func (l *Ledger) Categories() []model.Category {
	return l.Snapshot().Categories()
}

// GetTotalBalance sums the balances of the current snapshot's accounts.
func (l *Ledger) GetTotalBalance() decimal.Decimal {
	return l.Snapshot().TotalBalance()
}

// GetExpensesByPerson totals expenses per assigned person in the current
// snapshot.
func (l *Ledger) GetExpensesByPerson() map[string]decimal.Decimal {
	return l.Snapshot().ExpensesByPerson()
}

// GetTransactionsByPerson queries the store directly for the newest
// transactions assigned to personID.
func (l *Ledger) GetTransactionsByPerson(ctx context.Context, personID string) ([]model.Transaction, error) {
	return l.store.GetTransactionsByPerson(ctx, personID, l.personLimit)
}

// AddTransaction records a transaction and applies its balance delta in one
// store transaction, then refreshes the snapshot.
//
// If the write committed but the refresh failed, the committed transaction
// is returned together with a StorageError and the previous snapshot stays
// published.
func (l *Ledger) AddTransaction(ctx context.Context, input model.TransactionInput) (*model.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}

	txn, err := tx.CreateTransaction(ctx, input)
	if err != nil {
		rollback(tx, "create transaction")
		return nil, err
	}

	if err := tx.ApplyTransactionDelta(ctx, txn.AccountID, txn.Amount, txn.Type); err != nil {
		rollback(tx, "apply balance delta")
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("recorded transaction",
		"id", txn.ID,
		"type", txn.Type,
		"amount", txn.Amount.String(),
		"account_id", txn.AccountID,
		"assigned_to", txn.AssignedToPersonID)

	if err := l.refreshLocked(ctx); err != nil {
		return txn, common.NewStorageError("refresh after add transaction", err)
	}
	return txn, nil
}

// AddPerson creates a household member and refreshes the snapshot.
func (l *Ledger) AddPerson(ctx context.Context, input model.PersonInput) (*model.Person, error) {
	return mutate(ctx, l, "add person", func() (*model.Person, error) {
		return l.store.CreatePerson(ctx, input)
	})
}

// AddAccount creates an account and refreshes the snapshot.
func (l *Ledger) AddAccount(ctx context.Context, input model.AccountInput) (*model.Account, error) {
	return mutate(ctx, l, "add account", func() (*model.Account, error) {
		return l.store.CreateAccount(ctx, input)
	})
}

// AddCategory creates a category and refreshes the snapshot.
func (l *Ledger) AddCategory(ctx context.Context, input model.CategoryInput) (*model.Category, error) {
	return mutate(ctx, l, "add category", func() (*model.Category, error) {
		return l.store.CreateCategory(ctx, input)
	})
}

// DeactivateAccount hides an account and refreshes the snapshot.
func (l *Ledger) DeactivateAccount(ctx context.Context, id string) error {
	_, err := mutate(ctx, l, "deactivate account", func() (struct{}, error) {
		return struct{}{}, l.store.DeactivateAccount(ctx, id)
	})
	return err
}

// DeactivateCategory hides a category and refreshes the snapshot.
func (l *Ledger) DeactivateCategory(ctx context.Context, id string) error {
	_, err := mutate(ctx, l, "deactivate category", func() (struct{}, error) {
		return struct{}{}, l.store.DeactivateCategory(ctx, id)
	})
	return err
}

// RefreshData reloads every collection and publishes a new snapshot. On
// failure the previous snapshot stays published.
func (l *Ledger) RefreshData(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.refreshLocked(ctx)
}

// mutate runs write under the ledger lock and refreshes after it succeeds.
func mutate[T any](ctx context.Context, l *Ledger, op string, write func() (T, error)) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	result, err := write()
	if err != nil {
		return result, err
	}
	if err := l.refreshLocked(ctx); err != nil {
		return result, common.NewStorageError("refresh after "+op, err)
	}
	return result, nil
}

func (l *Ledger) refreshLocked(ctx context.Context) error {
	var (
		persons      []model.Person
		accounts     []model.Account
		categories   []model.Category
		transactions []model.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		persons, err = l.store.GetPersons(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		accounts, err = l.store.GetAccounts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = l.store.GetCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		transactions, err = l.store.GetTransactions(gctx, service.TransactionFilter{})
		return err
	})

	if err := g.Wait(); err != nil {
		common.LogError(ctx, err, "failed to refresh ledger snapshot", common.Fields{
			"loaded_at": l.Snapshot().LoadedAt(),
		})
		return err
	}

	snapshot := newSnapshot(l.now(), persons, accounts, categories, transactions)
	l.snapshot.Store(snapshot)

	slog.Debug("refreshed ledger snapshot",
		"persons", len(persons),
		"accounts", len(accounts),
		"categories", len(categories),
		"transactions", len(transactions))
	return nil
}

func rollback(tx service.Transaction, stage string) {
	if err := tx.Rollback(); err != nil {
		slog.Error("failed to roll back transaction", "stage", stage, "error", err)
	}
}
