package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const accountColumns = `id, name, type, bank_name, balance, opening_balance, currency, is_active, created_at, updated_at`

// CreateAccount inserts a new active account whose balance starts at
// input.Balance.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, input model.AccountInput) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateAccountInput(input); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = model.DefaultCurrency
	}

	now := s.now()
	account := &model.Account{
		ID:             uuid.NewString(),
		Name:           input.Name,
		Type:           input.Type,
		BankName:       input.BankName,
		Balance:        input.Balance,
		OpeningBalance: input.Balance,
		Currency:       currency,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		account.ID, account.Name, string(account.Type), account.BankName,
		account.Balance.String(), account.OpeningBalance.String(), account.Currency,
		formatTime(now), formatTime(now),
	)
	if err != nil {
		return nil, common.NewStorageError("insert account", err)
	}

	slog.Info("created account",
		"id", account.ID,
		"name", account.Name,
		"type", account.Type,
		"balance", account.Balance.String())
	return account, nil
}

// DeactivateAccount hides an account from listings and totals. Its balance
// and transactions are kept.
func (s *SQLiteStorage) DeactivateAccount(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET is_active = 0, updated_at = ? WHERE id = ?`,
		formatTime(s.now()), id)
	if err != nil {
		return common.NewStorageError("deactivate account", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return common.NewStorageError("deactivate account", err)
	}
	if affected == 0 {
		return common.NewReferentialError("account", id)
	}

	slog.Info("deactivated account", "id", id)
	return nil
}

// GetAccounts returns active accounts ordered by name.
func (s *SQLiteStorage) GetAccounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getAccounts(ctx, s.db)
}

// GetAccountByID returns an account, active or not, or a ReferentialError.
func (s *SQLiteStorage) GetAccountByID(ctx context.Context, id string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getAccountByID(ctx, s.db, id)
}

func (s *SQLiteStorage) getAccounts(ctx context.Context, q querier) ([]model.Account, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE is_active = 1
		ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, common.NewStorageError("query accounts", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewStorageError("iterate accounts", err)
	}

	slog.Debug("retrieved accounts", "count", len(accounts))
	return accounts, nil
}

func (s *SQLiteStorage) getAccountByID(ctx context.Context, q querier, id string) (*model.Account, error) {
	row := q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewReferentialError("account", id)
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

// applyTransactionDeltaTx adds the signed amount of a transaction to its
// account. It is the only code path that writes accounts.balance.
func (s *SQLiteStorage) applyTransactionDeltaTx(ctx context.Context, tx *sql.Tx, accountID string, amount decimal.Decimal, txnType model.TransactionType) error {
	if !txnType.IsValid() {
		return common.NewValidationError("type", "must be income or expense")
	}

	var current decimal.Decimal
	err := tx.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE id = ?`, accountID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return common.NewReferentialError("account", accountID)
	}
	if err != nil {
		return common.NewStorageError("read account balance", err)
	}

	delta := model.SignedAmount(amount, txnType)
	next := current.Add(delta)

	if _, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = ?, updated_at = ? WHERE id = ?`,
		next.String(), formatTime(s.now()), accountID,
	); err != nil {
		return common.NewStorageError("update account balance", err)
	}

	slog.Debug("applied balance delta",
		"account_id", accountID,
		"delta", delta.String(),
		"balance", next.String())
	return nil
}

func scanAccount(row scanner) (*model.Account, error) {
	var (
		account            model.Account
		accountType        string
		createdAt, updated string
	)
	err := row.Scan(
		&account.ID, &account.Name, &accountType, &account.BankName,
		&account.Balance, &account.OpeningBalance, &account.Currency, &account.IsActive,
		&createdAt, &updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, common.NewStorageError("scan account", err)
	}
	account.Type = model.AccountType(accountType)
	if account.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, common.NewStorageError("scan account", err)
	}
	if account.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, common.NewStorageError("scan account", err)
	}
	return &account, nil
}
