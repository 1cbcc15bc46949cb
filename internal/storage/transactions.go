package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/service"
	"github.com/google/uuid"
)

const transactionColumns = `id, description, amount, type, category_id, account_id,
	assigned_to_person_id, paid_by_person_id, date, notes, is_recurring,
	recurring_frequency, attachments, tags, created_at, updated_at`

// Newest first. rowid breaks ties between rows stamped in the same instant.
const transactionOrder = `ORDER BY date DESC, created_at DESC, rowid DESC`

// GetTransactions returns transactions newest first, paged by filter.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getTransactions(ctx, s.db, filter)
}

// GetTransactionsByPerson returns the newest transactions assigned to a
// person. A non-positive limit uses service.DefaultPersonTransactionLimit.
func (s *SQLiteStorage) GetTransactionsByPerson(ctx context.Context, personID string, limit int) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getTransactionsByPerson(ctx, s.db, personID, limit)
}

func (s *SQLiteStorage) createTransactionTx(ctx context.Context, tx *sql.Tx, input model.TransactionInput) (*model.Transaction, error) {
	if err := validateTransactionInput(input); err != nil {
		return nil, err
	}

	category, err := s.getCategoryByID(ctx, tx, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if !category.IsActive {
		return nil, common.NewReferentialError("category", input.CategoryID)
	}
	if !category.Type.Matches(input.Type) {
		return nil, common.NewValidationError("category",
			fmt.Sprintf("%s category %q cannot hold a %s transaction", category.Type, category.ID, input.Type))
	}

	account, err := s.getAccountByID(ctx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, common.NewReferentialError("account", input.AccountID)
	}

	if _, err := s.getPersonByID(ctx, tx, input.AssignedToPersonID); err != nil {
		return nil, err
	}
	if input.PaidByPersonID != input.AssignedToPersonID {
		if _, err := s.getPersonByID(ctx, tx, input.PaidByPersonID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	date := input.Date
	if date.IsZero() {
		date = now
	}

	txn := &model.Transaction{
		ID:                 uuid.NewString(),
		Description:        strings.TrimSpace(input.Description),
		Amount:             input.Amount,
		Type:               input.Type,
		CategoryID:         input.CategoryID,
		AccountID:          input.AccountID,
		AssignedToPersonID: input.AssignedToPersonID,
		PaidByPersonID:     input.PaidByPersonID,
		Date:               date.UTC(),
		Notes:              input.Notes,
		IsRecurring:        input.IsRecurring,
		RecurringFrequency: input.RecurringFrequency,
		Attachments:        nonNil(input.Attachments),
		Tags:               nonNil(input.Tags),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	attachments, err := json.Marshal(txn.Attachments)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal attachments: %w", err)
	}
	tags, err := json.Marshal(txn.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.Description, txn.Amount.String(), string(txn.Type),
		txn.CategoryID, txn.AccountID, txn.AssignedToPersonID, txn.PaidByPersonID,
		formatTime(txn.Date), txn.Notes, txn.IsRecurring, string(txn.RecurringFrequency),
		string(attachments), string(tags), formatTime(now), formatTime(now),
	)
	if err != nil {
		return nil, common.NewStorageError("insert transaction", err)
	}

	slog.Debug("inserted transaction",
		"id", txn.ID,
		"type", txn.Type,
		"amount", txn.Amount.String(),
		"account_id", txn.AccountID)
	return txn, nil
}

func (s *SQLiteStorage) getTransactions(ctx context.Context, q querier, filter service.TransactionFilter) ([]model.Transaction, error) {
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, common.NewValidationError("filter", "limit and offset cannot be negative")
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions ` + transactionOrder
	var args []any
	switch {
	case filter.Limit > 0:
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	case filter.Offset > 0:
		query += ` LIMIT -1 OFFSET ?`
		args = append(args, filter.Offset)
	}

	return queryTransactions(ctx, q, query, args...)
}

func (s *SQLiteStorage) getTransactionsByPerson(ctx context.Context, q querier, personID string, limit int) ([]model.Transaction, error) {
	if err := required(personID, "person"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = service.DefaultPersonTransactionLimit
	}

	return queryTransactions(ctx, q, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE assigned_to_person_id = ?
		`+transactionOrder+`
		LIMIT ?`, personID, limit)
}

func queryTransactions(ctx context.Context, q querier, query string, args ...any) ([]model.Transaction, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewStorageError("query transactions", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewStorageError("iterate transactions", err)
	}

	slog.Debug("retrieved transactions", "count", len(transactions))
	return transactions, nil
}

func scanTransaction(row scanner) (*model.Transaction, error) {
	var (
		txn                      model.Transaction
		txnType, frequency       string
		date, createdAt, updated string
		attachments, tags        string
	)
	err := row.Scan(
		&txn.ID, &txn.Description, &txn.Amount, &txnType, &txn.CategoryID, &txn.AccountID,
		&txn.AssignedToPersonID, &txn.PaidByPersonID, &date, &txn.Notes, &txn.IsRecurring,
		&frequency, &attachments, &tags, &createdAt, &updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, common.NewStorageError("scan transaction", err)
	}

	txn.Type = model.TransactionType(txnType)
	txn.RecurringFrequency = model.RecurringFrequency(frequency)

	if err := json.Unmarshal([]byte(attachments), &txn.Attachments); err != nil {
		return nil, common.NewStorageError("decode attachments", err)
	}
	if err := json.Unmarshal([]byte(tags), &txn.Tags); err != nil {
		return nil, common.NewStorageError("decode tags", err)
	}
	if txn.Date, err = parseTime(date); err != nil {
		return nil, common.NewStorageError("scan transaction", err)
	}
	if txn.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, common.NewStorageError("scan transaction", err)
	}
	if txn.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, common.NewStorageError("scan transaction", err)
	}
	return &txn, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
