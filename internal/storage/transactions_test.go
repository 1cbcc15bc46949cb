package storage

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expenseInput(amount string) model.TransactionInput {
	return model.TransactionInput{
		Description:        "Lunch",
		Amount:             decimal.RequireFromString(amount),
		Type:               model.TransactionTypeExpense,
		CategoryID:         "food",
		AccountID:          model.DefaultAccountID,
		AssignedToPersonID: model.OwnerPersonID,
		PaidByPersonID:     model.OwnerPersonID,
	}
}

func incomeInput(amount string) model.TransactionInput {
	input := expenseInput(amount)
	input.Description = "Salary"
	input.Type = model.TransactionTypeIncome
	input.CategoryID = "salary"
	return input
}

// record inserts a transaction and its balance delta in one database
// transaction.
func record(t *testing.T, store *SQLiteStorage, input model.TransactionInput) *model.Transaction {
	t.Helper()
	txn, err := tryRecord(store, input)
	require.NoError(t, err)
	return txn
}

func tryRecord(store *SQLiteStorage, input model.TransactionInput) (*model.Transaction, error) {
	ctx := context.Background()
	tx, err := store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	txn, err := tx.CreateTransaction(ctx, input)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.ApplyTransactionDelta(ctx, txn.AccountID, txn.Amount, txn.Type); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	return txn, tx.Commit()
}

func balanceOf(t *testing.T, store *SQLiteStorage, accountID string) decimal.Decimal {
	t.Helper()
	account, err := store.GetAccountByID(context.Background(), accountID)
	require.NoError(t, err)
	return account.Balance
}

func TestCreateTransaction_AppliesDelta(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	account, err := store.CreateAccount(ctx, model.AccountInput{
		Name: "Wallet", Type: model.AccountTypeChecking, Balance: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	expense := expenseInput("20")
	expense.AccountID = account.ID
	record(t, store, expense)
	assert.True(t, decimal.NewFromInt(80).Equal(balanceOf(t, store, account.ID)))

	income := incomeInput("500")
	income.AccountID = account.ID
	record(t, store, income)
	assert.True(t, decimal.NewFromInt(580).Equal(balanceOf(t, store, account.ID)))

	// The seeded account is untouched.
	assert.True(t, balanceOf(t, store, model.DefaultAccountID).IsZero())
}

func TestCreateTransaction_DecimalExactness(t *testing.T) {
	store := createTestStorage(t)

	for i := 0; i < 10; i++ {
		record(t, store, incomeInput("0.10"))
	}
	record(t, store, expenseInput("0.30"))

	assert.Equal(t, "0.7", balanceOf(t, store, model.DefaultAccountID).String())
}

func TestCreateTransaction_RollbackLeavesNoTrace(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	txn, err := tx.CreateTransaction(ctx, expenseInput("42"))
	require.NoError(t, err)
	require.NoError(t, tx.ApplyTransactionDelta(ctx, txn.AccountID, txn.Amount, txn.Type))
	require.NoError(t, tx.Rollback())

	transactions, err := store.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, transactions)
	assert.True(t, balanceOf(t, store, model.DefaultAccountID).IsZero())
}

func TestCreateTransaction_Validation(t *testing.T) {
	tests := []struct {
		mutate  func(*model.TransactionInput)
		wantErr error
		name    string
	}{
		{name: "zero amount", mutate: func(in *model.TransactionInput) { in.Amount = decimal.Zero }, wantErr: common.ErrValidation},
		{name: "negative amount", mutate: func(in *model.TransactionInput) { in.Amount = decimal.NewFromInt(-5) }, wantErr: common.ErrValidation},
		{name: "blank description", mutate: func(in *model.TransactionInput) { in.Description = " " }, wantErr: common.ErrValidation},
		{name: "unknown type", mutate: func(in *model.TransactionInput) { in.Type = "transfer" }, wantErr: common.ErrValidation},
		{name: "missing category", mutate: func(in *model.TransactionInput) { in.CategoryID = "" }, wantErr: common.ErrValidation},
		{name: "missing payer", mutate: func(in *model.TransactionInput) { in.PaidByPersonID = "" }, wantErr: common.ErrValidation},
		{name: "recurring without frequency", mutate: func(in *model.TransactionInput) { in.IsRecurring = true }, wantErr: common.ErrValidation},
		{name: "unknown frequency", mutate: func(in *model.TransactionInput) { in.RecurringFrequency = "hourly" }, wantErr: common.ErrValidation},
		{name: "category type mismatch", mutate: func(in *model.TransactionInput) { in.CategoryID = "salary" }, wantErr: common.ErrValidation},
		{name: "unknown category", mutate: func(in *model.TransactionInput) { in.CategoryID = "ghost" }, wantErr: common.ErrReferential},
		{name: "unknown account", mutate: func(in *model.TransactionInput) { in.AccountID = "ghost" }, wantErr: common.ErrReferential},
		{name: "unknown assignee", mutate: func(in *model.TransactionInput) { in.AssignedToPersonID = "ghost" }, wantErr: common.ErrReferential},
		{name: "unknown payer", mutate: func(in *model.TransactionInput) { in.PaidByPersonID = "ghost" }, wantErr: common.ErrReferential},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := createTestStorage(t)
			input := expenseInput("10")
			tt.mutate(&input)

			_, err := tryRecord(store, input)
			require.ErrorIs(t, err, tt.wantErr)

			transactions, err := store.GetTransactions(context.Background(), service.TransactionFilter{})
			require.NoError(t, err)
			assert.Empty(t, transactions)
			assert.True(t, balanceOf(t, store, model.DefaultAccountID).IsZero())
		})
	}
}

func TestCreateTransaction_InactiveReferences(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.DeactivateCategory(ctx, "food"))
	_, err := tryRecord(store, expenseInput("10"))
	assert.ErrorIs(t, err, common.ErrReferential)

	account, err := store.CreateAccount(ctx, model.AccountInput{Name: "Old", Type: model.AccountTypeSavings})
	require.NoError(t, err)
	require.NoError(t, store.DeactivateAccount(ctx, account.ID))

	input := expenseInput("10")
	input.CategoryID = "bills"
	input.AccountID = account.ID
	_, err = tryRecord(store, input)
	assert.ErrorIs(t, err, common.ErrReferential)
}

func TestCreateTransaction_Defaults(t *testing.T) {
	store := createTestStorage(t)
	fixed := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return fixed })

	input := expenseInput("10")
	input.Tags = []string{"ofx:123", "lunch"}
	input.IsRecurring = true
	input.RecurringFrequency = model.FrequencyMonthly
	txn := record(t, store, input)

	assert.Equal(t, fixed, txn.Date)
	assert.NotEmpty(t, txn.ID)

	transactions, err := store.GetTransactions(context.Background(), service.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	got := transactions[0]
	assert.Equal(t, fixed, got.Date)
	assert.Equal(t, fixed, got.CreatedAt)
	assert.Equal(t, []string{"ofx:123", "lunch"}, got.Tags)
	assert.Equal(t, []string{}, got.Attachments)
	assert.True(t, got.HasTag("lunch"))
	assert.Equal(t, model.FrequencyMonthly, got.RecurringFrequency)
	assert.True(t, decimal.NewFromInt(10).Equal(got.Amount))
}

func TestGetTransactions_Ordering(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})

	day := func(d int) time.Time { return time.Date(2024, 2, d, 0, 0, 0, 0, time.UTC) }

	older := expenseInput("1")
	older.Description = "older"
	older.Date = day(1)
	record(t, store, older)

	first := expenseInput("2")
	first.Description = "same day, first"
	first.Date = day(5)
	record(t, store, first)

	second := expenseInput("3")
	second.Description = "same day, second"
	second.Date = day(5)
	record(t, store, second)

	transactions, err := store.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, transactions, 3)
	assert.Equal(t, "same day, second", transactions[0].Description)
	assert.Equal(t, "same day, first", transactions[1].Description)
	assert.Equal(t, "older", transactions[2].Description)

	page, err := store.GetTransactions(ctx, service.TransactionFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "same day, first", page[0].Description)

	tail, err := store.GetTransactions(ctx, service.TransactionFilter{Offset: 2})
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, "older", tail[0].Description)

	_, err = store.GetTransactions(ctx, service.TransactionFilter{Limit: -1})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestGetTransactionsByPerson(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	partner, err := store.CreatePerson(ctx, model.PersonInput{Name: "Partner"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		input := expenseInput("5")
		input.AssignedToPersonID = partner.ID
		record(t, store, input)
	}
	record(t, store, expenseInput("7"))

	got, err := store.GetTransactionsByPerson(ctx, partner.ID, 0)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	for _, txn := range got {
		assert.Equal(t, partner.ID, txn.AssignedToPersonID)
	}

	limited, err := store.GetTransactionsByPerson(ctx, partner.ID, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	none, err := store.GetTransactionsByPerson(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetTransactionsByPerson_DefaultLimit(t *testing.T) {
	store := createTestStorage(t)

	for i := 0; i < service.DefaultPersonTransactionLimit+5; i++ {
		record(t, store, expenseInput("1"))
	}

	got, err := store.GetTransactionsByPerson(context.Background(), model.OwnerPersonID, 0)
	require.NoError(t, err)
	assert.Len(t, got, service.DefaultPersonTransactionLimit)
}

func TestApplyTransactionDelta_UnknownAccount(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	err = tx.ApplyTransactionDelta(ctx, "ghost", decimal.NewFromInt(1), model.TransactionTypeIncome)
	assert.ErrorIs(t, err, common.ErrReferential)
}

func TestTransactionReadsSeeUncommittedWrites(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	txn, err := tx.CreateTransaction(ctx, expenseInput("9"))
	require.NoError(t, err)
	require.NoError(t, tx.ApplyTransactionDelta(ctx, txn.AccountID, txn.Amount, txn.Type))

	inTx, err := tx.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, inTx, 1)

	account, err := tx.GetAccountByID(ctx, model.DefaultAccountID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(-9).Equal(account.Balance))
}
