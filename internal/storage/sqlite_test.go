package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestStorage opens a migrated database in a temp directory.
func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func TestSQLiteStorage_Migrate(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Running again is a no-op and must not duplicate the seed.
	require.NoError(t, store.Migrate(ctx))

	persons, err := store.GetPersons(ctx)
	require.NoError(t, err)
	require.Len(t, persons, 1)
	assert.Equal(t, model.OwnerPersonID, persons[0].ID)
	assert.True(t, persons[0].IsOwner)

	accounts, err := store.GetAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, model.DefaultAccountID, accounts[0].ID)
	assert.True(t, accounts[0].Balance.IsZero())
	assert.Equal(t, "BRL", accounts[0].Currency)

	categories, err := store.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, len(DefaultCategories))
}

func TestSQLiteStorage_SeedCategories(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	categories, err := store.GetCategories(ctx)
	require.NoError(t, err)

	counts := map[model.CategoryType]int{}
	for _, c := range categories {
		counts[c.Type]++
		assert.True(t, c.IsActive)
	}
	assert.Equal(t, 7, counts[model.CategoryTypeExpense])
	assert.Equal(t, 4, counts[model.CategoryTypeIncome])

	// Ordered by type, then name.
	assert.Equal(t, "Bills", categories[0].Name)
	assert.Equal(t, model.CategoryTypeExpense, categories[0].Type)
	assert.Equal(t, model.CategoryTypeIncome, categories[len(categories)-1].Type)
}

func TestSQLiteStorage_Persons(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	for _, name := range []string{"Zoe", "Alice"} {
		_, err := store.CreatePerson(ctx, model.PersonInput{Name: name})
		require.NoError(t, err)
	}

	persons, err := store.GetPersons(ctx)
	require.NoError(t, err)
	require.Len(t, persons, 3)
	assert.Equal(t, model.OwnerPersonID, persons[0].ID)
	assert.Equal(t, "Alice", persons[1].Name)
	assert.Equal(t, "Zoe", persons[2].Name)

	got, err := store.GetPersonByID(ctx, persons[1].ID)
	require.NoError(t, err)
	assert.Equal(t, persons[1], *got)

	_, err = store.GetPersonByID(ctx, "ghost")
	assert.ErrorIs(t, err, common.ErrReferential)

	_, err = store.CreatePerson(ctx, model.PersonInput{Name: "  "})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestSQLiteStorage_Accounts(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	account, err := store.CreateAccount(ctx, model.AccountInput{
		Name:    "Card",
		Type:    model.AccountTypeCredit,
		Balance: decimal.RequireFromString("-120.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultCurrency, account.Currency)
	assert.True(t, account.IsActive)
	assert.True(t, account.Balance.Equal(account.OpeningBalance))

	stored, err := store.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("-120.50").Equal(stored.Balance))
	assert.True(t, decimal.RequireFromString("-120.50").Equal(stored.OpeningBalance))

	accounts, err := store.GetAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "Card", accounts[0].Name)
	assert.Equal(t, "Main Account", accounts[1].Name)

	require.NoError(t, store.DeactivateAccount(ctx, account.ID))
	accounts, err = store.GetAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)

	// Still readable by id.
	stored, err = store.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	assert.ErrorIs(t, store.DeactivateAccount(ctx, "ghost"), common.ErrReferential)
}

func TestSQLiteStorage_CreateAccountValidation(t *testing.T) {
	store := createTestStorage(t)

	tests := []struct {
		name  string
		input model.AccountInput
	}{
		{name: "missing name", input: model.AccountInput{Type: model.AccountTypeChecking}},
		{name: "unknown type", input: model.AccountInput{Name: "X", Type: "brokerage"}},
		{name: "missing type", input: model.AccountInput{Name: "X"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.CreateAccount(context.Background(), tt.input)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestSQLiteStorage_Categories(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	child, err := store.CreateCategory(ctx, model.CategoryInput{
		Name: "Groceries", Icon: "🥕", Color: "#00FF00",
		Type: model.CategoryTypeExpense, ParentID: "food",
	})
	require.NoError(t, err)
	assert.Equal(t, "food", child.ParentID)

	got, err := store.GetCategoryByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, *child, *got)

	_, err = store.CreateCategory(ctx, model.CategoryInput{
		Name: "Bonus", Icon: "💰", Color: "#000", Type: model.CategoryTypeIncome, ParentID: "food",
	})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = store.CreateCategory(ctx, model.CategoryInput{
		Name: "Orphan", Icon: "?", Color: "#000", Type: model.CategoryTypeExpense, ParentID: "ghost",
	})
	assert.ErrorIs(t, err, common.ErrReferential)

	require.NoError(t, store.DeactivateCategory(ctx, "gift"))
	categories, err := store.GetCategories(ctx)
	require.NoError(t, err)
	for _, c := range categories {
		assert.NotEqual(t, "gift", c.ID)
	}
	assert.ErrorIs(t, store.DeactivateCategory(ctx, "ghost"), common.ErrReferential)
}

func TestSQLiteStorage_NilContext(t *testing.T) {
	store := createTestStorage(t)

	//nolint:staticcheck // nil context is the case under test
	_, err := store.GetPersons(nil)
	assert.ErrorIs(t, err, ErrNilContext)
}
