package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/ledger"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func populatedLedger(t *testing.T) (*ledger.Ledger, *model.Person) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	partner := db.MustAddPerson("Partner")

	l := ledger.New(db.Storage)
	ctx := context.Background()
	require.NoError(t, l.Init(ctx))

	day := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	inputs := []model.TransactionInput{
		testutil.NewTransaction().Income("3000").Description("Salary").On(day).Build(),
		testutil.NewTransaction().Expense("120.40").Description("Groceries, weekly").
			AssignedTo(partner.ID).PaidBy(model.OwnerPersonID).On(day.AddDate(0, 0, 1)).Tags("ofx:9", "market").Build(),
		testutil.NewTransaction().Expense("80").Category("bills").Description("Power").On(day.AddDate(0, 0, 2)).Build(),
	}
	for _, input := range inputs {
		_, err := l.AddTransaction(ctx, input)
		require.NoError(t, err)
	}
	return l, partner
}

func TestWriteCSV(t *testing.T) {
	l, _ := populatedLedger(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, l.Snapshot(), ','))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	header := records[0]
	assert.Equal(t, []string{
		"id", "date", "description", "type", "amount", "signed_amount", "category",
		"account", "assigned_to", "paid_by", "recurring", "notes", "tags",
	}, header)

	// Newest first.
	power := records[1]
	assert.Equal(t, "2024-03-03", power[1])
	assert.Equal(t, "Power", power[2])
	assert.Equal(t, "80.00", power[4])
	assert.Equal(t, "-80.00", power[5])
	assert.Equal(t, "Bills", power[6])
	assert.Equal(t, "Main Account", power[7])

	groceries := records[2]
	assert.Equal(t, "Groceries, weekly", groceries[2])
	assert.Equal(t, "Partner", groceries[8])
	assert.Equal(t, "You", groceries[9])
	assert.Equal(t, "ofx:9 market", groceries[12])

	salary := records[3]
	assert.Equal(t, "income", salary[3])
	assert.Equal(t, "3000.00", salary[5])
}

func TestWriteCSV_Delimiter(t *testing.T) {
	l, _ := populatedLedger(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, l.Snapshot(), ';'))

	reader := csv.NewReader(&buf)
	reader.Comma = ';'
	records, err := reader.ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestBuildSummary(t *testing.T) {
	l, partner := populatedLedger(t)
	now := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	summary := BuildSummary(l.Snapshot(), now)

	assert.Equal(t, now, summary.GeneratedAt)
	assert.Equal(t, "BRL", summary.Currency)
	assert.Equal(t, "2799.60", summary.TotalBalance)
	assert.Equal(t, 3, summary.TransactionCount)
	require.Len(t, summary.Accounts, 1)
	assert.Equal(t, "2799.60", summary.Accounts[0].Balance)

	require.Len(t, summary.Persons, 2)
	owner := summary.Persons[0]
	assert.True(t, owner.IsOwner)
	assert.Equal(t, "80.00", owner.Expenses)
	assert.Equal(t, "3000.00", owner.Income)
	assert.Equal(t, "200.40", owner.Paid)

	assert.Equal(t, partner.ID, summary.Persons[1].ID)
	assert.Equal(t, "120.40", summary.Persons[1].Expenses)
	assert.Equal(t, "0.00", summary.Persons[1].Paid)

	require.Len(t, summary.Categories, 2)
	assert.Equal(t, "Bills", summary.Categories[0].Name)
	assert.Equal(t, "80.00", summary.Categories[0].Expenses)
	assert.Equal(t, "Food", summary.Categories[1].Name)
}

func TestWriteSummaryYAMLAndJSON(t *testing.T) {
	l, _ := populatedLedger(t)
	summary := BuildSummary(l.Snapshot(), time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))

	var yamlBuf bytes.Buffer
	require.NoError(t, WriteSummaryYAML(&yamlBuf, summary))
	var fromYAML map[string]any
	require.NoError(t, yaml.Unmarshal(yamlBuf.Bytes(), &fromYAML))
	assert.Equal(t, "2799.60", fromYAML["total_balance"])
	assert.Equal(t, 3, fromYAML["transaction_count"])

	var jsonBuf bytes.Buffer
	require.NoError(t, WriteSummaryJSON(&jsonBuf, summary))
	var fromJSON map[string]any
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &fromJSON))
	assert.Equal(t, "2799.60", fromJSON["total_balance"])
	assert.Len(t, fromJSON["persons"], 2)
}

func TestWrite_UnknownFormat(t *testing.T) {
	l, _ := populatedLedger(t)
	assert.Error(t, Write(&bytes.Buffer{}, l.Snapshot(), "xlsx", time.Now()))
}
