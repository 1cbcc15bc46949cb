package testutil

import (
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/shopspring/decimal"
)

// TransactionBuilder builds model.TransactionInput values. It starts from a
// valid expense on the seeded owner, default account and "food" category.
//
// Example:
//
//	input := testutil.NewTransaction().Income("500").Category("salary").Build()
type TransactionBuilder struct {
	input model.TransactionInput
}

// NewTransaction returns a builder for a valid 10.00 expense.
func NewTransaction() *TransactionBuilder {
	return &TransactionBuilder{input: model.TransactionInput{
		Description:        "Test transaction",
		Amount:             decimal.NewFromInt(10),
		Type:               model.TransactionTypeExpense,
		CategoryID:         "food",
		AccountID:          model.DefaultAccountID,
		AssignedToPersonID: model.OwnerPersonID,
		PaidByPersonID:     model.OwnerPersonID,
	}}
}

// Expense sets the type to expense with the given amount.
func (b *TransactionBuilder) Expense(amount string) *TransactionBuilder {
	b.input.Type = model.TransactionTypeExpense
	b.input.Amount = decimal.RequireFromString(amount)
	return b
}

// Income sets the type to income with the given amount. The category is
// switched to "salary" unless one is set afterwards.
func (b *TransactionBuilder) Income(amount string) *TransactionBuilder {
	b.input.Type = model.TransactionTypeIncome
	b.input.Amount = decimal.RequireFromString(amount)
	b.input.CategoryID = "salary"
	return b
}

// Description sets the description.
func (b *TransactionBuilder) Description(description string) *TransactionBuilder {
	b.input.Description = description
	return b
}

// Category sets the category id.
func (b *TransactionBuilder) Category(id string) *TransactionBuilder {
	b.input.CategoryID = id
	return b
}

// Account sets the account id.
func (b *TransactionBuilder) Account(id string) *TransactionBuilder {
	b.input.AccountID = id
	return b
}

// AssignedTo sets the person the transaction is attributed to. The payer
// follows unless PaidBy is called.
func (b *TransactionBuilder) AssignedTo(personID string) *TransactionBuilder {
	b.input.AssignedToPersonID = personID
	b.input.PaidByPersonID = personID
	return b
}

// PaidBy sets the paying person.
func (b *TransactionBuilder) PaidBy(personID string) *TransactionBuilder {
	b.input.PaidByPersonID = personID
	return b
}

// On sets the transaction date.
func (b *TransactionBuilder) On(date time.Time) *TransactionBuilder {
	b.input.Date = date
	return b
}

// Tags sets the tags.
func (b *TransactionBuilder) Tags(tags ...string) *TransactionBuilder {
	b.input.Tags = tags
	return b
}

// Build returns the input.
func (b *TransactionBuilder) Build() model.TransactionInput {
	return b.input
}
