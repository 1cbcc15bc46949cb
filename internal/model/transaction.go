// Package model defines the core domain models used throughout the application.
package model

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates whether money entered or left an account.
type TransactionType string

const (
	// TransactionTypeIncome increases the balance of its account.
	TransactionTypeIncome TransactionType = "income"
	// TransactionTypeExpense decreases the balance of its account.
	TransactionTypeExpense TransactionType = "expense"
)

// IsValid reports whether t is a known transaction type.
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Sign returns +1 for income and -1 for anything else.
func (t TransactionType) Sign() decimal.Decimal {
	if t == TransactionTypeIncome {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(-1)
}

// SignedAmount derives the balance effect of a positive magnitude for type t.
func SignedAmount(amount decimal.Decimal, t TransactionType) decimal.Decimal {
	return amount.Mul(t.Sign())
}

// RecurringFrequency describes how often a recurring transaction repeats.
type RecurringFrequency string

// Recurring frequency constants. The empty value means "not recurring".
const (
	FrequencyNone    RecurringFrequency = ""
	FrequencyDaily   RecurringFrequency = "daily"
	FrequencyWeekly  RecurringFrequency = "weekly"
	FrequencyMonthly RecurringFrequency = "monthly"
	FrequencyYearly  RecurringFrequency = "yearly"
)

// IsValid reports whether f is empty or one of the known frequencies.
func (f RecurringFrequency) IsValid() bool {
	switch f {
	case FrequencyNone, FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	default:
		return false
	}
}

// Transaction is a single income or expense recorded against one account.
// Amount is always a positive magnitude; the balance effect comes from Type.
type Transaction struct {
	Date               time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Amount             decimal.Decimal
	ID                 string
	Description        string
	Type               TransactionType
	CategoryID         string
	AccountID          string
	AssignedToPersonID string // who the expense is attributed to
	PaidByPersonID     string // whose account or card was used
	Notes              string
	RecurringFrequency RecurringFrequency
	Attachments        []string
	Tags               []string
	IsRecurring        bool
}

// Delta returns the signed amount this transaction applies to its account.
func (t *Transaction) Delta() decimal.Decimal {
	return SignedAmount(t.Amount, t.Type)
}

// HasTag reports whether tag is attached to the transaction.
func (t *Transaction) HasTag(tag string) bool {
	return slices.Contains(t.Tags, tag)
}

// Clone returns a copy of t that shares no slices with it.
func (t *Transaction) Clone() Transaction {
	c := *t
	c.Tags = slices.Clone(t.Tags)
	c.Attachments = slices.Clone(t.Attachments)
	return c
}

// TransactionInput carries the caller-supplied fields of a new transaction.
type TransactionInput struct {
	Date               time.Time
	Amount             decimal.Decimal
	Description        string
	Type               TransactionType
	CategoryID         string
	AccountID          string
	AssignedToPersonID string
	PaidByPersonID     string
	Notes              string
	RecurringFrequency RecurringFrequency
	Attachments        []string
	Tags               []string
	IsRecurring        bool
}
