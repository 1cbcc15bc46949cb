package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultAccountID is the id of the seeded account.
const DefaultAccountID = "default-account"

// DefaultCurrency is used when an account is created without a currency.
const DefaultCurrency = "BRL"

// AccountType is the kind of account or card.
type AccountType string

// Account type constants.
const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
	AccountTypeCredit   AccountType = "credit"
	AccountTypeDebit    AccountType = "debit"
)

// IsValid reports whether a is a known account type.
func (a AccountType) IsValid() bool {
	switch a {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCredit, AccountTypeDebit:
		return true
	default:
		return false
	}
}

// Account holds a running balance. Balance equals OpeningBalance plus the
// delta of every transaction recorded against the account.
type Account struct {
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Balance        decimal.Decimal
	OpeningBalance decimal.Decimal
	ID             string
	Name           string
	Type           AccountType
	BankName       string
	Currency       string
	IsActive       bool
}

// AccountInput carries the caller-supplied fields of a new account. Balance
// is the starting balance.
type AccountInput struct {
	Balance  decimal.Decimal
	Name     string
	Type     AccountType
	BankName string
	Currency string
}
