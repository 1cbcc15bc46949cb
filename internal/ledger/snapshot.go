package ledger

import (
	"slices"
	"strings"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/shopspring/decimal"
)

// Snapshot is an immutable view of the ledger taken after a refresh. Its
// accessors return copies and its aggregations are recomputed per call.
type Snapshot struct {
	loadedAt     time.Time
	persons      []model.Person
	accounts     []model.Account
	categories   []model.Category
	transactions []model.Transaction
}

// BalanceDiscrepancy describes an account whose stored balance differs from
// its opening balance plus the deltas of its transactions.
type BalanceDiscrepancy struct {
	Recorded    decimal.Decimal
	Expected    decimal.Decimal
	AccountID   string
	AccountName string
}

// Difference is how far the stored balance is from the expected one.
func (d BalanceDiscrepancy) Difference() decimal.Decimal {
	return d.Recorded.Sub(d.Expected)
}

func emptySnapshot() *Snapshot {
	return &Snapshot{}
}

func newSnapshot(loadedAt time.Time, persons []model.Person, accounts []model.Account, categories []model.Category, transactions []model.Transaction) *Snapshot {
	return &Snapshot{
		loadedAt:     loadedAt,
		persons:      persons,
		accounts:     accounts,
		categories:   categories,
		transactions: transactions,
	}
}

// LoadedAt is when the snapshot was published. It is zero before the first
// refresh.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// Persons returns all persons, owner first.
func (s *Snapshot) Persons() []model.Person {
	return slices.Clone(s.persons)
}

// Accounts returns the active accounts ordered by name.
func (s *Snapshot) Accounts() []model.Account {
	return slices.Clone(s.accounts)
}

// Categories returns the active categories ordered by type and name.
func (s *Snapshot) Categories() []model.Category {
	return slices.Clone(s.categories)
}

// Transactions returns every transaction, newest first.
func (s *Snapshot) Transactions() []model.Transaction {
	out := make([]model.Transaction, len(s.transactions))
	for i := range s.transactions {
		out[i] = s.transactions[i].Clone()
	}
	return out
}

// TransactionsByPerson returns the transactions assigned to personID,
// newest first.
func (s *Snapshot) TransactionsByPerson(personID string) []model.Transaction {
	var out []model.Transaction
	for i := range s.transactions {
		if s.transactions[i].AssignedToPersonID == personID {
			out = append(out, s.transactions[i].Clone())
		}
	}
	return out
}

// Owner returns the account owner, or nil if none was loaded.
func (s *Snapshot) Owner() *model.Person {
	for i := range s.persons {
		if s.persons[i].IsOwner {
			p := s.persons[i]
			return &p
		}
	}
	return nil
}

// PersonByID looks up a person in the snapshot.
func (s *Snapshot) PersonByID(id string) (model.Person, bool) {
	i := slices.IndexFunc(s.persons, func(p model.Person) bool { return p.ID == id })
	if i < 0 {
		return model.Person{}, false
	}
	return s.persons[i], true
}

// AccountByID looks up an active account in the snapshot.
func (s *Snapshot) AccountByID(id string) (model.Account, bool) {
	i := slices.IndexFunc(s.accounts, func(a model.Account) bool { return a.ID == id })
	if i < 0 {
		return model.Account{}, false
	}
	return s.accounts[i], true
}

// CategoryByID looks up an active category in the snapshot.
func (s *Snapshot) CategoryByID(id string) (model.Category, bool) {
	i := slices.IndexFunc(s.categories, func(c model.Category) bool { return c.ID == id })
	if i < 0 {
		return model.Category{}, false
	}
	return s.categories[i], true
}

// HasTag reports whether any transaction carries tag.
func (s *Snapshot) HasTag(tag string) bool {
	for i := range s.transactions {
		if s.transactions[i].HasTag(tag) {
			return true
		}
	}
	return false
}

// TagSet collects every tag starting with prefix into a set.
func (s *Snapshot) TagSet(prefix string) map[string]struct{} {
	set := make(map[string]struct{})
	for i := range s.transactions {
		for _, tag := range s.transactions[i].Tags {
			if strings.HasPrefix(tag, prefix) {
				set[tag] = struct{}{}
			}
		}
	}
	return set
}

// TotalBalance sums the balances of the snapshot's accounts.
func (s *Snapshot) TotalBalance() decimal.Decimal {
	total := decimal.Zero
	for _, account := range s.accounts {
		total = total.Add(account.Balance)
	}
	return total
}

// ExpensesByPerson totals expense amounts per assigned person. Persons
// without expenses are absent.
func (s *Snapshot) ExpensesByPerson() map[string]decimal.Decimal {
	return s.sumBy(model.TransactionTypeExpense, func(t *model.Transaction) string {
		return t.AssignedToPersonID
	})
}

// IncomeByPerson totals income amounts per assigned person.
func (s *Snapshot) IncomeByPerson() map[string]decimal.Decimal {
	return s.sumBy(model.TransactionTypeIncome, func(t *model.Transaction) string {
		return t.AssignedToPersonID
	})
}

// PaidByPerson totals expense amounts per paying person, regardless of who
// the expense was assigned to.
func (s *Snapshot) PaidByPerson() map[string]decimal.Decimal {
	return s.sumBy(model.TransactionTypeExpense, func(t *model.Transaction) string {
		return t.PaidByPersonID
	})
}

// ExpensesByCategory totals expense amounts per category.
func (s *Snapshot) ExpensesByCategory() map[string]decimal.Decimal {
	return s.sumBy(model.TransactionTypeExpense, func(t *model.Transaction) string {
		return t.CategoryID
	})
}

// Reconcile checks every account in the snapshot against its opening
// balance plus the deltas of its transactions. An empty result means the
// books balance.
func (s *Snapshot) Reconcile() []BalanceDiscrepancy {
	deltas := make(map[string]decimal.Decimal, len(s.accounts))
	for i := range s.transactions {
		txn := &s.transactions[i]
		deltas[txn.AccountID] = deltas[txn.AccountID].Add(txn.Delta())
	}

	var discrepancies []BalanceDiscrepancy
	for _, account := range s.accounts {
		expected := account.OpeningBalance.Add(deltas[account.ID])
		if account.Balance.Equal(expected) {
			continue
		}
		discrepancies = append(discrepancies, BalanceDiscrepancy{
			AccountID:   account.ID,
			AccountName: account.Name,
			Recorded:    account.Balance,
			Expected:    expected,
		})
	}
	return discrepancies
}

func (s *Snapshot) sumBy(txnType model.TransactionType, key func(*model.Transaction) string) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for i := range s.transactions {
		txn := &s.transactions[i]
		if txn.Type != txnType {
			continue
		}
		k := key(txn)
		totals[k] = totals[k].Add(txn.Amount)
	}
	return totals
}
