// Package export writes the ledger out as CSV transaction lists and as
// YAML or JSON summaries.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/ledger"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"
)

// Format names accepted by the export command.
const (
	FormatCSV  = "csv"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

const dateLayout = "2006-01-02"

// TransactionRow is one CSV line. Names are resolved from the snapshot;
// ids of deactivated accounts or categories are written as-is.
type TransactionRow struct {
	ID           string `csv:"id"`
	Date         string `csv:"date"`
	Description  string `csv:"description"`
	Type         string `csv:"type"`
	Amount       string `csv:"amount"`
	SignedAmount string `csv:"signed_amount"`
	Category     string `csv:"category"`
	Account      string `csv:"account"`
	AssignedTo   string `csv:"assigned_to"`
	PaidBy       string `csv:"paid_by"`
	Recurring    string `csv:"recurring"`
	Notes        string `csv:"notes"`
	Tags         string `csv:"tags"`
}

// Summary is the aggregate view written by the YAML and JSON exporters.
// Amounts are fixed two-decimal strings.
type Summary struct {
	GeneratedAt      time.Time         `json:"generated_at" yaml:"generated_at"`
	Currency         string            `json:"currency" yaml:"currency"`
	TotalBalance     string            `json:"total_balance" yaml:"total_balance"`
	Accounts         []AccountSummary  `json:"accounts" yaml:"accounts"`
	Persons          []PersonSummary   `json:"persons" yaml:"persons"`
	Categories       []CategorySummary `json:"categories" yaml:"categories"`
	TransactionCount int               `json:"transaction_count" yaml:"transaction_count"`
}

// AccountSummary is one account line of a Summary.
type AccountSummary struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Balance  string `json:"balance" yaml:"balance"`
	Currency string `json:"currency" yaml:"currency"`
}

// PersonSummary is one person line of a Summary.
type PersonSummary struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Expenses string `json:"expenses" yaml:"expenses"`
	Income   string `json:"income" yaml:"income"`
	Paid     string `json:"paid" yaml:"paid"`
	IsOwner  bool   `json:"is_owner" yaml:"is_owner"`
}

// CategorySummary is the expense total of one category.
type CategorySummary struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Expenses string `json:"expenses" yaml:"expenses"`
}

// Rows converts the snapshot's transactions to CSV rows, newest first.
func Rows(s *ledger.Snapshot) []TransactionRow {
	transactions := s.Transactions()
	rows := make([]TransactionRow, 0, len(transactions))

	for i := range transactions {
		txn := &transactions[i]
		recurring := ""
		if txn.IsRecurring {
			recurring = string(txn.RecurringFrequency)
		}
		rows = append(rows, TransactionRow{
			ID:           txn.ID,
			Date:         txn.Date.Format(dateLayout),
			Description:  txn.Description,
			Type:         string(txn.Type),
			Amount:       txn.Amount.StringFixed(2),
			SignedAmount: txn.Delta().StringFixed(2),
			Category:     categoryName(s, txn.CategoryID),
			Account:      accountName(s, txn.AccountID),
			AssignedTo:   personName(s, txn.AssignedToPersonID),
			PaidBy:       personName(s, txn.PaidByPersonID),
			Recurring:    recurring,
			Notes:        txn.Notes,
			Tags:         strings.Join(txn.Tags, " "),
		})
	}
	return rows
}

// WriteCSV writes every transaction in the snapshot as CSV with a header
// row.
func WriteCSV(w io.Writer, s *ledger.Snapshot, delimiter rune) error {
	rows := Rows(s)

	csvWriter := csv.NewWriter(w)
	if delimiter != 0 {
		csvWriter.Comma = delimiter
	}

	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}

	slog.Info("Exported transactions", "format", FormatCSV, "count", len(rows))
	return nil
}

// BuildSummary aggregates the snapshot into a Summary.
func BuildSummary(s *ledger.Snapshot, generatedAt time.Time) Summary {
	expenses := s.ExpensesByPerson()
	income := s.IncomeByPerson()
	paid := s.PaidByPerson()
	byCategory := s.ExpensesByCategory()

	summary := Summary{
		GeneratedAt:      generatedAt.UTC(),
		Currency:         commonCurrency(s.Accounts()),
		TotalBalance:     s.TotalBalance().StringFixed(2),
		TransactionCount: len(s.Transactions()),
		Accounts:         []AccountSummary{},
		Persons:          []PersonSummary{},
		Categories:       []CategorySummary{},
	}

	for _, a := range s.Accounts() {
		summary.Accounts = append(summary.Accounts, AccountSummary{
			ID:       a.ID,
			Name:     a.Name,
			Type:     string(a.Type),
			Balance:  a.Balance.StringFixed(2),
			Currency: a.Currency,
		})
	}

	for _, p := range s.Persons() {
		summary.Persons = append(summary.Persons, PersonSummary{
			ID:       p.ID,
			Name:     p.Name,
			IsOwner:  p.IsOwner,
			Expenses: expenses[p.ID].StringFixed(2),
			Income:   income[p.ID].StringFixed(2),
			Paid:     paid[p.ID].StringFixed(2),
		})
	}

	for _, c := range s.Categories() {
		total, ok := byCategory[c.ID]
		if !ok || c.Type != model.CategoryTypeExpense {
			continue
		}
		summary.Categories = append(summary.Categories, CategorySummary{
			ID:       c.ID,
			Name:     c.Name,
			Expenses: total.StringFixed(2),
		})
	}

	return summary
}

// WriteSummaryYAML writes summary as YAML.
func WriteSummaryYAML(w io.Writer, summary Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("error writing YAML summary: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("error writing YAML summary: %w", err)
	}
	return nil
}

// WriteSummaryJSON writes summary as indented JSON.
func WriteSummaryJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("error writing JSON summary: %w", err)
	}
	return nil
}

// Write dispatches on format.
func Write(w io.Writer, s *ledger.Snapshot, format string, now time.Time) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, s, ',')
	case FormatYAML:
		return WriteSummaryYAML(w, BuildSummary(s, now))
	case FormatJSON:
		return WriteSummaryJSON(w, BuildSummary(s, now))
	default:
		return fmt.Errorf("unsupported export format %q (use csv, yaml or json)", format)
	}
}

func commonCurrency(accounts []model.Account) string {
	if len(accounts) == 0 {
		return model.DefaultCurrency
	}
	currency := accounts[0].Currency
	for _, a := range accounts[1:] {
		if a.Currency != currency {
			return ""
		}
	}
	return currency
}

func personName(s *ledger.Snapshot, id string) string {
	if p, ok := s.PersonByID(id); ok {
		return p.Name
	}
	return id
}

func accountName(s *ledger.Snapshot, id string) string {
	if a, ok := s.AccountByID(id); ok {
		return a.Name
	}
	return id
}

func categoryName(s *ledger.Snapshot, id string) string {
	if c, ok := s.CategoryByID(id); ok {
		return c.Name
	}
	return id
}
