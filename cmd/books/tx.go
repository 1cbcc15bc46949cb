package main

import (
	"fmt"
	"io"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/ledger"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/spf13/cobra"
)

func txCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "Record and list transactions",
	}

	cmd.AddCommand(listTransactionsCmd(a))
	cmd.AddCommand(addTransactionCmd(a))
	cmd.AddCommand(transactionsByPersonCmd(a))

	return cmd
}

func listTransactionsCmd(a *app) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 || offset < 0 {
				return common.NewValidationError("limit", "limit and offset must not be negative")
			}

			l, store, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			snap := l.Snapshot()
			txns := snap.Transactions()
			if offset >= len(txns) {
				txns = nil
			} else {
				txns = txns[offset:]
			}
			if limit > 0 && len(txns) > limit {
				txns = txns[:limit]
			}

			return printTransactions(cmd.OutOrStdout(), snap, txns)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum rows to show (0 for all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Rows to skip")

	return cmd
}

func transactionsByPersonCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "by-person <person-id>",
		Short: "List the newest transactions assigned to a person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, store, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			snap := l.Snapshot()
			if _, ok := snap.PersonByID(args[0]); !ok {
				return common.NewReferentialError("person", args[0])
			}

			txns, err := l.GetTransactionsByPerson(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get transactions: %w", err)
			}
			return printTransactions(cmd.OutOrStdout(), snap, txns)
		},
	}
}

func addTransactionCmd(a *app) *cobra.Command {
	var (
		description string
		amount      string
		txnType     string
		category    string
		account     string
		assignedTo  string
		paidBy      string
		date        string
		notes       string
		frequency   string
		tags        []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an income or expense",
		Long: `Record a transaction and apply it to the account balance in one step.

Expenses are assigned to the person they were for and may be paid by another
person; --paid-by defaults to --assigned-to.`,
		Example: `  books tx add -d "Groceries" -a 120.50 -c food --assigned-to owner
  books tx add -d "Salary" -a 5000 -t income -c salary --date 2025-06-05`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsedAmount, err := parseAmount(amount)
			if err != nil {
				return err
			}
			parsedDate, err := parseDate(date)
			if err != nil {
				return err
			}
			if paidBy == "" {
				paidBy = assignedTo
			}

			l, store, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			txn, err := l.AddTransaction(cmd.Context(), model.TransactionInput{
				Date:               parsedDate,
				Amount:             parsedAmount,
				Description:        description,
				Type:               model.TransactionType(txnType),
				CategoryID:         category,
				AccountID:          account,
				AssignedToPersonID: assignedTo,
				PaidByPersonID:     paidBy,
				Notes:              notes,
				IsRecurring:        frequency != "",
				RecurringFrequency: model.RecurringFrequency(frequency),
				Tags:               tags,
			})
			if txn == nil {
				return fmt.Errorf("failed to add transaction: %w", err)
			}
			if err != nil {
				// The write committed; only the in-memory view is stale.
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning("Recorded, but the ledger view could not be refreshed: "+err.Error()))
			}

			balance := "?"
			if acc, ok := l.Snapshot().AccountByID(txn.AccountID); ok {
				balance = cli.FormatMoney(acc.Balance, acc.Currency)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Recorded %s %s (%s), balance now %s",
				txn.Type, txn.Amount.StringFixed(2), txn.Description, balance)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Description (required)")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Positive amount (required)")
	cmd.Flags().StringVarP(&txnType, "type", "t", string(model.TransactionTypeExpense), "Transaction type (income, expense)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category id (required)")
	cmd.Flags().StringVar(&account, "account", model.DefaultAccountID, "Account id")
	cmd.Flags().StringVar(&assignedTo, "assigned-to", model.OwnerPersonID, "Person the transaction is attributed to")
	cmd.Flags().StringVar(&paidBy, "paid-by", "", "Person who paid (default: --assigned-to)")
	cmd.Flags().StringVar(&date, "date", "", "Date as YYYY-MM-DD (default: now)")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	cmd.Flags().StringVar(&frequency, "recurring", "", "Mark as recurring (daily, weekly, monthly, yearly)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag to attach (repeatable)")

	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func printTransactions(out io.Writer, snap *ledger.Snapshot, txns []model.Transaction) error {
	if len(txns) == 0 {
		_, _ = fmt.Fprintln(out, cli.InfoStyle.Render("No transactions found."))
		return nil
	}

	w := newTable(out, "Date", "Description", "Category", "Account", "Assigned", "Paid by", "Amount")
	for _, txn := range txns {
		currency := ""
		account := txn.AccountID
		if acc, ok := snap.AccountByID(txn.AccountID); ok {
			account, currency = acc.Name, acc.Currency
		}
		category := txn.CategoryID
		if cat, ok := snap.CategoryByID(txn.CategoryID); ok {
			category = cat.Name
		}
		row(w,
			txn.Date.Local().Format(dateLayout),
			txn.Description,
			category,
			account,
			personLabel(snap, txn.AssignedToPersonID),
			personLabel(snap, txn.PaidByPersonID),
			cli.FormatSigned(txn.Delta(), currency))
	}
	return w.Flush()
}

func personLabel(snap *ledger.Snapshot, id string) string {
	if p, ok := snap.PersonByID(id); ok {
		return p.Name
	}
	return id
}
