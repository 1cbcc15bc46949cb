package main

import (
	"fmt"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/spf13/cobra"
)

func accountsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts and cards",
		Long:  `List, add, and deactivate the accounts that hold balances.`,
	}

	cmd.AddCommand(listAccountsCmd(a))
	cmd.AddCommand(addAccountCmd(a))
	cmd.AddCommand(deactivateAccountCmd(a))

	return cmd
}

func listAccountsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active accounts with their balances",
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, store, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			accounts := l.Accounts()
			if len(accounts) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.InfoStyle.Render("No active accounts. Use 'books accounts add' to create one."))
				return nil
			}

			w := newTable(cmd.OutOrStdout(), "ID", "Name", "Type", "Bank", "Balance")
			for _, acc := range accounts {
				row(w, acc.ID, acc.Name, string(acc.Type), orDash(acc.BankName),
					cli.FormatMoney(acc.Balance, acc.Currency))
			}
			row(w, "", "", "", cli.BoldStyle.Render("Total"),
				cli.BoldStyle.Render(cli.FormatMoney(l.GetTotalBalance(), "")))
			return w.Flush()
		},
	}
}

func addAccountCmd(a *app) *cobra.Command {
	var (
		accountType string
		bank        string
		balance     string
		currency    string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an account",
		Long: `Create an account. --balance sets the opening balance; afterwards the
balance only changes through transactions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opening, err := parseAmount(balance)
			if err != nil {
				return err
			}

			l, store, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			acc, err := l.AddAccount(cmd.Context(), model.AccountInput{
				Name:     args[0],
				Type:     model.AccountType(accountType),
				BankName: bank,
				Balance:  opening,
				Currency: currency,
			})
			if err != nil {
				return fmt.Errorf("failed to add account: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s (%s) with %s",
				acc.Name, acc.ID, cli.FormatMoney(acc.Balance, acc.Currency))))
			return nil
		},
	}

	cmd.Flags().StringVar(&accountType, "type", string(model.AccountTypeChecking), "Account type (checking, savings, credit, debit)")
	cmd.Flags().StringVar(&bank, "bank", "", "Bank name")
	cmd.Flags().StringVar(&balance, "balance", "0", "Opening balance")
	cmd.Flags().StringVar(&currency, "currency", model.DefaultCurrency, "ISO currency code")

	return cmd
}

func deactivateAccountCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Deactivate an account",
		Long:  `Hide an account from listings and refuse new transactions against it. Its history is kept.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, store, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := l.DeactivateAccount(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to deactivate account: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deactivated account "+args[0]))
			return nil
		},
	}
}
