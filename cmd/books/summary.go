package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/export"
	"github.com/spf13/cobra"
)

// errUnbalanced is returned by audit when any account is off.
var errUnbalanced = errors.New("the books do not balance")

func summaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show balances and who spent what",
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, store, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			s := export.BuildSummary(l.Snapshot(), time.Now())
			out := cmd.OutOrStdout()

			var b strings.Builder
			for _, acc := range s.Accounts {
				fmt.Fprintf(&b, "%-24s %s %s\n", acc.Name, acc.Currency, acc.Balance)
			}
			fmt.Fprintf(&b, "%-24s %s", cli.BoldStyle.Render("Total"), cli.BoldStyle.Render(strings.TrimSpace(s.Currency+" "+s.TotalBalance)))
			_, _ = fmt.Fprintln(out, cli.RenderBox("Balances", b.String()))

			b.Reset()
			for i, p := range s.Persons {
				if i > 0 {
					b.WriteString("\n")
				}
				fmt.Fprintf(&b, "%-24s spent %s  earned %s  paid %s", p.Name, p.Expenses, p.Income, p.Paid)
			}
			_, _ = fmt.Fprintln(out, cli.RenderBox("By person", b.String()))

			if len(s.Categories) > 0 {
				b.Reset()
				for i, c := range s.Categories {
					if i > 0 {
						b.WriteString("\n")
					}
					fmt.Fprintf(&b, "%-24s %s", c.Name, c.Expenses)
				}
				_, _ = fmt.Fprintln(out, cli.RenderBox("Expenses by category", b.String()))
			}

			_, _ = fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("%d transactions", s.TransactionCount)))
			return nil
		},
	}
}

func auditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Check every balance against its transactions",
		Long: `Recompute each active account's balance from its opening balance and
recorded transactions and report any account whose stored balance differs.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, store, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			discrepancies := l.Snapshot().Reconcile()
			if len(discrepancies) == 0 {
				_, _ = fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("All %d accounts balance", len(l.Accounts()))))
				return nil
			}

			w := newTable(out, "Account", "Recorded", "Expected", "Difference")
			for _, d := range discrepancies {
				row(w, d.AccountName+" ("+d.AccountID+")",
					d.Recorded.StringFixed(2),
					d.Expected.StringFixed(2),
					cli.FormatSigned(d.Difference(), ""))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			return fmt.Errorf("%w: %d account(s) off", errUnbalanced, len(discrepancies))
		},
	}
}
