package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/ofx"
	"github.com/spf13/cobra"
)

// importResult counts what happened to the statement lines of one run.
type importResult struct {
	Parsed     int
	Recorded   int
	Duplicates int
	Failed     int
}

func importCmd(a *app) *cobra.Command {
	var (
		dryRun          bool
		noCheckpoint    bool
		account         string
		person          string
		expenseCategory string
		incomeCategory  string
	)

	cmd := &cobra.Command{
		Use:   "import <files...>",
		Short: "Import transactions from OFX/QFX statements",
		Long: `Record the lines of OFX or QFX bank statements as transactions.

Debits become expenses and credits become income. Each imported transaction
is tagged with the statement's FITID, so importing the same file twice
records nothing new. An automatic checkpoint is taken before anything is
written.`,
		Example: `  books import ~/Downloads/extrato.ofx
  books import --account nubank-card --person partner ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			defaults := ofx.Defaults{
				ExpenseCategoryID: firstNonEmpty(expenseCategory, a.cfg.Import.ExpenseCategory),
				IncomeCategoryID:  firstNonEmpty(incomeCategory, a.cfg.Import.IncomeCategory),
				AccountID:         firstNonEmpty(account, a.cfg.Import.Account),
				PersonID:          firstNonEmpty(person, a.cfg.Import.Person),
			}

			parser := ofx.NewParser()
			var entries []ofx.Entry
			for _, path := range files {
				parsed, parseErr := parseStatement(cmd, parser, path)
				if parseErr != nil {
					slog.Error("Failed to parse statement", "file", path, "error", parseErr)
					continue
				}
				slog.Info("Parsed statement", "file", filepath.Base(path), "transactions", len(parsed))
				entries = append(entries, parsed...)
			}
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("No transactions found to import"))
				return nil
			}

			l, store, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			seen := importedTags(l.Snapshot().TagSet(ofx.TagPrefix))
			if dryRun {
				fresh := 0
				for _, e := range entries {
					if !seen.claim(e) {
						fresh++
					}
				}
				_, _ = fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Dry run: %d of %d transactions would be recorded", fresh, len(entries))))
				return nil
			}

			if !noCheckpoint {
				manager, cpErr := store.NewCheckpointManager()
				if cpErr != nil {
					return fmt.Errorf("failed to create checkpoint manager: %w", cpErr)
				}
				info, cpErr := manager.AutoCheckpoint(cmd.Context(), "import")
				if cpErr != nil {
					return fmt.Errorf("failed to create checkpoint before import: %w", cpErr)
				}
				_, _ = fmt.Fprintln(out, cli.SubtleStyle.Render("Checkpoint "+info.ID+" created"))
			}

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "import", "Run the same import again to record the remaining transactions.")
			ctx, stop := handler.HandleInterrupts(cmd.Context())
			defer stop()

			result := importResult{Parsed: len(entries)}
			bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(entries), "Importing")
			for _, e := range entries {
				if ctx.Err() != nil {
					break
				}
				_ = bar.Add(1)

				if seen.contains(e) {
					result.Duplicates++
					continue
				}

				input, convErr := e.ToInput(defaults)
				if convErr != nil {
					slog.Warn("Skipping statement line", "fitid", e.FITID, "error", convErr)
					result.Failed++
					continue
				}

				txn, addErr := l.AddTransaction(ctx, input)
				switch {
				case txn == nil && errors.Is(addErr, common.ErrReferential):
					// Every line shares the same defaults.
					_ = bar.Finish()
					return common.NewUserError("import defaults refer to a missing or inactive record", addErr)
				case txn == nil && errors.Is(addErr, common.ErrValidation):
					slog.Warn("Skipping statement line", "fitid", e.FITID, "error", addErr)
					result.Failed++
				case txn == nil:
					_ = bar.Finish()
					return fmt.Errorf("failed to record %s: %w", e.FITID, addErr)
				default:
					if addErr != nil {
						slog.Warn("Recorded transaction but could not refresh the ledger", "id", txn.ID, "error", addErr)
					}
					seen.claim(e)
					result.Recorded++
				}
			}
			_ = bar.Finish()

			if handler.WasInterrupted() {
				_, _ = fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("Import interrupted after %d transactions", result.Recorded)))
				return nil
			}

			_, _ = fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d transactions (%d duplicates, %d skipped)",
				result.Recorded, result.Duplicates, result.Failed)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse and count without recording anything")
	cmd.Flags().BoolVar(&noCheckpoint, "no-checkpoint", false, "Skip the automatic checkpoint")
	cmd.Flags().StringVar(&account, "account", "", "Account id to record against (default: import.account)")
	cmd.Flags().StringVar(&person, "person", "", "Person to assign and charge (default: import.person)")
	cmd.Flags().StringVar(&expenseCategory, "expense-category", "", "Category for debits (default: import.expense_category)")
	cmd.Flags().StringVar(&incomeCategory, "income-category", "", "Category for credits (default: import.income_category)")

	return cmd
}

// importedTags holds the tags of statement lines already in the ledger.
// Lines without a FITID are never treated as duplicates.
type importedTags map[string]struct{}

func (t importedTags) contains(e ofx.Entry) bool {
	tag := e.Tag()
	if tag == "" {
		return false
	}
	_, ok := t[tag]
	return ok
}

// claim records e's tag and reports whether it was already present.
func (t importedTags) claim(e ofx.Entry) bool {
	if t.contains(e) {
		return true
	}
	if tag := e.Tag(); tag != "" {
		t[tag] = struct{}{}
	}
	return false
}

func parseStatement(cmd *cobra.Command, parser *ofx.Parser, path string) ([]ofx.Entry, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parser.ParseFile(cmd.Context(), f)
}

// expandFiles resolves glob patterns, keeping plain paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}
	if len(files) == 0 {
		return nil, common.NewUserError("no files found to import", nil)
	}
	return files, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
