package main

import (
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/export"
	"github.com/spf13/cobra"
)

func exportCmd(a *app) *cobra.Command {
	var (
		format    string
		output    string
		delimiter string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transactions or a summary",
		Long: `Write every transaction as CSV, or the balance and per-person summary as
YAML or JSON.`,
		Example: `  books export --format csv --output transactions.csv
  books export --format yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sep, size := utf8.DecodeRuneInString(delimiter)
			if size == 0 || size != len(delimiter) {
				return common.NewValidationError("delimiter", "must be a single character")
			}

			l, store, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, createErr := os.Create(output) //nolint:gosec // path comes from the command line
				if createErr != nil {
					return fmt.Errorf("failed to create %s: %w", output, createErr)
				}
				defer f.Close()
				w = f
			}

			snap := l.Snapshot()
			switch format {
			case export.FormatCSV:
				err = export.WriteCSV(w, snap, sep)
			default:
				err = export.Write(w, snap, format, time.Now())
			}
			if err != nil {
				return err
			}

			if output != "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Exported to "+output))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", export.FormatCSV, "Output format (csv, yaml, json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&delimiter, "delimiter", ",", "CSV field delimiter")

	return cmd
}
