package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd(a *app) *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

A new database is seeded with the owner, the default account, and the
default categories.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStorage()
			if err != nil {
				return err
			}
			defer store.Close()

			current, err := store.SchemaVersion(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if status {
				_, _ = fmt.Fprintf(out, "Database: %s\n", store.Path())
				_, _ = fmt.Fprintf(out, "Schema version: %d (latest %d)\n", current, storage.ExpectedSchemaVersion)
				if current < storage.ExpectedSchemaVersion {
					_, _ = fmt.Fprintln(out, cli.FormatWarning("Migrations pending; run 'books migrate'"))
				}
				return nil
			}

			slog.Info("Running database migrations", "database", store.Path(), "from_version", current)
			if err := store.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			_, _ = fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Database at schema version %d", storage.ExpectedSchemaVersion)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "Show the schema version without applying changes")

	return cmd
}
