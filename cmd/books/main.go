// Command books is a household ledger: it records income and expenses per
// person and account and keeps every account balance consistent with its
// transactions.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

// app carries the state shared by every command of one invocation.
type app struct {
	v       *viper.Viper
	cfg     *config.Config
	cfgFile string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "books",
		Short: "📒 Household ledger",
		Long: `books: record household income and expenses per person and account,
keep every account balance consistent with its transactions, and see who
spent what.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initConfig,
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/books/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "database path (overrides database.path)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	_ = a.v.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db"))
	_ = a.v.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = a.v.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(personsCmd(a))
	rootCmd.AddCommand(accountsCmd(a))
	rootCmd.AddCommand(categoriesCmd(a))
	rootCmd.AddCommand(txCmd(a))
	rootCmd.AddCommand(summaryCmd(a))
	rootCmd.AddCommand(auditCmd(a))
	rootCmd.AddCommand(importCmd(a))
	rootCmd.AddCommand(exportCmd(a))
	rootCmd.AddCommand(checkpointCmd(a))
	rootCmd.AddCommand(migrateCmd(a))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func printError(w io.Writer, err error) {
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		_, _ = fmt.Fprintln(w, cli.FormatError(userErr.UserMessage))
		if userErr.Err != nil {
			_, _ = fmt.Fprintln(w, cli.SubtleStyle.Render("  "+userErr.Err.Error()))
		}
		return
	}
	_, _ = fmt.Fprintln(w, cli.FormatError(err.Error()))
}

func (a *app) initConfig(_ *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	if err := config.Setup(a.v, a.cfgFile); err != nil {
		return err
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	if err := common.SetupLogger(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "books %s\n", version)
		},
	}
}
