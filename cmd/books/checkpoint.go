package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/storage"
	"github.com/spf13/cobra"
)

func checkpointCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Manage database checkpoints",
		Long: `Create, list, restore, and delete database checkpoints.

Checkpoints save the whole ledger so it can be restored after a bad import
or mistaken edits. Imports take one automatically.`,
		Example: `  books checkpoint create --tag before-cleanup
  books checkpoint list
  books checkpoint restore before-cleanup`,
	}

	cmd.AddCommand(createCheckpointCmd(a))
	cmd.AddCommand(listCheckpointsCmd(a))
	cmd.AddCommand(restoreCheckpointCmd(a))
	cmd.AddCommand(deleteCheckpointCmd(a))

	return cmd
}

// openCheckpoints opens the migrated database and its checkpoint manager.
func (a *app) openCheckpoints(cmd *cobra.Command) (*storage.SQLiteStorage, *storage.CheckpointManager, error) {
	store, err := a.openStorage()
	if err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(cmd.Context()); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	manager, err := store.NewCheckpointManager()
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to create checkpoint manager: %w", err)
	}
	return store, manager, nil
}

func createCheckpointCmd(a *app) *cobra.Command {
	var tag, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new checkpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, manager, err := a.openCheckpoints(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			info, err := manager.Create(cmd.Context(), tag, description)
			if err != nil {
				return fmt.Errorf("failed to create checkpoint: %w", err)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s Created checkpoint %s (%s)\n",
				cli.SuccessStyle.Render(cli.SuccessIcon),
				cli.InfoStyle.Render(info.ID),
				formatFileSize(info.FileSize))
			if info.Description != "" {
				_, _ = fmt.Fprintf(out, "  Description: %s\n", info.Description)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Checkpoint name (generated from the time if empty)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description of the checkpoint")

	return cmd
}

func listCheckpointsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all checkpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, manager, err := a.openCheckpoints(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			checkpoints, err := manager.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list checkpoints: %w", err)
			}
			if len(checkpoints) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("No checkpoints found."))
				return nil
			}

			w := newTable(cmd.OutOrStdout(), "NAME", "CREATED", "SIZE", "TRANSACTIONS", "ACCOUNTS", "TYPE")
			for _, cp := range checkpoints {
				typeLabel := "manual"
				if cp.IsAuto {
					typeLabel = "auto"
				}
				row(w,
					cli.InfoStyle.Render(cp.ID),
					formatRelativeTime(cp.CreatedAt),
					formatFileSize(cp.FileSize),
					strconv.Itoa(cp.Transactions),
					strconv.Itoa(cp.Accounts),
					cli.SubtleStyle.Render(typeLabel))
			}
			return w.Flush()
		},
	}
}

func restoreCheckpointCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "restore <checkpoint-id>",
		Short: "Restore the database from a checkpoint",
		Long:  `Replace the current database with a checkpoint. Everything recorded since is lost.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			checkpointID := args[0]

			store, manager, err := a.openCheckpoints(cmd)
			if err != nil {
				return err
			}
			// Restore closes the database itself; closing twice is harmless.
			defer store.Close()

			info, err := manager.Info(cmd.Context(), checkpointID)
			if err != nil {
				return fmt.Errorf("failed to get checkpoint info: %w", err)
			}

			out := cmd.OutOrStdout()
			if !force {
				_, _ = fmt.Fprintf(out, "%s This will replace your current database with checkpoint %s.\n",
					cli.WarningStyle.Render(cli.WarningIcon), cli.InfoStyle.Render(checkpointID))
				_, _ = fmt.Fprintf(out, "  Created: %s\n", info.CreatedAt.Local().Format("2006-01-02 15:04:05"))
				if info.Description != "" {
					_, _ = fmt.Fprintf(out, "  Description: %s\n", info.Description)
				}
				if !confirm(cmd.InOrStdin(), out) {
					_, _ = fmt.Fprintln(out, cli.SubtleStyle.Render("Restore cancelled."))
					return nil
				}
			}

			if err := manager.Restore(cmd.Context(), checkpointID); err != nil {
				return fmt.Errorf("failed to restore checkpoint: %w", err)
			}

			_, _ = fmt.Fprintf(out, "%s Restored from checkpoint %s\n",
				cli.SuccessStyle.Render(cli.SuccessIcon), cli.InfoStyle.Render(checkpointID))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

func deleteCheckpointCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <checkpoint-id>",
		Short: "Delete a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			checkpointID := args[0]

			store, manager, err := a.openCheckpoints(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			info, err := manager.Info(cmd.Context(), checkpointID)
			if err != nil {
				return fmt.Errorf("failed to get checkpoint info: %w", err)
			}

			out := cmd.OutOrStdout()
			if !force {
				_, _ = fmt.Fprintf(out, "%s This will permanently delete checkpoint %s (%s).\n",
					cli.WarningStyle.Render(cli.WarningIcon), cli.InfoStyle.Render(checkpointID), formatFileSize(info.FileSize))
				if !confirm(cmd.InOrStdin(), out) {
					_, _ = fmt.Fprintln(out, cli.SubtleStyle.Render("Deletion cancelled."))
					return nil
				}
			}

			if err := manager.Delete(cmd.Context(), checkpointID); err != nil {
				return fmt.Errorf("failed to delete checkpoint: %w", err)
			}

			_, _ = fmt.Fprintf(out, "%s Deleted checkpoint %s\n",
				cli.SuccessStyle.Render(cli.SuccessIcon), cli.InfoStyle.Render(checkpointID))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

func confirm(in io.Reader, out io.Writer) bool {
	_, _ = fmt.Fprint(out, "\nContinue? (y/N) ")
	response, _ := bufio.NewReader(in).ReadString('\n')
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(response)), "y")
}

func formatRelativeTime(t time.Time) string {
	duration := time.Since(t)
	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(duration.Minutes()))
	case duration < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(duration.Hours()))
	case duration < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(duration.Hours()/24))
	default:
		return t.Local().Format("2006-01-02")
	}
}
