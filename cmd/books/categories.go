package main

import (
	"fmt"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/spf13/cobra"
)

func categoriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage income and expense categories",
		Long:  `List, add, and deactivate the categories transactions are filed under.`,
	}

	cmd.AddCommand(listCategoriesCmd(a))
	cmd.AddCommand(addCategoryCmd(a))
	cmd.AddCommand(deactivateCategoryCmd(a))

	return cmd
}

func listCategoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, store, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			snap := l.Snapshot()
			categories := snap.Categories()
			if len(categories) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.InfoStyle.Render("No categories found. Use 'books categories add' to create one."))
				return nil
			}

			w := newTable(cmd.OutOrStdout(), "ID", "Name", "Type", "Parent")
			for _, cat := range categories {
				parent := "-"
				if p, ok := snap.CategoryByID(cat.ParentID); ok {
					parent = p.Name
				}
				row(w, cat.ID, cat.Icon+" "+cat.Name, string(cat.Type), parent)
			}
			return w.Flush()
		},
	}
}

func addCategoryCmd(a *app) *cobra.Command {
	var (
		icon         string
		color        string
		categoryType string
		parent       string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, store, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			cat, err := l.AddCategory(cmd.Context(), model.CategoryInput{
				Name:     args[0],
				Icon:     icon,
				Color:    color,
				Type:     model.CategoryType(categoryType),
				ParentID: parent,
			})
			if err != nil {
				return fmt.Errorf("failed to add category: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s %s (%s)", cat.Icon, cat.Name, cat.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&icon, "icon", "🏷️", "Icon shown next to the name")
	cmd.Flags().StringVar(&color, "color", "#74B9FF", "Display color")
	cmd.Flags().StringVar(&categoryType, "type", string(model.CategoryTypeExpense), "Category type (income, expense)")
	cmd.Flags().StringVar(&parent, "parent", "", "Parent category id")

	return cmd
}

func deactivateCategoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Deactivate a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, store, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := l.DeactivateCategory(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to deactivate category: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deactivated category "+args[0]))
			return nil
		},
	}
}
