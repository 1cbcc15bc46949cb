package main

import (
	"fmt"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/spf13/cobra"
)

func personsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "persons",
		Short: "Manage household members",
		Long:  `List and add the people that transactions can be assigned to.`,
	}

	cmd.AddCommand(listPersonsCmd(a))
	cmd.AddCommand(addPersonCmd(a))

	return cmd
}

func listPersonsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List household members",
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, store, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			snap := l.Snapshot()
			expenses := snap.ExpensesByPerson()
			paid := snap.PaidByPerson()

			w := newTable(cmd.OutOrStdout(), "ID", "Name", "Email", "Assigned", "Paid")
			for _, p := range snap.Persons() {
				name := p.Name
				if p.IsOwner {
					name += " " + cli.SubtleStyle.Render("(owner)")
				}
				row(w, p.ID, name, orDash(p.Email),
					cli.FormatMoney(expenses[p.ID], ""),
					cli.FormatMoney(paid[p.ID], ""))
			}
			return w.Flush()
		},
	}
}

func addPersonCmd(a *app) *cobra.Command {
	var email, avatar string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a household member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, store, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			person, err := l.AddPerson(cmd.Context(), model.PersonInput{
				Name:   args[0],
				Email:  email,
				Avatar: avatar,
			})
			if err != nil {
				return fmt.Errorf("failed to add person: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s (%s)", person.Name, person.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&avatar, "avatar", "", "Avatar URL or emoji")

	return cmd
}
