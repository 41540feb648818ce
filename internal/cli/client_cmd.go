package cli

import (
	"fmt"

	"github.com/avaldez/proforma/internal/cli/formatter"
	"github.com/avaldez/proforma/internal/domain"
	"github.com/spf13/cobra"
)

func newClientCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage the reusable client directory",
	}
	cmd.AddCommand(
		newClientListCmd(app),
		newClientAddCmd(app),
		newClientFindCmd(app),
		newClientRmCmd(app),
	)
	return cmd
}

func newClientListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clients, err := app.Directory.ListClients(cmd.Context())
			if err != nil {
				return err
			}
			if len(clients) == 0 {
				fmt.Fprintln(app.Out, formatter.Dim("no clients yet, add one with: proforma client add"))
				return nil
			}
			for _, c := range clients {
				fmt.Fprintln(app.Out, formatter.FormatClientRow(*c))
			}
			return nil
		},
	}
}

func newClientAddCmd(app *App) *cobra.Command {
	var c domain.Client

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add or update a client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Without flags in a terminal, fall back to the form.
			if c.Name == "" && app.Interactive {
				if err := runClientForm(&c); err != nil {
					return err
				}
			}
			saved, err := app.Directory.SaveClient(cmd.Context(), c)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "saved %s (%s)\n", saved.Name, saved.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&c.Name, "name", "", "client name")
	cmd.Flags().StringVar(&c.TaxID, "ruc", "", "tax identifier")
	cmd.Flags().StringVar(&c.Address, "address", "", "street address")
	cmd.Flags().StringVar(&c.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&c.Email, "email", "", "email address")
	return cmd
}

func newClientFindCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "find <query>",
		Short: "Search clients by name, tax id or email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matches, err := app.Directory.SearchClients(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(matches) == 0 {
				fmt.Fprintln(app.Out, formatter.Dim("no matches"))
				return nil
			}
			for _, c := range matches {
				fmt.Fprintln(app.Out, formatter.FormatClientRow(*c))
			}
			return nil
		},
	}
}

func newClientRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <client-id>",
		Short: "Remove a client from the directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Directory.DeleteClient(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(app.Out, "removed")
			return nil
		},
	}
}

func newIssuerCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issuer",
		Short: "Manage the issuing business profile",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the stored issuer profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			issuer, ok, err := app.Directory.IssuerProfile(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(app.Out, formatter.Dim("no issuer profile yet, set one with: proforma issuer set --name ..."))
				return nil
			}
			fmt.Fprintf(app.Out, "%s\n%s %s\n%s %s\n",
				formatter.Bold(issuer.Name),
				formatter.Dim("RUC:"), issuer.TaxID,
				formatter.Dim("Address:"), issuer.Address)
			return nil
		},
	}

	var issuer domain.Issuer
	set := &cobra.Command{
		Use:   "set",
		Short: "Store the issuer profile used on new drafts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Directory.SaveIssuerProfile(cmd.Context(), issuer); err != nil {
				return err
			}
			fmt.Fprintln(app.Out, "issuer profile saved")
			return nil
		},
	}
	set.Flags().StringVar(&issuer.Name, "name", "", "business name")
	set.Flags().StringVar(&issuer.TaxID, "ruc", "", "tax identifier")
	set.Flags().StringVar(&issuer.Address, "address", "", "street address")
	set.Flags().StringVar(&issuer.LogoRef, "logo", "", "logo reference for exports")

	cmd.AddCommand(show, set)
	return cmd
}
