package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
)

func newPeriodsCmd() *cobra.Command {
	var (
		persons bool
		roles   []string
	)

	cmd := &cobra.Command{
		Use:   "periods <company>",
		Short: "Show the periods during which company facts stayed unchanged",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			companyID, err := parseCompanyID(args[0])
			if err != nil {
				return err
			}
			var parsed []entities.Role
			for _, r := range roles {
				role, err := entities.ParseRole(r)
				if err != nil {
					return err
				}
				parsed = append(parsed, role)
			}
			if len(parsed) > 0 {
				persons = true
			}

			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				if persons {
					periods, err := d.History.PersonPeriods(ctx, companyID, parsed...)
					if err != nil {
						return err
					}
					return printJSON(os.Stdout, periods)
				}
				periods, err := d.History.CompanyPeriods(ctx, companyID)
				if err != nil {
					return err
				}
				return printJSON(os.Stdout, periods)
			})
		},
	}

	cmd.Flags().BoolVarP(&persons, "persons", "p", false, "Group persons instead of company records")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "Restrict persons to roles (head, founder, owner)")

	return cmd
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <company>",
		Short: "Show every computed snapshot of a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			companyID, err := parseCompanyID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				flags, err := d.History.Snapshots(ctx, companyID)
				if err != nil {
					return err
				}
				if len(flags) == 0 {
					fmt.Fprintf(os.Stderr, "No snapshots computed for company %d.\n", companyID)
					return nil
				}
				return printJSON(os.Stdout, flags)
			})
		},
	}
}
