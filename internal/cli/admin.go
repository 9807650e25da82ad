package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/betoojeda/tienda-facil/internal/pkg/pointers"
	"github.com/betoojeda/tienda-facil/internal/reports"
	"github.com/betoojeda/tienda-facil/internal/services"
)

func newStatsCommand(opts *RootOptions, load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show platform-wide totals and every store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, load, func(b *Backend) error {
				stats, err := b.Admin.GlobalStats(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if opts.Format == "json" {
					return writeJSON(out, stats)
				}
				fmt.Fprintf(out, "Users:   %s\n", reports.FormatCount(int(stats.TotalUsers)))
				fmt.Fprintf(out, "Stores:  %s\n", reports.FormatCount(int(stats.TotalStores)))
				fmt.Fprintf(out, "Sales:   %s\n", reports.FormatCount(int(stats.TotalSales)))
				fmt.Fprintf(out, "Revenue: %s\n", stats.TotalRevenueLabel)
				fmt.Fprintf(out, "Free tier limit: %d products\n\n", stats.FreeTierLimit)

				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "STORE\tOWNER\tPLAN\tSTAFF\tID")
				for _, s := range stats.Stores {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", s.Name, s.OwnerUsername, s.PlanID, len(s.Staff), s.ID)
				}
				return tw.Flush()
			})
		},
	}
}

func newConfigCommand(opts *RootOptions, load Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Change system configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set-free-limit <n>",
		Short: "Set how many products a FREE store may hold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("limit must be a whole number: %w", err)
			}
			return withBackend(cmd, load, func(b *Backend) error {
				cfg, err := b.Admin.UpdateConfig(cmd.Context(), services.ConfigPatch{FreeTierLimit: pointers.Int(n)})
				if err != nil {
					return err
				}
				if opts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), cfg)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Free tier limit set to %d\n", cfg.FreeTierLimit)
				return nil
			})
		},
	})
	return cmd
}

func newUsersCommand(load Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set-password <username> <password>",
		Short: "Replace a user's password",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, load, func(b *Backend) error {
				if err := b.Admin.SetPasswordByUsername(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Password updated for %s\n", args[0])
				return nil
			})
		},
	})
	return cmd
}
