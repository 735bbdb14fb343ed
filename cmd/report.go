package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Inspect stored people",
	Long:  "Commands for listing recent people and looking up a single profile in the people-with-company view.",
}

// -- report recent --

var reportRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List the most recently created people",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		limit, _ := cmd.Flags().GetInt("limit")
		format, _ := cmd.Flags().GetString("format")
		if format != "table" && format != "json" {
			return eris.Errorf("report recent: --format must be table or json, got %q", format)
		}

		if err := cfg.Validate("store"); err != nil {
			return err
		}
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		rows, err := st.RecentPeople(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "report recent")
		}

		if format == "json" {
			return writeJSON(cmd.OutOrStdout(), rows)
		}
		if len(rows) == 0 {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No people found.")
			return nil
		}
		formatPersonViews(cmd.OutOrStdout(), rows)
		return nil
	},
}

// -- report person --

var reportPersonCmd = &cobra.Command{
	Use:   "person",
	Short: "Show one person joined with their company",
	Example: `  leads-cli report person --profile https://www.linkedin.com/in/jane-doe/`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		profile, _ := cmd.Flags().GetString("profile")

		if err := cfg.Validate("store"); err != nil {
			return err
		}
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		row, err := st.PersonByURL(ctx, profile)
		if err != nil {
			return eris.Wrap(err, "report person")
		}
		if row == nil {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No record found for profile.")
			return nil
		}
		return writeJSON(cmd.OutOrStdout(), row)
	},
}

func init() {
	reportRecentCmd.Flags().Int("limit", 10, "max number of people to display")
	reportRecentCmd.Flags().String("format", "table", "output format: table or json")

	reportPersonCmd.Flags().String("profile", "", "profile URL in any accepted form")
	_ = reportPersonCmd.MarkFlagRequired("profile")

	reportCmd.AddCommand(reportRecentCmd)
	reportCmd.AddCommand(reportPersonCmd)
	rootCmd.AddCommand(reportCmd)
}
