package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Collapse duplicate people and companies",
	Long: `Collapses people that share a canonical profile URL and companies that share a
domain, keeping the most complete row and re-pointing people at the surviving company.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("store"); err != nil {
			return err
		}
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		report, err := st.MergeDuplicates(ctx)
		if err != nil {
			return eris.Wrap(err, "merge")
		}
		formatMergeReport(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
