package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leads-cli/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the people-with-company view to a spreadsheet",
	Long: `Writes the most recently created people, joined with their companies, to an .xlsx
workbook. The header row matches the keys accepted by ingest --input.`,
	Example: `  leads-cli export --out leads.xlsx --limit 500`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		out, _ := cmd.Flags().GetString("out")
		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			return eris.Errorf("export: --limit must be positive, got %d", limit)
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
			return eris.Wrap(err, "export")
		}
		if err := export.WriteXLSX(out, rows); err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d people to %s\n", len(rows), out)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("out", "leads.xlsx", "output workbook path")
	exportCmd.Flags().Int("limit", 1000, "max number of people to export, newest first")
	rootCmd.AddCommand(exportCmd)
}
