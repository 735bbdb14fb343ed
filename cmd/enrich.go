package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/sells-group/leads-cli/internal/canon"
	"github.com/sells-group/leads-cli/internal/enrich"
	"github.com/sells-group/leads-cli/internal/trace"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich companies that have never been researched",
	Long: `Selects companies with no enrichment timestamp, asks the configured research
provider for a structured company profile and stores the validated result.
Companies whose payload fails validation are skipped and stay pending.`,
	Example: `  leads-cli enrich --limit 20
  leads-cli enrich --progress`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("enrich"); err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")
		progress, _ := cmd.Flags().GetBool("progress")

		rec, err := trace.New(cfg.Trace)
		if err != nil {
			return err
		}
		defer rec.Close() //nolint:errcheck

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		provider, err := enrich.NewProvider(cfg, rec)
		if err != nil {
			return err
		}

		runner := enrich.NewRunner(st, provider, cfg.Enrich)
		if cfg.Enrich.GuessDomains {
			runner = runner.WithGuesser(canon.NewDomainGuesser())
		}

		var progressOut io.Writer
		if progress {
			progressOut = cmd.ErrOrStderr()
		}

		report, err := runner.Run(ctx, enrich.Options{Limit: limit, Progress: progressOut})
		if err != nil {
			return err
		}

		formatEnrichReport(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	enrichCmd.Flags().Int("limit", 0, "max companies to enrich (default: enrich.limit)")
	enrichCmd.Flags().Bool("progress", false, "print one status line per company to stderr")
	rootCmd.AddCommand(enrichCmd)
}
