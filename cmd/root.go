package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leads-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "leads-cli",
	Short: "Lead generation pipeline for professional profiles",
	Long:  "Searches public profile listings, extracts and deduplicates people, links them to companies and enriches companies with structured research.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		applyDBFlag(cmd, c)
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "database path or postgres:// URL (overrides store.database_url)")
}

// applyDBFlag points the store at --db. A postgres URL also switches the
// driver.
func applyDBFlag(cmd *cobra.Command, c *config.Config) {
	db, _ := cmd.Flags().GetString("db")
	if db == "" {
		return
	}
	c.Store.DatabaseURL = db
	if strings.HasPrefix(db, "postgres://") || strings.HasPrefix(db, "postgresql://") {
		c.Store.Driver = "postgres"
	} else {
		c.Store.Driver = "sqlite"
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
