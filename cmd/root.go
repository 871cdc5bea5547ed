package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadscout/emailscout/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "emailscout",
	Short: "Corporate email derivation pipeline",
	Long:  "Searches public LinkedIn profile results for a company, derives candidate email addresses under a naming convention, and labels each with a deliverability confidence via syntax and MX checks.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
