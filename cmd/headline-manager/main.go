// cmd/headline-manager/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"headline-generator/internal/common/config"
	"headline-generator/internal/common/logger"
)

var (
	cfg *config.Config
	log logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "headline-manager",
	Short: "Template-driven headline generation service",
	Long: `headline-manager synthesizes headlines from category-tagged templates,
optionally rewrites a share of them through a text-generation endpoint and
stores the results.

serve runs the HTTP API and the background worker loop, generate produces a
single batch on the command line, and seed writes the built-in templates and
keyword lists to the configured stores.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")

		var err error
		if path != "" {
			cfg, err = config.LoadFromFile(path)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("config load failed: %w", err)
		}

		log = logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output).
			WithFields(map[string]interface{}{"service": cfg.App.Name})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./configs/config.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
