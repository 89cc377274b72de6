// cmd/headline-manager/generate.go
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"headline-generator/internal/generator/batch"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one batch of headlines and print it",
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		category, _ := cmd.Flags().GetString("category")
		ratio, _ := cmd.Flags().GetFloat64("enhance-ratio")
		save, _ := cmd.Flags().GetBool("save")
		asJSON, _ := cmd.Flags().GetBool("json")

		if count < 1 {
			return fmt.Errorf("--count must be at least 1")
		}

		ctx := cmd.Context()
		a, err := buildApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		headlines, err := a.orchestrator.Generate(ctx, batch.Request{
			Count:        count,
			Category:     category,
			EnhanceRatio: ratio,
		})
		if err != nil {
			return err
		}

		if save {
			if a.headlines == nil {
				return fmt.Errorf("--save requires database.postgres.enabled")
			}
			ids, err := a.headlines.SaveBatch(ctx, headlines)
			if err != nil {
				return err
			}
			for i := range headlines {
				headlines[i].ID = ids[i]
			}
			if a.index != nil {
				if err := a.index.IndexBatch(ctx, headlines); err != nil {
					log.Warn("search indexing failed", map[string]interface{}{"error": err.Error()})
				}
			}
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(headlines)
		}
		for _, h := range headlines {
			marker := " "
			if h.Enhanced {
				marker = "*"
			}
			fmt.Printf("%s [%s] %s\n", marker, h.Category, h.Text)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().IntP("count", "n", 10, "number of headlines")
	generateCmd.Flags().StringP("category", "c", "", "restrict templates to this category")
	generateCmd.Flags().Float64("enhance-ratio", 0, "share of headlines to rewrite (0..1)")
	generateCmd.Flags().Bool("save", false, "persist the batch")
	generateCmd.Flags().Bool("json", false, "print JSON instead of text")

	rootCmd.AddCommand(generateCmd)
}
