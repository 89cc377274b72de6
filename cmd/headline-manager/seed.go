// cmd/headline-manager/seed.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"headline-generator/internal/generator/templates"
	"headline-generator/pkg/catalog"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write built-in templates and keyword lists to the stores",
	Long: `seed inserts the built-in templates into the templates table and the
built-in keyword lists into keyword_categories. Existing rows are kept.
With --export the active template set is also written to a catalog file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		export, _ := cmd.Flags().GetString("export")
		ctx := cmd.Context()

		a, err := buildApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.templateRepo != nil {
			added, err := a.templateRepo.SaveTemplates(ctx, templates.DefaultTemplates())
			if err != nil {
				return err
			}
			n, err := a.keywords.EnsureSeeded(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("templates added: %d, keyword categories: %d\n", added, n)
		} else {
			log.Warn("postgres disabled, nothing to seed", nil)
		}

		if export != "" {
			if err := catalog.Save(export, a.templates.All()); err != nil {
				return err
			}
			fmt.Printf("catalog written to %s\n", export)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().String("export", "", "write the active templates to this .json or .yaml file")
	rootCmd.AddCommand(seedCmd)
}
