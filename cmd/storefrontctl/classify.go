package main

import (
	"fmt"
	"strings"

	"github.com/niksmo/storefront/internal/core/classifier"
	"github.com/spf13/cobra"
)

func newClassifyCmd(*cli) *cobra.Command {
	var (
		path        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "classify text...",
		Short: "Classify a product title or a query",
		Long: "Classify a product title or a query. With --path and --description " +
			"the brand and tags of a raw catalog record are extracted too.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			p := newPrinter(cmd.OutOrStdout())
			w := cmd.OutOrStdout()

			c := classifier.Describe(text)
			p.headingf("%s", text)
			fmt.Fprintf(w, "category:       %s\n", c.Category)
			if c.Gender != "" {
				fmt.Fprintf(w, "gender:         %s\n", c.Gender)
			}
			if c.Type != "" {
				fmt.Fprintf(w, "garment type:   %s\n", c.Type)
			}
			fmt.Fprintf(w, "category query: %t\n", classifier.IsCategoryQuery(text))

			if path != "" || description != "" {
				fmt.Fprintf(w, "brand:          %s\n", classifier.ExtractBrand(text))
				fmt.Fprintf(w, "tags:           %s\n",
					strings.Join(classifier.ExtractTags(path, description), ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "category path of the record, e.g. Clothing/Women/Dresses")
	cmd.Flags().StringVar(&description, "description", "", "description of the record")
	return cmd
}
