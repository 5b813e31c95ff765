package main

import (
	"strings"

	"github.com/niksmo/storefront/internal/app"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/spf13/cobra"
)

func newSearchCmd(c *cli) *cobra.Command {
	var q port.ProductsQuery

	cmd := &cobra.Command{
		Use:   "search [text...]",
		Short: "Search products by category, tags and text",
		RunE: func(cmd *cobra.Command, args []string) error {
			q.Text = strings.Join(args, " ")
			return c.withCatalog(cmd, func(a *app.App) error {
				ps, err := a.Service().Products(cmd.Context(), q)
				if err != nil {
					return err
				}
				newPrinter(cmd.OutOrStdout()).products(ps)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&q.Category, "category", "", "category name, All for every product")
	cmd.Flags().StringSliceVarP(&q.Tags, "tag", "t", nil, "required tag, repeatable")
	cmd.Flags().BoolVar(&q.Delivery, "delivery", false, "only products available for delivery")
	cmd.Flags().BoolVar(&q.Pickup, "pickup", false, "only products available for pickup")
	return cmd
}

func newTopCmd(c *cli) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the top rated products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCatalog(cmd, func(a *app.App) error {
				ps, err := a.Service().TopRated(cmd.Context(), limit)
				if err != nil {
					return err
				}
				newPrinter(cmd.OutOrStdout()).products(ps)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of products")
	return cmd
}

func newDealsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "deals",
		Short: "Show discounted products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCatalog(cmd, func(a *app.App) error {
				ps, err := a.Service().Deals(cmd.Context())
				if err != nil {
					return err
				}
				newPrinter(cmd.OutOrStdout()).products(ps)
				return nil
			})
		},
	}
}

func newBestSellersCmd(c *cli) *cobra.Command {
	var (
		category string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "best-sellers",
		Short: "Show the top rated products of a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCatalog(cmd, func(a *app.App) error {
				ps, err := a.Service().BestSellers(cmd.Context(), category, limit)
				if err != nil {
					return err
				}
				newPrinter(cmd.OutOrStdout()).products(ps)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "category name, every product when empty")
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "number of products")
	return cmd
}

func newRecommendCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend [query...]",
		Short: "Show hidden gems, value vault and trending now picks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCatalog(cmd, func(a *app.App) error {
				b, err := a.Service().Recommendations(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				newPrinter(cmd.OutOrStdout()).buckets(b)
				return nil
			})
		},
	}
}

func newRelevantCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "relevant query...",
		Short: "Show up to five products for a free form request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCatalog(cmd, func(a *app.App) error {
				ps, err := a.Service().Relevant(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				newPrinter(cmd.OutOrStdout()).products(ps)
				return nil
			})
		},
	}
}

func newCategoriesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories with product counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCatalog(cmd, func(a *app.App) error {
				cs, err := a.Service().Categories(cmd.Context())
				if err != nil {
					return err
				}
				newPrinter(cmd.OutOrStdout()).categories(cs)
				return nil
			})
		},
	}
}

func newTagsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List every product tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCatalog(cmd, func(a *app.App) error {
				tags, err := a.Service().Tags(cmd.Context())
				if err != nil {
					return err
				}
				newPrinter(cmd.OutOrStdout()).list(tags)
				return nil
			})
		},
	}
}
