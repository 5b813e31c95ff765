package main

import (
	"github.com/niksmo/storefront/internal/app"
	"github.com/spf13/cobra"
)

func newCacheCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the catalog snapshot cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the cached catalog snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCatalog(cmd, func(a *app.App) error {
				if err := a.Store().ClearCache(cmd.Context()); err != nil {
					return err
				}
				newPrinter(cmd.OutOrStdout()).mutedf(
					"cache %q cleared (%s)", c.cfg.Catalog.CacheKey, c.cfg.Catalog.CacheDriver,
				)
				return nil
			})
		},
	})
	return cmd
}
