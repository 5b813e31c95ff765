package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/niksmo/storefront/config"
	"github.com/niksmo/storefront/internal/app"
	"github.com/niksmo/storefront/pkg/sigctx"
	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := sigctx.NotifyContext(context.Background())
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type cli struct {
	cfgFile string
	noColor bool
	verbose bool
	cfg     config.Config
}

func newRootCmd() *cobra.Command {
	c := new(cli)

	root := &cobra.Command{
		Use:           "storefrontctl",
		Short:         "Query the storefront catalog from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.PersistentFlags().StringVarP(&c.cfgFile, "config", "c", "", "config file path")
	root.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "disable colored output")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "print service logs")

	root.AddCommand(
		newSearchCmd(c),
		newTopCmd(c),
		newDealsCmd(c),
		newBestSellersCmd(c),
		newRecommendCmd(c),
		newRelevantCmd(c),
		newCategoriesCmd(c),
		newTagsCmd(c),
		newChatCmd(c),
		newClassifyCmd(c),
		newCacheCmd(c),
		newSearchesCmd(c),
	)
	return root
}

func (c *cli) loadConfig() error {
	if c.noColor {
		color.NoColor = true
	}

	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.LoadFile(config.FilePath(c.cfgFile))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !c.verbose {
		cfg.LogLevel = slog.LevelWarn
	}
	c.cfg = cfg
	return nil
}

// openCatalog loads the catalog; the caller must call CloseCatalog.
func (c *cli) openCatalog(cmd *cobra.Command) (a *app.App, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("open catalog: %v", r)
		}
	}()
	return app.NewCatalog(cmd.Context(), c.cfg, cmd.ErrOrStderr()), nil
}

// withCatalog runs fn over an opened catalog.
func (c *cli) withCatalog(cmd *cobra.Command, fn func(*app.App) error) error {
	a, err := c.openCatalog(cmd)
	if err != nil {
		return err
	}
	defer a.CloseCatalog()
	return fn(a)
}
