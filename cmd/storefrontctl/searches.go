package main

import (
	"context"
	"errors"

	"github.com/niksmo/storefront/internal/app"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/spf13/cobra"
)

var errBrokerDisabled = errors.New("broker is disabled in config")

func newSearchesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "searches",
		Short: "Inspect published search events",
	}

	var group string
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Print search events as they are published",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.cfg.Broker.Enabled {
				return errBrokerDisabled
			}

			h := eventsPrinter{newPrinter(cmd.OutOrStdout())}
			consumer, err := app.NewSearchEventsConsumer(cmd.Context(), c.cfg, group, h)
			if err != nil {
				return err
			}
			defer consumer.Close()

			consumer.Run(cmd.Context())
			return nil
		},
	}
	tail.Flags().StringVar(&group, "group", "", "consumer group, tail from the end without committing when empty")

	cmd.AddCommand(tail)
	return cmd
}

type eventsPrinter struct {
	p printer
}

func (e eventsPrinter) HandleSearchEvents(_ context.Context, evs []domain.SearchEvent) error {
	for _, ev := range evs {
		e.p.searchEvent(ev)
	}
	return nil
}
