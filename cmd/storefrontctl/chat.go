package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/niksmo/storefront/internal/app"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/spf13/cobra"
)

const (
	chatQuit        = "/quit"
	chatReset       = "/reset"
	chatSuggestions = "/suggestions"
)

func newChatCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Talk to the shopping assistant",
		Long: "Talk to the shopping assistant. Type " + chatSuggestions +
			" for ideas, " + chatReset + " to start over and " + chatQuit + " to leave.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCatalog(cmd, func(a *app.App) error {
				return runChat(cmd, a)
			})
		},
	}
}

func runChat(cmd *cobra.Command, a *app.App) error {
	ctx := cmd.Context()
	s := a.Service()
	p := newPrinter(cmd.OutOrStdout())

	id, welcome, err := s.StartConversation(ctx)
	if err != nil {
		return err
	}
	p.reply(welcome)

	sc := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(cmd.OutOrStdout(), "> ")
		if !sc.Scan() {
			fmt.Fprintln(cmd.OutOrStdout())
			return sc.Err()
		}

		switch line := strings.TrimSpace(sc.Text()); line {
		case "":
			continue
		case chatQuit:
			return nil
		case chatReset:
			reply, err := s.ResetConversation(ctx, id)
			if err != nil {
				return err
			}
			p.reply(reply)
		case chatSuggestions:
			ss, err := s.Suggestions(ctx)
			if err != nil {
				return err
			}
			p.list(ss)
		default:
			reply, err := s.SendMessage(ctx, id, line)
			if errors.Is(err, domain.ErrEmptyMessage) {
				continue
			}
			if err != nil {
				return err
			}
			p.reply(reply)
		}
	}
}
