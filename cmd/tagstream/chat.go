package main

import (
	"errors"
	"fmt"

	"github.com/fwojciec/tagstream"
	bt "github.com/fwojciec/tagstream/bubbletea"
	"github.com/spf13/cobra"
)

func newChatCommand(a *app) *cobra.Command {
	var convID string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive conversation in a terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.env.interactive {
				return errors.New("chat requires an interactive terminal; use ask for scripted use")
			}
			ctx := cmd.Context()

			provider, err := a.provider(ctx)
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			conv, err := a.conversation(ctx, store, convID)
			if err != nil {
				return err
			}
			loop, err := a.newLoop(provider)
			if err != nil {
				return err
			}

			turn := chatTurn(loop, store, a.runOptions(), a.logger)
			if err := bt.Run(ctx, bt.New(turn, &conv, tagstream.DefaultTheme())); err != nil {
				return fmt.Errorf("TUI: %w", err)
			}
			if len(conv.Turns) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "conversation %s\n", conv.ID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&convID, "conversation", "", "Continue the stored conversation with this ID")
	return cmd
}
