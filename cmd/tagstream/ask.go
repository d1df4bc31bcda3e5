package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/tagstream"
	"github.com/fwojciec/tagstream/console"
	"github.com/spf13/cobra"
)

func newAskCommand(a *app) *cobra.Command {
	var (
		convID string
		noSave bool
	)
	cmd := &cobra.Command{
		Use:   "ask PROMPT...",
		Short: "Run one turn and print the segments as they stream",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			prompt := strings.Join(args, " ")

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

			r := console.New(cmd.OutOrStdout(), tagstream.DefaultTheme())
			turns := len(conv.Turns)
			runErr := loop.Run(ctx, &conv, prompt, append(a.runOptions(), tagstream.WithRenderer(r))...)
			r.Flush()

			if !noSave && len(conv.Turns) > turns {
				// Aborted turns are saved too, so use a context that
				// survives the interrupt.
				if err := store.Save(context.WithoutCancel(ctx), conv); err != nil {
					return fmt.Errorf("save conversation: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "conversation %s\n", conv.ID)
			}
			if runErr != nil {
				return runErr
			}
			return r.Err()
		},
	}
	cmd.Flags().StringVar(&convID, "conversation", "", "Continue the stored conversation with this ID")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not store the conversation")
	return cmd
}
