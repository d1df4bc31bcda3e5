package main

import (
	"context"
	"log/slog"

	"github.com/fwojciec/tagstream"
	bt "github.com/fwojciec/tagstream/bubbletea"
)

// chatTurn runs a turn through loop and stores the conversation after every
// turn, including aborted ones.
func chatTurn(loop *tagstream.Loop, store tagstream.Store, opts []tagstream.RunOption, logger *slog.Logger) bt.TurnFunc {
	return func(ctx context.Context, conv *tagstream.Conversation, prompt string, r tagstream.Renderer) error {
		turns := len(conv.Turns)
		err := loop.Run(ctx, conv, prompt, append(opts[:len(opts):len(opts)], tagstream.WithRenderer(r))...)
		if len(conv.Turns) == turns {
			return err
		}
		if saveErr := store.Save(context.WithoutCancel(ctx), *conv); saveErr != nil {
			logger.Error("save conversation", "conversation", conv.ID, "error", saveErr)
			if err == nil {
				err = saveErr
			}
		}
		return err
	}
}
