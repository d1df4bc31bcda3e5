// Command tagstream streams model responses and decodes their tagged
// reasoning, answer, title and digest segments as they arrive.
//
// Usage:
//
//	GEMINI_API_KEY=gk-... tagstream ask "why is the sky blue?"
//	tagstream --provider sse --base-url http://localhost:8080 chat
//	tagstream decode transcript.txt --random-chunks --seed 7 --json
//	tagstream list
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
)

func main() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	env := environment{
		sseKey:      os.Getenv("TAGSTREAM_API_KEY"),
		geminiKey:   os.Getenv("GEMINI_API_KEY"),
		home:        home,
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		interactive: isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd()),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = newRootCommand(env).ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "tagstream: %v\n", err)
		}
		os.Exit(1)
	}
}
