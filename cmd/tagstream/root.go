package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fwojciec/tagstream"
	"github.com/fwojciec/tagstream/config"
	"github.com/fwojciec/tagstream/logging"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// environment carries everything read from the process environment. Only
// main reads the real one.
type environment struct {
	sseKey      string
	geminiKey   string
	home        string
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
	interactive bool
}

// app holds flag values and the state built from them before a subcommand
// runs.
type app struct {
	env environment

	configPath   string
	providerFlag string
	apiKeyFlag   string
	modelFlag    string
	baseURLFlag  string
	strategyFlag string
	logLevelFlag string

	cfg     config.Config
	logger  *slog.Logger
	closers []io.Closer
}

func newRootCommand(env environment) *cobra.Command {
	a := &app{env: env}

	root := &cobra.Command{
		Use:           "tagstream",
		Short:         "Stream model responses and decode tagged segments live",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.SetIn(env.stdin)
	root.SetOut(env.stdout)
	root.SetErr(env.stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "Configuration file (.toml, .yaml); default ~/.tagstream/config.toml")
	pf.StringVar(&a.providerFlag, "provider", "", "Provider: sse, gemini (auto-detected if omitted)")
	pf.StringVar(&a.apiKeyFlag, "api-key", "", "API key (overrides the provider's env var)")
	pf.StringVar(&a.modelFlag, "model", "", "Model ID (provider-specific)")
	pf.StringVar(&a.baseURLFlag, "base-url", "", "Event-stream endpoint for the sse provider")
	pf.StringVar(&a.strategyFlag, "strategy", "", "Decoder strategy: incremental, reparse (overrides per-model rules)")
	pf.StringVar(&a.logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(newAskCommand(a))
	root.AddCommand(newChatCommand(a))
	root.AddCommand(newDecodeCommand(a))
	root.AddCommand(newListCommand(a))

	return root
}

// setup loads configuration, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	var (
		cfg config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.Load(a.configPath, false)
	} else {
		cfg, err = config.Load(filepath.Join(a.env.home, ".tagstream", "config.toml"), true)
	}
	if err != nil {
		return err
	}

	if a.providerFlag != "" {
		cfg.Provider = a.providerFlag
	}
	if a.modelFlag != "" {
		cfg.Model = a.modelFlag
	}
	if a.baseURLFlag != "" {
		cfg.BaseURL = a.baseURLFlag
	}
	if a.logLevelFlag != "" {
		cfg.Log.Level = a.logLevelFlag
	}
	if a.strategyFlag != "" {
		if _, err := tagstream.ParseStrategy(a.strategyFlag); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	// The TUI owns the terminal, so console logs would corrupt it.
	logWriter := a.env.stderr
	if cmd.Name() == "chat" {
		logWriter = io.Discard
	}
	logFile, err := config.ExpandPath(cfg.Log.File)
	if err != nil {
		return err
	}
	logger, closer, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   logFile,
		Writer: logWriter,
	})
	if err != nil {
		return err
	}
	a.logger = logger
	a.closers = append(a.closers, closer)
	return nil
}

func (a *app) close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// newLoop builds a turn loop over provider using the configured decoder.
func (a *app) newLoop(provider tagstream.Provider) (*tagstream.Loop, error) {
	opts, err := a.cfg.DecoderOptions()
	if err != nil {
		return nil, err
	}
	return tagstream.NewLoop(provider,
		tagstream.WithStrategyTable(a.cfg.StrategyTable()),
		tagstream.WithDecoderOptions(opts...),
		tagstream.WithLogger(a.logger),
	), nil
}

// runOptions returns the per-turn options implied by configuration and flags.
func (a *app) runOptions() []tagstream.RunOption {
	opts := []tagstream.RunOption{tagstream.WithMaxTokens(a.cfg.MaxTokens)}
	if a.cfg.Model != "" {
		opts = append(opts, tagstream.WithModel(a.cfg.Model))
	}
	if a.cfg.Temperature != nil {
		opts = append(opts, tagstream.WithTemperature(*a.cfg.Temperature))
	}
	if a.strategyFlag != "" {
		opts = append(opts, tagstream.WithStrategy(tagstream.Strategy(a.strategyFlag)))
	}
	return opts
}

// conversation loads the conversation with id, or starts a new one when id
// is empty.
func (a *app) conversation(ctx context.Context, store tagstream.Store, id string) (tagstream.Conversation, error) {
	if id != "" {
		conv, err := store.Load(ctx, id)
		if err != nil {
			return tagstream.Conversation{}, fmt.Errorf("load conversation: %w", err)
		}
		return conv, nil
	}
	prompt, err := a.cfg.ResolveSystemPrompt()
	if err != nil {
		return tagstream.Conversation{}, err
	}
	now := time.Now()
	return tagstream.Conversation{
		ID:           uuid.NewString(),
		SystemPrompt: prompt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
