package main

import (
	"context"
	"fmt"

	"github.com/fwojciec/tagstream"
	"github.com/fwojciec/tagstream/config"
	"github.com/fwojciec/tagstream/gemini"
	"github.com/fwojciec/tagstream/sse"
)

// resolveProvider selects and constructs the provider. Env var values are
// passed in as parameters; env is only read in main().
func resolveProvider(ctx context.Context, cfg config.Config, apiKeyFlag, sseEnvKey, geminiEnvKey string) (tagstream.Provider, error) {
	provider := cfg.Provider

	// Auto-detect: an endpoint means sse, otherwise a Gemini key means gemini.
	if provider == "" {
		switch {
		case cfg.BaseURL != "":
			provider = "sse"
		case geminiEnvKey != "" || apiKeyFlag != "":
			provider = "gemini"
		default:
			return nil, fmt.Errorf("no provider configured: set GEMINI_API_KEY or pass --base-url (or use --provider)")
		}
	}

	key := apiKeyFlag
	switch provider {
	case "sse":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("provider sse requires --base-url or base_url in the config")
		}
		if key == "" {
			key = sseEnvKey
		}
		var opts []sse.Option
		if key != "" {
			opts = append(opts, sse.WithAPIKey(key))
		}
		if cfg.Proxy != "" {
			opts = append(opts, sse.WithProxy(cfg.Proxy))
		}
		return sse.New(cfg.BaseURL, opts...), nil
	case "gemini":
		if key == "" {
			key = geminiEnvKey
		}
		if key == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY not set (use --api-key flag or environment variable)")
		}
		var opts []gemini.Option
		if cfg.Model != "" {
			opts = append(opts, gemini.WithModel(cfg.Model))
		}
		client, err := gemini.New(ctx, key, opts...)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown provider %q: must be \"sse\" or \"gemini\"", provider)
	}
}

func (a *app) provider(ctx context.Context) (tagstream.Provider, error) {
	return resolveProvider(ctx, a.cfg, a.apiKeyFlag, a.env.sseKey, a.env.geminiKey)
}
