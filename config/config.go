// Package config loads the tagstream command configuration.
//
// Files are TOML or YAML, chosen by extension. Missing fields take the
// values in the struct `default` tags. API keys are never read from the
// file; they come from flags or the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/creasty/defaults"
	"github.com/fwojciec/tagstream"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	// Provider is "sse" or "gemini". Empty means auto-detect from the
	// environment.
	Provider string `toml:"provider" yaml:"provider"`
	Model    string `toml:"model" yaml:"model"`
	// BaseURL is the event-stream endpoint for the sse provider.
	BaseURL string `toml:"base_url" yaml:"base_url"`
	// Proxy is an optional http, https or socks5 proxy URL for the sse provider.
	Proxy string `toml:"proxy" yaml:"proxy"`

	SystemPrompt     string   `toml:"system_prompt" yaml:"system_prompt"`
	SystemPromptPath string   `toml:"system_prompt_path" yaml:"system_prompt_path"`
	MaxTokens        int      `toml:"max_tokens" yaml:"max_tokens" default:"4096"`
	Temperature      *float64 `toml:"temperature" yaml:"temperature"`

	Decoder Decoder `toml:"decoder" yaml:"decoder"`
	Log     Log     `toml:"log" yaml:"log"`
	Store   Store   `toml:"store" yaml:"store"`
}

// Decoder configures tag recognition and strategy selection.
type Decoder struct {
	Strategy   string `toml:"strategy" yaml:"strategy" default:"incremental"`
	ForceClose bool   `toml:"force_close" yaml:"force_close"`
	// Aliases maps extra tag names to canonical ones, e.g. think = "reasoning".
	Aliases map[string]string `toml:"aliases" yaml:"aliases"`
	Rules   []Rule            `toml:"rules" yaml:"rules"`
}

// Rule selects a strategy for models matching Model ("prefix*" allowed).
type Rule struct {
	Model    string `toml:"model" yaml:"model"`
	Strategy string `toml:"strategy" yaml:"strategy"`
}

// Log configures logging.
type Log struct {
	Level  string `toml:"level" yaml:"level" default:"info"`
	Format string `toml:"format" yaml:"format" default:"text"`
	File   string `toml:"file" yaml:"file"`
}

// Store configures conversation persistence.
type Store struct {
	// Kind is "json" or "sqlite".
	Kind string `toml:"kind" yaml:"kind" default:"json"`
	// Path is a directory for json and a database file for sqlite. Empty
	// means a location under ~/.tagstream.
	Path string `toml:"path" yaml:"path"`
}

// Default returns a Config with every default applied.
func Default() Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		// Only reachable with malformed default tags.
		panic(err)
	}
	return c
}

// Load reads the file at path. A missing file yields Default() when
// optional is true.
func Load(path string, optional bool) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes data in the format named by ext (".toml", ".yaml" or
// ".yml"), applies defaults and validates the result.
func Parse(data []byte, ext string) (Config, error) {
	var c Config
	switch strings.ToLower(ext) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&c); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("config format %q: %w", ext, tagstream.ErrValidation)
	}
	if err := defaults.Set(&c); err != nil {
		return Config{}, fmt.Errorf("apply config defaults: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	switch c.Provider {
	case "", "sse", "gemini":
	default:
		return fmt.Errorf("provider %q: must be \"sse\" or \"gemini\": %w", c.Provider, tagstream.ErrValidation)
	}
	if c.Provider == "sse" && c.BaseURL == "" {
		return fmt.Errorf("provider sse requires base_url: %w", tagstream.ErrValidation)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must not be negative: %w", tagstream.ErrValidation)
	}
	if c.SystemPrompt != "" && c.SystemPromptPath != "" {
		return fmt.Errorf("system_prompt and system_prompt_path are mutually exclusive: %w", tagstream.ErrValidation)
	}
	if _, err := c.Vocabulary(); err != nil {
		return err
	}
	if err := c.StrategyTable().Validate(); err != nil {
		return err
	}
	switch c.Store.Kind {
	case "json", "sqlite":
	default:
		return fmt.Errorf("store kind %q: must be \"json\" or \"sqlite\": %w", c.Store.Kind, tagstream.ErrValidation)
	}
	return nil
}

// Vocabulary returns the default vocabulary extended with the configured
// aliases.
func (c Config) Vocabulary() (tagstream.Vocabulary, error) {
	v := tagstream.DefaultVocabulary()
	for alias, name := range c.Decoder.Aliases {
		tag, err := tagstream.ParseTag(name)
		if err != nil {
			return nil, fmt.Errorf("alias %q: %w", alias, err)
		}
		v = v.With(alias, tag)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}

// StrategyTable returns the per-model strategy selection.
func (c Config) StrategyTable() tagstream.StrategyTable {
	t := tagstream.StrategyTable{Default: tagstream.Strategy(c.Decoder.Strategy)}
	for _, r := range c.Decoder.Rules {
		t.Rules = append(t.Rules, tagstream.StrategyRule{Model: r.Model, Strategy: tagstream.Strategy(r.Strategy)})
	}
	return t
}

// DecoderOptions returns the decoder options implied by the configuration.
func (c Config) DecoderOptions() ([]tagstream.DecoderOption, error) {
	v, err := c.Vocabulary()
	if err != nil {
		return nil, err
	}
	opts := []tagstream.DecoderOption{tagstream.WithVocabulary(v)}
	if c.Decoder.ForceClose {
		opts = append(opts, tagstream.WithForceClose())
	}
	return opts, nil
}

// ResolveSystemPrompt returns the inline system prompt or the contents of
// the configured prompt file.
func (c Config) ResolveSystemPrompt() (string, error) {
	if c.SystemPromptPath == "" {
		return c.SystemPrompt, nil
	}
	path, err := ExpandPath(c.SystemPromptPath)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read system prompt: %w", err)
	}
	return string(data), nil
}

// StorePath returns the expanded store location, falling back to a default
// under home for the configured kind.
func (c Config) StorePath(home string) (string, error) {
	if c.Store.Path != "" {
		return ExpandPath(c.Store.Path)
	}
	if c.Store.Kind == "sqlite" {
		return filepath.Join(home, ".tagstream", "tagstream.db"), nil
	}
	return filepath.Join(home, ".tagstream", "conversations"), nil
}

// ExpandPath expands a leading "~" and makes the path absolute.
func ExpandPath(p string) (string, error) {
	if p == "" {
		return p, nil
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	abs, err := filepath.Abs(filepath.Clean(p))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", p, err)
	}
	return abs, nil
}
