package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"unicode/utf8"

	"github.com/fwojciec/tagstream"
	"github.com/fwojciec/tagstream/console"
	"github.com/spf13/cobra"
)

const defaultRandomChunkMax = 16

type decodeResult struct {
	Strategy  string        `json:"strategy"`
	Chunks    int           `json:"chunks"`
	Reasoning string        `json:"reasoning"`
	Answer    string        `json:"answer"`
	Title     string        `json:"title,omitempty"`
	Digest    string        `json:"digest,omitempty"`
	Events    []decodeEvent `json:"events"`
}

type decodeEvent struct {
	Segment string `json:"segment"`
	Payload string `json:"payload"`
}

func newDecodeCommand(a *app) *cobra.Command {
	var (
		chunkSize int
		random    bool
		seed      uint64
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "decode [FILE]",
		Short: "Decode a recorded response offline, replaying it as a stream",
		Long: "Decode reads a raw tagged response from FILE (or stdin), splits it into\n" +
			"chunks and feeds them to the decoder as if they were streamed.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			name := a.strategyFlag
			if name == "" {
				name = a.cfg.Decoder.Strategy
			}
			strategy, err := tagstream.ParseStrategy(name)
			if err != nil {
				return err
			}
			opts, err := a.cfg.DecoderOptions()
			if err != nil {
				return err
			}
			dec, err := tagstream.NewDecoder(strategy, opts...)
			if err != nil {
				return err
			}

			var chunks []string
			if random {
				chunks = randomChunks(string(data), chunkSize, seed)
			} else {
				chunks = fixedChunks(string(data), chunkSize)
			}

			var (
				conv tagstream.Conversation
				turn tagstream.Turn
				cr   *console.Renderer
				rend tagstream.Renderer
			)
			if !asJSON {
				cr = console.New(cmd.OutOrStdout(), tagstream.DefaultTheme())
				rend = cr
			}
			pub := tagstream.NewPublisher(&conv, &turn, rend, a.logger)
			result := decodeResult{Strategy: string(strategy), Chunks: len(chunks), Events: []decodeEvent{}}
			sink := tagstream.SinkFunc(func(evt tagstream.Event) {
				result.Events = append(result.Events, decodeEvent{Segment: evt.Segment().String(), Payload: evt.Payload()})
				pub.OnEvent(evt)
			})

			if err := tagstream.Decode(cmd.Context(), newChunkSource(chunks), dec, sink); err != nil {
				return err
			}

			if !asJSON {
				cr.Flush()
				return cr.Err()
			}
			result.Reasoning = turn.Reasoning
			result.Answer = turn.Answer
			result.Title = conv.Title
			result.Digest = conv.Digest
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Bytes per chunk (0 feeds the whole input at once); with --random-chunks, the maximum")
	cmd.Flags().BoolVar(&random, "random-chunks", false, "Split the input at random points")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Seed for --random-chunks")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the decoded segments and events as JSON")
	return cmd
}

func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

// fixedChunks splits s into chunks of about size bytes, never inside a
// UTF-8 sequence. size <= 0 yields s as a single chunk.
func fixedChunks(s string, size int) []string {
	if s == "" {
		return nil
	}
	if size <= 0 {
		return []string{s}
	}
	return split(s, func() int { return size })
}

// randomChunks splits s into chunks of 1 to maxSize bytes chosen by a seeded
// generator, so a seed always reproduces the same split.
func randomChunks(s string, maxSize int, seed uint64) []string {
	if s == "" {
		return nil
	}
	if maxSize <= 0 {
		maxSize = defaultRandomChunkMax
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return split(s, func() int { return 1 + rng.IntN(maxSize) })
}

func split(s string, next func() int) []string {
	var chunks []string
	for len(s) > 0 {
		n := next()
		if n >= len(s) {
			chunks = append(chunks, s)
			break
		}
		for n < len(s) && !utf8.RuneStart(s[n]) {
			n++
		}
		chunks = append(chunks, s[:n])
		s = s[n:]
	}
	return chunks
}

// chunkSource replays chunks as a tagstream.Source.
type chunkSource struct {
	chunks []string
	closed bool
}

var _ tagstream.Source = (*chunkSource)(nil)

func newChunkSource(chunks []string) *chunkSource {
	return &chunkSource{chunks: chunks}
}

func (s *chunkSource) Next() (string, error) {
	if s.closed {
		return "", tagstream.ErrStreamClosed
	}
	if len(s.chunks) == 0 {
		return "", io.EOF
	}
	c := s.chunks[0]
	s.chunks = s.chunks[1:]
	return c, nil
}

func (s *chunkSource) Close() error {
	s.closed = true
	return nil
}
