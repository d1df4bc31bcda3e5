package tagstream_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/fwojciec/tagstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decoded is the accumulated result of a stream.
type decoded struct {
	Reasoning   string
	Answer      string
	Title       string
	Digest      string
	TitleCount  int
	DigestCount int
}

func accumulate(events []tagstream.Event) decoded {
	var d decoded
	for _, evt := range events {
		switch e := evt.(type) {
		case tagstream.EventReasoningDelta:
			d.Reasoning += e.Delta
		case tagstream.EventAnswerDelta:
			d.Answer += e.Delta
		case tagstream.EventTitleComplete:
			d.Title = e.Title
			d.TitleCount++
		case tagstream.EventDigestComplete:
			d.Digest = e.Digest
			d.DigestCount++
		}
	}
	return d
}

func newDecoder(t *testing.T, s tagstream.Strategy, opts ...tagstream.DecoderOption) tagstream.Decoder {
	t.Helper()
	dec, err := tagstream.NewDecoder(s, opts...)
	require.NoError(t, err)
	return dec
}

func run(t *testing.T, s tagstream.Strategy, chunks ...string) decoded {
	t.Helper()
	return accumulate(tagstream.DecodeString(newDecoder(t, s), chunks...))
}

var allStrategies = []tagstream.Strategy{tagstream.StrategyIncremental, tagstream.StrategyReparse}

var decodeCases = []struct {
	name  string
	input string
	want  decoded
}{
	{
		name:  "answer only",
		input: "<answer>Hello</answer>",
		want:  decoded{Answer: "Hello"},
	},
	{
		name:  "reasoning then untagged text is discarded",
		input: "<reasoning>thinking</reasoning>answer text",
		want:  decoded{Reasoning: "thinking"},
	},
	{
		name:  "all four sections",
		input: "<title>Weather</title><reasoning>check forecast</reasoning><answer>Sunny</answer><digest>User asked about weather.</digest>",
		want:  decoded{Title: "Weather", TitleCount: 1, Reasoning: "check forecast", Answer: "Sunny", Digest: "User asked about weather.", DigestCount: 1},
	},
	{
		name:  "text outside sections is discarded",
		input: "preamble<answer>x</answer>trailer",
		want:  decoded{Answer: "x"},
	},
	{
		name:  "less-than followed by another less-than is content",
		input: "<answer>x <y</answer>",
		want:  decoded{Answer: "x <y"},
	},
	{
		name:  "comparison in answer",
		input: "<answer>1 < 2 and 3 <4</answer>",
		want:  decoded{Answer: "1 < 2 and 3 <4"},
	},
	{
		name:  "unknown tags are dropped",
		input: "<answer>hi<b>there</b></answer>",
		want:  decoded{Answer: "hithere"},
	},
	{
		name:  "short tag-like span is dropped",
		input: "<answer>a < b, c > d</answer>",
		want:  decoded{Answer: "a  d"},
	},
	{
		name:  "span longer than any tag is content",
		input: "<answer>see <https://example.com/x> now</answer>",
		want:  decoded{Answer: "see <https://example.com/x> now"},
	},
	{
		name:  "mismatched closing tag is dropped",
		input: "<answer>a</reasoning>b</answer>",
		want:  decoded{Answer: "ab"},
	},
	{
		name:  "closing tag while idle is dropped",
		input: "</answer><answer>a</answer>",
		want:  decoded{Answer: "a"},
	},
	{
		name:  "opening a different section abandons an open title",
		input: "<title>Dra<answer>Text</answer></title>",
		want:  decoded{Answer: "Text"},
	},
	{
		name:  "second title is consumed but not published",
		input: "<title>One</title><title>Two</title><answer>ok</answer>",
		want:  decoded{Title: "One", TitleCount: 1, Answer: "ok"},
	},
	{
		name:  "reopened title restarts capture",
		input: "<title>a<title>b</title>",
		want:  decoded{Title: "b", TitleCount: 1},
	},
	{
		name:  "unclosed title is discarded at end of stream",
		input: "<answer>x</answer><title>Draft",
		want:  decoded{Answer: "x"},
	},
	{
		name:  "unclosed digest is discarded at end of stream",
		input: "<digest>partial summary",
		want:  decoded{},
	},
	{
		name:  "unclosed reasoning flushes at end of stream",
		input: "<reasoning>abc",
		want:  decoded{Reasoning: "abc"},
	},
	{
		name:  "dangling less-than flushes as content at end of stream",
		input: "<answer>abc<",
		want:  decoded{Answer: "abc<"},
	},
	{
		name:  "dangling partial closing tag flushes as content",
		input: "<reasoning>abc</reas",
		want:  decoded{Reasoning: "abc</reas"},
	},
	{
		name:  "reasoning and answer interleave",
		input: "<reasoning>r1</reasoning><answer>a1</answer><reasoning>r2</reasoning><answer>a2</answer>",
		want:  decoded{Reasoning: "r1r2", Answer: "a1a2"},
	},
	{
		name:  "tag names are case sensitive",
		input: "<Answer>no</Answer><answer>yes</answer>",
		want:  decoded{Answer: "yes"},
	},
	{
		name:  "no tags at all",
		input: "just some text with no markup",
		want:  decoded{},
	},
	{
		name:  "multibyte content",
		input: "<title>Météo ☀</title><answer>Il fait beau, 25°C</answer>",
		want:  decoded{Title: "Météo ☀", TitleCount: 1, Answer: "Il fait beau, 25°C"},
	},
}

func TestDecoder_WholeInput(t *testing.T) {
	t.Parallel()
	for _, s := range allStrategies {
		for _, tc := range decodeCases {
			t.Run(string(s)+"/"+tc.name, func(t *testing.T) {
				t.Parallel()
				assert.Equal(t, tc.want, run(t, s, tc.input))
			})
		}
	}
}

// Any partition of the input into non-empty chunks decodes to the same
// accumulated segments as the whole input.
func TestDecoder_FragmentationIndependence(t *testing.T) {
	t.Parallel()
	for _, s := range allStrategies {
		for _, tc := range decodeCases {
			t.Run(string(s)+"/"+tc.name, func(t *testing.T) {
				t.Parallel()
				in := tc.input
				want := run(t, s, in)

				for i := 1; i < len(in); i++ {
					for j := i + 1; j < len(in); j++ {
						got := run(t, s, in[:i], in[i:j], in[j:])
						require.Equal(t, want, got, "split at %d,%d", i, j)
					}
					require.Equal(t, want, run(t, s, in[:i], in[i:]), "split at %d", i)
				}

				bytes := make([]string, len(in))
				for i := range in {
					bytes[i] = in[i : i+1]
				}
				assert.Equal(t, want, run(t, s, bytes...), "byte by byte")
			})
		}
	}
}

func TestDecoder_RandomPartitions(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(7))
	alphabet := []string{
		"<reasoning>", "</reasoning>", "<answer>", "</answer>",
		"<title>", "</title>", "<digest>", "</digest>",
		"<", ">", "/", "<b>", "text ", "ans", "wer", "x", "\n",
	}
	for n := 0; n < 200; n++ {
		var sb strings.Builder
		for k := rng.Intn(30); k >= 0; k-- {
			sb.WriteString(alphabet[rng.Intn(len(alphabet))])
		}
		in := sb.String()

		want := run(t, tagstream.StrategyIncremental, in)
		require.Equal(t, want, run(t, tagstream.StrategyReparse, in), "strategies disagree on %q", in)

		for trial := 0; trial < 10; trial++ {
			chunks := partition(rng, in)
			for _, s := range allStrategies {
				require.Equal(t, want, run(t, s, chunks...), "%s on %q", s, chunks)
			}
		}
	}
}

func partition(rng *rand.Rand, s string) []string {
	var out []string
	for len(s) > 0 {
		n := 1 + rng.Intn(min(len(s), 6))
		out = append(out, s[:n])
		s = s[n:]
	}
	return out
}

// No live payload ever contains '<' immediately followed by a recognized
// tag name, however the input is split.
func TestDecoder_NoLeakage(t *testing.T) {
	t.Parallel()
	in := "<reasoning>plan</reasoning><answer>Use <b>bold</b> and 2<3</answer><title>T</title>"
	names := tagstream.DefaultVocabulary().Names()
	for _, s := range allStrategies {
		for i := 1; i < len(in); i++ {
			events := tagstream.DecodeString(newDecoder(t, s), in[:i], in[i:])
			d := accumulate(events)
			for _, name := range names {
				for _, form := range []string{"<" + name, "</" + name} {
					assert.NotContains(t, d.Reasoning, form)
					assert.NotContains(t, d.Answer, form)
				}
			}
		}
	}
}

func TestDecoder_ScenarioA_AnswerAcrossChunks(t *testing.T) {
	t.Parallel()
	for _, s := range allStrategies {
		t.Run(string(s), func(t *testing.T) {
			t.Parallel()
			dec := newDecoder(t, s)
			assert.Equal(t, []tagstream.Event{tagstream.EventAnswerDelta{Delta: "Hel"}}, dec.Feed("<answer>Hel"))
			assert.Equal(t, []tagstream.Event{tagstream.EventAnswerDelta{Delta: "lo"}}, dec.Feed("lo</answer>"))
			assert.Empty(t, dec.Finalize())
		})
	}
}

func TestDecoder_ScenarioB_SplitTagName(t *testing.T) {
	t.Parallel()
	for _, s := range allStrategies {
		t.Run(string(s), func(t *testing.T) {
			t.Parallel()
			dec := newDecoder(t, s)
			assert.Empty(t, dec.Feed("<titl"))
			assert.Equal(t, []tagstream.Event{tagstream.EventTitleComplete{Title: "Weather"}}, dec.Feed("e>Weather</title>"))
		})
	}
}

func TestDecoder_ScenarioC_TrailingTextWithoutAnswerTag(t *testing.T) {
	t.Parallel()
	for _, s := range allStrategies {
		t.Run(string(s), func(t *testing.T) {
			t.Parallel()
			dec := newDecoder(t, s)
			events := append(dec.Feed("<reasoning>thinking</reasoning>answer text"), dec.Finalize()...)
			for _, evt := range events {
				_, isAnswer := evt.(tagstream.EventAnswerDelta)
				assert.False(t, isAnswer)
			}
			assert.Equal(t, "thinking", accumulate(events).Reasoning)
		})
	}
}

func TestDecoder_ScenarioD_AbandonedTitle(t *testing.T) {
	t.Parallel()
	for _, s := range allStrategies {
		t.Run(string(s), func(t *testing.T) {
			t.Parallel()
			dec := newDecoder(t, s)
			var events []tagstream.Event
			events = append(events, dec.Feed("<title>")...)
			events = append(events, dec.Feed("Draft")...)
			events = append(events, dec.Feed(strings.Repeat(" more", 100))...)
			assert.Empty(t, events)
		})
	}
}

func TestDecoder_EmptyDeltaIsNoop(t *testing.T) {
	t.Parallel()
	for _, s := range allStrategies {
		t.Run(string(s), func(t *testing.T) {
			t.Parallel()
			dec := newDecoder(t, s)
			assert.Empty(t, dec.Feed("<ans"))
			assert.Empty(t, dec.Feed(""))
			assert.Equal(t, []tagstream.Event{tagstream.EventAnswerDelta{Delta: "ok"}}, dec.Feed("wer>ok"))
		})
	}
}

func TestDecoder_EventsFollowScanOrder(t *testing.T) {
	t.Parallel()
	for _, s := range allStrategies {
		t.Run(string(s), func(t *testing.T) {
			t.Parallel()
			dec := newDecoder(t, s)
			got := dec.Feed("<answer>a</answer><title>T</title><reasoning>r</reasoning>")
			assert.Equal(t, []tagstream.Event{
				tagstream.EventAnswerDelta{Delta: "a"},
				tagstream.EventTitleComplete{Title: "T"},
				tagstream.EventReasoningDelta{Delta: "r"},
			}, got)
		})
	}
}

func TestDecoder_PartialTagIsHeldBack(t *testing.T) {
	t.Parallel()
	for _, s := range allStrategies {
		t.Run(string(s), func(t *testing.T) {
			t.Parallel()
			dec := newDecoder(t, s)
			assert.Equal(t, []tagstream.Event{tagstream.EventAnswerDelta{Delta: "done"}}, dec.Feed("<answer>done</ans"))
			assert.Empty(t, dec.Feed("wer"))
			assert.Empty(t, dec.Feed(">"))
			assert.Empty(t, dec.Finalize())
		})
	}
}

func TestDecoder_LessThanReleasedOnceItCannotBeATag(t *testing.T) {
	t.Parallel()
	dec := newDecoder(t, tagstream.StrategyIncremental)
	assert.Equal(t, []tagstream.Event{tagstream.EventAnswerDelta{Delta: "x "}}, dec.Feed("<answer>x <"))
	// Twelve bytes without '>' is longer than "</reasoning>", the longest token.
	got := accumulate(dec.Feed("abcdefghijkl"))
	assert.Equal(t, "<abcdefghijkl", got.Answer)
}

func TestDecoder_FinalizeOnce(t *testing.T) {
	t.Parallel()
	for _, s := range allStrategies {
		t.Run(string(s), func(t *testing.T) {
			t.Parallel()
			dec := newDecoder(t, s)
			dec.Feed("<answer>x<")
			assert.Equal(t, []tagstream.Event{tagstream.EventAnswerDelta{Delta: "<"}}, dec.Finalize())
			assert.Empty(t, dec.Finalize())
			assert.Empty(t, dec.Feed("more"))
		})
	}
}

func TestDecoder_ForceClose(t *testing.T) {
	t.Parallel()
	for _, s := range allStrategies {
		t.Run(string(s), func(t *testing.T) {
			t.Parallel()
			dec := newDecoder(t, s, tagstream.WithForceClose())
			events := tagstream.DecodeString(dec, "<title>Dra<answer>Text</answer>")
			assert.Equal(t, []tagstream.Event{
				tagstream.EventTitleComplete{Title: "Dra"},
				tagstream.EventAnswerDelta{Delta: "Text"},
			}, events)
		})
	}
}

func TestDecoder_Aliases(t *testing.T) {
	t.Parallel()
	vocab := tagstream.DefaultVocabulary().
		With("think", tagstream.TagReasoning).
		With("summary", tagstream.TagDigest)
	for _, s := range allStrategies {
		t.Run(string(s), func(t *testing.T) {
			t.Parallel()
			dec := newDecoder(t, s, tagstream.WithVocabulary(vocab))
			d := accumulate(tagstream.DecodeString(dec, "<think>hm</think><answer>ok</answer><summary>S</summary>"))
			assert.Equal(t, decoded{Reasoning: "hm", Answer: "ok", Digest: "S", DigestCount: 1}, d)
		})
	}
}

func TestNewDecoder(t *testing.T) {
	t.Parallel()

	t.Run("empty strategy defaults to incremental", func(t *testing.T) {
		t.Parallel()
		dec, err := tagstream.NewDecoder("")
		require.NoError(t, err)
		assert.NotNil(t, dec)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		t.Parallel()
		_, err := tagstream.NewDecoder("regex")
		assert.ErrorIs(t, err, tagstream.ErrUnknownStrategy)
	})

	t.Run("invalid vocabulary", func(t *testing.T) {
		t.Parallel()
		_, err := tagstream.NewDecoder(tagstream.StrategyIncremental,
			tagstream.WithVocabulary(tagstream.Vocabulary{"a b": tagstream.TagAnswer}))
		assert.ErrorIs(t, err, tagstream.ErrValidation)
	})
}

func TestParseStrategy(t *testing.T) {
	t.Parallel()
	s, err := tagstream.ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, tagstream.StrategyIncremental, s)

	s, err = tagstream.ParseStrategy("reparse")
	require.NoError(t, err)
	assert.Equal(t, tagstream.StrategyReparse, s)

	_, err = tagstream.ParseStrategy("nope")
	assert.ErrorIs(t, err, tagstream.ErrUnknownStrategy)

	assert.Equal(t, []tagstream.Strategy{tagstream.StrategyIncremental, tagstream.StrategyReparse}, tagstream.Strategies())
}

func TestStrategyTable(t *testing.T) {
	t.Parallel()
	table := tagstream.StrategyTable{
		Default: tagstream.StrategyIncremental,
		Rules: []tagstream.StrategyRule{
			{Model: "legacy-7b", Strategy: tagstream.StrategyReparse},
			{Model: "gemini-*", Strategy: tagstream.StrategyReparse},
		},
	}
	require.NoError(t, table.Validate())

	assert.Equal(t, tagstream.StrategyReparse, table.Lookup("legacy-7b"))
	assert.Equal(t, tagstream.StrategyIncremental, table.Lookup("legacy-7b-chat"))
	assert.Equal(t, tagstream.StrategyReparse, table.Lookup("gemini-2.5-flash"))
	assert.Equal(t, tagstream.StrategyIncremental, table.Lookup(""))
	assert.Equal(t, tagstream.StrategyIncremental, tagstream.StrategyTable{}.Lookup("anything"))

	t.Run("rejects unknown strategies", func(t *testing.T) {
		t.Parallel()
		bad := tagstream.StrategyTable{Rules: []tagstream.StrategyRule{{Model: "m", Strategy: "regex"}}}
		assert.ErrorIs(t, bad.Validate(), tagstream.ErrUnknownStrategy)
		assert.ErrorIs(t, tagstream.StrategyTable{Default: "regex"}.Validate(), tagstream.ErrUnknownStrategy)
	})

	t.Run("rejects empty model", func(t *testing.T) {
		t.Parallel()
		bad := tagstream.StrategyTable{Rules: []tagstream.StrategyRule{{Strategy: tagstream.StrategyReparse}}}
		assert.ErrorIs(t, bad.Validate(), tagstream.ErrValidation)
	})

	t.Run("rejects malformed pattern", func(t *testing.T) {
		t.Parallel()
		bad := tagstream.StrategyTable{Rules: []tagstream.StrategyRule{{Model: "gemini-[", Strategy: tagstream.StrategyReparse}}}
		assert.ErrorIs(t, bad.Validate(), tagstream.ErrValidation)
	})

	t.Run("glob patterns", func(t *testing.T) {
		t.Parallel()
		globs := tagstream.StrategyTable{Rules: []tagstream.StrategyRule{
			{Model: "{local,legacy}-*", Strategy: tagstream.StrategyReparse},
			{Model: "models/**", Strategy: tagstream.StrategyReparse},
		}}
		require.NoError(t, globs.Validate())
		assert.Equal(t, tagstream.StrategyReparse, globs.Lookup("local-7b"))
		assert.Equal(t, tagstream.StrategyReparse, globs.Lookup("legacy-13b"))
		assert.Equal(t, tagstream.StrategyReparse, globs.Lookup("models/tuned/v2"))
		assert.Equal(t, tagstream.StrategyIncremental, globs.Lookup("remote-7b"))
		assert.Equal(t, tagstream.StrategyIncremental, globs.Lookup("local/7b"))
	})
}
