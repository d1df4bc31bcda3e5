// Package gemini implements [tagstream.Provider] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK. The model is asked to answer in
// the tagged format, so only plain text parts are forwarded; native thought
// parts are dropped because reasoning arrives inside <reasoning> tags.
// Streaming uses the SDK's iter.Seq2 iterator, wrapped into the pull-based
// [tagstream.Source] interface.
package gemini

const (
	defaultModel     = "gemini-2.5-flash"
	defaultMaxTokens = 65536
)
