package tagstream

import (
	"context"
	"io"
)

// Decode drives one stream: every delta from src is fed to dec and every
// resulting event is passed to sink, in order. When src reports io.EOF the
// decoder is finalized exactly once and Decode returns nil.
//
// Any other error from src, or cancellation of ctx, abandons the stream:
// Finalize is not called, so an unclosed title or digest is never published,
// and the error is returned.
func Decode(ctx context.Context, src Source, dec Decoder, sink Sink) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		delta, err := src.Next()
		if err == io.EOF {
			publish(sink, dec.Finalize())
			return nil
		}
		if err != nil {
			return err
		}
		publish(sink, dec.Feed(delta))
	}
}

func publish(sink Sink, events []Event) {
	for _, evt := range events {
		sink.OnEvent(evt)
	}
}

// DecodeString runs dec over chunks as if they had arrived from a stream and
// returns every event produced, including those from Finalize.
func DecodeString(dec Decoder, chunks ...string) []Event {
	var out []Event
	for _, c := range chunks {
		out = append(out, dec.Feed(c)...)
	}
	return append(out, dec.Finalize()...)
}
