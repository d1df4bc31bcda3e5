package tagstream

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request, vocabulary or configuration failed validation.
	ErrValidation = errors.New("validation error")

	// ErrUnknownStrategy indicates a decoder strategy name that is not registered.
	ErrUnknownStrategy = errors.New("unknown decoder strategy")

	// ErrStreamClosed indicates an operation on a closed source.
	ErrStreamClosed = errors.New("stream closed")

	// ErrConversationNotFound indicates a store has no conversation with the requested ID.
	ErrConversationNotFound = errors.New("conversation not found")
)
