// Package json persists conversations as JSON files.
//
// Each conversation is one file holding a versioned envelope. Writes go to a
// temporary file that is renamed into place, under an advisory file lock so
// concurrent processes never interleave a save with a load.
package json

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/tagstream"
)

const envelopeVersion = 1

// envelope is the v1 wire format for a persisted conversation.
type envelope struct {
	Version      int       `json:"version"`
	ID           string    `json:"id"`
	Title        string    `json:"title,omitempty"`
	Digest       string    `json:"digest,omitempty"`
	SystemPrompt string    `json:"system_prompt,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Turns        []turnDTO `json:"turns"`
}

// turnDTO is the JSON representation of a Turn.
type turnDTO struct {
	Prompt    string    `json:"prompt"`
	Reasoning string    `json:"reasoning,omitempty"`
	Answer    string    `json:"answer"`
	Model     string    `json:"model,omitempty"`
	Strategy  string    `json:"strategy,omitempty"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// MarshalConversation serializes a Conversation to JSON in v1 envelope format.
func MarshalConversation(c tagstream.Conversation) ([]byte, error) {
	env := envelope{
		Version:      envelopeVersion,
		ID:           c.ID,
		Title:        c.Title,
		Digest:       c.Digest,
		SystemPrompt: c.SystemPrompt,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		Turns:        make([]turnDTO, len(c.Turns)),
	}
	for i, t := range c.Turns {
		env.Turns[i] = turnDTO{
			Prompt:    t.Prompt,
			Reasoning: t.Reasoning,
			Answer:    t.Answer,
			Model:     t.Model,
			Strategy:  string(t.Strategy),
			Status:    string(t.Status),
			Timestamp: t.Timestamp,
		}
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalConversation deserializes a Conversation from JSON in v1 envelope format.
func UnmarshalConversation(data []byte) (tagstream.Conversation, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return tagstream.Conversation{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != envelopeVersion {
		return tagstream.Conversation{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	turns := make([]tagstream.Turn, len(env.Turns))
	for i, dto := range env.Turns {
		status, err := parseStatus(dto.Status)
		if err != nil {
			return tagstream.Conversation{}, fmt.Errorf("turn %d: %w", i, err)
		}
		turns[i] = tagstream.Turn{
			Prompt:    dto.Prompt,
			Reasoning: dto.Reasoning,
			Answer:    dto.Answer,
			Model:     dto.Model,
			Strategy:  tagstream.Strategy(dto.Strategy),
			Status:    status,
			Timestamp: dto.Timestamp,
		}
	}
	return tagstream.Conversation{
		ID:           env.ID,
		Title:        env.Title,
		Digest:       env.Digest,
		SystemPrompt: env.SystemPrompt,
		Turns:        turns,
		CreatedAt:    env.CreatedAt,
		UpdatedAt:    env.UpdatedAt,
	}, nil
}

func parseStatus(s string) (tagstream.TurnStatus, error) {
	switch st := tagstream.TurnStatus(s); st {
	case tagstream.TurnComplete, tagstream.TurnAborted:
		return st, nil
	default:
		return "", fmt.Errorf("unknown turn status: %q", s)
	}
}
