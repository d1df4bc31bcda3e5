package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/tagstream"
)

// Interface compliance check.
var _ tagstream.Store = (*Store)(nil)

const conversationColumns = `id, title, digest, system_prompt, created_at, updated_at`

// Save upserts c and replaces its turns in one transaction.
func (s *Store) Save(ctx context.Context, c tagstream.Conversation) error {
	if c.ID == "" {
		return fmt.Errorf("sqlite: conversation id must not be empty: %w", tagstream.ErrValidation)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO conversations (`+conversationColumns+`) VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             title = excluded.title,
             digest = excluded.digest,
             system_prompt = excluded.system_prompt,
             created_at = excluded.created_at,
             updated_at = excluded.updated_at`,
		c.ID, c.Title, c.Digest, c.SystemPrompt, formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: upsert conversation: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM turns WHERE conversation_id = ?`, c.ID); err != nil {
		return fmt.Errorf("sqlite: clear turns: %w", err)
	}
	for i, t := range c.Turns {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO turns (
                conversation_id, position, prompt, reasoning, answer, model, strategy, status, timestamp
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, i, t.Prompt, t.Reasoning, t.Answer, t.Model, string(t.Strategy), string(t.Status), formatTime(t.Timestamp),
		)
		if err != nil {
			return fmt.Errorf("sqlite: insert turn %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// Load fetches a conversation and its turns in order.
func (s *Store) Load(ctx context.Context, id string) (tagstream.Conversation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE id = ?`, id)
	c, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return tagstream.Conversation{}, fmt.Errorf("sqlite: %s: %w", id, tagstream.ErrConversationNotFound)
	}
	if err != nil {
		return tagstream.Conversation{}, fmt.Errorf("sqlite: get conversation: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT prompt, reasoning, answer, model, strategy, status, timestamp
         FROM turns WHERE conversation_id = ? ORDER BY position`, id)
	if err != nil {
		return tagstream.Conversation{}, fmt.Errorf("sqlite: query turns: %w", err)
	}
	defer rows.Close()

	c.Turns = []tagstream.Turn{}
	for rows.Next() {
		var (
			t                tagstream.Turn
			strategy, status string
			timestamp        string
		)
		if err := rows.Scan(&t.Prompt, &t.Reasoning, &t.Answer, &t.Model, &strategy, &status, &timestamp); err != nil {
			return tagstream.Conversation{}, fmt.Errorf("sqlite: scan turn: %w", err)
		}
		t.Strategy = tagstream.Strategy(strategy)
		t.Status = tagstream.TurnStatus(status)
		if t.Timestamp, err = parseTime(timestamp); err != nil {
			return tagstream.Conversation{}, err
		}
		c.Turns = append(c.Turns, t)
	}
	if err := rows.Err(); err != nil {
		return tagstream.Conversation{}, fmt.Errorf("sqlite: iterate turns: %w", err)
	}
	return c, nil
}

// List returns conversation summaries, most recently updated first.
func (s *Store) List(ctx context.Context) ([]tagstream.Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.title, c.digest, c.created_at, c.updated_at,
                (SELECT COUNT(1) FROM turns t WHERE t.conversation_id = c.id)
         FROM conversations c
         ORDER BY c.updated_at DESC, c.id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list conversations: %w", err)
	}
	defer rows.Close()

	var out []tagstream.Summary
	for rows.Next() {
		var (
			sum              tagstream.Summary
			created, updated string
		)
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.Digest, &created, &updated, &sum.Turns); err != nil {
			return nil, fmt.Errorf("sqlite: scan summary: %w", err)
		}
		if sum.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if sum.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (tagstream.Conversation, error) {
	var (
		c                tagstream.Conversation
		created, updated string
	)
	if err := row.Scan(&c.ID, &c.Title, &c.Digest, &c.SystemPrompt, &created, &updated); err != nil {
		return tagstream.Conversation{}, err
	}
	var err error
	if c.CreatedAt, err = parseTime(created); err != nil {
		return tagstream.Conversation{}, err
	}
	if c.UpdatedAt, err = parseTime(updated); err != nil {
		return tagstream.Conversation{}, err
	}
	return c, nil
}

// Timestamps are stored as fixed-width UTC text so they sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse time %q: %w", s, err)
	}
	return t, nil
}
