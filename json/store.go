package json

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fwojciec/tagstream"
)

// Interface compliance check.
var _ tagstream.Store = (*Store)(nil)

// Store keeps one file per conversation in Dir, named <id>.json.
type Store struct {
	Dir string
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

func (s *Store) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid conversation id %q: %w", id, tagstream.ErrValidation)
	}
	return filepath.Join(s.Dir, id+".json"), nil
}

// Save writes c to its file.
func (s *Store) Save(ctx context.Context, c tagstream.Conversation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(c.ID)
	if err != nil {
		return err
	}
	return Save(p, c)
}

// Load reads the conversation with the given id.
func (s *Store) Load(ctx context.Context, id string) (tagstream.Conversation, error) {
	if err := ctx.Err(); err != nil {
		return tagstream.Conversation{}, err
	}
	p, err := s.path(id)
	if err != nil {
		return tagstream.Conversation{}, err
	}
	return Load(p)
}

// List returns summaries of every conversation in Dir, most recently updated
// first. A missing Dir is an empty store.
func (s *Store) List(ctx context.Context) ([]tagstream.Summary, error) {
	entries, err := os.ReadDir(s.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var out []tagstream.Summary
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		c, err := Load(filepath.Join(s.Dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		out = append(out, c.Summarize())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}
