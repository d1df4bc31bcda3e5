package json

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fwojciec/tagstream"
	"github.com/gofrs/flock"
)

func lockPath(path string) string { return path + ".lock" }

// Save writes a Conversation to a JSON file, creating parent directories as
// needed. The file is replaced atomically while holding an exclusive lock.
func Save(path string, c tagstream.Conversation) error {
	data, err := MarshalConversation(c)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	lock := flock.New(lockPath(path))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock: %w", err)
	}
	defer lock.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a Conversation from a JSON file under a shared lock. A missing
// file yields [tagstream.ErrConversationNotFound].
func Load(path string) (tagstream.Conversation, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return tagstream.Conversation{}, fmt.Errorf("%s: %w", path, tagstream.ErrConversationNotFound)
	}

	lock := flock.New(lockPath(path))
	if err := lock.RLock(); err != nil {
		return tagstream.Conversation{}, fmt.Errorf("lock: %w", err)
	}
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return tagstream.Conversation{}, fmt.Errorf("%s: %w", path, tagstream.ErrConversationNotFound)
	}
	if err != nil {
		return tagstream.Conversation{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalConversation(data)
}
