// File: internal/repository/chat/json_repository.go
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/iyunix/go-gemchat/internal/domain"
)

// JSONChatRepository keeps the chat list in a single JSON file.
type JSONChatRepository struct {
	path   string
	logger Logger

	mu      sync.Mutex
	cached  bool
	records []domain.ChatRecord
	found   bool
}

func NewJSONChatRepository(path string, logger Logger) *JSONChatRepository {
	return &JSONChatRepository{path: path, logger: logger}
}

// Path is the backing file.
func (r *JSONChatRepository) Path() string {
	return r.path
}

func (r *JSONChatRepository) Load(ctx context.Context) ([]domain.ChatRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	records, found, err := r.loadLocked()
	if err != nil {
		return nil, false, err
	}
	return cloneRecords(records), found, nil
}

func (r *JSONChatRepository) Save(ctx context.Context, records []domain.ChatRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked(records)
}

func (r *JSONChatRepository) Update(ctx context.Context, fn UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	records, found, err := r.loadLocked()
	if err != nil {
		return err
	}
	next, err := fn(cloneRecords(records), found)
	if err != nil {
		return err
	}
	return r.saveLocked(next)
}

// Invalidate drops the cached list so the next read goes to disk.
func (r *JSONChatRepository) Invalidate() {
	r.mu.Lock()
	r.cached = false
	r.records = nil
	r.mu.Unlock()
}

// Watch invalidates the cache whenever the file changes on disk, until ctx is done.
// The parent directory is watched so creation and removal are seen too.
func (r *JSONChatRepository) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(r.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target := filepath.Clean(r.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				r.logger.Debug("chat file changed, dropping cache", "path", r.path, "op", ev.Op.String())
				r.Invalidate()
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("chat file watcher error", "path", r.path, "error", werr)
		}
	}
}

func (r *JSONChatRepository) loadLocked() ([]domain.ChatRecord, bool, error) {
	if r.cached {
		return r.records, r.found, nil
	}

	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		r.records, r.found, r.cached = nil, false, true
		return nil, false, nil
	}
	if err != nil {
		r.logger.Error("failed to read chat file", "path", r.path, "error", err)
		return nil, false, fmt.Errorf("read chat file: %w", err)
	}

	var records []domain.ChatRecord
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &records); err != nil {
			r.logger.Error("chat file is not a valid JSON list", "path", r.path, "error", err)
			return nil, false, fmt.Errorf("decode chat file %s: %w", r.path, err)
		}
	}

	r.records, r.found, r.cached = records, true, true
	return records, true, nil
}

// saveLocked writes to a temp file in the same directory and renames it over
// the target, so readers never see a half-written list.
func (r *JSONChatRepository) saveLocked(records []domain.ChatRecord) error {
	if records == nil {
		records = []domain.ChatRecord{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode chat list: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp chat file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp chat file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp chat file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp chat file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		r.logger.Error("failed to replace chat file", "path", r.path, "error", err)
		return fmt.Errorf("replace chat file: %w", err)
	}

	r.records, r.found, r.cached = cloneRecords(records), true, true
	r.logger.Debug("chat list saved", "path", r.path, "count", len(records))
	return nil
}

func cloneRecords(records []domain.ChatRecord) []domain.ChatRecord {
	if records == nil {
		return nil
	}
	out := make([]domain.ChatRecord, len(records))
	copy(out, records)
	return out
}
