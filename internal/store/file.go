package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/frelancia/frelwatch/internal/models"
)

// FileStore keeps each document as a JSON file under dir. It is the default
// backend: zero infrastructure, readable with any editor.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("state dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) Seen(ctx context.Context) ([]string, error) {
	var ids []string
	if err := f.read(keySeen, &ids); err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (f *FileStore) SetSeen(ctx context.Context, ids []string) error {
	return f.write(keySeen, ids)
}

func (f *FileStore) Recent(ctx context.Context) ([]models.Job, error) {
	var jobs []models.Job
	if err := f.read(keyRecent, &jobs); err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	return jobs, nil
}

func (f *FileStore) SetRecent(ctx context.Context, jobs []models.Job) error {
	return f.write(keyRecent, jobs)
}

func (f *FileStore) Stats(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	if err := f.read(keyStats, &stats); err != nil {
		return models.Stats{}, err
	}
	return stats, nil
}

func (f *FileStore) SetStats(ctx context.Context, stats models.Stats) error {
	return f.write(keyStats, stats)
}

func (f *FileStore) Tracked(ctx context.Context) (map[string]models.TrackedProject, error) {
	var tracked map[string]models.TrackedProject
	if err := f.read(keyTracked, &tracked); err != nil {
		return nil, err
	}
	if tracked == nil {
		tracked = map[string]models.TrackedProject{}
	}
	return tracked, nil
}

func (f *FileStore) SetTracked(ctx context.Context, tracked map[string]models.TrackedProject) error {
	return f.write(keyTracked, tracked)
}

func (f *FileStore) Prompts(ctx context.Context) ([]models.Prompt, error) {
	var prompts []models.Prompt
	if err := f.read(keyPrompts, &prompts); err != nil {
		return nil, err
	}
	return prompts, nil
}

func (f *FileStore) SetPrompts(ctx context.Context, prompts []models.Prompt) error {
	return f.write(keyPrompts, prompts)
}

func (f *FileStore) read(key string, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", key, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (f *FileStore) write(key string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	// Write through a temp file so a crash never leaves a half-written doc.
	path := f.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("commit %s: %w", key, err)
	}
	return nil
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}
