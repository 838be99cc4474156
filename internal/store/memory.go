package store

import (
	"context"
	"sync"

	"github.com/frelancia/frelwatch/internal/models"
)

// MemStore is an in-memory Store used by tests and by --dry-run checks.
type MemStore struct {
	mu      sync.Mutex
	seen    []string
	recent  []models.Job
	stats   models.Stats
	tracked map[string]models.TrackedProject
	prompts []models.Prompt

	// Err, when set, is returned by every operation. Lets tests simulate an
	// unreachable store.
	Err error
}

func NewMemStore() *MemStore {
	return &MemStore{tracked: map[string]models.TrackedProject{}}
}

func (m *MemStore) Seen(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]string{}, m.seen...), nil
}

func (m *MemStore) SetSeen(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.seen = append([]string{}, ids...)
	return nil
}

func (m *MemStore) Recent(ctx context.Context) ([]models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]models.Job{}, m.recent...), nil
}

func (m *MemStore) SetRecent(ctx context.Context, jobs []models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.recent = append([]models.Job{}, jobs...)
	return nil
}

func (m *MemStore) Stats(ctx context.Context) (models.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.Stats{}, m.Err
	}
	return m.stats, nil
}

func (m *MemStore) SetStats(ctx context.Context, stats models.Stats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.stats = stats
	return nil
}

func (m *MemStore) Tracked(ctx context.Context) (map[string]models.TrackedProject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make(map[string]models.TrackedProject, len(m.tracked))
	for id, project := range m.tracked {
		out[id] = project
	}
	return out, nil
}

func (m *MemStore) SetTracked(ctx context.Context, tracked map[string]models.TrackedProject) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.tracked = make(map[string]models.TrackedProject, len(tracked))
	for id, project := range tracked {
		m.tracked[id] = project
	}
	return nil
}

func (m *MemStore) Prompts(ctx context.Context) ([]models.Prompt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]models.Prompt{}, m.prompts...), nil
}

func (m *MemStore) SetPrompts(ctx context.Context, prompts []models.Prompt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.prompts = append([]models.Prompt{}, prompts...)
	return nil
}
