// Package store persists the watcher's state as independent keyed documents:
// the seen-ID history, the recent-jobs cache, daily stats, tracked projects
// and proposal prompts. Keys are read-modified-written independently; there
// is no cross-key transaction, and the last writer of a key wins.
package store

import (
	"context"

	"github.com/frelancia/frelwatch/internal/models"
)

const (
	// MaxSeen bounds the seen-ID history; oldest entries are dropped first.
	MaxSeen = 500
	// MaxRecent bounds the recent-jobs cache shown by `frelwatch recent`.
	MaxRecent = 50
)

// Store is the persistence boundary for all watcher state. Implementations
// must be safe for concurrent use; callers re-read a key right before
// committing a modified value so overlapping cycles converge.
type Store interface {
	Seen(ctx context.Context) ([]string, error)
	SetSeen(ctx context.Context, ids []string) error

	Recent(ctx context.Context) ([]models.Job, error)
	SetRecent(ctx context.Context, jobs []models.Job) error

	Stats(ctx context.Context) (models.Stats, error)
	SetStats(ctx context.Context, stats models.Stats) error

	Tracked(ctx context.Context) (map[string]models.TrackedProject, error)
	SetTracked(ctx context.Context, tracked map[string]models.TrackedProject) error

	Prompts(ctx context.Context) ([]models.Prompt, error)
	SetPrompts(ctx context.Context, prompts []models.Prompt) error
}

const (
	keySeen    = "seen"
	keyRecent  = "recent"
	keyStats   = "stats"
	keyTracked = "tracked"
	keyPrompts = "prompts"
)
