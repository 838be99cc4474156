// Package tracker monitors user-pinned projects for status and engagement
// changes between checks.
package tracker

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/frelancia/frelwatch/internal/models"
	"github.com/frelancia/frelwatch/internal/store"
)

// DetailSource fetches the detail record for a project URL. Satisfied by
// scraper.Mostaql.
type DetailSource interface {
	Detail(ctx context.Context, url string) (models.Detail, error)
}

// Notifier announces a change on a tracked project.
type Notifier interface {
	TrackedChange(project models.TrackedProject, changes []string, sound bool)
}

// Change is one detected field transition, reported back to the caller.
type Change struct {
	Project models.TrackedProject
	Lines   []string
}

type Monitor struct {
	store    store.Store
	source   DetailSource
	notifier Notifier
	sound    bool
	log      zerolog.Logger
	now      func() time.Time
}

func New(st store.Store, source DetailSource, notifier Notifier, sound bool, log zerolog.Logger) *Monitor {
	return &Monitor{
		store:    st,
		source:   source,
		notifier: notifier,
		sound:    sound,
		log:      log,
		now:      time.Now,
	}
}

// Run checks every tracked project once. A failed fetch leaves the stored
// record untouched so the next run diffs against the last good observation.
// The baseline is only advanced, and announced, when a field actually moved.
func (m *Monitor) Run(ctx context.Context) ([]Change, error) {
	tracked, err := m.store.Tracked(ctx)
	if err != nil {
		return nil, err
	}
	if len(tracked) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(tracked))
	for id := range tracked {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var changes []Change
	for _, id := range ids {
		project := tracked[id]

		detail, err := m.source.Detail(ctx, project.URL)
		if err != nil {
			m.log.Warn().Err(err).Str("id", id).Msg("tracked fetch failed")
			continue
		}

		lines := diff(project, detail)
		if len(lines) == 0 {
			continue
		}

		project.Status = pick(detail.Status, project.Status)
		project.Communications = pick(detail.Communications, project.Communications)
		project.LastChecked = m.now()

		if err := m.commit(ctx, project); err != nil {
			m.log.Warn().Err(err).Str("id", id).Msg("tracked commit failed")
			continue
		}

		m.log.Info().Str("id", id).Strs("changes", lines).Msg("tracked project changed")
		if m.notifier != nil {
			m.notifier.TrackedChange(project, lines, m.sound)
		}
		changes = append(changes, Change{Project: project, Lines: lines})
	}
	return changes, nil
}

// commit re-reads the tracked set so a concurrent pin or unpin is not
// clobbered. An entry unpinned while we were fetching stays gone.
func (m *Monitor) commit(ctx context.Context, project models.TrackedProject) error {
	tracked, err := m.store.Tracked(ctx)
	if err != nil {
		return err
	}
	if _, ok := tracked[project.ID]; !ok {
		return nil
	}
	tracked[project.ID] = project
	return m.store.SetTracked(ctx, tracked)
}

func diff(project models.TrackedProject, detail models.Detail) []string {
	var lines []string
	if changed(project.Status, detail.Status) {
		lines = append(lines, transition("الحالة", project.Status, detail.Status))
	}
	if changed(project.Communications, detail.Communications) {
		lines = append(lines, transition("التواصلات", project.Communications, detail.Communications))
	}
	return lines
}

// changed reports a real transition: an empty fresh value means the field
// failed to parse, not that it changed.
func changed(old string, fresh string) bool {
	fresh = strings.TrimSpace(fresh)
	return fresh != "" && fresh != old
}

func transition(label string, old string, fresh string) string {
	if old == "" {
		old = "غير معروف"
	}
	return fmt.Sprintf("%s: %s -> %s", label, old, fresh)
}

func pick(fresh string, fallback string) string {
	if strings.TrimSpace(fresh) != "" {
		return fresh
	}
	return fallback
}
