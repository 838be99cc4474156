// Package poller implements the poll-cycle state machine: fetch every
// enabled category feed, classify candidates against the seen history and
// the filters, commit bounded state, enrich from detail pages, and announce
// whatever survives deep filtering.
//
// Cycles may overlap (the daemon timer can fire again while a long
// enrichment loop is still running). Every commit therefore re-reads the
// current store value and merges into it instead of writing back a snapshot
// loaded at the start of the cycle, so concurrent cycles converge.
package poller

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/frelancia/frelwatch/internal/config"
	"github.com/frelancia/frelwatch/internal/filter"
	"github.com/frelancia/frelwatch/internal/models"
	"github.com/frelancia/frelwatch/internal/scraper"
	"github.com/frelancia/frelwatch/internal/store"
)

// enrichLimit caps the opportunistic enrichment pass over the recent cache.
const enrichLimit = 10

// Source produces candidate jobs and detail records. The production
// implementation is scraper.Mostaql; tests substitute fakes.
type Source interface {
	Listing(ctx context.Context, category scraper.Category) ([]models.Job, error)
	Detail(ctx context.Context, url string) (models.Detail, error)
}

// Notifier announces qualifying new jobs.
type Notifier interface {
	NewJobs(jobs []models.Job, sound bool)
}

// Result is what one poll cycle reports back to its caller.
type Result struct {
	Success    bool
	NewCount   int
	TotalSeen  int
	Notified   int
	Suppressed int
	Err        error
}

type Poller struct {
	store      store.Store
	source     Source
	notifier   Notifier
	settings   config.Settings
	log        zerolog.Logger
	now        func() time.Time
	categories []scraper.Category
}

func New(st store.Store, source Source, notifier Notifier, settings config.Settings, log zerolog.Logger) *Poller {
	return &Poller{
		store:      st,
		source:     source,
		notifier:   notifier,
		settings:   settings,
		log:        log,
		now:        time.Now,
		categories: scraper.Categories,
	}
}

// Run executes one poll cycle. Per-category and per-record failures are
// logged and skipped; only an unreadable store fails the whole cycle, and
// even then nothing already committed is rolled back.
func (p *Poller) Run(ctx context.Context) Result {
	now := p.now()

	seen, err := p.store.Seen(ctx)
	if err != nil {
		return Result{Err: err}
	}

	seenSet := make(map[string]struct{}, len(seen))
	for _, id := range seen {
		seenSet[id] = struct{}{}
	}

	var (
		observedIDs []string     // unseen IDs observed this cycle, filtered or not
		newJobs     []models.Job // unseen AND passed the cheap filter pass
		upserts     []models.Job // passed the cheap filter pass, for the recent cache
	)

	// Categories run sequentially so the debug log reads in feed order.
	for _, category := range p.categories {
		if !p.settings.CategoryEnabled(category.Name) {
			continue
		}

		jobs, err := p.source.Listing(ctx, category)
		if err != nil {
			p.log.Warn().Err(err).Str("category", category.Name).Msg("listing fetch failed")
			continue
		}
		p.log.Debug().Str("category", category.Name).Int("jobs", len(jobs)).Msg("listing fetched")

		for _, job := range jobs {
			if job.ID == "" {
				continue
			}
			passed := filter.Passes(job, p.settings, now)
			if passed {
				upserts = append(upserts, job)
			}
			if _, ok := seenSet[job.ID]; ok {
				continue
			}
			// Record the ID even when filtered out so the posting is never
			// re-evaluated as new on a later cycle.
			seenSet[job.ID] = struct{}{}
			observedIDs = append(observedIDs, job.ID)
			if passed {
				newJobs = append(newJobs, job)
			}
		}
	}

	// Fast-path commit: bounded seen history, sorted bounded cache, stats.
	// Must land before any slow enrichment so a dashboard reader sees it.
	totalSeen, err := p.commitSeen(ctx, observedIDs)
	if err != nil {
		return Result{NewCount: len(newJobs), Err: err}
	}
	if err := p.commitRecent(ctx, upserts); err != nil {
		return Result{NewCount: len(newJobs), TotalSeen: totalSeen, Err: err}
	}
	if err := p.commitStats(ctx, now, len(newJobs)); err != nil {
		return Result{NewCount: len(newJobs), TotalSeen: totalSeen, Err: err}
	}

	p.enrichRecent(ctx)

	qualified := p.deepFilter(ctx, now, newJobs)

	result := Result{
		Success:   true,
		NewCount:  len(newJobs),
		TotalSeen: totalSeen,
	}

	if len(qualified) == 0 {
		p.log.Debug().Int("new", len(newJobs)).Msg("cycle complete, nothing to announce")
		return result
	}

	// The enrichment loops above can take minutes; re-read the clock so the
	// gate reflects the moment of announcement, not the start of the cycle.
	if filter.InQuietHours(p.now(), p.settings) {
		result.Suppressed = len(qualified)
		p.log.Info().Int("suppressed", len(qualified)).Msg("quiet hours, notification suppressed")
		return result
	}

	if p.notifier != nil {
		p.notifier.NewJobs(qualified, p.settings.Sound)
	}
	result.Notified = len(qualified)
	return result
}

// enrichRecent fills missing detail fields for the freshest cache entries.
// Each success commits on its own so a crash mid-loop loses nothing done.
func (p *Poller) enrichRecent(ctx context.Context) {
	recent, err := p.store.Recent(ctx)
	if err != nil {
		p.log.Warn().Err(err).Msg("recent cache unreadable, skipping enrichment")
		return
	}

	enriched := 0
	for _, job := range recent {
		if enriched >= enrichLimit {
			break
		}
		if !job.NeedsEnrichment() || job.URL == "" {
			continue
		}
		enriched++

		detail, err := p.source.Detail(ctx, job.URL)
		if err != nil {
			p.log.Debug().Err(err).Str("id", job.ID).Msg("enrichment fetch failed")
			continue
		}
		job.Enrich(detail)
		if err := p.commitRecent(ctx, []models.Job{job}); err != nil {
			p.log.Warn().Err(err).Str("id", job.ID).Msg("enrichment commit failed")
		}
	}
}

// deepFilter re-evaluates every new candidate against the filters after
// fetching its detail page. Fields like description, hiring rate and client
// age are only available here, so the cheap first pass was necessarily
// partial. Candidates failing this pass stay seen and cached, they are just
// not announced.
func (p *Poller) deepFilter(ctx context.Context, now time.Time, candidates []models.Job) []models.Job {
	var qualified []models.Job
	for _, job := range candidates {
		if job.NeedsEnrichment() && job.URL != "" {
			detail, err := p.source.Detail(ctx, job.URL)
			if err != nil {
				p.log.Debug().Err(err).Str("id", job.ID).Msg("deep-filter fetch failed")
			} else {
				job.Enrich(detail)
				if err := p.commitRecent(ctx, []models.Job{job}); err != nil {
					p.log.Warn().Err(err).Str("id", job.ID).Msg("deep-filter commit failed")
				}
			}
		}
		if filter.Passes(job, p.settings, now) {
			qualified = append(qualified, job)
		} else {
			p.log.Debug().Str("id", job.ID).Msg("dropped by deep filtering")
		}
	}
	return qualified
}

func (p *Poller) commitSeen(ctx context.Context, observed []string) (int, error) {
	current, err := p.store.Seen(ctx)
	if err != nil {
		return 0, err
	}
	merged := mergeSeen(current, observed)
	if err := p.store.SetSeen(ctx, merged); err != nil {
		return 0, err
	}
	return len(merged), nil
}

func (p *Poller) commitRecent(ctx context.Context, upserts []models.Job) error {
	if len(upserts) == 0 {
		return nil
	}
	current, err := p.store.Recent(ctx)
	if err != nil {
		return err
	}
	merged := mergeRecent(current, upserts)
	return p.store.SetRecent(ctx, merged)
}

func (p *Poller) commitStats(ctx context.Context, now time.Time, newCount int) error {
	stats, err := p.store.Stats(ctx)
	if err != nil {
		return err
	}
	stats.RollDay(now)
	stats.LastCheck = now
	stats.TodayCount += newCount
	return p.store.SetStats(ctx, stats)
}

// mergeSeen appends IDs not already in the history, then truncates from the
// oldest end down to the bound.
func mergeSeen(current []string, observed []string) []string {
	known := make(map[string]struct{}, len(current))
	merged := make([]string, 0, len(current)+len(observed))
	for _, id := range current {
		if _, ok := known[id]; ok {
			continue
		}
		known[id] = struct{}{}
		merged = append(merged, id)
	}
	for _, id := range observed {
		if _, ok := known[id]; ok {
			continue
		}
		known[id] = struct{}{}
		merged = append(merged, id)
	}

	if len(merged) > store.MaxSeen {
		merged = merged[len(merged)-store.MaxSeen:]
	}
	return merged
}

// mergeRecent upserts by ID, sorts by numeric ID descending (the best
// recency key available, real publish timestamps are not parseable) and
// truncates to the cache bound.
func mergeRecent(current []models.Job, upserts []models.Job) []models.Job {
	index := make(map[string]int, len(current))
	merged := make([]models.Job, 0, len(current)+len(upserts))
	for _, job := range current {
		index[job.ID] = len(merged)
		merged = append(merged, job)
	}

	for _, job := range upserts {
		if at, ok := index[job.ID]; ok {
			merged[at] = mergeJob(merged[at], job)
			continue
		}
		index[job.ID] = len(merged)
		merged = append(merged, job)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].NumericID() > merged[j].NumericID()
	})
	if len(merged) > store.MaxRecent {
		merged = merged[:store.MaxRecent]
	}
	return merged
}

// mergeJob folds a fresh observation into a stored record: present fields
// fill gaps, established fields are never blanked, and category follows the
// feed that produced the latest observation.
func mergeJob(existing models.Job, incoming models.Job) models.Job {
	out := existing
	out.Enrich(models.Detail{
		Status:           incoming.Status,
		Description:      incoming.Description,
		Communications:   incoming.Communications,
		HiringRate:       incoming.HiringRate,
		Duration:         incoming.Duration,
		Budget:           incoming.Budget,
		RegistrationDate: incoming.RegistrationDate,
	})
	if out.Title == "" {
		out.Title = incoming.Title
	}
	if out.URL == "" {
		out.URL = incoming.URL
	}
	if out.PublishTime == "" {
		out.PublishTime = incoming.PublishTime
	}
	if incoming.Category != "" {
		out.Category = incoming.Category
	}
	return out
}
