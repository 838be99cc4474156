package poller

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/frelancia/frelwatch/internal/config"
	"github.com/frelancia/frelwatch/internal/models"
	"github.com/frelancia/frelwatch/internal/scraper"
	"github.com/frelancia/frelwatch/internal/store"
)

type fakeSource struct {
	listings    map[string][]models.Job
	listErr     map[string]error
	details     map[string]models.Detail
	detailErr   error
	detailCalls []string
}

func (f *fakeSource) Listing(_ context.Context, category scraper.Category) ([]models.Job, error) {
	if err := f.listErr[category.Name]; err != nil {
		return nil, err
	}
	return f.listings[category.Name], nil
}

func (f *fakeSource) Detail(_ context.Context, url string) (models.Detail, error) {
	f.detailCalls = append(f.detailCalls, url)
	if f.detailErr != nil {
		return models.Detail{}, f.detailErr
	}
	return f.details[url], nil
}

type fakeNotifier struct {
	calls [][]models.Job
	sound bool
}

func (f *fakeNotifier) NewJobs(jobs []models.Job, sound bool) {
	f.calls = append(f.calls, jobs)
	f.sound = sound
}

var testTime = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestPoller(st store.Store, src Source, n Notifier, settings config.Settings) *Poller {
	p := New(st, src, n, settings, zerolog.Nop())
	p.now = func() time.Time { return testTime }
	p.categories = []scraper.Category{{Name: "development", URL: "https://example.test/dev"}}
	return p
}

func job(id string, title string) models.Job {
	return models.Job{
		ID:    id,
		Title: title,
		URL:   "https://mostaql.com/project/" + id,
	}
}

func TestRunAnnouncesOnlyUnseen(t *testing.T) {
	st := store.NewMemStore()
	notifier := &fakeNotifier{}
	src := &fakeSource{listings: map[string][]models.Job{
		"development": {job("101", "مشروع أ"), job("102", "مشروع ب")},
	}}
	settings := config.DefaultSettings()
	p := newTestPoller(st, src, notifier, settings)

	result := p.Run(context.Background())
	if result.Err != nil || !result.Success {
		t.Fatalf("first cycle failed: %+v", result)
	}
	if result.NewCount != 2 || result.Notified != 2 {
		t.Fatalf("first cycle: %+v", result)
	}
	if !notifier.sound {
		t.Fatalf("sound flag not forwarded")
	}

	// Second cycle: one posting rolls off, one appears.
	src.listings["development"] = []models.Job{job("102", "مشروع ب"), job("103", "مشروع ج")}
	result = p.Run(context.Background())
	if result.NewCount != 1 {
		t.Fatalf("second cycle new count: %+v", result)
	}
	if len(notifier.calls) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifier.calls))
	}
	if got := notifier.calls[1]; len(got) != 1 || got[0].ID != "103" {
		t.Fatalf("second notification should carry only the unseen job: %+v", got)
	}

	seen, _ := st.Seen(context.Background())
	if len(seen) != 3 {
		t.Fatalf("seen history should hold 3 ids, got %d", len(seen))
	}
	stats, _ := st.Stats(context.Background())
	if stats.TodayCount != 3 {
		t.Fatalf("today count should accumulate across cycles, got %d", stats.TodayCount)
	}
	if !stats.LastCheck.Equal(testTime) {
		t.Fatalf("last check not stamped: %v", stats.LastCheck)
	}
}

// Three candidates in one cycle: one already seen, one whose budget only
// becomes readable (and disqualifying) after enrichment, one qualifying.
// Checks the composite outcome across seen history, cache and notification.
func TestRunThreeCandidateCycle(t *testing.T) {
	st := store.NewMemStore()
	if err := st.SetSeen(context.Background(), []string{"100"}); err != nil {
		t.Fatal(err)
	}

	a := job("100", "مشروع سبق رصده")
	b := job("101", "مشروع بميزانية منخفضة")
	b.Budget = models.Unspecified
	c := job("102", "مشروع مؤهل")
	c.Budget = "$500 - $1,000"

	src := &fakeSource{
		listings: map[string][]models.Job{"development": {a, b, c}},
		details: map[string]models.Detail{
			b.URL: {Budget: "$50 - $80", Description: "وصف ب", HiringRate: "80%"},
			c.URL: {Description: "وصف ج", HiringRate: "90%"},
		},
	}
	notifier := &fakeNotifier{}
	settings := config.DefaultSettings()
	settings.MinBudget = 100
	p := newTestPoller(st, src, notifier, settings)

	result := p.Run(context.Background())
	if result.Err != nil {
		t.Fatalf("cycle failed: %v", result.Err)
	}
	// B's budget is unreadable at list view, so both B and C survive the
	// cheap pass as new.
	if result.NewCount != 2 {
		t.Fatalf("expected 2 new candidates, got %+v", result)
	}

	seen, _ := st.Seen(context.Background())
	if len(seen) != 3 {
		t.Fatalf("seen history should hold all three ids: %v", seen)
	}
	for i, want := range []string{"100", "101", "102"} {
		if seen[i] != want {
			t.Fatalf("seen order: %v", seen)
		}
	}

	if len(notifier.calls) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(notifier.calls))
	}
	if got := notifier.calls[0]; len(got) != 1 || got[0].ID != "102" {
		t.Fatalf("only the qualifying candidate should be announced: %+v", got)
	}

	recent, _ := st.Recent(context.Background())
	byID := map[string]models.Job{}
	for _, j := range recent {
		byID[j.ID] = j
	}
	if _, ok := byID["101"]; !ok {
		t.Fatalf("deep-filtered candidate should stay cached: %v", recent)
	}
	if _, ok := byID["102"]; !ok {
		t.Fatalf("qualifying candidate should be cached: %v", recent)
	}
	if byID["101"].Budget != "$50 - $80" {
		t.Fatalf("enriched budget not committed: %+v", byID["101"])
	}
}

func TestFilteredJobStillMarkedSeen(t *testing.T) {
	st := store.NewMemStore()
	notifier := &fakeNotifier{}
	src := &fakeSource{listings: map[string][]models.Job{
		"development": {job("201", "مطلوب تصميم شعار")},
	}}
	settings := config.DefaultSettings()
	settings.KeywordsExclude = "شعار"
	p := newTestPoller(st, src, notifier, settings)

	result := p.Run(context.Background())
	if result.NewCount != 0 || len(notifier.calls) != 0 {
		t.Fatalf("excluded job must not be announced: %+v", result)
	}

	seen, _ := st.Seen(context.Background())
	if len(seen) != 1 || seen[0] != "201" {
		t.Fatalf("excluded job must still enter seen history: %v", seen)
	}

	// A later cycle with the same posting stays silent.
	if result := p.Run(context.Background()); result.NewCount != 0 {
		t.Fatalf("filtered posting re-surfaced as new: %+v", result)
	}
}

func TestDeepFilterRejectsAfterEnrichment(t *testing.T) {
	st := store.NewMemStore()
	notifier := &fakeNotifier{}
	candidate := job("301", "تطوير متجر إلكتروني")
	src := &fakeSource{
		listings: map[string][]models.Job{"development": {candidate}},
		details: map[string]models.Detail{
			candidate.URL: {Description: "وصف المشروع", HiringRate: "10%"},
		},
	}
	settings := config.DefaultSettings()
	settings.MinHiringRate = 50
	p := newTestPoller(st, src, notifier, settings)

	result := p.Run(context.Background())
	if result.Err != nil {
		t.Fatalf("cycle failed: %v", result.Err)
	}
	// Listing rows carry no hiring rate, so the cheap pass lets it through.
	if result.NewCount != 1 {
		t.Fatalf("candidate should survive the cheap pass: %+v", result)
	}
	if len(notifier.calls) != 0 {
		t.Fatalf("low hiring rate must be dropped by deep filtering")
	}

	// The enriched record still lands in the cache.
	recent, _ := st.Recent(context.Background())
	if len(recent) != 1 || recent[0].HiringRate != "10%" {
		t.Fatalf("enrichment not committed: %+v", recent)
	}
}

func TestQuietHoursSuppression(t *testing.T) {
	st := store.NewMemStore()
	notifier := &fakeNotifier{}
	src := &fakeSource{listings: map[string][]models.Job{
		"development": {job("401", "مشروع ليلي")},
	}}
	settings := config.DefaultSettings()
	settings.QuietHoursEnabled = true
	settings.QuietHoursStart = "23:00"
	settings.QuietHoursEnd = "07:00"
	p := newTestPoller(st, src, notifier, settings)
	p.now = func() time.Time {
		return time.Date(2024, 3, 15, 23, 30, 0, 0, time.UTC)
	}

	result := p.Run(context.Background())
	if result.Suppressed != 1 || result.Notified != 0 {
		t.Fatalf("expected suppression: %+v", result)
	}
	if len(notifier.calls) != 0 {
		t.Fatalf("notifier called during quiet hours")
	}

	// State advances even when the announcement is suppressed.
	seen, _ := st.Seen(context.Background())
	if len(seen) != 1 {
		t.Fatalf("quiet hours must not block the seen commit: %v", seen)
	}
	stats, _ := st.Stats(context.Background())
	if stats.TodayCount != 1 {
		t.Fatalf("quiet hours must not block the stats commit: %+v", stats)
	}
}

func TestQuietHoursGateUsesFreshClock(t *testing.T) {
	st := store.NewMemStore()
	notifier := &fakeNotifier{}
	src := &fakeSource{listings: map[string][]models.Job{
		"development": {job("402", "مشروع قبيل منتصف الليل")},
	}}
	settings := config.DefaultSettings()
	settings.QuietHoursEnabled = true
	settings.QuietHoursStart = "23:00"
	settings.QuietHoursEnd = "07:00"
	p := newTestPoller(st, src, notifier, settings)

	// The cycle starts before the window opens, but enrichment drags it past
	// 23:00. The gate must see the later clock.
	times := []time.Time{
		time.Date(2024, 3, 15, 22, 58, 0, 0, time.UTC),
		time.Date(2024, 3, 15, 23, 5, 0, 0, time.UTC),
	}
	calls := 0
	p.now = func() time.Time {
		at := times[min(calls, len(times)-1)]
		calls++
		return at
	}

	result := p.Run(context.Background())
	if result.Suppressed != 1 || len(notifier.calls) != 0 {
		t.Fatalf("gate evaluated against the stale cycle-start clock: %+v", result)
	}
}

func TestDailyCounterReset(t *testing.T) {
	st := store.NewMemStore()
	if err := st.SetStats(context.Background(), models.Stats{
		TodayCount: 42,
		TodayDate:  "2024-03-14",
	}); err != nil {
		t.Fatal(err)
	}

	src := &fakeSource{listings: map[string][]models.Job{
		"development": {job("501", "مشروع جديد")},
	}}
	p := newTestPoller(st, src, &fakeNotifier{}, config.DefaultSettings())

	p.Run(context.Background())

	stats, _ := st.Stats(context.Background())
	if stats.TodayCount != 1 {
		t.Fatalf("yesterday's counter not reset: %+v", stats)
	}
	if stats.TodayDate != "2024-03-15" {
		t.Fatalf("day key not rolled: %q", stats.TodayDate)
	}

	// Same-day cycle accumulates instead of resetting.
	src.listings["development"] = []models.Job{job("502", "مشروع آخر")}
	p.Run(context.Background())
	stats, _ = st.Stats(context.Background())
	if stats.TodayCount != 2 {
		t.Fatalf("same-day counter should accumulate: %+v", stats)
	}
}

func TestListingErrorSkipsCategory(t *testing.T) {
	st := store.NewMemStore()
	notifier := &fakeNotifier{}
	src := &fakeSource{
		listings: map[string][]models.Job{"all": {job("601", "مشروع من الخلاصة العامة")}},
		listErr:  map[string]error{"development": errors.New("boom")},
	}
	p := newTestPoller(st, src, notifier, config.DefaultSettings())
	p.categories = []scraper.Category{
		{Name: "development", URL: "dev"},
		{Name: "all", URL: "all"},
	}

	result := p.Run(context.Background())
	if result.Err != nil || result.NewCount != 1 {
		t.Fatalf("healthy category should still run: %+v", result)
	}
}

func TestStoreFailureFailsCycle(t *testing.T) {
	st := store.NewMemStore()
	st.Err = errors.New("store down")
	src := &fakeSource{}
	p := newTestPoller(st, src, &fakeNotifier{}, config.DefaultSettings())

	result := p.Run(context.Background())
	if result.Err == nil || result.Success {
		t.Fatalf("unreadable store must fail the cycle: %+v", result)
	}
}

func TestEnrichmentPassIsBounded(t *testing.T) {
	st := store.NewMemStore()
	var recent []models.Job
	details := map[string]models.Detail{}
	for i := 0; i < 15; i++ {
		j := job(fmt.Sprintf("7%02d", i), "مشروع بلا تفاصيل")
		recent = append(recent, j)
		details[j.URL] = models.Detail{Description: "وصف", HiringRate: "80%"}
	}
	if err := st.SetRecent(context.Background(), recent); err != nil {
		t.Fatal(err)
	}

	src := &fakeSource{listings: map[string][]models.Job{}, details: details}
	p := newTestPoller(st, src, &fakeNotifier{}, config.DefaultSettings())

	p.Run(context.Background())

	if len(src.detailCalls) != enrichLimit {
		t.Fatalf("expected %d detail fetches, got %d", enrichLimit, len(src.detailCalls))
	}

	got, _ := st.Recent(context.Background())
	enriched := 0
	for _, j := range got {
		if j.Description != "" {
			enriched++
		}
	}
	if enriched != enrichLimit {
		t.Fatalf("expected %d enriched records, got %d", enrichLimit, enriched)
	}
}

func TestMergeSeenBound(t *testing.T) {
	var observed []string
	for i := 0; i < 600; i++ {
		observed = append(observed, fmt.Sprintf("%d", i))
	}

	merged := mergeSeen(nil, observed)
	if len(merged) != store.MaxSeen {
		t.Fatalf("expected %d ids, got %d", store.MaxSeen, len(merged))
	}
	// Oldest 100 fall off the front, the rest keep arrival order.
	if merged[0] != "100" || merged[len(merged)-1] != "599" {
		t.Fatalf("FIFO truncation wrong: first=%q last=%q", merged[0], merged[len(merged)-1])
	}
}

func TestMergeSeenPreservesOrderAndDedupes(t *testing.T) {
	merged := mergeSeen([]string{"1", "2", "3"}, []string{"3", "4", "2", "5"})
	want := []string{"1", "2", "3", "4", "5"}
	if len(merged) != len(want) {
		t.Fatalf("got %v", merged)
	}
	for i := range want {
		if merged[i] != want[i] {
			t.Fatalf("got %v, want %v", merged, want)
		}
	}
}

func TestMergeRecentSortedAndBounded(t *testing.T) {
	var upserts []models.Job
	for i := 0; i < 60; i++ {
		upserts = append(upserts, job(fmt.Sprintf("%d", 1000+i), "مشروع"))
	}

	merged := mergeRecent(nil, upserts)
	if len(merged) != store.MaxRecent {
		t.Fatalf("expected %d entries, got %d", store.MaxRecent, len(merged))
	}
	if merged[0].ID != "1059" {
		t.Fatalf("newest posting should sort first, got %q", merged[0].ID)
	}
	for i := 1; i < len(merged); i++ {
		if merged[i].NumericID() > merged[i-1].NumericID() {
			t.Fatalf("cache not sorted descending at %d", i)
		}
	}
	// The oldest ten postings fall off the tail.
	if merged[len(merged)-1].ID != "1010" {
		t.Fatalf("tail truncation wrong: %q", merged[len(merged)-1].ID)
	}
}

func TestMergeRecentUpsertKeepsEnrichment(t *testing.T) {
	existing := job("801", "مشروع قائم")
	existing.Description = "وصف محفوظ"
	existing.HiringRate = "70%"
	existing.Category = "development"

	fresh := job("801", "مشروع قائم")
	fresh.Budget = "$500"
	fresh.Category = "all"

	merged := mergeRecent([]models.Job{existing}, []models.Job{fresh})
	if len(merged) != 1 {
		t.Fatalf("upsert duplicated the record: %d", len(merged))
	}
	got := merged[0]
	if got.Description != "وصف محفوظ" || got.HiringRate != "70%" {
		t.Fatalf("enrichment lost on upsert: %+v", got)
	}
	if got.Budget != "$500" {
		t.Fatalf("fresh field not folded in: %+v", got)
	}
	if got.Category != "all" {
		t.Fatalf("category should follow the latest observation: %q", got.Category)
	}
}

func TestOverlappingCyclesConverge(t *testing.T) {
	st := store.NewMemStore()
	settings := config.DefaultSettings()

	first := newTestPoller(st, &fakeSource{listings: map[string][]models.Job{
		"development": {job("901", "أ"), job("902", "ب")},
	}}, &fakeNotifier{}, settings)
	second := newTestPoller(st, &fakeSource{listings: map[string][]models.Job{
		"development": {job("902", "ب"), job("903", "ج")},
	}}, &fakeNotifier{}, settings)

	// Both cycles loaded an empty snapshot; commit-time merging keeps the
	// union regardless of ordering.
	first.Run(context.Background())
	second.Run(context.Background())

	seen, _ := st.Seen(context.Background())
	if len(seen) != 3 {
		t.Fatalf("overlapping cycles lost ids: %v", seen)
	}
	recent, _ := st.Recent(context.Background())
	if len(recent) != 3 {
		t.Fatalf("overlapping cycles lost cache entries: %d", len(recent))
	}
}
