package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/frelancia/frelwatch/internal/config"
	"github.com/frelancia/frelwatch/internal/models"
	"github.com/frelancia/frelwatch/internal/scraper"
	"github.com/frelancia/frelwatch/internal/store"
	"github.com/frelancia/frelwatch/internal/ui"
)

type fakeSource struct {
	listings map[string][]models.Job
	details  map[string]models.Detail
}

func (f *fakeSource) Listing(_ context.Context, category scraper.Category) ([]models.Job, error) {
	return f.listings[category.Name], nil
}

func (f *fakeSource) Detail(_ context.Context, url string) (models.Detail, error) {
	return f.details[url], nil
}

func newTestContext(st store.Store, source Source) (*Context, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return &Context{
		Out:      &out,
		Err:      &errOut,
		UI:       ui.New(&out, &errOut, ui.ColorNever, true),
		Settings: config.DefaultSettings(),
		Logger:   zerolog.Nop(),
		Store:    st,
		Source:   source,
	}, &out, &errOut
}

func TestCheckCmdReportsCycle(t *testing.T) {
	st := store.NewMemStore()
	source := &fakeSource{listings: map[string][]models.Job{
		"development": {{ID: "1001", Title: "تطوير موقع", URL: "https://mostaql.com/project/1001"}},
	}}
	ctx, out, _ := newTestContext(st, source)

	check := &CheckCmd{NoNotify: true}
	if err := check.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "new=1") {
		t.Fatalf("summary missing new count: %q", out.String())
	}

	seen, _ := st.Seen(context.Background())
	if len(seen) != 1 {
		t.Fatalf("check did not commit seen history: %v", seen)
	}
}

func TestTrackAddLsRm(t *testing.T) {
	st := store.NewMemStore()
	source := &fakeSource{details: map[string]models.Detail{
		"https://mostaql.com/project/2002": {Status: "مفتوح", Communications: "3"},
	}}
	ctx, out, _ := newTestContext(st, source)

	add := &TrackAddCmd{URL: "https://mostaql.com/project/2002"}
	if err := add.Run(ctx); err != nil {
		t.Fatal(err)
	}

	tracked, _ := st.Tracked(context.Background())
	project, ok := tracked["2002"]
	if !ok {
		t.Fatalf("project not tracked: %v", tracked)
	}
	if project.Status != "مفتوح" || project.Communications != "3" {
		t.Fatalf("baseline not seeded from detail fetch: %+v", project)
	}

	out.Reset()
	if err := (&TrackLsCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "2002") {
		t.Fatalf("ls output missing tracked id: %q", out.String())
	}

	if err := (&TrackRmCmd{ID: "2002"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	tracked, _ = st.Tracked(context.Background())
	if len(tracked) != 0 {
		t.Fatalf("rm left the project tracked: %v", tracked)
	}

	if err := (&TrackRmCmd{ID: "2002"}).Run(ctx); err == nil {
		t.Fatalf("removing an untracked id should error")
	}
}

func TestTrackAddRejectsNonProjectURL(t *testing.T) {
	ctx, _, _ := newTestContext(store.NewMemStore(), &fakeSource{})
	add := &TrackAddCmd{URL: "https://mostaql.com/projects?sort=latest"}
	if err := add.Run(ctx); err == nil {
		t.Fatalf("listing URL should be rejected")
	}
}

func TestHistoryClearRequiresYes(t *testing.T) {
	st := store.NewMemStore()
	if err := st.SetSeen(context.Background(), []string{"1", "2"}); err != nil {
		t.Fatal(err)
	}
	ctx, _, _ := newTestContext(st, &fakeSource{})

	if err := (&HistoryClearCmd{}).Run(ctx); err == nil {
		t.Fatalf("clear without --yes should error")
	}
	seen, _ := st.Seen(context.Background())
	if len(seen) != 2 {
		t.Fatalf("history cleared without confirmation: %v", seen)
	}

	if err := (&HistoryClearCmd{Yes: true}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	seen, _ = st.Seen(context.Background())
	if len(seen) != 0 {
		t.Fatalf("history not cleared: %v", seen)
	}
}

func TestDraftRendersTemplate(t *testing.T) {
	st := store.NewMemStore()
	source := &fakeSource{details: map[string]models.Detail{
		"https://mostaql.com/project/3003": {
			Description: "متجر إلكتروني متكامل",
			HiringRate:  "80%",
		},
	}}
	if err := st.SetRecent(context.Background(), []models.Job{{
		ID:     "3003",
		Title:  "تطوير متجر",
		URL:    "https://mostaql.com/project/3003",
		Budget: "$500 - $1,000",
	}}); err != nil {
		t.Fatal(err)
	}
	ctx, out, _ := newTestContext(st, source)

	draft := &DraftCmd{Project: "https://mostaql.com/project/3003"}
	if err := draft.Run(ctx); err != nil {
		t.Fatal(err)
	}

	rendered := out.String()
	if !strings.Contains(rendered, "تطوير متجر") {
		t.Fatalf("draft missing title: %q", rendered)
	}
	if !strings.Contains(rendered, "https://mostaql.com/project/3003") {
		t.Fatalf("draft missing url: %q", rendered)
	}
	if !strings.Contains(rendered, "متجر إلكتروني متكامل") {
		t.Fatalf("draft missing enriched description: %q", rendered)
	}
}

func TestResolveProject(t *testing.T) {
	id, target, err := resolveProject("1001")
	if err != nil || id != "1001" || !strings.HasSuffix(target, "/project/1001") {
		t.Fatalf("bare id: %q %q %v", id, target, err)
	}

	id, target, err = resolveProject("https://mostaql.com/project/987654?src=listing")
	if err != nil || id != "987654" || !strings.Contains(target, "987654") {
		t.Fatalf("url: %q %q %v", id, target, err)
	}

	if _, _, err := resolveProject("https://mostaql.com/projects?sort=latest"); err == nil {
		t.Fatalf("listing url should be rejected")
	}
}

func TestRecentCmdLimit(t *testing.T) {
	st := store.NewMemStore()
	if err := st.SetRecent(context.Background(), []models.Job{
		{ID: "3", Title: "ج"}, {ID: "2", Title: "ب"}, {ID: "1", Title: "أ"},
	}); err != nil {
		t.Fatal(err)
	}
	ctx, out, _ := newTestContext(st, &fakeSource{})
	ctx.JSONOutput = true

	recent := &RecentCmd{Limit: 2}
	if err := recent.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.String(), `"id": "1"`) {
		t.Fatalf("limit not applied: %q", out.String())
	}
}
