package cmd

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/frelancia/frelwatch/internal/models"
	"github.com/frelancia/frelwatch/internal/notify"
	"github.com/frelancia/frelwatch/internal/scraper"
	"github.com/frelancia/frelwatch/internal/tracker"
)

type TrackCmd struct {
	Add   TrackAddCmd   `cmd:"" help:"Start following a project."`
	Rm    TrackRmCmd    `cmd:"" help:"Stop following a project."`
	Ls    TrackLsCmd    `cmd:"" help:"List followed projects."`
	Check TrackCheckCmd `cmd:"" help:"Check followed projects for changes now."`
}

type TrackAddCmd struct {
	URL     string `arg:"" help:"Project URL."`
	Proxies string `help:"Comma-separated proxy URLs." env:"FRELWATCH_PROXIES"`
}

type TrackRmCmd struct {
	ID string `arg:"" help:"Project ID."`
}

type TrackLsCmd struct{}

type TrackCheckCmd struct {
	Proxies  string `help:"Comma-separated proxy URLs." env:"FRELWATCH_PROXIES"`
	NoNotify bool   `help:"Skip desktop notifications, print changes only."`
}

func (t *TrackAddCmd) Run(ctx *Context) error {
	id := scraper.ProjectID(t.URL)
	if id == "" {
		return fmt.Errorf("not a project URL: %s", t.URL)
	}

	runCtx := context.Background()
	st, err := ctx.openStore(runCtx)
	if err != nil {
		return err
	}

	tracked, err := st.Tracked(runCtx)
	if err != nil {
		return err
	}
	if _, ok := tracked[id]; ok {
		ctx.UI.Infof("already tracking #%s", id)
		return nil
	}

	project := models.TrackedProject{
		ID:          id,
		URL:         t.URL,
		LastChecked: time.Now(),
	}

	// The cache may already hold the title from a listing pass; otherwise a
	// detail fetch seeds the change baseline.
	if recent, err := st.Recent(runCtx); err == nil {
		for _, job := range recent {
			if job.ID == id {
				project.Title = job.Title
				project.Status = job.Status
				project.Communications = job.Communications
				break
			}
		}
	}
	if project.Status == "" || project.Communications == "" {
		source, err := ctx.newSource(t.Proxies)
		if err != nil {
			return err
		}
		if detail, err := source.Detail(runCtx, t.URL); err != nil {
			ctx.UI.Warnf("baseline fetch failed, first check will report everything: %v", err)
		} else {
			if project.Status == "" {
				project.Status = detail.Status
			}
			if project.Communications == "" {
				project.Communications = detail.Communications
			}
		}
	}
	if project.Title == "" {
		project.Title = "مشروع #" + id
	}

	tracked[id] = project
	if err := st.SetTracked(runCtx, tracked); err != nil {
		return err
	}
	ctx.UI.Successf("tracking #%s (%s)", id, project.Title)
	return nil
}

func (t *TrackRmCmd) Run(ctx *Context) error {
	runCtx := context.Background()
	st, err := ctx.openStore(runCtx)
	if err != nil {
		return err
	}

	tracked, err := st.Tracked(runCtx)
	if err != nil {
		return err
	}
	if _, ok := tracked[t.ID]; !ok {
		return fmt.Errorf("not tracking #%s", t.ID)
	}
	delete(tracked, t.ID)
	if err := st.SetTracked(runCtx, tracked); err != nil {
		return err
	}
	ctx.UI.Successf("stopped tracking #%s", t.ID)
	return nil
}

func (t *TrackLsCmd) Run(ctx *Context) error {
	runCtx := context.Background()
	st, err := ctx.openStore(runCtx)
	if err != nil {
		return err
	}
	tracked, err := st.Tracked(runCtx)
	if err != nil {
		return err
	}
	if len(tracked) == 0 {
		ctx.UI.Infof("no tracked projects")
		return nil
	}

	ids := make([]string, 0, len(tracked))
	for id := range tracked {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	tw := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "id\ttitle\tstatus\tcommunications\tlast_checked")
	for _, id := range ids {
		p := tracked[id]
		checked := "-"
		if !p.LastChecked.IsZero() {
			checked = p.LastChecked.Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Title, p.Status, p.Communications, checked)
	}
	return tw.Flush()
}

func (t *TrackCheckCmd) Run(ctx *Context) error {
	runCtx := context.Background()
	st, err := ctx.openStore(runCtx)
	if err != nil {
		return err
	}
	source, err := ctx.newSource(t.Proxies)
	if err != nil {
		return err
	}

	var notifier tracker.Notifier
	if !t.NoNotify {
		notifier = notify.NewDesktop(ctx.Logger)
	}

	changes, err := tracker.New(st, source, notifier, ctx.Settings.Sound, ctx.Logger).Run(runCtx)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		ctx.UI.Infof("no changes")
		return nil
	}
	for _, change := range changes {
		ctx.UI.Successf("%s (#%s)", change.Project.Title, change.Project.ID)
		for _, line := range change.Lines {
			fmt.Fprintf(ctx.Out, "  %s\n", line)
		}
	}
	return nil
}
