package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/frelancia/frelwatch/internal/models"
	"github.com/frelancia/frelwatch/internal/prompt"
	"github.com/frelancia/frelwatch/internal/scraper"
)

type DraftCmd struct {
	Project string `arg:"" help:"Project ID or URL."`
	Prompt  string `help:"Template ID." default:""`
	Proxies string `help:"Comma-separated proxy URLs." env:"FRELWATCH_PROXIES"`
}

func (d *DraftCmd) Run(ctx *Context) error {
	id, target, err := resolveProject(d.Project)
	if err != nil {
		return err
	}

	runCtx := context.Background()
	st, err := ctx.openStore(runCtx)
	if err != nil {
		return err
	}
	if err := prompt.Seed(runCtx, st, time.Now()); err != nil {
		return err
	}
	template, err := prompt.Get(runCtx, st, d.Prompt)
	if err != nil {
		return err
	}

	job := models.Job{ID: id, URL: target}
	if recent, err := st.Recent(runCtx); err == nil {
		for _, cached := range recent {
			if cached.ID == id {
				job = cached
				break
			}
		}
	}

	if job.NeedsEnrichment() {
		source, err := ctx.newSource(d.Proxies)
		if err != nil {
			return err
		}
		detail, err := source.Detail(runCtx, target)
		if err != nil {
			ctx.UI.Warnf("detail fetch failed, drafting from cached fields: %v", err)
		} else {
			job.Enrich(detail)
		}
	}

	_, err = fmt.Fprintln(ctx.Out, prompt.Render(template.Content, job))
	return err
}

// resolveProject accepts a bare posting ID or a full project URL.
func resolveProject(raw string) (id string, target string, err error) {
	raw = strings.TrimSpace(raw)
	if raw != "" && strings.IndexFunc(raw, func(r rune) bool { return r < '0' || r > '9' }) == -1 {
		return raw, scraper.BaseURL + "/project/" + raw, nil
	}
	id = scraper.ProjectID(raw)
	if id == "" {
		return "", "", fmt.Errorf("not a project ID or URL: %s", raw)
	}
	return id, raw, nil
}
