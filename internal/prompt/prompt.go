// Package prompt manages proposal templates and renders them against a
// posting for the draft command.
package prompt

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/frelancia/frelwatch/internal/models"
	"github.com/frelancia/frelwatch/internal/parse"
	"github.com/frelancia/frelwatch/internal/store"
)

// ErrNotFound is returned when no template matches the requested ID.
var ErrNotFound = errors.New("prompt: template not found")

// DefaultID names the template seeded on first use.
const DefaultID = "default"

const defaultContent = `السلام عليكم،

قرأت تفاصيل مشروعكم "{title}" باهتمام، ولدي خبرة عملية في تنفيذ مشاريع مشابهة.

{description}

يمكنني إنجاز المشروع ضمن الميزانية المحددة ({budget}) وخلال المدة المطلوبة ({duration})، مع تسليم مراحل واضحة وتواصل مستمر.

رابط المشروع: {url}

بانتظار ردكم،`

// Render substitutes the posting's fields into the template placeholders.
// Unknown placeholders pass through untouched so a typo is visible in the
// output rather than silently dropped.
func Render(template string, job models.Job) string {
	budget := job.Budget
	if budget == "" {
		budget = models.Unspecified
	}
	duration := job.Duration
	if duration == "" {
		duration = models.Unspecified
	}

	// The suggested bid is the bottom of the budget range: the lowest offer
	// the client already declared acceptable.
	bid := models.Unspecified
	if floor := parse.BudgetFloor(job.Budget); floor > 0 {
		bid = "$" + strconv.FormatFloat(floor, 'f', -1, 64)
	}

	return strings.NewReplacer(
		"{title}", job.Title,
		"{description}", job.Description,
		"{budget}", budget,
		"{duration}", duration,
		"{url}", job.URL,
		"{status}", job.Status,
		"{hiring_rate}", job.HiringRate,
		"{suggested_bid}", bid,
	).Replace(template)
}

// Seed writes the default template if the store holds no prompts yet.
func Seed(ctx context.Context, st store.Store, now time.Time) error {
	prompts, err := st.Prompts(ctx)
	if err != nil {
		return err
	}
	if len(prompts) > 0 {
		return nil
	}
	return st.SetPrompts(ctx, []models.Prompt{{
		ID:        DefaultID,
		Title:     "عرض عام",
		Content:   defaultContent,
		CreatedAt: now,
	}})
}

// Get returns the template with the given ID, or the default one when id
// is empty.
func Get(ctx context.Context, st store.Store, id string) (models.Prompt, error) {
	if id == "" {
		id = DefaultID
	}
	prompts, err := st.Prompts(ctx)
	if err != nil {
		return models.Prompt{}, err
	}
	for _, p := range prompts {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Prompt{}, ErrNotFound
}
