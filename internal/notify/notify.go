// Package notify delivers desktop notifications and alert sounds for new
// and tracked postings.
package notify

import (
	"fmt"
	"strings"

	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog"

	"github.com/frelancia/frelwatch/internal/models"
)

// bodyLimit bounds the description preview inside a notification bubble.
// Counted in runes, the text is Arabic.
const bodyLimit = 150

const appName = "frelwatch"

// Desktop sends OS notifications through the system tray and beeps through
// the default audio device. Delivery failures are logged, never returned:
// a broken notification daemon must not fail a poll cycle.
type Desktop struct {
	log zerolog.Logger
}

func NewDesktop(log zerolog.Logger) *Desktop {
	return &Desktop{log: log}
}

// NewJobs announces qualifying postings: a rich single-job bubble, or a
// summary when several arrive in one cycle.
func (d *Desktop) NewJobs(jobs []models.Job, sound bool) {
	if len(jobs) == 0 {
		return
	}

	var title, body string
	if len(jobs) == 1 {
		job := jobs[0]
		title = "مشروع جديد: " + job.Title
		body = newJobBody(job)
	} else {
		title = fmt.Sprintf("%d مشاريع جديدة على مستقل", len(jobs))
		body = summaryBody(jobs)
	}

	if err := beeep.Notify(appName+" — "+title, body, ""); err != nil {
		d.log.Warn().Err(err).Msg("desktop notification failed")
	}
	if sound {
		d.beep(800, 1000)
	}
}

// TrackedChange announces a transition on a pinned project. The distinct
// beep pattern tells it apart from a new-job alert without looking.
func (d *Desktop) TrackedChange(project models.TrackedProject, changes []string, sound bool) {
	title := "تحديث على مشروع متابع"
	body := Truncate(project.Title, bodyLimit) + "\n" + strings.Join(changes, "\n") + "\n" + project.URL

	if err := beeep.Notify(appName+" — "+title, body, ""); err != nil {
		d.log.Warn().Err(err).Msg("desktop notification failed")
	}
	if sound {
		d.beep(1200, 1200, 1500)
	}
}

func (d *Desktop) beep(freqs ...float64) {
	for _, freq := range freqs {
		if err := beeep.Beep(freq, 150); err != nil {
			d.log.Debug().Err(err).Msg("beep failed")
			return
		}
	}
}

func newJobBody(job models.Job) string {
	var parts []string
	if job.Budget != "" && job.Budget != models.Unspecified {
		parts = append(parts, "الميزانية: "+job.Budget)
	}
	if job.Description != "" {
		parts = append(parts, Truncate(job.Description, bodyLimit))
	}
	parts = append(parts, job.URL)
	return strings.Join(parts, "\n")
}

func summaryBody(jobs []models.Job) string {
	shown := jobs
	if len(shown) > 3 {
		shown = shown[:3]
	}
	var lines []string
	for _, job := range shown {
		lines = append(lines, "• "+Truncate(job.Title, 60))
	}
	if rest := len(jobs) - len(shown); rest > 0 {
		lines = append(lines, fmt.Sprintf("و%d مشاريع أخرى", rest))
	}
	return strings.Join(lines, "\n")
}

// Truncate shortens s to at most limit runes, appending an ellipsis when
// anything was cut.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
