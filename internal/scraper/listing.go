package scraper

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/frelancia/frelwatch/internal/models"
)

var projectIDPattern = regexp.MustCompile(`/project/(\d+)`)

// ProjectID extracts the stable posting ID from a project URL or href.
// Returns "" when the URL does not point at a project page.
func ProjectID(href string) string {
	match := projectIDPattern.FindStringSubmatch(href)
	if match == nil {
		return ""
	}
	return match[1]
}

// ParseListing extracts candidate jobs from a listing page. The markup has
// shipped in several shapes, so three strategies run in order: table rows,
// project cards, then any bare project link with a plausible title. Records
// are deduplicated by ID across strategies.
func ParseListing(doc *goquery.Document) []models.Job {
	var jobs []models.Job
	seen := map[string]struct{}{}

	add := func(job models.Job) {
		if job.ID == "" {
			return
		}
		if _, ok := seen[job.ID]; ok {
			return
		}
		seen[job.ID] = struct{}{}
		jobs = append(jobs, job)
	}

	// Table rows (classic view).
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		link := row.Find("a[href*='/project/']").First()
		if link.Length() == 0 {
			return
		}
		href := link.AttrOr("href", "")
		id := ProjectID(href)
		if id == "" {
			return
		}

		budget := cleanText(row.Find("td:nth-child(4), [class*='budget']").First().Text())
		if budget == "" {
			budget = models.Unspecified
		}

		add(models.Job{
			ID:          id,
			Title:       cleanText(link.Text()),
			URL:         absoluteURL(BaseURL, href),
			Budget:      budget,
			PublishTime: cleanText(row.Find(".timeSince, [class*='date']").First().Text()),
		})
	})

	// Cards (grid view).
	doc.Find(".card, .project-card, div[class*='project']").Each(func(_ int, card *goquery.Selection) {
		link := card.Find("a[href*='/project/']").First()
		if link.Length() == 0 {
			return
		}
		href := link.AttrOr("href", "")
		id := ProjectID(href)
		if id == "" {
			return
		}

		add(models.Job{
			ID:          id,
			Title:       cleanText(link.Text()),
			URL:         absoluteURL(BaseURL, href),
			Budget:      models.Unspecified,
			PublishTime: cleanText(card.Find(".timeSince, [class*='date']").First().Text()),
		})
	})

	// Last resort: any project link whose text is long enough to be a title
	// rather than an icon or a "details" stub.
	if len(jobs) == 0 {
		doc.Find("a[href*='/project/']").Each(func(_ int, link *goquery.Selection) {
			href := link.AttrOr("href", "")
			id := ProjectID(href)
			if id == "" {
				return
			}
			title := cleanText(link.Text())
			if len([]rune(title)) <= 5 {
				return
			}
			add(models.Job{
				ID:    id,
				Title: title,
				URL:   absoluteURL(BaseURL, href),
			})
		})
	}

	return jobs
}
