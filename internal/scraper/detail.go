package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/frelancia/frelwatch/internal/models"
)

const statusSelector = ".label-prj-open, .label-prj-closed, .label-prj-completed, " +
	".label-prj-cancelled, .label-prj-underway, .label-prj-processing"

// Meta-row labels on the project page. The site renders labels in Arabic
// regardless of the visitor's locale.
const (
	labelCommunications = "التواصلات الجارية"
	labelHiringRate     = "معدل التوظيف"
	labelDuration       = "مدة التنفيذ"
	labelBudget         = "الميزانية"
	labelRegistration   = "تاريخ التسجيل"
)

// ParseDetail extracts the enrichment fields from a project detail page.
// The second return is false when the page carries nothing recognizable,
// e.g. an error page or a redesign this parser does not know.
func ParseDetail(doc *goquery.Document) (models.Detail, bool) {
	var detail models.Detail
	found := false

	if status := cleanText(doc.Find(statusSelector).First().Text()); status != "" {
		detail.Status = status
		found = true
	}

	if description := strings.TrimSpace(doc.Find(".project-post__body").First().Text()); description != "" {
		detail.Description = description
		found = true
	}

	doc.Find(".meta-row, .table-meta tr").Each(func(_ int, row *goquery.Selection) {
		value := cleanText(row.Find(".meta-value, td:last-child").First().Text())
		if value == "" {
			return
		}

		label := row.Text()
		switch {
		case strings.Contains(label, labelCommunications):
			detail.Communications = value
			found = true
		case strings.Contains(label, labelHiringRate):
			detail.HiringRate = value
			found = true
		case strings.Contains(label, labelDuration):
			detail.Duration = value
			found = true
		case strings.Contains(label, labelBudget):
			detail.Budget = value
			found = true
		case strings.Contains(label, labelRegistration):
			detail.RegistrationDate = value
			found = true
		}
	})

	return detail, found
}
