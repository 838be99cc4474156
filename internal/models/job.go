package models

import "strconv"

// Unspecified is the marketplace's placeholder for a missing budget/duration.
const Unspecified = "غير محدد"

// Job is one marketplace posting, normalized from a listing row or card.
// List-view fetches populate the cheap fields; Description, HiringRate and
// the client fields arrive later through detail-page enrichment.
type Job struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	URL              string `json:"url"`
	Budget           string `json:"budget,omitempty"`
	Duration         string `json:"duration,omitempty"`
	PublishTime      string `json:"publish_time,omitempty"`
	Description      string `json:"description,omitempty"`
	HiringRate       string `json:"hiring_rate,omitempty"`
	Status           string `json:"status,omitempty"`
	Communications   string `json:"communications,omitempty"`
	RegistrationDate string `json:"registration_date,omitempty"`
	Category         string `json:"category,omitempty"`
}

// Detail carries the fields parsed from a project detail page.
type Detail struct {
	Status           string `json:"status,omitempty"`
	Description      string `json:"description,omitempty"`
	Communications   string `json:"communications,omitempty"`
	HiringRate       string `json:"hiring_rate,omitempty"`
	Duration         string `json:"duration,omitempty"`
	Budget           string `json:"budget,omitempty"`
	RegistrationDate string `json:"registration_date,omitempty"`
}

// Enrich fills empty fields of j from d. Populated fields are never
// overwritten, and a placeholder budget or duration from the detail page
// never replaces a real value from the listing. A real budget or duration
// does replace the listing's placeholder: the placeholder just means the
// listing row did not show the value.
func (j *Job) Enrich(d Detail) {
	fill(&j.Description, d.Description)
	fill(&j.HiringRate, d.HiringRate)
	fill(&j.Status, d.Status)
	fill(&j.Communications, d.Communications)
	fill(&j.RegistrationDate, d.RegistrationDate)
	if d.Duration != "" && d.Duration != Unspecified {
		fillValue(&j.Duration, d.Duration)
	}
	if d.Budget != "" && d.Budget != Unspecified {
		fillValue(&j.Budget, d.Budget)
	}
}

// NeedsEnrichment reports whether a detail fetch would add anything useful.
func (j *Job) NeedsEnrichment() bool {
	return j.Description == "" || j.HiringRate == ""
}

// NumericID returns the posting ID as a number for recency ordering.
// Marketplace IDs grow monotonically, so a bigger ID is a newer posting.
// Unparseable IDs sort last.
func (j *Job) NumericID() int64 {
	n, err := strconv.ParseInt(j.ID, 10, 64)
	if err != nil {
		return -1
	}
	return n
}

func fill(dst *string, src string) {
	if *dst == "" && src != "" {
		*dst = src
	}
}

// fillValue is fill with the placeholder treated as absent.
func fillValue(dst *string, src string) {
	if (*dst == "" || *dst == Unspecified) && src != "" {
		*dst = src
	}
}
