package models

import "time"

// DateLayout is the calendar-day key used for the daily counter reset.
const DateLayout = "2006-01-02"

// Stats holds the daily poll counters shown by the status output.
type Stats struct {
	LastCheck  time.Time `json:"last_check"`
	TodayCount int       `json:"today_count"`
	TodayDate  string    `json:"today_date"`
}

// RollDay resets the daily counter when now has crossed into a new calendar
// day. Running it twice on the same day is a no-op.
func (s *Stats) RollDay(now time.Time) {
	today := now.Format(DateLayout)
	if s.TodayDate != today {
		s.TodayCount = 0
		s.TodayDate = today
	}
}

// TrackedProject is a user-pinned posting monitored for field changes.
type TrackedProject struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	URL            string    `json:"url"`
	Status         string    `json:"status"`
	Communications string    `json:"communications"`
	LastChecked    time.Time `json:"last_checked"`
}

// Prompt is a user-editable proposal template. Content may reference
// placeholders such as {title}, {description}, {budget} and {url}.
type Prompt struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
