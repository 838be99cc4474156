package models

import "testing"

func TestEnrichFillsOnlyEmptyFields(t *testing.T) {
	job := Job{
		ID:          "1001",
		Title:       "تطوير موقع",
		Description: "وصف من الصفحة",
	}

	job.Enrich(Detail{
		Description:      "وصف آخر",
		HiringRate:       "46.67%",
		Status:           "مفتوح",
		Communications:   "4",
		RegistrationDate: "10 مارس 2023",
	})

	if job.Description != "وصف من الصفحة" {
		t.Fatalf("populated description overwritten: %q", job.Description)
	}
	if job.HiringRate != "46.67%" || job.Status != "مفتوح" {
		t.Fatalf("empty fields not filled: %+v", job)
	}
	if job.Communications != "4" || job.RegistrationDate != "10 مارس 2023" {
		t.Fatalf("empty fields not filled: %+v", job)
	}
}

func TestEnrichNeverDowngradesBudget(t *testing.T) {
	job := Job{ID: "1002", Budget: "$100 - $200", Duration: "5 أيام"}

	job.Enrich(Detail{Budget: Unspecified, Duration: Unspecified})
	if job.Budget != "$100 - $200" || job.Duration != "5 أيام" {
		t.Fatalf("placeholder replaced a real value: %+v", job)
	}

	// The placeholder never fills an empty field either.
	empty := Job{ID: "1003"}
	empty.Enrich(Detail{Budget: Unspecified, Duration: Unspecified})
	if empty.Budget != "" || empty.Duration != "" {
		t.Fatalf("placeholder filled an empty field: %+v", empty)
	}
}

func TestEnrichUpgradesPlaceholderBudget(t *testing.T) {
	// Listing rows stamp the placeholder when the budget column is missing;
	// a real value from the detail page replaces it.
	job := Job{ID: "1004", Budget: Unspecified}

	job.Enrich(Detail{Budget: "$50 - $80"})
	if job.Budget != "$50 - $80" {
		t.Fatalf("real budget should replace the placeholder: %q", job.Budget)
	}

	// But a real value, once set, is final.
	job.Enrich(Detail{Budget: "$999"})
	if job.Budget != "$50 - $80" {
		t.Fatalf("established budget overwritten: %q", job.Budget)
	}
}

func TestNeedsEnrichment(t *testing.T) {
	job := Job{ID: "1", Description: "وصف", HiringRate: "80%"}
	if job.NeedsEnrichment() {
		t.Fatalf("fully enriched job should not need a detail fetch")
	}
	job.HiringRate = ""
	if !job.NeedsEnrichment() {
		t.Fatalf("missing hiring rate should need a detail fetch")
	}
}

func TestNumericID(t *testing.T) {
	cases := []struct {
		id   string
		want int64
	}{
		{"987654", 987654},
		{"", -1},
		{"abc", -1},
	}
	for _, tc := range cases {
		job := Job{ID: tc.id}
		if got := job.NumericID(); got != tc.want {
			t.Fatalf("NumericID(%q) = %d, want %d", tc.id, got, tc.want)
		}
	}
}
