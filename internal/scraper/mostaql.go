// Package scraper fetches and extracts Mostaql listing and project pages.
// Extraction is best effort: hostile or unexpected markup yields an empty
// result, never a panic, and a challenge interstitial is reported as such.
package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/PuerkitoBio/goquery"
	fhttp "github.com/bogdanfinn/fhttp"

	"github.com/frelancia/frelwatch/internal/models"
	"github.com/frelancia/frelwatch/internal/network"
)

const BaseURL = "https://mostaql.com"

// ErrNoDetail is returned when a detail page contains nothing recognizable.
var ErrNoDetail = errors.New("detail page not recognized")

const (
	listingTimeout = 15 * time.Second
	detailTimeout  = 10 * time.Second
)

// Category is one monitored listing feed.
type Category struct {
	Name string
	URL  string
}

// Categories are the feeds the poller can watch, newest postings first.
var Categories = []Category{
	{Name: "development", URL: BaseURL + "/projects?category=development&sort=latest"},
	{Name: "ai", URL: BaseURL + "/projects?category=ai-machine-learning&sort=latest"},
	{Name: "all", URL: BaseURL + "/projects?sort=latest"},
}

type Mostaql struct {
	client *network.Client
}

func New(client *network.Client) *Mostaql {
	return &Mostaql{client: client}
}

// Listing fetches one category feed and extracts its candidate jobs. The
// category name is stamped on every record.
func (m *Mostaql) Listing(ctx context.Context, category Category) ([]models.Job, error) {
	doc, err := m.fetch(ctx, network.CacheBust(category.URL), listingTimeout)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", category.Name, err)
	}

	jobs := ParseListing(doc)
	for i := range jobs {
		jobs[i].Category = category.Name
	}
	return jobs, nil
}

// Detail fetches a project page uncached and extracts its detail fields.
func (m *Mostaql) Detail(ctx context.Context, target string) (models.Detail, error) {
	doc, err := m.fetch(ctx, target, detailTimeout)
	if err != nil {
		return models.Detail{}, fmt.Errorf("detail %s: %w", target, err)
	}

	detail, ok := ParseDetail(doc)
	if !ok {
		return models.Detail{}, ErrNoDetail
	}
	return detail, nil
}

func (m *Mostaql) fetch(ctx context.Context, target string, timeout time.Duration) (*goquery.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if network.IsChallenge(string(body)) {
		return nil, network.ErrChallenge
	}

	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}
