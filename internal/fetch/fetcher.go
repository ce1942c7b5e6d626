package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/flipscope/flipscope/internal/dataset"
	"github.com/flipscope/flipscope/pkg/logger"
)

// DefaultResearchURL is the Zillow research data page listing the current
// CSV exports.
const DefaultResearchURL = "https://www.zillow.com/research/data/"

// linkKeywords maps dataset names to the substrings that identify their CSV
// link among the page's downloads. All lowercase; href matching is
// case-insensitive.
var linkKeywords = map[string][]string{
	dataset.HomeValues:    {"zhvi", "zip"},
	dataset.DaysToPending: {"doz_pending"},
	dataset.PriceCuts:     {"perc_listings_price_cut"},
	dataset.SaleToList:    {"sale_to_list"},
}

// Fetcher downloads the region datasets from the research page. Outbound
// requests are rate limited and retried.
type Fetcher struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	maxRetries int
	logger     *logger.Logger
}

// New creates a fetcher with production defaults.
func New(log *logger.Logger) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(2*time.Second), 1),
		baseURL:    DefaultResearchURL,
		maxRetries: 3,
		logger:     log,
	}
}

// WithBaseURL overrides the research page URL. Intended for tests.
func (f *Fetcher) WithBaseURL(u string) *Fetcher {
	f.baseURL = u
	return f
}

// DatasetLinks scrapes the research page and resolves one CSV link per
// required dataset. A dataset whose link cannot be found is reported in the
// error but does not hide the links that were found.
func (f *Fetcher) DatasetLinks(ctx context.Context) (map[string]string, error) {
	res, err := f.get(ctx, f.baseURL)
	if err != nil {
		return nil, fmt.Errorf("fetch research page: %w", err)
	}
	defer res.Body.Close()

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse research page: %w", err)
	}

	links := make(map[string]string)
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		lower := strings.ToLower(href)
		if !strings.Contains(lower, ".csv") {
			return
		}
		for name, keywords := range linkKeywords {
			if _, seen := links[name]; seen {
				continue
			}
			if matchesAll(lower, keywords) {
				links[name] = href
			}
		}
	})

	var missing []string
	for name := range linkKeywords {
		if _, ok := links[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return links, fmt.Errorf("no CSV link found for datasets: %s", strings.Join(missing, ", "))
	}

	return links, nil
}

// Download fetches every dataset CSV into dir as <name>.csv. Files are
// written to a temp path first and renamed, so a failed download never
// clobbers a previous good file. Per-dataset failures are collected, not
// fatal to the rest.
func (f *Fetcher) Download(ctx context.Context, dir string) error {
	links, err := f.DatasetLinks(ctx)
	if len(links) == 0 {
		return err
	}
	if err != nil {
		f.logger.WithError(err).Warn("Continuing with the dataset links that resolved")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	var failed []string
	for name, link := range links {
		if err := f.downloadOne(ctx, link, filepath.Join(dir, name+".csv")); err != nil {
			f.logger.WithError(err).WithField("dataset", name).Error("Dataset download failed")
			failed = append(failed, name)
			continue
		}
		f.logger.WithField("dataset", name).Info("Dataset downloaded")
	}

	if len(failed) > 0 {
		return fmt.Errorf("failed to download datasets: %s", strings.Join(failed, ", "))
	}
	return nil
}

func (f *Fetcher) downloadOne(ctx context.Context, url, dest string) error {
	res, err := f.get(ctx, url)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, res.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("write download: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), dest)
}

// get performs a rate-limited GET with retries on transient failures.
func (f *Fetcher) get(ctx context.Context, url string) (*http.Response, error) {
	var lastErr error
	delay := time.Second

	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}

		res, err := f.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if res.StatusCode >= 500 || res.StatusCode == http.StatusTooManyRequests {
			res.Body.Close()
			lastErr = fmt.Errorf("GET %s: status %d", url, res.StatusCode)
			continue
		}
		if res.StatusCode != http.StatusOK {
			res.Body.Close()
			return nil, fmt.Errorf("GET %s: status %d", url, res.StatusCode)
		}
		return res, nil
	}

	return nil, fmt.Errorf("GET %s: retries exhausted: %w", url, lastErr)
}

func matchesAll(s string, keywords []string) bool {
	for _, k := range keywords {
		if !strings.Contains(s, k) {
			return false
		}
	}
	return true
}
