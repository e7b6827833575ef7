package collect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/oncoscout/internal/config"
	"github.com/jonathan/oncoscout/internal/fetch"
	"github.com/jonathan/oncoscout/internal/types"
)

// excerptLength bounds how much newsroom text is inspected and preserved.
// Launch announcements live above the fold; the tail of a listing page is
// navigation and boilerplate.
const excerptLength = 3000

// launchKeywords and testKeywords form the co-occurrence gate: a page must
// contain at least one from each list to produce a candidate.
var launchKeywords = []string{
	"launch",
	"launches",
	"launched",
	"announces",
	"announced",
	"introduces",
	"unveils",
	"fda clearance",
	"fda approval",
	"now available",
}

var testKeywords = []string{
	"test",
	"assay",
	"panel",
	"diagnostic",
	"screening",
	"liquid biopsy",
	"ctdna",
}

// NewsroomCollector fetches each watched company's newsroom page and emits
// at most one candidate per company per run when launch language and test
// language co-occur. It deliberately does not parse individual articles;
// the classifier decides what the page is actually announcing.
type NewsroomCollector struct {
	cfg        *config.Config
	opts       *fetch.Options
	useBrowser bool
	now        func() time.Time
}

// NewNewsroomCollector builds the collector. opts may be nil; useBrowser
// enables the headless-browser fallback for pages that render client-side.
func NewNewsroomCollector(cfg *config.Config, opts *fetch.Options, useBrowser bool) *NewsroomCollector {
	if opts == nil {
		opts = fetch.DefaultOptions()
		opts.Timeout = cfg.HTTPTimeout()
	}
	return &NewsroomCollector{
		cfg:        cfg,
		opts:       opts,
		useBrowser: useBrowser,
		now:        time.Now,
	}
}

// Name implements Collector.
func (c *NewsroomCollector) Name() string { return "Newsroom" }

// newsroomPayload is the raw_data preserved for audit and enrichment.
type newsroomPayload struct {
	Company  string `json:"company"`
	Newsroom string `json:"newsroom"`
	Excerpt  string `json:"excerpt"`
}

// Collect visits every watchlist company that has a newsroom URL. A failed
// fetch is joined into the error and costs only that company.
func (c *NewsroomCollector) Collect(ctx context.Context) ([]types.RawCandidate, error) {
	var candidates []types.RawCandidate
	var errs []error

	for _, company := range c.cfg.Watchlist {
		if company.Newsroom == "" {
			continue
		}

		text, err := c.pageText(ctx, company.Newsroom)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", company.Name, err))
			continue
		}

		excerpt := truncateExcerpt(text, excerptLength)

		if !coOccurs(strings.ToLower(excerpt)) {
			continue
		}

		title := company.Name + " diagnostic announcement"
		raw, err := json.Marshal(newsroomPayload{
			Company:  company.Name,
			Newsroom: company.Newsroom,
			Excerpt:  excerpt,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", company.Name, err))
			continue
		}

		candidates = append(candidates, types.RawCandidate{
			ID:           CandidateID("Newsroom", company.Newsroom, title),
			Source:       "Newsroom",
			SourceURL:    company.Newsroom,
			DiscoveredAt: c.now().UTC().Format(time.RFC3339),
			Title:        title,
			Company:      company.Name,
			RawData:      raw,
		})
	}

	return candidates, errors.Join(errs...)
}

func (c *NewsroomCollector) pageText(ctx context.Context, pageURL string) (string, error) {
	result, err := fetch.URL(ctx, pageURL, c.opts)
	if err != nil {
		return "", err
	}

	selectors := fetch.NewsroomSelectors()
	if platform := fetch.DetectPlatform(pageURL); platform != fetch.PlatformUnknown {
		selectors = append(fetch.PlatformContentSelectors(platform), selectors...)
	}

	text, err := fetch.ExtractMainText(result.HTML, selectors)
	if err != nil {
		return "", err
	}

	if c.useBrowser && fetch.ShouldUseBrowser(text) {
		html, berr := fetch.WithBrowser(ctx, pageURL, c.opts.Timeout, false)
		if berr != nil {
			// The static text, thin as it is, beats nothing.
			return text, nil
		}
		if rendered, rerr := fetch.ExtractMainText(html, selectors); rerr == nil && len(rendered) > len(text) {
			return rendered, nil
		}
	}

	return text, nil
}

// truncateExcerpt cuts page text to at most limit bytes without splitting a
// rune; the excerpt feeds the model transport, which rejects invalid UTF-8.
func truncateExcerpt(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := text[:limit]
	for len(cut) > 0 {
		if r, size := utf8.DecodeLastRuneInString(cut); r != utf8.RuneError || size > 1 {
			break
		}
		cut = cut[:len(cut)-1]
	}
	return cut
}

// coOccurs applies the launch-language x test-language gate to lowercased
// page text.
func coOccurs(text string) bool {
	launch := false
	for _, kw := range launchKeywords {
		if strings.Contains(text, kw) {
			launch = true
			break
		}
	}
	if !launch {
		return false
	}
	for _, kw := range testKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
