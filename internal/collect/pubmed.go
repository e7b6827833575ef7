package collect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/oncoscout/internal/config"
	"github.com/jonathan/oncoscout/internal/types"
)

// pubmedBias steers the literature search toward commercially relevant
// validation work and away from pure research output.
const pubmedBias = "clinical validation OR commercial OR FDA OR diagnostic accuracy"

// pubmedDelay is the pause between successive term queries. NCBI throttles
// unauthenticated eutils clients at roughly three requests per second;
// skipping the pause risks the whole pipeline being blocked, so this is a
// correctness requirement rather than politeness.
const pubmedDelay = 400 * time.Millisecond

// PubMedCollector runs each configured search term through the two-step
// eutils flow: esearch for ids, then one esummary for the id batch.
type PubMedCollector struct {
	cfg     *config.Config
	client  *http.Client
	baseURL string
	delay   time.Duration
	now     func() time.Time
}

// NewPubMedCollector builds the collector. client may be nil.
func NewPubMedCollector(cfg *config.Config, client *http.Client) *PubMedCollector {
	if client == nil {
		client = &http.Client{Timeout: cfg.HTTPTimeout()}
	}
	return &PubMedCollector{
		cfg:     cfg,
		client:  client,
		baseURL: "https://eutils.ncbi.nlm.nih.gov/entrez/eutils",
		delay:   pubmedDelay,
		now:     time.Now,
	}
}

// WithBaseURL points the collector at an alternate eutils host and removes
// the inter-term delay, for tests.
func (c *PubMedCollector) WithBaseURL(base string) *PubMedCollector {
	c.baseURL = strings.TrimSuffix(base, "/")
	c.delay = 0
	return c
}

// Name implements Collector.
func (c *PubMedCollector) Name() string { return "PubMed" }

type esearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// esummaryResponse carries a result map keyed by uid plus a "uids" index
// entry; the per-uid entries are decoded individually.
type esummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type pubmedSummary struct {
	UID     string `json:"uid"`
	Title   string `json:"title"`
	PubDate string `json:"pubdate"`
	Source  string `json:"source"`
}

// Collect queries every configured term sequentially with the rate-limit
// pause in between. A failing term is joined into the error; later terms
// still run.
func (c *PubMedCollector) Collect(ctx context.Context) ([]types.RawCandidate, error) {
	var candidates []types.RawCandidate
	var errs []error
	seenIDs := make(map[string]struct{})

	for i, term := range c.cfg.SearchTerms {
		if i > 0 && c.delay > 0 {
			select {
			case <-ctx.Done():
				return candidates, errors.Join(append(errs, ctx.Err())...)
			case <-time.After(c.delay):
			}
		}

		found, err := c.collectTerm(ctx, term)
		if err != nil {
			errs = append(errs, fmt.Errorf("term %q: %w", term, err))
			continue
		}
		for _, cand := range found {
			if _, dup := seenIDs[cand.ID]; dup {
				continue
			}
			seenIDs[cand.ID] = struct{}{}
			candidates = append(candidates, cand)
		}
	}

	return candidates, errors.Join(errs...)
}

func (c *PubMedCollector) collectTerm(ctx context.Context, term string) ([]types.RawCandidate, error) {
	ids, err := c.search(ctx, term)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return c.summaries(ctx, ids)
}

func (c *PubMedCollector) search(ctx context.Context, term string) ([]string, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", fmt.Sprintf("(%s) AND (%s)", term, pubmedBias))
	params.Set("retmode", "json")
	params.Set("retmax", fmt.Sprintf("%d", c.cfg.PubMedPerTermLimit))
	params.Set("reldate", fmt.Sprintf("%d", c.cfg.LookbackDays))
	params.Set("datetype", "pdat")
	params.Set("sort", "date")

	var parsed esearchResponse
	if err := c.getJSON(ctx, c.baseURL+"/esearch.fcgi?"+params.Encode(), &parsed); err != nil {
		return nil, fmt.Errorf("esearch failed: %w", err)
	}
	return parsed.ESearchResult.IDList, nil
}

func (c *PubMedCollector) summaries(ctx context.Context, ids []string) ([]types.RawCandidate, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "json")

	var parsed esummaryResponse
	if err := c.getJSON(ctx, c.baseURL+"/esummary.fcgi?"+params.Encode(), &parsed); err != nil {
		return nil, fmt.Errorf("esummary failed: %w", err)
	}

	discovered := c.now().UTC().Format(time.RFC3339)
	var candidates []types.RawCandidate
	for _, id := range ids {
		raw, ok := parsed.Result[id]
		if !ok {
			continue
		}
		var summary pubmedSummary
		if err := json.Unmarshal(raw, &summary); err != nil || summary.Title == "" {
			continue
		}

		sourceURL := fmt.Sprintf("https://pubmed.ncbi.nlm.nih.gov/%s/", id)
		candidates = append(candidates, types.RawCandidate{
			ID:           CandidateID("PubMed", sourceURL, summary.Title),
			Source:       "PubMed",
			SourceURL:    sourceURL,
			DiscoveredAt: discovered,
			Title:        summary.Title,
			Date:         summary.PubDate,
			RawData:      json.RawMessage(raw),
		})
	}

	return candidates, nil
}

func (c *PubMedCollector) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
