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

// Record-detail pages on the FDA's accessdata site, keyed by the registry's
// canonical record number. These give each clearance a stable citation URL.
const (
	k510DetailURL = "https://www.accessdata.fda.gov/scripts/cdrh/cfdocs/cfpmn/pmn.cfm?ID=%s"
	pmaDetailURL  = "https://www.accessdata.fda.gov/scripts/cdrh/cfdocs/cfpma/pma.cfm?id=%s"
)

// FDACollector queries the openFDA device API for recent 510(k) clearances
// and PMA approvals matching the oncology keyword set.
type FDACollector struct {
	cfg     *config.Config
	client  *http.Client
	baseURL string
	now     func() time.Time
}

// NewFDACollector builds the collector. client may be nil; baseURL overrides
// the openFDA endpoint for tests.
func NewFDACollector(cfg *config.Config, client *http.Client) *FDACollector {
	if client == nil {
		client = &http.Client{Timeout: cfg.HTTPTimeout()}
	}
	return &FDACollector{
		cfg:     cfg,
		client:  client,
		baseURL: "https://api.fda.gov",
		now:     time.Now,
	}
}

// WithBaseURL points the collector at an alternate API host.
func (c *FDACollector) WithBaseURL(base string) *FDACollector {
	c.baseURL = strings.TrimSuffix(base, "/")
	return c
}

// Name implements Collector.
func (c *FDACollector) Name() string { return "FDA" }

// fdaResponse is the subset of the openFDA envelope we read.
type fdaResponse struct {
	Results []fdaResult `json:"results"`
}

// fdaResult covers both the 510(k) and PMA record shapes; each stream
// populates its own subset.
type fdaResult struct {
	KNumber      string `json:"k_number"`
	PMANumber    string `json:"pma_number"`
	DeviceName   string `json:"device_name"`
	TradeName    string `json:"trade_name"`
	Applicant    string `json:"applicant"`
	DecisionDate string `json:"decision_date"`
}

// Collect queries both regulatory streams. A failure in one stream is joined
// into the returned error while the other stream's results are kept.
func (c *FDACollector) Collect(ctx context.Context) ([]types.RawCandidate, error) {
	var candidates []types.RawCandidate
	var errs []error

	k510, err := c.collectStream(ctx, "510k.json", "FDA 510(k)")
	if err != nil {
		errs = append(errs, fmt.Errorf("510(k) stream: %w", err))
	}
	candidates = append(candidates, k510...)

	pma, err := c.collectStream(ctx, "pma.json", "FDA PMA")
	if err != nil {
		errs = append(errs, fmt.Errorf("PMA stream: %w", err))
	}
	candidates = append(candidates, pma...)

	return candidates, errors.Join(errs...)
}

func (c *FDACollector) collectStream(ctx context.Context, endpoint, source string) ([]types.RawCandidate, error) {
	since := c.now().AddDate(0, 0, -c.cfg.LookbackDays).Format("2006-01-02")
	until := c.now().Format("2006-01-02")

	var terms []string
	for _, kw := range oncologyKeywords {
		if strings.Contains(kw, " ") {
			kw = `"` + kw + `"`
		}
		terms = append(terms, "device_name:"+kw)
	}
	search := fmt.Sprintf("decision_date:[%s TO %s] AND (%s)", since, until, strings.Join(terms, " OR "))

	params := url.Values{}
	params.Set("search", search)
	params.Set("limit", fmt.Sprintf("%d", c.cfg.FDAResultLimit))

	reqURL := fmt.Sprintf("%s/device/%s?%s", c.baseURL, endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// openFDA answers 404 for a search window with zero matches.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var parsed fdaResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	discovered := c.now().UTC().Format(time.RFC3339)
	var candidates []types.RawCandidate
	for _, r := range parsed.Results {
		title := r.DeviceName
		if title == "" {
			title = r.TradeName
		}
		if title == "" {
			continue
		}

		var sourceURL string
		switch {
		case r.KNumber != "":
			sourceURL = fmt.Sprintf(k510DetailURL, r.KNumber)
		case r.PMANumber != "":
			sourceURL = fmt.Sprintf(pmaDetailURL, r.PMANumber)
		default:
			continue
		}

		raw, err := json.Marshal(r)
		if err != nil {
			continue
		}

		candidates = append(candidates, types.RawCandidate{
			ID:           CandidateID(source, sourceURL, title),
			Source:       source,
			SourceURL:    sourceURL,
			DiscoveredAt: discovered,
			Title:        title,
			Company:      r.Applicant,
			Date:         r.DecisionDate,
			RawData:      raw,
		})
	}

	return candidates, nil
}
