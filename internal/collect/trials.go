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

// trialsDelay paces requests to the ClinicalTrials.gov v2 API, which has an
// undocumented but real per-client rate limit.
const trialsDelay = 500 * time.Millisecond

// TrialsCollector queries ClinicalTrials.gov for actively recruiting or
// ongoing studies matching a bounded subset of the search terms, newest
// updates first.
type TrialsCollector struct {
	cfg     *config.Config
	client  *http.Client
	baseURL string
	delay   time.Duration
	now     func() time.Time
}

// NewTrialsCollector builds the collector. client may be nil.
func NewTrialsCollector(cfg *config.Config, client *http.Client) *TrialsCollector {
	if client == nil {
		client = &http.Client{Timeout: cfg.HTTPTimeout()}
	}
	return &TrialsCollector{
		cfg:     cfg,
		client:  client,
		baseURL: "https://clinicaltrials.gov",
		delay:   trialsDelay,
		now:     time.Now,
	}
}

// WithBaseURL points the collector at an alternate host and removes the
// inter-term delay, for tests.
func (c *TrialsCollector) WithBaseURL(base string) *TrialsCollector {
	c.baseURL = strings.TrimSuffix(base, "/")
	c.delay = 0
	return c
}

// Name implements Collector.
func (c *TrialsCollector) Name() string { return "ClinicalTrials.gov" }

type trialsResponse struct {
	Studies []struct {
		ProtocolSection struct {
			IdentificationModule struct {
				NCTID      string `json:"nctId"`
				BriefTitle string `json:"briefTitle"`
			} `json:"identificationModule"`
			StatusModule struct {
				LastUpdatePostDateStruct struct {
					Date string `json:"date"`
				} `json:"lastUpdatePostDateStruct"`
			} `json:"statusModule"`
			SponsorCollaboratorsModule struct {
				LeadSponsor struct {
					Name string `json:"name"`
				} `json:"leadSponsor"`
			} `json:"sponsorCollaboratorsModule"`
		} `json:"protocolSection"`
	} `json:"studies"`
}

// Collect queries the first TrialsTermLimit search terms sequentially. A
// failing term is joined into the error; later terms still run.
func (c *TrialsCollector) Collect(ctx context.Context) ([]types.RawCandidate, error) {
	terms := c.cfg.SearchTerms
	if len(terms) > c.cfg.TrialsTermLimit {
		terms = terms[:c.cfg.TrialsTermLimit]
	}

	var candidates []types.RawCandidate
	var errs []error
	seenIDs := make(map[string]struct{})

	for i, term := range terms {
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

func (c *TrialsCollector) collectTerm(ctx context.Context, term string) ([]types.RawCandidate, error) {
	params := url.Values{}
	params.Set("query.term", term)
	params.Set("filter.overallStatus", "RECRUITING,ACTIVE_NOT_RECRUITING")
	params.Set("sort", "LastUpdatePostDate:desc")
	params.Set("pageSize", fmt.Sprintf("%d", c.cfg.TrialsPageSize))

	reqURL := c.baseURL + "/api/v2/studies?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var parsed trialsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	discovered := c.now().UTC().Format(time.RFC3339)
	var candidates []types.RawCandidate
	for _, study := range parsed.Studies {
		ident := study.ProtocolSection.IdentificationModule
		if ident.NCTID == "" || ident.BriefTitle == "" {
			continue
		}

		raw, err := json.Marshal(study)
		if err != nil {
			continue
		}

		sourceURL := fmt.Sprintf("https://clinicaltrials.gov/study/%s", ident.NCTID)
		candidates = append(candidates, types.RawCandidate{
			ID:           CandidateID("ClinicalTrials.gov", sourceURL, ident.BriefTitle),
			Source:       "ClinicalTrials.gov",
			SourceURL:    sourceURL,
			DiscoveredAt: discovered,
			Title:        ident.BriefTitle,
			Company:      study.ProtocolSection.SponsorCollaboratorsModule.LeadSponsor.Name,
			Date:         study.ProtocolSection.StatusModule.LastUpdatePostDateStruct.Date,
			RawData:      raw,
		})
	}

	return candidates, nil
}
