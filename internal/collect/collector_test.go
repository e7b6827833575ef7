package collect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/oncoscout/internal/config"
)

func TestCandidateID_Deterministic(t *testing.T) {
	a := CandidateID("PubMed", "https://pubmed.ncbi.nlm.nih.gov/12345/", "A ctDNA assay")
	b := CandidateID("PubMed", "https://pubmed.ncbi.nlm.nih.gov/12345/", "A ctDNA assay")

	assert.Equal(t, a, b)
	assert.Len(t, a, 16)
}

func TestCandidateID_SensitiveToEachInput(t *testing.T) {
	base := CandidateID("PubMed", "https://example.com/1", "Title")

	assert.NotEqual(t, base, CandidateID("FDA 510(k)", "https://example.com/1", "Title"))
	assert.NotEqual(t, base, CandidateID("PubMed", "https://example.com/2", "Title"))
	assert.NotEqual(t, base, CandidateID("PubMed", "https://example.com/1", "Other"))
}

func TestCandidateID_IndependentOfRawData(t *testing.T) {
	// The id is a pure function of (source, url, title); payload differences
	// between runs must not change identity.
	assert.Equal(t,
		CandidateID("Newsroom", "https://www.natera.com/company/news/", "Natera diagnostic announcement"),
		CandidateID("Newsroom", "https://www.natera.com/company/news/", "Natera diagnostic announcement"),
	)
}

// testConfig returns a config suitable for collector tests: short limits,
// no real watchlist.
func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.LookbackDays = 30
	cfg.SearchTerms = []string{"ctDNA assay", "liquid biopsy", "MRD test"}
	cfg.Watchlist = nil
	cfg.FDAResultLimit = 10
	cfg.PubMedPerTermLimit = 5
	cfg.TrialsTermLimit = 2
	cfg.TrialsPageSize = 5
	cfg.HTTPTimeoutSeconds = 5
	return cfg
}
