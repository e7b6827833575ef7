package collect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/oncoscout/internal/config"
	"github.com/jonathan/oncoscout/internal/fetch"
)

const launchPage = `<html><body><main>
<h1>Press Releases</h1>
<p>Acme Dx announces the launch of its new ctDNA assay for colorectal cancer monitoring.</p>
</main></body></html>`

const quietPage = `<html><body><main>
<h1>Press Releases</h1>
<p>Acme Dx reports third quarter financial results and appoints a new CFO.</p>
</main></body></html>`

func newsroomConfig(newsroom string) *config.Config {
	cfg := testConfig()
	cfg.Watchlist = []config.Company{
		{Name: "Acme Dx", Newsroom: newsroom},
		{Name: "No Newsroom Co"},
	}
	return cfg
}

func TestNewsroomCollector_CoOccurrenceEmitsOneCandidate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(launchPage))
	}))
	defer server.Close()

	opts := fetch.DefaultOptions()
	opts.Client = server.Client()

	collector := NewNewsroomCollector(newsroomConfig(server.URL), opts, false)
	candidates, err := collector.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, "Newsroom", c.Source)
	assert.Equal(t, "Acme Dx diagnostic announcement", c.Title)
	assert.Equal(t, "Acme Dx", c.Company)
	assert.Equal(t, server.URL, c.SourceURL)

	var payload struct {
		Company string `json:"company"`
		Excerpt string `json:"excerpt"`
	}
	require.NoError(t, json.Unmarshal(c.RawData, &payload))
	assert.Equal(t, "Acme Dx", payload.Company)
	assert.Contains(t, payload.Excerpt, "ctDNA assay")
}

func TestNewsroomCollector_NoCoOccurrenceNoCandidate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(quietPage))
	}))
	defer server.Close()

	opts := fetch.DefaultOptions()
	opts.Client = server.Client()

	collector := NewNewsroomCollector(newsroomConfig(server.URL), opts, false)
	candidates, err := collector.Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestNewsroomCollector_FetchFailureIsIsolated(t *testing.T) {
	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(launchPage))
	}))
	defer working.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	cfg := testConfig()
	cfg.Watchlist = []config.Company{
		{Name: "Broken Co", Newsroom: broken.URL},
		{Name: "Acme Dx", Newsroom: working.URL},
	}

	opts := fetch.DefaultOptions()
	opts.Client = working.Client()

	collector := NewNewsroomCollector(cfg, opts, false)
	candidates, err := collector.Collect(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Broken Co")
	require.Len(t, candidates, 1)
	assert.Equal(t, "Acme Dx", candidates[0].Company)
}

func TestTruncateExcerpt_NeverSplitsRune(t *testing.T) {
	// Multi-byte runes astride the byte cap must be dropped whole, not cut
	// mid-encoding; the excerpt ends up in a model-bound string field.
	for pad := excerptLength - 3; pad <= excerptLength; pad++ {
		text := strings.Repeat("a", pad) + "Épi® assay™"
		excerpt := truncateExcerpt(text, excerptLength)
		assert.True(t, utf8.ValidString(excerpt), "pad %d: excerpt is not valid UTF-8", pad)
		assert.LessOrEqual(t, len(excerpt), excerptLength)
	}

	assert.Equal(t, "short", truncateExcerpt("short", excerptLength))
}

func TestCoOccurs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"launch plus assay", "we are proud to launch our new assay", true},
		{"launch only", "we launch our new product line", false},
		{"test word only", "our diagnostic test portfolio", false},
		{"fda clearance plus panel", "fda clearance received for the gene panel", true},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, coOccurs(tt.text))
		})
	}
}
