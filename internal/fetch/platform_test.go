package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectPlatform_Q4(t *testing.T) {
	tests := []struct {
		url      string
		expected Platform
	}{
		{"https://investors.guardanthealth.com/press-releases", PlatformQ4},
		{"https://ir.brbiotech.com/news-releases", PlatformQ4},
		{"https://company.q4inc.com/news/default.aspx", PlatformQ4},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectPlatform(tt.url))
		})
	}
}

func TestDetectPlatform_Newswires(t *testing.T) {
	tests := []struct {
		url      string
		expected Platform
	}{
		{"https://www.prnewswire.com/news-releases/example-123.html", PlatformPRNewswire},
		{"https://www.globenewswire.com/news-release/2026/01/01/example.html", PlatformGlobeNewswire},
		{"https://www.businesswire.com/news/home/20260101/en/example", PlatformBusinessWire},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectPlatform(tt.url))
		})
	}
}

func TestDetectPlatform_UnknownAndInvalid(t *testing.T) {
	assert.Equal(t, PlatformUnknown, DetectPlatform("https://www.natera.com/company/news/"))
	assert.Equal(t, PlatformUnknown, DetectPlatform("://bad"))
}

func TestPlatformContentSelectors(t *testing.T) {
	assert.Contains(t, PlatformContentSelectors(PlatformQ4), ".nir-widget--list")
	assert.Contains(t, PlatformContentSelectors(PlatformPRNewswire), ".release-body")
	assert.Contains(t, PlatformContentSelectors(PlatformBusinessWire), "#bw-release-story")

	// Unknown platforms fall back to the generic newsroom selectors.
	assert.Equal(t, NewsroomSelectors(), PlatformContentSelectors(PlatformUnknown))
}

func TestPlatformNoiseSelectors(t *testing.T) {
	assert.NotEmpty(t, PlatformNoiseSelectors(PlatformQ4))
	assert.Nil(t, PlatformNoiseSelectors(PlatformUnknown))
}
