// Package fetch - platform.go provides detection of press-release hosting platforms.
package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known press-release or investor-relations host.
// Company newsrooms are rarely bespoke; most sit on one of a few platforms
// with stable markup.
type Platform string

const (
	// PlatformQ4 is the Q4 Inc investor-relations platform
	PlatformQ4 Platform = "q4"
	// PlatformPRNewswire is PR Newswire
	PlatformPRNewswire Platform = "prnewswire"
	// PlatformGlobeNewswire is GlobeNewswire
	PlatformGlobeNewswire Platform = "globenewswire"
	// PlatformBusinessWire is Business Wire
	PlatformBusinessWire Platform = "businesswire"
	// PlatformUnknown is an unrecognized host
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform identifies the press-release platform from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Host)

	switch {
	case strings.Contains(host, "q4inc.com") || strings.Contains(host, "q4ir.com") ||
		strings.HasPrefix(host, "investors.") || strings.HasPrefix(host, "ir."):
		return PlatformQ4
	case strings.Contains(host, "prnewswire.com"):
		return PlatformPRNewswire
	case strings.Contains(host, "globenewswire.com"):
		return PlatformGlobeNewswire
	case strings.Contains(host, "businesswire.com"):
		return PlatformBusinessWire
	default:
		return PlatformUnknown
	}
}

// PlatformContentSelectors returns content selectors for a platform's pages.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformQ4:
		return []string{
			".nir-widget--list",
			".nir-widget--news",
			".module-news",
			"main",
			".content",
		}
	case PlatformPRNewswire:
		return []string{
			".release-body",
			".news-release",
			"article",
			"main",
		}
	case PlatformGlobeNewswire:
		return []string{
			".main-body-container",
			".article-body",
			"article",
			"main",
		}
	case PlatformBusinessWire:
		return []string{
			"#bw-release-story",
			".bw-release-story",
			"article",
			"main",
		}
	default:
		return NewsroomSelectors()
	}
}

// PlatformNoiseSelectors returns platform-specific elements to strip before
// text extraction.
func PlatformNoiseSelectors(platform Platform) []string {
	switch platform {
	case PlatformQ4:
		return []string{".nir-widget--pager", ".module_options"}
	case PlatformPRNewswire:
		return []string{".share-links", ".related-news"}
	case PlatformGlobeNewswire:
		return []string{".tags-container", ".related-articles"}
	case PlatformBusinessWire:
		return []string{".bw-release-contact", ".bw-release-social"}
	default:
		return nil
	}
}
