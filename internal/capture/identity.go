package capture

import (
	"fmt"
	"regexp"

	"github.com/chromedp/cdproto/har"

	"github.com/alfredjeanlab/followgraph/internal/model"
)

// DefaultProfileHost is the host marker that precedes the profile path
// segment in page titles.
const DefaultProfileHost = "instagram.com"

// IdentityMatcher recovers the owning username from page titles.
type IdentityMatcher struct {
	host    string
	pattern *regexp.Regexp
}

// NewIdentityMatcher returns a matcher for titles such as
// "https://www.instagram.com/alice/following/".
func NewIdentityMatcher(host string) *IdentityMatcher {
	if host == "" {
		host = DefaultProfileHost
	}
	return &IdentityMatcher{
		host:    host,
		pattern: regexp.MustCompile(regexp.QuoteMeta(host) + `/([^/?#\s\\]+)`),
	}
}

// MatchTitle returns the path segment following the host marker in title.
func (m *IdentityMatcher) MatchTitle(title string) (string, bool) {
	sub := m.pattern.FindStringSubmatch(title)
	if sub == nil {
		return "", false
	}
	return sub[1], true
}

// Username scans pages in order and returns the first title match.
func (m *IdentityMatcher) Username(pages []*har.Page) (string, error) {
	for _, p := range pages {
		if p == nil || p.Title == "" {
			continue
		}
		if name, ok := m.MatchTitle(p.Title); ok {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: no page title contains %s/<username>", model.ErrIdentityNotFound, m.host)
}
