package authgate

import (
	"regexp"
	"strings"
)

var defaultInternalPrefixes = []string{"/_next"}

var defaultAlwaysPrefixes = []string{"/api", "/trpc"}

// staticAssetPattern is not anchored at the end: "/app.css/extra" and
// "/file.csvx" count as static. A "js" match followed by "on" is
// rejected in isStaticAsset so ".json" stays routable.
var staticAssetPattern = regexp.MustCompile(`\.(?:html?|css|js|jpe?g|webp|png|gif|svg|ttf|woff2?|ico|csv|docx?|xlsx?|zip|webmanifest)`)

// RouteMatcher selects the requests the access router runs for. API
// paths always match; framework internals and static assets do not.
// Matching is case sensitive.
type RouteMatcher struct {
	internalPrefixes []string
	alwaysPrefixes   []string
}

type MatcherOption func(*RouteMatcher)

// WithInternalPrefixes replaces the framework internal path prefixes
func WithInternalPrefixes(prefixes ...string) MatcherOption {
	return func(m *RouteMatcher) {
		m.internalPrefixes = prefixes
	}
}

// WithAlwaysPrefixes replaces the prefixes that always match
func WithAlwaysPrefixes(prefixes ...string) MatcherOption {
	return func(m *RouteMatcher) {
		m.alwaysPrefixes = prefixes
	}
}

func NewRouteMatcher(opts ...MatcherOption) *RouteMatcher {
	m := &RouteMatcher{
		internalPrefixes: defaultInternalPrefixes,
		alwaysPrefixes:   defaultAlwaysPrefixes,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Applies reports whether the access router should evaluate p.
func (m *RouteMatcher) Applies(p string) bool {
	if hasAnyPrefix(p, m.alwaysPrefixes) {
		return true
	}

	if hasAnyPrefix(p, m.internalPrefixes) {
		return false
	}

	return !isStaticAsset(p)
}

func isStaticAsset(p string) bool {
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}

	for _, loc := range staticAssetPattern.FindAllStringIndex(p, -1) {
		if p[loc[0]:loc[1]] == ".js" && strings.HasPrefix(p[loc[1]:], "on") {
			continue
		}
		return true
	}
	return false
}

func hasAnyPrefix(p string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}
