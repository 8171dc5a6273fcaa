package walk

import (
	"path"
	"regexp"
	"strings"

	"github.com/src-d/enry/v2"
)

// FilterOptions configures the tracked-path predicate built by NewFilter.
// It mirrors the TreeDiff analyzer's blacklist/whitelist/language knobs.
type FilterOptions struct {
	// SkipVendor excludes paths enry classifies as vendored.
	SkipVendor bool
	// BlacklistedPrefixes excludes any path starting with one of these.
	BlacklistedPrefixes []string
	// WhitelistRegexp, if non-empty, requires a path match to be tracked.
	WhitelistRegexp string
	// Languages restricts tracked paths to these enry language names
	// (case-insensitive). Empty means no language filtering.
	Languages []string
}

// NewFilter builds a Predicate from opts. Binary detection happens
// separately in the object provider; this predicate only judges path
// identity and language.
func NewFilter(opts FilterOptions) (Predicate, error) {
	var whitelist *regexp.Regexp

	if opts.WhitelistRegexp != "" {
		re, err := regexp.Compile(opts.WhitelistRegexp)
		if err != nil {
			return nil, err
		}

		whitelist = re
	}

	languages := make(map[string]bool, len(opts.Languages))
	for _, lang := range opts.Languages {
		languages[strings.ToLower(strings.TrimSpace(lang))] = true
	}

	return func(p string) bool {
		for _, prefix := range opts.BlacklistedPrefixes {
			if strings.HasPrefix(p, prefix) {
				return false
			}
		}

		if opts.SkipVendor && enry.IsVendor(p) {
			return false
		}

		if whitelist != nil && !whitelist.MatchString(p) {
			return false
		}

		if len(languages) > 0 {
			lang := enry.GetLanguage(path.Base(p), nil)
			if lang == "" || !languages[strings.ToLower(lang)] {
				return false
			}
		}

		return true
	}, nil
}

// DefaultBlacklistedPrefixes excludes common vendored dependency and
// generated lockfile paths from analysis by default.
var DefaultBlacklistedPrefixes = []string{
	"vendor/",
	"vendors/",
	"node_modules/",
	"package-lock.json",
	"Gopkg.lock",
}
