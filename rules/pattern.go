package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/gobwas/glob"
)

// ErrInvalidPattern is returned when a URL pattern entry cannot be compiled.
const ErrInvalidPattern errors.Error = "invalid url pattern"

const (
	// prefixRegexEntry marks a regular expression entry, for example
	// "regex:utm_[a-z]+=".  Entries like "/blog/" are plain.
	prefixRegexEntry = "regex:"

	// wildcard matches any run of characters in wildcard entries.
	wildcard = "*"
)

// URLPattern describes the URLs a rule is applicable to.
type URLPattern struct {
	// Include is the list of entries at least one of which must match the
	// URL.  An empty list matches every URL.
	Include []string `json:"include" yaml:"include" validate:"dive,required"`

	// Exclude is the list of entries none of which must match the URL.
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty" validate:"dive,required"`
}

// entryMatcher checks a single pattern entry against a URL.
type entryMatcher interface {
	match(u string) (ok bool)
}

// substringMatcher matches URLs containing the entry as is.
type substringMatcher string

// match implements the entryMatcher interface for substringMatcher.
func (m substringMatcher) match(u string) (ok bool) {
	return strings.Contains(u, string(m))
}

// globMatcher matches URLs containing the wildcard entry.
type globMatcher struct {
	compiled glob.Glob
}

// match implements the entryMatcher interface for *globMatcher.
func (m *globMatcher) match(u string) (ok bool) {
	return m.compiled.Match(u)
}

// regexpMatcher matches URLs containing a match of the regular expression.
type regexpMatcher struct {
	compiled *regexp.Regexp
}

// match implements the entryMatcher interface for *regexpMatcher.
func (m *regexpMatcher) match(u string) (ok bool) {
	return m.compiled.MatchString(u)
}

// Matcher is a compiled [URLPattern].  It is safe for concurrent use.
type Matcher struct {
	include []entryMatcher
	exclude []entryMatcher
}

// NewMatcher compiles p.  Each entry is one of:
//
//   - "regex:re", a regular expression that must match a part of the URL;
//   - an entry containing "*", where "*" matches any run of characters and
//     the rest must occur in the URL as is;
//   - any other non-empty string that must occur in the URL as is.
//
// Any error returned wraps [ErrInvalidPattern].
func NewMatcher(p URLPattern) (m *Matcher, err error) {
	m = &Matcher{}

	m.include, err = compileEntries(p.Include)
	if err != nil {
		return nil, fmt.Errorf("include: %w", err)
	}

	m.exclude, err = compileEntries(p.Exclude)
	if err != nil {
		return nil, fmt.Errorf("exclude: %w", err)
	}

	return m, nil
}

// Match returns true if the rule with this pattern is applicable to u.
func (m *Matcher) Match(u string) (ok bool) {
	for _, e := range m.exclude {
		if e.match(u) {
			return false
		}
	}

	if len(m.include) == 0 {
		return true
	}

	for _, e := range m.include {
		if e.match(u) {
			return true
		}
	}

	return false
}

// compileEntries compiles every entry from entries.
func compileEntries(entries []string) (ms []entryMatcher, err error) {
	if len(entries) == 0 {
		return nil, nil
	}

	ms = make([]entryMatcher, 0, len(entries))
	for i, e := range entries {
		var em entryMatcher
		em, err = compileEntry(e)
		if err != nil {
			return nil, fmt.Errorf("entry at index %d: %w", i, err)
		}

		ms = append(ms, em)
	}

	return ms, nil
}

// compileEntry returns the matcher for a single pattern entry.
func compileEntry(e string) (m entryMatcher, err error) {
	switch {
	case e == "":
		return nil, fmt.Errorf("%w: empty entry", ErrInvalidPattern)
	case strings.HasPrefix(e, prefixRegexEntry):
		var re *regexp.Regexp
		re, err = regexp.Compile(e[len(prefixRegexEntry):])
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, e, err)
		}

		return &regexpMatcher{compiled: re}, nil
	case strings.Contains(e, wildcard):
		return newGlobMatcher(e)
	default:
		return substringMatcher(e), nil
	}
}

// newGlobMatcher compiles a wildcard entry.  Only "*" is special, all the
// other glob syntax characters, like '?', are matched literally.
func newGlobMatcher(e string) (m *globMatcher, err error) {
	parts := strings.Split(e, wildcard)
	for i, p := range parts {
		parts[i] = glob.QuoteMeta(p)
	}

	// The pattern is matched as a part of the URL, not the whole URL.
	pattern := wildcard + strings.Join(parts, wildcard) + wildcard

	compiled, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, e, err)
	}

	return &globMatcher{compiled: compiled}, nil
}
