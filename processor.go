// Package urldedup implements a URL canonicalization engine.  It rewrites URLs
// according to an ordered set of rules so that URLs which differ only in
// tracking parameters, session identifiers, and alike collapse into the same
// string, which can then be used as a deduplication key.
package urldedup

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/urldedup/filterlist"
	"github.com/AdguardTeam/urldedup/policy"
	"github.com/AdguardTeam/urldedup/rules"
)

// Config is the configuration structure for a [Processor].
type Config struct {
	// Logger is used to report the results of loading the rules.  It must
	// not be nil.
	Logger *slog.Logger

	// Registry contains the policies the rules may refer to.  If nil, the
	// built-in policies are used, see [policy.NewRegistry].
	Registry policy.Registry

	// Lists are the sources of the rules.  The lists are read in this order,
	// which defines the order of application of the rules with equal order
	// values.  The lists are closed by [NewProcessor].
	Lists []filterlist.RuleList
}

// entry is a loaded rule together with its compiled pattern and policy.
type entry struct {
	rule    *rules.Rule
	matcher *rules.Matcher
	policy  policy.Policy
}

// Processor rewrites URLs into their canonical form.  It is safe for concurrent
// use.
type Processor struct {
	// entries are sorted by the order of the rules.
	entries []*entry

	// duplicates is the number of skipped duplicate rules.
	duplicates int
}

// NewProcessor loads the rules from c.Lists and returns a new processor.  A
// single invalid rule fails the whole load.  Errors returned wrap either
// [policy.ErrNoSuchPolicy], [policy.ErrInvalidArgument],
// [rules.ErrInvalidPattern], [filterlist.ErrInvalidRecord], or a decoding
// error.  c must not be nil.
func NewProcessor(c *Config) (p *Processor, err error) {
	reg := c.Registry
	if reg == nil {
		reg = policy.NewRegistry()
	}

	s, err := filterlist.NewRuleStorage(c.Lists)
	if err != nil {
		var errs []error
		for _, l := range c.Lists {
			errs = append(errs, l.Close())
		}

		err = errors.WithDeferred(err, errors.Join(errs...))

		return nil, fmt.Errorf("creating rule storage: %w", err)
	}
	defer func() {
		err = errors.WithDeferred(err, s.Close())
		if err != nil {
			p = nil
		}
	}()

	l := &loader{
		registry: reg,
		seen:     map[string]struct{}{},
	}

	sc := s.NewRuleStorageScanner()
	for sc.Scan() {
		r, idx := sc.Rule()
		err = l.add(r)
		if err != nil {
			listID, ruleIdx := filterlist.StorageIdxToRuleListIdx(idx)

			return nil, fmt.Errorf("list %d: rule at index %d: %w", listID, ruleIdx, err)
		}
	}

	err = sc.Err()
	if err != nil {
		return nil, fmt.Errorf("scanning rules: %w", err)
	}

	// The sort is stable, so the rules with equal order stay in the order
	// they have been loaded.
	slices.SortStableFunc(l.entries, func(a, b *entry) (res int) {
		return cmp.Compare(a.rule.Order, b.rule.Order)
	})

	c.Logger.Info(fmt.Sprintf("Loaded %d rules, skipped %d duplicates.", len(l.entries), l.duplicates))

	return &Processor{
		entries:    l.entries,
		duplicates: l.duplicates,
	}, nil
}

// loader accumulates the rules during a [NewProcessor] call.
type loader struct {
	registry   policy.Registry
	seen       map[string]struct{}
	entries    []*entry
	duplicates int
}

// add validates r and adds it unless an equal rule has already been added.
func (l *loader) add(r *rules.Rule) (err error) {
	pol, err := l.registry.New(r.Policy, r.Args)
	if err != nil {
		// Don't wrap the error since it's informative enough as is.
		return err
	}

	m, err := rules.NewMatcher(r.URLPattern)
	if err != nil {
		return fmt.Errorf("url pattern: %w", err)
	}

	key, err := r.Key()
	if err != nil {
		return fmt.Errorf("rule %s: %w", r, err)
	}

	if _, ok := l.seen[key]; ok {
		l.duplicates++

		return nil
	}

	l.seen[key] = struct{}{}
	l.entries = append(l.entries, &entry{
		rule:    r,
		matcher: m,
		policy:  pol,
	})

	return nil
}

// ProcessURL returns the canonical form of u.  The rules are applied in their
// order, and each rule's pattern is matched against the URL as rewritten by the
// previous rules.  If no rule matches, u is returned unchanged.
func (p *Processor) ProcessURL(u string) (res string) {
	res = u
	for _, e := range p.entries {
		if e.matcher.Match(res) {
			res = e.policy.Process(res)
		}
	}

	return res
}

// RulesCount returns the number of loaded rules, excluding duplicates.
func (p *Processor) RulesCount() (n int) {
	return len(p.entries)
}

// DuplicatesCount returns the number of rules skipped as duplicates.
func (p *Processor) DuplicatesCount() (n int) {
	return p.duplicates
}

// Rules returns the loaded rules in the order of application.  The rules must
// not be modified.
func (p *Processor) Rules() (rs []*rules.Rule) {
	rs = make([]*rules.Rule, 0, len(p.entries))
	for _, e := range p.entries {
		rs = append(rs, e.rule)
	}

	return rs
}
