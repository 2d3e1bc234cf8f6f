// Package rules contains the URL rewriting rule data model and the matching of
// rules against URLs.
package rules

import (
	"fmt"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/goccy/go-json"
)

// Rule is a single URL rewriting rule.  It binds a policy with its arguments
// to an application order and a URL pattern.  Rule is the same structure as
// the records in the rule lists, so the JSON and YAML tags here define the
// record format.
//
// Rule must not be modified after it has been loaded.
type Rule struct {
	// Args are the policy arguments.  Their shape depends on the policy.
	Args any `json:"args" yaml:"args"`

	// Policy is the name of the policy, for example "queryRemoval".
	Policy string `json:"policy" yaml:"policy" validate:"required"`

	// URLPattern restricts the URLs this rule is applied to.
	URLPattern URLPattern `json:"urlPattern" yaml:"urlPattern"`

	// Order defines the order of application.  Rules with lower values are
	// applied first.  It doesn't have to be unique.
	Order int `json:"order" yaml:"order"`
}

// ruleKey is the structure used to build the deduplication key of a rule.  The
// field order is fixed so that the encoding is canonical.
type ruleKey struct {
	Policy  string   `json:"p"`
	Args    any      `json:"a"`
	Include []string `json:"i"`
	Exclude []string `json:"e"`
	Order   int      `json:"o"`
}

// Key returns a string which is equal for two rules if and only if they are
// structurally equal.  A nil and an empty include or exclude list are
// considered equal.  It returns an error if the arguments cannot be encoded.
func (r *Rule) Key() (k string, err error) {
	rk := &ruleKey{
		Policy:  r.Policy,
		Args:    r.Args,
		Include: nonNil(r.URLPattern.Include),
		Exclude: nonNil(r.URLPattern.Exclude),
		Order:   r.Order,
	}

	// Map keys are sorted by the encoder, so args decoded from different
	// sources into maps still produce equal keys.
	b, err := json.Marshal(rk)
	if err != nil {
		return "", errors.Annotate(err, "encoding rule key: %w")
	}

	return string(b), nil
}

// String implements the [fmt.Stringer] interface for *Rule.
func (r *Rule) String() (s string) {
	return fmt.Sprintf("%s(%v) order=%d include=%q", r.Policy, r.Args, r.Order, r.URLPattern.Include)
}

// nonNil returns an empty slice if s is nil, s otherwise.
func nonNil(s []string) (res []string) {
	if s == nil {
		return []string{}
	}

	return s
}
