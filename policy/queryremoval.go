package policy

import (
	"fmt"
	"strings"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/urldedup/internal/ufnet"
	"github.com/go-viper/mapstructure/v2"
)

// NameQueryRemoval is the name of the query parameters removal policy.
const NameQueryRemoval = "queryRemoval"

// Query string separators.
const (
	paramSep    = "&"
	keyValueSep = "="
)

// queryRemoval is a policy removing query parameters by their names.  Its
// arguments are the list of the parameter names.  The names are compared with
// the raw keys, without percent-decoding, and are case-sensitive.
type queryRemoval struct {
	// args are the arguments as they were passed to the constructor.
	args any

	// names is the set of parameter names to remove.  It is filled by
	// ValidateArgs.
	names map[string]struct{}
}

// newQueryRemoval is the [Constructor] of the query parameters removal policy.
func newQueryRemoval(args any) (p Policy) {
	return &queryRemoval{
		args: args,
	}
}

// type check
var _ ArgsValidator = (*queryRemoval)(nil)

// ValidateArgs implements the [ArgsValidator] interface for *queryRemoval.
func (q *queryRemoval) ValidateArgs() (err error) {
	if q.args == nil {
		return errors.Error("no parameter names")
	}

	var names []string
	err = mapstructure.Decode(q.args, &names)
	if err != nil {
		return fmt.Errorf("parameter names: %w", err)
	}

	q.names = make(map[string]struct{}, len(names))
	for _, n := range names {
		q.names[n] = struct{}{}
	}

	return nil
}

// type check
var _ Policy = (*queryRemoval)(nil)

// Process implements the [Policy] interface for *queryRemoval.  If no parameter
// is removed, u is returned unchanged.  Otherwise, the remaining parameters are
// kept in their original order, and empty ones are dropped.  If no parameters
// remain, the '?' is removed as well.
func (q *queryRemoval) Process(u string) (res string) {
	base, query, fragment, ok := ufnet.SplitQuery(u)
	if !ok || len(q.names) == 0 {
		return u
	}

	params := strings.Split(query, paramSep)
	kept := make([]string, 0, len(params))
	removed := false
	for _, p := range params {
		key, _, _ := strings.Cut(p, keyValueSep)
		if _, ok = q.names[key]; ok {
			removed = true

			continue
		}

		if p != "" {
			kept = append(kept, p)
		}
	}

	if !removed {
		return u
	}

	return ufnet.JoinQuery(base, strings.Join(kept, paramSep), fragment)
}
