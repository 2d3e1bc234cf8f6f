// Package policy contains the URL rewriting policies and the registry used to
// construct them by name.
package policy

import (
	"fmt"

	"github.com/AdguardTeam/golibs/errors"
)

const (
	// ErrNoSuchPolicy is returned when a rule refers to an unknown policy.
	ErrNoSuchPolicy errors.Error = "no such policy"

	// ErrInvalidArgument is returned when the arguments of a policy are
	// malformed.
	ErrInvalidArgument errors.Error = "invalid argument"
)

// Policy is a single URL rewriting transformation.
type Policy interface {
	// Process returns u rewritten according to the policy.  It must be
	// deterministic, must not retain u, and must be safe for concurrent use.
	Process(u string) (res string)
}

// ArgsValidator is an optional interface for policies that validate their
// arguments.  Policies not implementing it accept any arguments.
type ArgsValidator interface {
	// ValidateArgs returns an error if the arguments the policy has been
	// constructed with are malformed.  It is called once, right after the
	// construction.
	ValidateArgs() (err error)
}

// Constructor creates a policy from its raw arguments.  The arguments are
// validated separately, see [ArgsValidator].
type Constructor func(args any) (p Policy)

// Registry maps policy names to their constructors.  It must not be modified
// after it has been passed to a processor.
type Registry map[string]Constructor

// NewRegistry returns a new registry containing all built-in policies.
func NewRegistry() (r Registry) {
	return Registry{
		NameQueryRemoval: newQueryRemoval,
	}
}

// New creates and validates the policy with the given name.  Any error returned
// wraps either [ErrNoSuchPolicy] or [ErrInvalidArgument].
func (r Registry) New(name string, args any) (p Policy, err error) {
	c, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("no policy named %s: %w", name, ErrNoSuchPolicy)
	}

	p = c(args)
	if v, isValidator := p.(ArgsValidator); isValidator {
		err = v.ValidateArgs()
		if err != nil {
			return nil, fmt.Errorf("policy %s: %w: %w", name, ErrInvalidArgument, err)
		}
	}

	return p, nil
}
