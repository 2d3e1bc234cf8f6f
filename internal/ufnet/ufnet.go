// Package ufnet contains utilities for splitting URL-like strings without
// normalizing them.
package ufnet

import "strings"

// SplitQuery splits u into the part preceding the query, the raw query without
// the leading '?', and the fragment including its leading '#'.  ok is false if
// u has no query, in which case base and fragment are still set.
//
// NOTE: SplitQuery never decodes or re-encodes anything, so that the pieces
// concatenated back together always give the original string.  A '?' that
// appears after the first '#' belongs to the fragment.
func SplitQuery(u string) (base, query, fragment string, ok bool) {
	base = u
	if hashIdx := strings.IndexByte(u, '#'); hashIdx >= 0 {
		base, fragment = u[:hashIdx], u[hashIdx:]
	}

	base, query, ok = strings.Cut(base, "?")

	return base, query, fragment, ok
}

// JoinQuery is the inverse of [SplitQuery].  An empty query is omitted
// together with its '?'.
func JoinQuery(base, query, fragment string) (u string) {
	if query == "" {
		return base + fragment
	}

	return base + "?" + query + fragment
}
