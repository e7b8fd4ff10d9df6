package smbclient

import "fmt"

// PathPredicate decides whether a traversal entry is accepted.
type PathPredicate interface {
	Matches(path string) bool
}

// PredicateFunc adapts a plain function to PathPredicate.
type PredicateFunc func(path string) bool

func (f PredicateFunc) Matches(path string) bool { return f(path) }

// stringMatcher is satisfied by *regexp.Regexp.
type stringMatcher interface {
	MatchString(s string) bool
}

// AsPredicate adapts the accepted filter shapes to a PathPredicate: nil,
// a PathPredicate, a func(string) bool, or any value with a
// MatchString(string) bool method such as *regexp.Regexp. A nil result
// accepts everything.
func AsPredicate(filter any) (PathPredicate, error) {
	switch f := filter.(type) {
	case nil:
		return nil, nil
	case PathPredicate:
		return f, nil
	case func(string) bool:
		if f == nil {
			return nil, nil
		}
		return PredicateFunc(f), nil
	case stringMatcher:
		return PredicateFunc(f.MatchString), nil
	default:
		return nil, fmt.Errorf("unsupported filter type %T", filter)
	}
}

// accepts applies p, treating nil as accept-all.
func accepts(p PathPredicate, path string) bool {
	return p == nil || p.Matches(path)
}
