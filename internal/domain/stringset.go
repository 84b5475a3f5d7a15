package domain

import "sort"

// StringSet is an ordered, duplicate-free collection of strings persisted
// as a JSON array. It backs the achievement and theme sets on User, where
// re-adding an existing element must be a no-op, never a duplicate.
type StringSet []string

// Has reports whether v is a member of the set.
func (s StringSet) Has(v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}

// Add returns the set with v included, preserving sorted order. Adding an
// existing element returns the set unchanged.
func (s StringSet) Add(v string) StringSet {
	if s.Has(v) {
		return s
	}
	out := append(append(StringSet(nil), s...), v)
	sort.Strings(out)
	return out
}

// Union returns the set extended with every element of other that is not
// already present. The receiver is not mutated.
func (s StringSet) Union(other []string) StringSet {
	out := s
	for _, v := range other {
		out = out.Add(v)
	}
	return out
}
