package skill

import "sort"

// Set is a sorted, duplicate-free list of canonical skill tokens.
type Set []string

func NewSet(tokens ...string) Set {
	if len(tokens) == 0 {
		return Set{}
	}
	cp := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t == "" {
			continue
		}
		cp = append(cp, t)
	}
	sort.Strings(cp)
	out := cp[:0]
	for i, t := range cp {
		if i > 0 && t == cp[i-1] {
			continue
		}
		out = append(out, t)
	}
	return Set(out)
}

func (s Set) Len() int {
	return len(s)
}

func (s Set) Contains(token string) bool {
	i := sort.SearchStrings(s, token)
	return i < len(s) && s[i] == token
}

// Intersect returns the tokens present in both sets.
func (s Set) Intersect(other Set) Set {
	out := make(Set, 0)
	i, j := 0, 0
	for i < len(s) && j < len(other) {
		switch {
		case s[i] == other[j]:
			out = append(out, s[i])
			i++
			j++
		case s[i] < other[j]:
			i++
		default:
			j++
		}
	}
	return out
}

// Difference returns the tokens of s missing from other.
func (s Set) Difference(other Set) Set {
	out := make(Set, 0)
	for _, t := range s {
		if !other.Contains(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s Set) ContainsAll(other Set) bool {
	for _, t := range other {
		if !s.Contains(t) {
			return false
		}
	}
	return true
}

func (s Set) ContainsAny(other Set) bool {
	for _, t := range other {
		if s.Contains(t) {
			return true
		}
	}
	return false
}

func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

func (s Set) Strings() []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
