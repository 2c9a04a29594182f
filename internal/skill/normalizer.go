// Package skill canonicalizes free-text skill tokens so worker profiles and
// job postings can be compared token for token.
package skill

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Normalizer is safe for concurrent use. Its synonym table is fixed at
// construction.
type Normalizer struct {
	synonyms map[string]string
}

// NewNormalizer cleans the synonym table and resolves chains (a -> b -> c)
// to their final token, so a normalized token never maps any further.
// Cyclic tables are rejected.
func NewNormalizer(synonyms map[string]string) (*Normalizer, error) {
	cleaned := make(map[string]string, len(synonyms))
	keys := make([]string, 0, len(synonyms))
	for k, v := range synonyms {
		from := FoldToken(k)
		to := FoldToken(v)
		if from == "" || to == "" {
			continue
		}
		if prev, ok := cleaned[from]; ok && prev != to {
			return nil, fmt.Errorf("conflicting synonyms for %q: %q and %q", from, prev, to)
		}
		if _, ok := cleaned[from]; !ok {
			keys = append(keys, from)
		}
		cleaned[from] = to
	}
	sort.Strings(keys)

	resolved := make(map[string]string, len(cleaned))
	for _, k := range keys {
		seen := map[string]struct{}{k: {}}
		cur := cleaned[k]
		for {
			next, ok := cleaned[cur]
			if !ok || next == cur {
				break
			}
			if _, loop := seen[cur]; loop {
				return nil, fmt.Errorf("synonym cycle through %q", k)
			}
			seen[cur] = struct{}{}
			cur = next
		}
		if cur != k {
			resolved[k] = cur
		}
	}

	return &Normalizer{synonyms: resolved}, nil
}

// MustNormalizer is for package-level defaults built from literal tables.
func MustNormalizer(synonyms map[string]string) *Normalizer {
	n, err := NewNormalizer(synonyms)
	if err != nil {
		panic(err)
	}
	return n
}

// Normalize trims, case-folds, collapses synonyms, drops empty tokens and
// deduplicates. The result does not depend on input order.
func (n *Normalizer) Normalize(raw []string) Set {
	tokens := make([]string, 0, len(raw))
	for _, r := range raw {
		t := n.Canonical(r)
		if t == "" {
			continue
		}
		tokens = append(tokens, t)
	}
	return NewSet(tokens...)
}

// NormalizeList normalizes a comma separated list such as "Python, SQL".
func (n *Normalizer) NormalizeList(raw string) Set {
	return n.Normalize(SplitList(raw))
}

func (n *Normalizer) Canonical(raw string) string {
	t := FoldToken(raw)
	if t == "" {
		return ""
	}
	if n != nil {
		if syn, ok := n.synonyms[t]; ok {
			return syn
		}
	}
	return t
}

// FoldToken trims, collapses inner whitespace and applies Unicode case
// folding.
func FoldToken(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	if s == "" {
		return ""
	}
	// cases.Caser keeps state between calls and must not be shared.
	return cases.Fold().String(s)
}

func SplitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
