package matching

import (
	"sort"
	"time"

	"workboard/internal/domain/match"
)

type Candidate struct {
	Result   match.Result
	PostedAt time.Time
}

// Rank orders candidates by score (highest first), then posting recency
// (newest first), then job id ascending. The order is total, so equal
// inputs always paginate the same way.
func Rank(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		return Less(cands[i], cands[j])
	})
}

func Less(a, b Candidate) bool {
	if a.Result.Score != b.Result.Score {
		return a.Result.Score > b.Result.Score
	}
	if !a.PostedAt.Equal(b.PostedAt) {
		return a.PostedAt.After(b.PostedAt)
	}
	return a.Result.JobID < b.Result.JobID
}

// Paginate returns the [page*size, (page+1)*size) window of ranked results.
// Pages past the end, however large, are empty.
func Paginate(cands []Candidate, page, size int) []match.Result {
	if page < 0 || size <= 0 || page >= PageCount(len(cands), size) {
		return []match.Result{}
	}
	start := page * size
	end := start + size
	if end > len(cands) {
		end = len(cands)
	}
	out := make([]match.Result, 0, end-start)
	for _, c := range cands[start:end] {
		out = append(out, c.Result)
	}
	return out
}

// PageCount is the number of pages needed for total results. It never
// multiplies, so it is safe for any page size.
func PageCount(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return total/size + min(total%size, 1)
}
