package match

import (
	"iter"

	"workboard/internal/domain/application"
)

// Result is computed on demand and never persisted. ApplicationStatus is set
// when the worker has already applied to the posting.
type Result struct {
	WorkerID          string             `json:"worker_id"`
	JobID             string             `json:"job_id"`
	Score             float64            `json:"score"`
	SkillOverlap      int                `json:"skill_overlap"`
	LocationBonus     bool               `json:"location_bonus"`
	MatchedSkills     []string           `json:"matched_skills"`
	MissingSkills     []string           `json:"missing_skills"`
	ApplicationStatus application.Status `json:"application_status,omitempty"`
}

// Page is one slice of a ranked result list. Total counts every scored
// candidate, not just the ones on this page.
type Page struct {
	WorkerID string   `json:"worker_id"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
	Total    int      `json:"total"`
	Results  []Result `json:"results"`
}

// Seq yields the page's results in rank order. It can be ranged over any
// number of times.
func (p Page) Seq() iter.Seq[Result] {
	results := p.Results
	return func(yield func(Result) bool) {
		for _, r := range results {
			if !yield(r) {
				return
			}
		}
	}
}

func (p Page) HasNext() bool {
	if p.Page < 0 || p.PageSize <= 0 || p.Total <= 0 {
		return false
	}
	pages := p.Total/p.PageSize + min(p.Total%p.PageSize, 1)
	return p.Page < pages-1
}
