package store

import (
	"fmt"
	"strings"

	"workboard/internal/domain"
	"workboard/internal/domain/application"
	"workboard/internal/domain/job"
	"workboard/internal/domain/worker"
	"workboard/internal/partition"
	"workboard/internal/skill"
)

// YearRange is inclusive on both ends.
type YearRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (r YearRange) Validate() error {
	if err := partition.ValidateYear(r.Start); err != nil {
		return err
	}
	if err := partition.ValidateYear(r.End); err != nil {
		return err
	}
	if r.Start > r.End {
		return fmt.Errorf("%w: year range %d-%d is reversed", domain.ErrInvalidIdentifier, r.Start, r.End)
	}
	return nil
}

func (r YearRange) Contains(year int) bool {
	return year >= r.Start && year <= r.End
}

// WorkerFilter matches workers holding every listed skill. Empty fields
// match everything.
type WorkerFilter struct {
	Skills skill.Set
	Region string
}

func (f WorkerFilter) Match(w worker.Profile) bool {
	if f.Region != "" && !w.Location.SameRegion(domain.Location{Region: f.Region}) {
		return false
	}
	return w.Skills.ContainsAll(f.Skills)
}

// JobFilter matches postings requiring at least one of Skills. Years bounds
// which partitions are read at all. Text is a case-insensitive substring of
// the title, the description or one of the raw skills.
type JobFilter struct {
	Skills     skill.Set
	Region     string
	EmployerID string
	Text       string
	OpenOnly   bool
	Years      *YearRange
}

func (f JobFilter) Match(j job.Posting) bool {
	if f.OpenOnly && !j.IsOpen() {
		return false
	}
	if f.EmployerID != "" && j.EmployerID != f.EmployerID {
		return false
	}
	if f.Region != "" && !j.Location.SameRegion(domain.Location{Region: f.Region}) {
		return false
	}
	if f.Years != nil && !f.Years.Contains(j.Year) {
		return false
	}
	if f.Skills.Len() > 0 && !j.RequiredSkills.ContainsAny(f.Skills) {
		return false
	}
	if f.Text != "" && !mentions(j, skill.FoldToken(f.Text)) {
		return false
	}
	return true
}

func mentions(j job.Posting, folded string) bool {
	if folded == "" {
		return true
	}
	fields := append([]string{j.Title, j.Description}, j.RawSkills...)
	for _, field := range fields {
		if strings.Contains(skill.FoldToken(field), folded) {
			return true
		}
	}
	return false
}

// ApplicationFilter selects applications. Years lists the posting years
// whose partitions are read; nil reads all of them.
type ApplicationFilter struct {
	WorkerID string
	JobIDs   map[string]struct{}
	Status   application.Status
	Years    []int
}

func (f ApplicationFilter) Match(a application.Application) bool {
	if f.WorkerID != "" && a.WorkerID != f.WorkerID {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.JobIDs != nil {
		if _, ok := f.JobIDs[a.JobID]; !ok {
			return false
		}
	}
	return true
}
