package matching

import (
	"fmt"
	"math"

	"workboard/internal/domain/job"
	"workboard/internal/domain/match"
	"workboard/internal/domain/worker"
)

const weightTolerance = 1e-9

type Weights struct {
	Skill    float64
	Location float64
}

func DefaultWeights() Weights {
	return Weights{Skill: 0.7, Location: 0.3}
}

func (w Weights) Validate() error {
	if w.Skill < 0 || w.Location < 0 {
		return fmt.Errorf("weights must be non-negative: skill=%v location=%v", w.Skill, w.Location)
	}
	if math.Abs(w.Skill+w.Location-1) > weightTolerance {
		return fmt.Errorf("weights must sum to 1: skill=%v location=%v", w.Skill, w.Location)
	}
	return nil
}

type Scorer struct {
	weights Weights
}

func NewScorer(w Weights) (*Scorer, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{weights: w}, nil
}

func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score compares a normalized worker profile against a posting. A posting
// without required skills contributes nothing on the skill side.
func (s *Scorer) Score(w worker.Profile, j job.Posting) match.Result {
	matched := j.RequiredSkills.Intersect(w.Skills)
	missing := j.RequiredSkills.Difference(w.Skills)

	overlap := 0.0
	if n := j.RequiredSkills.Len(); n > 0 {
		overlap = float64(matched.Len()) / float64(n)
	}

	bonus := w.Location.SameRegion(j.Location)
	locationComponent := 0.0
	if bonus {
		locationComponent = 1
	}

	score := clampFloat(overlap*s.weights.Skill+locationComponent*s.weights.Location, 0, 1)

	return match.Result{
		WorkerID:      w.ID,
		JobID:         j.ID,
		Score:         score,
		SkillOverlap:  matched.Len(),
		LocationBonus: bonus,
		MatchedSkills: matched.Strings(),
		MissingSkills: missing.Strings(),
	}
}

func clampFloat(v, minV, maxV float64) float64 {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
