package domain

import "workboard/internal/skill"

type Location struct {
	Region string `json:"region"`
	City   string `json:"city,omitempty"`
}

// SameRegion is a categorical comparison: both regions must be present and
// equal after trimming and case folding.
func (l Location) SameRegion(other Location) bool {
	a := skill.FoldToken(l.Region)
	b := skill.FoldToken(other.Region)
	return a != "" && a == b
}
