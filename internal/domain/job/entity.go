package job

import (
	"time"

	"workboard/internal/domain"
	"workboard/internal/skill"
)

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

func (s Status) Valid() bool {
	return s == StatusOpen || s == StatusClosed
}

type Posting struct {
	ID             string          `json:"id"`
	EmployerID     string          `json:"employer_id,omitempty"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	RawSkills      []string        `json:"raw_skills"`
	RequiredSkills skill.Set       `json:"required_skills"`
	Location       domain.Location `json:"location"`
	SalaryMin      *float64        `json:"salary_min,omitempty"`
	SalaryMax      *float64        `json:"salary_max,omitempty"`
	Status         Status          `json:"status"`
	PostedAt       time.Time       `json:"posted_at"`
	Year           int             `json:"year"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (p Posting) IsOpen() bool {
	return p.Status == "" || p.Status == StatusOpen
}
