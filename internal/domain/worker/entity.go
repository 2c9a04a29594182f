package worker

import (
	"time"

	"workboard/internal/domain"
	"workboard/internal/skill"
)

type Profile struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id,omitempty"`
	FullName  string          `json:"full_name,omitempty"`
	RawSkills []string        `json:"raw_skills"`
	Skills    skill.Set       `json:"skills"`
	Location  domain.Location `json:"location"`
	Partition int             `json:"partition"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
