// Package application holds a worker's application to one job posting.
// Applications live beside their posting: they are stored in the partition
// for the posting's year, which never changes once the posting is stored.
package application

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Statuses is every valid status in display order.
var Statuses = []Status{StatusPending, StatusApproved, StatusRejected}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

var idSpace = uuid.MustParse("5b0c6a52-3f7e-4d8e-9a41-0f3d2c7b9e15")

// IDFor derives the application id from the (job, worker) pair, so a second
// application for the same pair lands on the same key.
func IDFor(jobID, workerID string) string {
	return uuid.NewSHA1(idSpace, []byte(jobID+"\x00"+workerID)).String()
}

type Application struct {
	ID        string    `json:"id"`
	JobID     string    `json:"job_id"`
	JobYear   int       `json:"job_year"`
	WorkerID  string    `json:"worker_id"`
	Status    Status    `json:"status"`
	AppliedAt time.Time `json:"applied_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppliedJob is an application as the applying worker sees it.
type AppliedJob struct {
	Application
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	EmployerID     string    `json:"employer_id,omitempty"`
	Region         string    `json:"region,omitempty"`
	RequiredSkills []string  `json:"required_skills"`
	SalaryMin      *float64  `json:"salary_min,omitempty"`
	SalaryMax      *float64  `json:"salary_max,omitempty"`
	PostedAt       time.Time `json:"posted_at"`
}

// Applicant is an application as the employer sees it.
type Applicant struct {
	Application
	JobTitle string   `json:"job_title"`
	FullName string   `json:"full_name,omitempty"`
	Region   string   `json:"region,omitempty"`
	Skills   []string `json:"skills"`
}

type StatusCount struct {
	Status Status `json:"status"`
	Count  int64  `json:"count"`
}
