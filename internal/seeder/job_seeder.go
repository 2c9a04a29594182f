package seeder

import (
	"context"
	"errors"
	"time"

	"workboard/internal/domain"
	"workboard/internal/domain/job"
	"workboard/internal/skill"
	"workboard/internal/usecase"
)

type JobSeeder struct {
	// Now anchors the posting dates. Zero means the current time.
	Now time.Time
}

func (JobSeeder) Name() string { return "jobs" }

func (s JobSeeder) Run(ctx context.Context, t Target) error {
	now := s.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	items := []struct {
		ID          string
		EmployerID  string
		Title       string
		Description string
		Region      string
		Skills      string
		SalaryMin   float64
		SalaryMax   float64
		DaysAgo     int
	}{
		{
			ID:          "sample-job-1",
			EmployerID:  "sample-employer-1",
			Title:       "Full Stack Developer",
			Description: "Full stack role across Python services and React front ends.",
			Region:      "Mumbai",
			Skills:      "Python, React, MongoDB, Node.js",
			SalaryMin:   800000,
			SalaryMax:   1200000,
			DaysAgo:     5,
		},
		{
			ID:          "sample-job-2",
			EmployerID:  "sample-employer-1",
			Title:       "Frontend Developer",
			Description: "Build user interfaces with React and JavaScript.",
			Region:      "Mumbai",
			Skills:      "JavaScript, React, CSS, HTML",
			SalaryMin:   600000,
			SalaryMax:   900000,
			DaysAgo:     3,
		},
		{
			ID:          "sample-job-3",
			EmployerID:  "sample-employer-2",
			Title:       "Backend Java Developer",
			Description: "Enterprise applications on Spring Boot and microservices.",
			Region:      "Pune",
			Skills:      "Java, Spring Boot, MySQL, Microservices",
			SalaryMin:   700000,
			SalaryMax:   1100000,
			DaysAgo:     7,
		},
		{
			ID:          "sample-job-4",
			EmployerID:  "sample-employer-2",
			Title:       "DevOps Engineer",
			Description: "Run cloud infrastructure with AWS, Docker and Kubernetes.",
			Region:      "Pune",
			Skills:      "AWS, Docker, Kubernetes, Jenkins",
			SalaryMin:   900000,
			SalaryMax:   1400000,
			DaysAgo:     2,
		},
		{
			ID:          "sample-job-5",
			EmployerID:  "sample-employer-1",
			Title:       "PHP Developer",
			Description: "Web application development on Laravel.",
			Region:      "Remote",
			Skills:      "PHP, Laravel, MySQL, Vue.js",
			SalaryMin:   500000,
			SalaryMax:   800000,
			DaysAgo:     1,
		},
	}

	for _, it := range items {
		posted := now.AddDate(0, 0, -it.DaysAgo)
		minV, maxV := it.SalaryMin, it.SalaryMax
		if _, err := t.Jobs.PostJob(ctx, usecase.JobInput{
			ID:          it.ID,
			EmployerID:  it.EmployerID,
			Title:       it.Title,
			Description: it.Description,
			Skills:      skill.SplitList(it.Skills),
			Region:      it.Region,
			SalaryMin:   &minV,
			SalaryMax:   &maxV,
			Status:      job.StatusOpen,
			PostedAt:    &posted,
		}); err != nil {
			// Seeded in an earlier year; leave it there.
			if errors.Is(err, domain.ErrPostingYearFixed) {
				continue
			}
			return err
		}
	}
	return nil
}
