package seeder

import (
	"context"

	"workboard/internal/skill"
	"workboard/internal/usecase"
)

type WorkerSeeder struct{}

func (WorkerSeeder) Name() string { return "workers" }

func (WorkerSeeder) Run(ctx context.Context, t Target) error {
	items := []struct {
		ID       string
		UserID   string
		FullName string
		Region   string
		Skills   string
	}{
		{ID: "sample-worker-1", UserID: "sample-user-worker-1", FullName: "Rahul Sharma", Region: "Mumbai", Skills: "Python, JavaScript, React, Node.js"},
		{ID: "sample-worker-2", UserID: "sample-user-worker-2", FullName: "Priya Patel", Region: "Pune", Skills: "Java, Spring Boot, MySQL, Angular"},
		{ID: "sample-worker-3", UserID: "sample-user-worker-3", FullName: "Amit Kumar", Region: "Delhi", Skills: "PHP, Laravel, Vue.js, PostgreSQL"},
	}

	for _, it := range items {
		if _, err := t.Workers.RegisterWorker(ctx, usecase.WorkerInput{
			ID:       it.ID,
			UserID:   it.UserID,
			FullName: it.FullName,
			Skills:   skill.SplitList(it.Skills),
			Region:   it.Region,
		}); err != nil {
			return err
		}
	}
	return nil
}
