package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"workboard/internal/domain"
	"workboard/internal/domain/application"
	"workboard/internal/domain/job"
	"workboard/internal/logger"
	"workboard/internal/store"

	"go.uber.org/zap"
)

type ApplicationUsecase interface {
	Apply(ctx context.Context, workerID, jobID string) (application.Application, error)
	UpdateApplicationStatus(ctx context.Context, id string, status application.Status) (application.Application, error)
	GetApplication(ctx context.Context, id string) (application.Application, error)
	DeleteApplication(ctx context.Context, id string) error
	WorkerApplications(ctx context.Context, workerID string, status application.Status) ([]application.AppliedJob, error)
	EmployerApplicants(ctx context.Context, employerID string) ([]application.Applicant, error)
	ApplicationStats(ctx context.Context) ([]application.StatusCount, error)
}

type Applications struct {
	store  ApplicationStore
	logger *zap.Logger
	now    func() time.Time
}

func NewApplicationUsecase(st ApplicationStore, log *zap.Logger) *Applications {
	return &Applications{
		store:  st,
		logger: logger.OrNop(log).Named("applications"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Apply records a pending application from the worker to the posting. Both
// must exist and the posting must be open.
func (u *Applications) Apply(ctx context.Context, workerID, jobID string) (application.Application, error) {
	workerID = strings.TrimSpace(workerID)
	jobID = strings.TrimSpace(jobID)

	if _, err := u.store.GetWorker(ctx, workerID); err != nil {
		return application.Application{}, err
	}
	j, err := u.store.FindJob(ctx, jobID)
	if err != nil {
		return application.Application{}, err
	}
	if !j.IsOpen() {
		return application.Application{}, fmt.Errorf("%w: job %s is closed", ErrInvalidInput, jobID)
	}

	now := u.now()
	a, err := u.store.CreateApplication(ctx, application.Application{
		JobID:     j.ID,
		JobYear:   j.Year,
		WorkerID:  workerID,
		Status:    application.StatusPending,
		AppliedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return application.Application{}, err
	}
	u.logger.Info("application created",
		zap.String("id", a.ID),
		zap.String("worker_id", a.WorkerID),
		zap.String("job_id", a.JobID),
		zap.Int("year", a.JobYear),
	)
	return a, nil
}

func (u *Applications) UpdateApplicationStatus(ctx context.Context, id string, status application.Status) (application.Application, error) {
	if !status.Valid() {
		return application.Application{}, fmt.Errorf("%w: application status %q", ErrInvalidInput, status)
	}
	a, err := u.store.ModifyApplication(ctx, strings.TrimSpace(id), func(a application.Application) (application.Application, error) {
		a.Status = status
		a.UpdatedAt = u.now()
		return a, nil
	})
	if err != nil {
		return application.Application{}, err
	}
	u.logger.Info("application status changed", zap.String("id", a.ID), zap.String("status", string(status)))
	return a, nil
}

func (u *Applications) GetApplication(ctx context.Context, id string) (application.Application, error) {
	return u.store.GetApplication(ctx, strings.TrimSpace(id))
}

func (u *Applications) DeleteApplication(ctx context.Context, id string) error {
	if err := u.store.DeleteApplication(ctx, strings.TrimSpace(id)); err != nil {
		return err
	}
	u.logger.Info("application deleted", zap.String("id", id))
	return nil
}

// WorkerApplications lists the worker's applications with their postings,
// newest first. An empty status lists all of them. Applications whose
// posting has since been deleted are left out.
func (u *Applications) WorkerApplications(ctx context.Context, workerID string, status application.Status) ([]application.AppliedJob, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: application status %q", ErrInvalidInput, status)
	}
	w, err := u.store.GetWorker(ctx, strings.TrimSpace(workerID))
	if err != nil {
		return nil, err
	}
	apps, err := u.store.QueryApplications(ctx, store.ApplicationFilter{WorkerID: w.ID, Status: status})
	if err != nil {
		return nil, err
	}

	out := make([]application.AppliedJob, 0, len(apps))
	for _, a := range apps {
		j, err := u.store.GetJob(ctx, a.JobYear, a.JobID)
		if errors.Is(err, domain.ErrJobNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, appliedJob(a, j))
	}
	return out, nil
}

// EmployerApplicants lists applications to every posting of the employer,
// newest first. Only the application partitions of the employer's posting
// years are read.
func (u *Applications) EmployerApplicants(ctx context.Context, employerID string) ([]application.Applicant, error) {
	employerID = strings.TrimSpace(employerID)
	if employerID == "" {
		return nil, fmt.Errorf("%w: employer id is required", ErrInvalidInput)
	}
	jobs, err := u.store.QueryJobs(ctx, store.JobFilter{EmployerID: employerID})
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return []application.Applicant{}, nil
	}

	byID := make(map[string]job.Posting, len(jobs))
	ids := make(map[string]struct{}, len(jobs))
	var years []int
	seenYear := map[int]bool{}
	for _, j := range jobs {
		byID[j.ID] = j
		ids[j.ID] = struct{}{}
		if !seenYear[j.Year] {
			seenYear[j.Year] = true
			years = append(years, j.Year)
		}
	}
	sort.Ints(years)

	apps, err := u.store.QueryApplications(ctx, store.ApplicationFilter{JobIDs: ids, Years: years})
	if err != nil {
		return nil, err
	}

	out := make([]application.Applicant, 0, len(apps))
	for _, a := range apps {
		j, ok := byID[a.JobID]
		if !ok || j.Year != a.JobYear {
			continue
		}
		w, err := u.store.GetWorker(ctx, a.WorkerID)
		if errors.Is(err, domain.ErrWorkerNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, application.Applicant{
			Application: a,
			JobTitle:    j.Title,
			FullName:    w.FullName,
			Region:      w.Location.Region,
			Skills:      w.Skills.Strings(),
		})
	}
	u.logger.Debug("applicants listed",
		zap.String("employer_id", employerID),
		zap.Int("jobs", len(jobs)),
		zap.Ints("years", years),
		zap.Int("applicants", len(out)),
	)
	return out, nil
}

// ApplicationStats counts applications per status. Every status is listed,
// including those with no applications.
func (u *Applications) ApplicationStats(ctx context.Context) ([]application.StatusCount, error) {
	apps, err := u.store.QueryApplications(ctx, store.ApplicationFilter{})
	if err != nil {
		return nil, err
	}
	counts := make(map[application.Status]int64, len(application.Statuses))
	for _, a := range apps {
		counts[a.Status]++
	}
	out := make([]application.StatusCount, 0, len(application.Statuses))
	for _, st := range application.Statuses {
		out = append(out, application.StatusCount{Status: st, Count: counts[st]})
	}
	return out, nil
}

func appliedJob(a application.Application, j job.Posting) application.AppliedJob {
	return application.AppliedJob{
		Application:    a,
		Title:          j.Title,
		Description:    j.Description,
		EmployerID:     j.EmployerID,
		Region:         j.Location.Region,
		RequiredSkills: j.RequiredSkills.Strings(),
		SalaryMin:      j.SalaryMin,
		SalaryMax:      j.SalaryMax,
		PostedAt:       j.PostedAt,
	}
}
