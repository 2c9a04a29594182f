package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"workboard/internal/domain"
	"workboard/internal/domain/job"
	"workboard/internal/logger"
	"workboard/internal/partition"
	"workboard/internal/skill"
	"workboard/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobInput is a posting as an employer submits it. A nil PostedAt means now.
type JobInput struct {
	ID          string     `json:"id,omitempty"`
	EmployerID  string     `json:"employer_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Skills      []string   `json:"skills"`
	Region      string     `json:"region"`
	City        string     `json:"city,omitempty"`
	SalaryMin   *float64   `json:"salary_min,omitempty"`
	SalaryMax   *float64   `json:"salary_max,omitempty"`
	Status      job.Status `json:"status,omitempty"`
	PostedAt    *time.Time `json:"posted_at,omitempty"`
}

// JobPatch changes only the fields that are set. The posting date is not
// editable because it decides the partition.
type JobPatch struct {
	Title       *string
	Description *string
	Skills      []string
	Region      *string
	City        *string
	SalaryMin   *float64
	SalaryMax   *float64
	Status      *job.Status
}

// JobSearch combines its fields with AND. Query is free text matched
// case-insensitively against the title, the description and the raw skills.
type JobSearch struct {
	Query    string
	Skills   []string
	Region   string
	Years    *store.YearRange
	OpenOnly bool
}

type JobUsecase interface {
	PostJob(ctx context.Context, in JobInput) (job.Posting, error)
	UpdateJob(ctx context.Context, year int, id string, patch JobPatch) (job.Posting, error)
	CloseJob(ctx context.Context, year int, id string) (job.Posting, error)
	DeleteJob(ctx context.Context, year int, id string) error
	GetJob(ctx context.Context, year int, id string) (job.Posting, error)
	FindJob(ctx context.Context, id string) (job.Posting, error)
	JobsByYearRange(ctx context.Context, start, end int) ([]job.Posting, error)
	SearchJobs(ctx context.Context, q JobSearch) ([]job.Posting, error)
	JobsByEmployer(ctx context.Context, employerID string) ([]job.Posting, error)
}

type Jobs struct {
	store      JobStore
	normalizer *skill.Normalizer
	logger     *zap.Logger
	now        func() time.Time
}

func NewJobUsecase(st JobStore, normalizer *skill.Normalizer, log *zap.Logger) *Jobs {
	return &Jobs{
		store:      st,
		normalizer: normalizer,
		logger:     logger.OrNop(log).Named("jobs"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (u *Jobs) PostJob(ctx context.Context, in JobInput) (job.Posting, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return job.Posting{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if err := validateSalary(in.SalaryMin, in.SalaryMax); err != nil {
		return job.Posting{}, err
	}
	status := in.Status
	if status == "" {
		status = job.StatusOpen
	}
	if !status.Valid() {
		return job.Posting{}, fmt.Errorf("%w: status %q", ErrInvalidInput, in.Status)
	}

	postedAt := u.now()
	if in.PostedAt != nil {
		if in.PostedAt.IsZero() {
			return job.Posting{}, fmt.Errorf("%w: posted_at is zero", domain.ErrInvalidIdentifier)
		}
		postedAt = in.PostedAt.UTC()
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	} else {
		prev, err := u.store.FindJob(ctx, id)
		switch {
		case errors.Is(err, domain.ErrJobNotFound):
		case err != nil:
			return job.Posting{}, err
		default:
			year, err := partition.JobPartition(postedAt)
			if err != nil {
				return job.Posting{}, err
			}
			if prev.Year != year {
				return job.Posting{}, fmt.Errorf("%w: %s is stored under %d, not %d", domain.ErrPostingYearFixed, id, prev.Year, year)
			}
			postedAt = prev.PostedAt
		}
	}

	j := job.Posting{
		ID:             id,
		EmployerID:     strings.TrimSpace(in.EmployerID),
		Title:          title,
		Description:    strings.TrimSpace(in.Description),
		RawSkills:      append([]string(nil), in.Skills...),
		RequiredSkills: u.normalizer.Normalize(in.Skills),
		Location:       domain.Location{Region: strings.TrimSpace(in.Region), City: strings.TrimSpace(in.City)},
		SalaryMin:      in.SalaryMin,
		SalaryMax:      in.SalaryMax,
		Status:         status,
		PostedAt:       postedAt,
		UpdatedAt:      u.now(),
	}
	return u.write(ctx, j)
}

// UpdateJob keeps PostedAt and therefore the partition.
func (u *Jobs) UpdateJob(ctx context.Context, year int, id string, patch JobPatch) (job.Posting, error) {
	j, err := u.store.GetJob(ctx, year, id)
	if err != nil {
		return job.Posting{}, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return job.Posting{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
		}
		j.Title = title
	}
	if patch.Description != nil {
		j.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Skills != nil {
		j.RawSkills = append([]string(nil), patch.Skills...)
	}
	if patch.Region != nil {
		j.Location.Region = strings.TrimSpace(*patch.Region)
	}
	if patch.City != nil {
		j.Location.City = strings.TrimSpace(*patch.City)
	}
	if patch.SalaryMin != nil {
		j.SalaryMin = patch.SalaryMin
	}
	if patch.SalaryMax != nil {
		j.SalaryMax = patch.SalaryMax
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return job.Posting{}, fmt.Errorf("%w: status %q", ErrInvalidInput, *patch.Status)
		}
		j.Status = *patch.Status
	}
	if err := validateSalary(j.SalaryMin, j.SalaryMax); err != nil {
		return job.Posting{}, err
	}

	j.RequiredSkills = u.normalizer.Normalize(j.RawSkills)
	j.UpdatedAt = u.now()
	return u.write(ctx, j)
}

func (u *Jobs) CloseJob(ctx context.Context, year int, id string) (job.Posting, error) {
	closed := job.StatusClosed
	return u.UpdateJob(ctx, year, id, JobPatch{Status: &closed})
}

func (u *Jobs) DeleteJob(ctx context.Context, year int, id string) error {
	if err := u.store.DeleteJob(ctx, year, id); err != nil {
		return err
	}
	u.logger.Info("job deleted", zap.String("id", id), zap.Int("year", year))
	return nil
}

func (u *Jobs) GetJob(ctx context.Context, year int, id string) (job.Posting, error) {
	return u.store.GetJob(ctx, year, id)
}

// FindJob is for callers that do not know the posting year. It reads every
// year partition.
func (u *Jobs) FindJob(ctx context.Context, id string) (job.Posting, error) {
	return u.store.FindJob(ctx, id)
}

func (u *Jobs) JobsByYearRange(ctx context.Context, start, end int) ([]job.Posting, error) {
	return u.store.QueryByYearRange(ctx, start, end)
}

// SearchJobs returns postings requiring any of the given skills that also
// mention q.Query.
func (u *Jobs) SearchJobs(ctx context.Context, q JobSearch) ([]job.Posting, error) {
	return u.store.QueryJobs(ctx, store.JobFilter{
		Skills:   u.normalizer.Normalize(q.Skills),
		Region:   strings.TrimSpace(q.Region),
		Text:     strings.TrimSpace(q.Query),
		OpenOnly: q.OpenOnly,
		Years:    q.Years,
	})
}

func (u *Jobs) JobsByEmployer(ctx context.Context, employerID string) ([]job.Posting, error) {
	employerID = strings.TrimSpace(employerID)
	if employerID == "" {
		return nil, fmt.Errorf("%w: employer id is required", ErrInvalidInput)
	}
	return u.store.QueryJobs(ctx, store.JobFilter{EmployerID: employerID})
}

func (u *Jobs) write(ctx context.Context, j job.Posting) (job.Posting, error) {
	year, err := partition.JobPartition(j.PostedAt)
	if err != nil {
		return job.Posting{}, err
	}
	j.Year = year

	inserted, err := u.store.PutJob(ctx, j)
	if err != nil {
		return job.Posting{}, err
	}
	u.logger.Info("job saved",
		zap.String("id", j.ID),
		zap.Int("year", j.Year),
		zap.Bool("created", inserted),
		zap.String("status", string(j.Status)),
	)
	return j, nil
}

func validateSalary(minV, maxV *float64) error {
	if minV != nil && *minV < 0 {
		return fmt.Errorf("%w: negative salary", ErrInvalidInput)
	}
	if maxV != nil && *maxV < 0 {
		return fmt.Errorf("%w: negative salary", ErrInvalidInput)
	}
	if minV != nil && maxV != nil && *minV > *maxV {
		return fmt.Errorf("%w: salary min %v above max %v", ErrInvalidInput, *minV, *maxV)
	}
	return nil
}
