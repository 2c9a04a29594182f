package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"workboard/internal/domain"
	"workboard/internal/domain/worker"
	"workboard/internal/logger"
	"workboard/internal/skill"
	"workboard/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WorkerInput is a worker profile as it arrives from a form or import file.
type WorkerInput struct {
	ID       string   `json:"id,omitempty"`
	UserID   string   `json:"user_id,omitempty"`
	FullName string   `json:"full_name"`
	Skills   []string `json:"skills"`
	Region   string   `json:"region"`
	City     string   `json:"city,omitempty"`
}

// WorkerPatch changes only the fields that are set.
type WorkerPatch struct {
	FullName *string
	Skills   []string
	Region   *string
	City     *string
}

type WorkerUsecase interface {
	RegisterWorker(ctx context.Context, in WorkerInput) (worker.Profile, error)
	UpdateWorker(ctx context.Context, id string, patch WorkerPatch) (worker.Profile, error)
	DeleteWorker(ctx context.Context, id string) error
	GetWorker(ctx context.Context, id string) (worker.Profile, error)
	WorkerByUser(ctx context.Context, userID string) (worker.Profile, error)
	WorkersWithSkills(ctx context.Context, rawSkills []string, region string) ([]worker.Profile, error)
}

type Workers struct {
	store      WorkerStore
	normalizer *skill.Normalizer
	logger     *zap.Logger
	now        func() time.Time
}

func NewWorkerUsecase(st WorkerStore, normalizer *skill.Normalizer, log *zap.Logger) *Workers {
	return &Workers{
		store:      st,
		normalizer: normalizer,
		logger:     logger.OrNop(log).Named("workers"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// RegisterWorker creates a profile, or replaces the one with the same id
// while keeping its creation time. A missing id gets a new UUID.
func (u *Workers) RegisterWorker(ctx context.Context, in WorkerInput) (worker.Profile, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}

	return u.modify(ctx, id, func(prev worker.Profile, exists bool) (worker.Profile, error) {
		now := u.now()
		createdAt := now
		if exists {
			createdAt = prev.CreatedAt
		}
		return worker.Profile{
			ID:        id,
			UserID:    strings.TrimSpace(in.UserID),
			FullName:  strings.TrimSpace(in.FullName),
			RawSkills: append([]string(nil), in.Skills...),
			Skills:    u.normalizer.Normalize(in.Skills),
			Location:  domain.Location{Region: strings.TrimSpace(in.Region), City: strings.TrimSpace(in.City)},
			CreatedAt: createdAt,
			UpdatedAt: now,
		}, nil
	})
}

// UpdateWorker re-normalizes the merged skills. The partition never moves
// because the id does not change.
func (u *Workers) UpdateWorker(ctx context.Context, id string, patch WorkerPatch) (worker.Profile, error) {
	return u.modify(ctx, id, func(w worker.Profile, exists bool) (worker.Profile, error) {
		if !exists {
			return worker.Profile{}, fmt.Errorf("%w: %s", domain.ErrWorkerNotFound, id)
		}
		if patch.FullName != nil {
			w.FullName = strings.TrimSpace(*patch.FullName)
		}
		if patch.Skills != nil {
			w.RawSkills = append([]string(nil), patch.Skills...)
		}
		if patch.Region != nil {
			w.Location.Region = strings.TrimSpace(*patch.Region)
		}
		if patch.City != nil {
			w.Location.City = strings.TrimSpace(*patch.City)
		}
		w.Skills = u.normalizer.Normalize(w.RawSkills)
		w.UpdatedAt = u.now()
		return w, nil
	})
}

func (u *Workers) modify(ctx context.Context, id string, fn func(prev worker.Profile, exists bool) (worker.Profile, error)) (worker.Profile, error) {
	w, inserted, err := u.store.ModifyWorker(ctx, id, fn)
	if err != nil {
		return worker.Profile{}, err
	}
	u.logger.Info("worker saved",
		zap.String("id", w.ID),
		zap.Int("partition", w.Partition),
		zap.Bool("created", inserted),
		zap.Strings("skills", w.Skills.Strings()),
	)
	return w, nil
}

func (u *Workers) DeleteWorker(ctx context.Context, id string) error {
	return u.store.DeleteWorker(ctx, id)
}

func (u *Workers) GetWorker(ctx context.Context, id string) (worker.Profile, error) {
	return u.store.GetWorker(ctx, id)
}

func (u *Workers) WorkerByUser(ctx context.Context, userID string) (worker.Profile, error) {
	return u.store.FindWorkerByUser(ctx, strings.TrimSpace(userID))
}

// WorkersWithSkills returns workers holding every listed skill, optionally
// restricted to a region. It reads every worker partition.
func (u *Workers) WorkersWithSkills(ctx context.Context, rawSkills []string, region string) ([]worker.Profile, error) {
	skills := u.normalizer.Normalize(rawSkills)
	if skills.Len() == 0 {
		return nil, fmt.Errorf("%w: no skills given", ErrInvalidInput)
	}
	return u.store.QueryWorkers(ctx, store.WorkerFilter{Skills: skills, Region: strings.TrimSpace(region)})
}
