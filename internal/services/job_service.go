package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/scribely/internal/cache"
	"github.com/yoockh/scribely/internal/models"
	mongorepo "github.com/yoockh/scribely/internal/repositories/mongo"
	"github.com/yoockh/scribely/internal/utils"
)

// JobService records the lifecycle of background file processing.
type JobService interface {
	Create(ctx context.Context, u *models.Upload, ft models.FileType) (*models.Job, error)
	MarkProcessing(ctx context.Context, j *models.Job) error
	MarkDone(ctx context.Context, j *models.Job, savedTo string) error
	MarkFailed(ctx context.Context, j *models.Job, reason string) error
	SetArchived(ctx context.Context, j *models.Job, uri string) error
	Get(ctx context.Context, jobID string) (*models.Job, error)
}

type jobService struct {
	cache cache.Cache
	repo  mongorepo.JobRepository // optional
	ttl   time.Duration
	log   *logrus.Logger
	now   func() time.Time
}

func NewJobService(c cache.Cache, repo mongorepo.JobRepository, ttl time.Duration, log *logrus.Logger) JobService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &jobService{cache: c, repo: repo, ttl: ttl, log: log, now: time.Now}
}

func jobKey(id string) string { return "job:" + id }

func (s *jobService) Create(ctx context.Context, u *models.Upload, ft models.FileType) (*models.Job, error) {
	const op = "JobService.Create"

	now := s.now().UTC()
	j := &models.Job{
		JobID:     uuid.NewString(),
		Filename:  u.Filename,
		FileType:  ft,
		Size:      u.Size,
		Status:    models.JobQueued,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.save(ctx, j); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create job", err)
	}
	return j, nil
}

func (s *jobService) MarkProcessing(ctx context.Context, j *models.Job) error {
	j.Status = models.JobProcessing
	return s.update(ctx, "JobService.MarkProcessing", j)
}

func (s *jobService) MarkDone(ctx context.Context, j *models.Job, savedTo string) error {
	j.Status = models.JobDone
	j.SavedTo = savedTo
	j.Error = ""
	return s.update(ctx, "JobService.MarkDone", j)
}

func (s *jobService) MarkFailed(ctx context.Context, j *models.Job, reason string) error {
	j.Status = models.JobFailed
	j.Error = reason
	return s.update(ctx, "JobService.MarkFailed", j)
}

func (s *jobService) SetArchived(ctx context.Context, j *models.Job, uri string) error {
	j.ArchivedTo = uri
	return s.update(ctx, "JobService.SetArchived", j)
}

func (s *jobService) update(ctx context.Context, op string, j *models.Job) error {
	j.UpdatedAt = s.now().UTC()
	if err := s.save(ctx, j); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to update job", err)
	}
	return nil
}

func (s *jobService) save(ctx context.Context, j *models.Job) error {
	if err := s.cache.SetJSON(ctx, jobKey(j.JobID), j, s.ttl); err != nil {
		return err
	}
	if s.repo != nil {
		if err := s.repo.Upsert(ctx, j); err != nil {
			s.log.WithError(err).WithField("job_id", j.JobID).Warn("failed to persist job history")
		}
	}
	return nil
}

func (s *jobService) Get(ctx context.Context, jobID string) (*models.Job, error) {
	const op = "JobService.Get"

	if _, err := uuid.Parse(jobID); err != nil {
		return nil, utils.E(utils.CodeNotFound, op, "Job not found", nil)
	}

	var j models.Job
	hit, err := s.cache.GetJSON(ctx, jobKey(jobID), &j)
	if err != nil {
		s.log.WithError(err).WithField("job_id", jobID).Warn("job cache lookup failed")
	}
	if hit {
		return &j, nil
	}

	if s.repo != nil {
		found, err := s.repo.GetByJobID(ctx, jobID)
		switch {
		case err == nil:
			return found, nil
		case !errors.Is(err, utils.ErrNotFound):
			return nil, utils.E(utils.CodeInternal, op, "failed to load job", err)
		}
	}
	return nil, utils.E(utils.CodeNotFound, op, "Job not found", nil)
}
