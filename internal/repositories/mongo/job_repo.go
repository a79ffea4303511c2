package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/scribely/internal/models"
	"github.com/yoockh/scribely/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const JobsCollection = "jobs"

type JobRepository interface {
	Upsert(ctx context.Context, j *models.Job) error
	GetByJobID(ctx context.Context, jobID string) (*models.Job, error)
}

type jobRepo struct {
	col *mongo.Collection
}

func NewJobRepo(db *mongo.Database) JobRepository {
	return &jobRepo{col: db.Collection(JobsCollection)}
}

func (r *jobRepo) Upsert(ctx context.Context, j *models.Job) error {
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.UpdateOne(ctx,
		bson.M{"job_id": j.JobID},
		bson.M{
			"$set": bson.M{
				"filename":    j.Filename,
				"file_type":   j.FileType,
				"size":        j.Size,
				"status":      j.Status,
				"saved_to":    j.SavedTo,
				"error":       j.Error,
				"archived_to": j.ArchivedTo,
				"updated_at":  j.UpdatedAt,
				"expires_at":  j.ExpiresAt,
			},
			"$setOnInsert": bson.M{"created_at": j.CreatedAt},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *jobRepo) GetByJobID(ctx context.Context, jobID string) (*models.Job, error) {
	var j models.Job
	err := r.col.FindOne(ctx, bson.M{"job_id": jobID}).Decode(&j)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}
