package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobDone       JobStatus = "done"
	JobFailed     JobStatus = "failed"
)

// Job tracks one background file-processing request.
type Job struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	JobID    string             `bson:"job_id" json:"job_id"` // uuid v4
	Filename string             `bson:"filename" json:"filename"`
	FileType FileType           `bson:"file_type" json:"file_type"`
	Size     int64              `bson:"size" json:"size"`

	Status  JobStatus `bson:"status" json:"status"`
	SavedTo string    `bson:"saved_to,omitempty" json:"saved_to,omitempty"`
	Error   string    `bson:"error,omitempty" json:"error,omitempty"`

	ArchivedTo string `bson:"archived_to,omitempty" json:"archived_to,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
	ExpiresAt time.Time `bson:"expires_at" json:"-"` // for TTL index
}

func (j *Job) Finished() bool {
	return j.Status == JobDone || j.Status == JobFailed
}
