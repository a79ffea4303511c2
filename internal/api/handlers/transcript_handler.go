package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/scribely/internal/api/middleware"
	"github.com/yoockh/scribely/internal/models"
	"github.com/yoockh/scribely/internal/services"
	"github.com/yoockh/scribely/internal/utils"
	"github.com/yoockh/scribely/internal/workers"
)

const ServiceName = "scribely"

// TaskQueue accepts uploads for background processing.
type TaskQueue interface {
	Submit(t workers.Task) error
}

type TranscriptHandler struct {
	svc   services.TranscriptService
	jobs  services.JobService
	queue TaskQueue
	log   *logrus.Logger
	now   func() time.Time
}

func NewTranscriptHandler(svc services.TranscriptService, jobs services.JobService, queue TaskQueue, log *logrus.Logger) *TranscriptHandler {
	return &TranscriptHandler{svc: svc, jobs: jobs, queue: queue, log: log, now: time.Now}
}

func (h *TranscriptHandler) timestamp() string {
	return h.now().UTC().Format(models.TimestampLayout)
}

func (h *TranscriptHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Timestamp: h.timestamp(),
		Service:   ServiceName,
	})
}

func (h *TranscriptHandler) Process(c *gin.Context) {
	transcript := c.GetString(middleware.TranscriptKey)
	h.log.WithFields(logrus.Fields{
		"ip":             c.ClientIP(),
		"transcript_len": len(transcript),
	}).Info("processing transcript request")

	res, err := h.svc.ProcessTranscript(c.Request.Context(), transcript)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ProcessFile answers synchronously when a transcript is present and queues
// file-only uploads for background processing.
func (h *TranscriptHandler) ProcessFile(c *gin.Context) {
	const op = "TranscriptHandler.ProcessFile"

	transcript := c.GetString(middleware.TranscriptKey)
	var upload *models.Upload
	if v, ok := c.Get(middleware.UploadKey); ok {
		upload, _ = v.(*models.Upload)
	}

	fields := logrus.Fields{
		"ip":             c.ClientIP(),
		"has_file":       upload != nil,
		"has_transcript": transcript != "",
	}
	if upload != nil {
		fields["filename"] = upload.Filename
		fields["file_size"] = upload.Size
	}
	h.log.WithFields(fields).Info("processing file or transcript request")

	if transcript != "" || upload == nil {
		res, err := h.svc.ProcessFile(c.Request.Context(), upload, transcript)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
		return
	}

	ft, err := h.svc.Classify(upload)
	if err != nil {
		writeError(c, err)
		return
	}

	job, err := h.jobs.Create(c.Request.Context(), upload, ft)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set("job_id", job.JobID)

	if err := h.queue.Submit(workers.Task{Job: job, Upload: upload}); err != nil {
		reason := "Processing queue is full"
		if !errors.Is(err, workers.ErrQueueFull) {
			reason = "Processing is not available"
		}
		if mErr := h.jobs.MarkFailed(c.Request.Context(), job, reason); mErr != nil {
			h.log.WithError(mErr).WithField("job_id", job.JobID).Warn("failed to mark rejected job")
		}
		writeError(c, utils.E(utils.CodeUnavailable, op, reason, err))
		return
	}

	h.log.WithFields(logrus.Fields{
		"job_id":    job.JobID,
		"filename":  upload.Filename,
		"file_type": ft,
	}).Info("file queued for background processing")

	c.JSON(http.StatusOK, models.Accepted{
		Message:   "File received and processing started",
		Filename:  upload.Filename,
		Status:    models.StatusProcessing,
		Timestamp: h.timestamp(),
		JobID:     job.JobID,
	})
}
