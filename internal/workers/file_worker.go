package workers

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/scribely/internal/models"
	"github.com/yoockh/scribely/internal/services"
	"github.com/yoockh/scribely/internal/storage"
	"github.com/yoockh/scribely/internal/utils"
)

var (
	ErrQueueFull  = errors.New("processing queue is full")
	ErrNotStarted = errors.New("worker pool not started")
)

// Task is one accepted upload waiting for background processing.
type Task struct {
	Job    *models.Job
	Upload *models.Upload
}

type FileWorkerPool struct {
	Jobs        services.JobService
	Transcripts services.TranscriptService
	Archive     storage.Uploader // optional

	NumWorkers int
	QueueSize  int
	JobTimeout time.Duration

	Logger *logrus.Logger

	mu    sync.RWMutex
	queue chan Task
	wg    sync.WaitGroup
}

func (p *FileWorkerPool) Start(ctx context.Context) error {
	if p.Jobs == nil || p.Transcripts == nil {
		return errors.New("FileWorkerPool missing dependency: Jobs/Transcripts must be set")
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 2
	}
	if p.QueueSize <= 0 {
		p.QueueSize = 16
	}
	if p.JobTimeout <= 0 {
		p.JobTimeout = 10 * time.Minute
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	p.mu.Lock()
	p.queue = make(chan Task, p.QueueSize)
	p.mu.Unlock()

	for i := 0; i < p.NumWorkers; i++ {
		p.wg.Add(1)
		go p.run(ctx)
	}
	return nil
}

// Submit enqueues t without blocking.
func (p *FileWorkerPool) Submit(t Task) error {
	p.mu.RLock()
	q := p.queue
	p.mu.RUnlock()
	if q == nil {
		return ErrNotStarted
	}
	select {
	case q <- t:
		return nil
	default:
		return ErrQueueFull
	}
}

// Wait blocks until every worker has exited after ctx is cancelled.
func (p *FileWorkerPool) Wait() { p.wg.Wait() }

func (p *FileWorkerPool) run(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			p.abandonQueued()
			return
		case t := <-p.queue:
			p.handle(ctx, t)
		}
	}
}

func (p *FileWorkerPool) abandonQueued() {
	bg := context.Background()
	for {
		select {
		case t := <-p.queue:
			if err := p.Jobs.MarkFailed(bg, t.Job, "Server shutting down"); err != nil {
				p.Logger.WithError(err).WithField("job_id", t.Job.JobID).Warn("failed to mark abandoned job")
			}
		default:
			return
		}
	}
}

func (p *FileWorkerPool) handle(parent context.Context, t Task) {
	// in-flight work is allowed to finish after shutdown starts
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), p.JobTimeout)
	defer cancel()

	log := p.Logger.WithFields(logrus.Fields{
		"job_id":   t.Job.JobID,
		"filename": t.Upload.Filename,
		"size":     t.Upload.Size,
	})
	start := time.Now()

	if err := p.Jobs.MarkProcessing(ctx, t.Job); err != nil {
		log.WithError(err).Warn("failed to mark job processing")
	}
	log.Info("background processing started")

	if p.Archive != nil {
		p.archive(ctx, log, t)
	}

	res, err := p.Transcripts.ProcessFile(ctx, t.Upload, "")
	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"error_code":  string(utils.CodeOf(err)),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Error("background processing failed")
		if mErr := p.Jobs.MarkFailed(ctx, t.Job, utils.SafeMessage(err)); mErr != nil {
			log.WithError(mErr).Warn("failed to mark job failed")
		}
		return
	}

	if err := p.Jobs.MarkDone(ctx, t.Job, res.SavedTo); err != nil {
		log.WithError(err).Warn("failed to mark job done")
	}
	log.WithFields(logrus.Fields{
		"saved_to":    res.SavedTo,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("background processing completed")
}

func (p *FileWorkerPool) archive(ctx context.Context, log *logrus.Entry, t Task) {
	object := storage.ArchiveObjectName(t.Job.JobID, t.Upload.Filename, t.Job.CreatedAt)
	uri, err := p.Archive.Upload(ctx, object, t.Upload.MimeType, bytes.NewReader(t.Upload.Data))
	if err != nil {
		log.WithError(err).Warn("failed to archive upload")
		return
	}
	if err := p.Jobs.SetArchived(ctx, t.Job, uri); err != nil {
		log.WithError(err).Warn("failed to record archive location")
	}
}
