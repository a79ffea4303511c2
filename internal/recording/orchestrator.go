package recording

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/scribely/internal/apiclient"
)

const DefaultUploadTimeout = 300 * time.Second

// Backend sends a finished recording somewhere it can be transcribed.
type Backend interface {
	Name() string
	// IsReady reports whether an upload can be attempted at all.
	IsReady() bool
	SupportedFormats() []string
	Upload(ctx context.Context, audioPath string) (*apiclient.Response, error)
}

// Saver is the fallback used when an upload does not succeed.
type Saver interface {
	SaveLocally(audioPath string) UploadResult
}

type Orchestrator struct {
	backend Backend
	saver   Saver
	log     *logrus.Logger

	UploadTimeout time.Duration
}

func NewOrchestrator(b Backend, s Saver, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{backend: b, saver: s, log: log, UploadTimeout: DefaultUploadTimeout}
}

// UploadRecording uploads audioPath and falls back to a local copy on any
// failure. It always returns exactly one result. Cancelling ctx abandons the
// network call but not the fallback.
func (o *Orchestrator) UploadRecording(ctx context.Context, audioPath string) UploadResult {
	log := o.log.WithFields(logrus.Fields{"file": audioPath, "backend": o.backend.Name()})

	if !o.backend.IsReady() {
		log.Info("server URL not configured, saving locally")
		return o.saver.SaveLocally(audioPath)
	}

	timeout := o.UploadTimeout
	if timeout <= 0 {
		timeout = DefaultUploadTimeout
	}
	uctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := o.backend.Upload(uctx, audioPath)
	log = log.WithField("duration_ms", time.Since(start).Milliseconds())
	if err == nil && resp == nil {
		err = errors.New("empty response")
	}
	if err != nil {
		log.WithError(err).Warn("upload failed, saving locally")
		return o.saver.SaveLocally(audioPath)
	}

	switch {
	case resp.OK() && resp.Body.IsProcessing():
		log.WithField("status", resp.StatusCode).Info("recording accepted for background processing")
		return UploadSuccess{Response: resp.Body}
	case resp.OK() && resp.Body.IsSuccess():
		log.WithField("saved_to", *resp.Body.SavedTo).Info("recording processed")
		return UploadSuccess{Response: resp.Body}
	}

	fields := logrus.Fields{"status": resp.StatusCode}
	if resp.Body != nil && resp.Body.Error != nil {
		fields["server_error"] = *resp.Body.Error
	}
	log.WithFields(fields).Warn("server did not accept recording, saving locally")
	return o.saver.SaveLocally(audioPath)
}
