package recording

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/scribely/internal/notify"
)

// Uploader is satisfied by *Orchestrator.
type Uploader interface {
	UploadRecording(ctx context.Context, audioPath string) UploadResult
}

// Session drives one recording through the state machine and uploads it once
// it reaches Finished.
type Session struct {
	machine  *Machine
	uploader Uploader
	notifier notify.Notifier
	log      *logrus.Logger

	mu     sync.Mutex
	ctx    context.Context
	path   string
	once   sync.Once
	done   chan struct{}
	result UploadResult
	unsub  func()
}

func NewSession(m *Machine, u Uploader, n notify.Notifier, log *logrus.Logger) *Session {
	if n == nil {
		n = notify.Nop{}
	}
	s := &Session{machine: m, uploader: u, notifier: n, log: log, done: make(chan struct{})}
	s.unsub = m.Subscribe(s.onTransition)
	return s
}

// Begin starts recording into audioPath. ctx bounds the eventual upload.
func (s *Session) Begin(ctx context.Context, audioPath string) error {
	if audioPath == "" {
		return errors.New("recording path is required")
	}
	s.mu.Lock()
	s.ctx = ctx
	s.path = audioPath
	s.mu.Unlock()
	return s.machine.Start()
}

func (s *Session) Pause() error  { return s.machine.Pause() }
func (s *Session) Resume() error { return s.machine.Resume() }

// End stops the recording and hands it to the uploader.
func (s *Session) End() error {
	if err := s.machine.Stop(); err != nil {
		return err
	}
	return s.machine.Finish()
}

// Wait blocks until the upload triggered by End has completed.
func (s *Session) Wait() UploadResult {
	<-s.done
	return s.result
}

func (s *Session) onTransition(from, to State) {
	s.log.WithFields(logrus.Fields{"from": from.String(), "to": to.String()}).Debug("recording state changed")
	if to != Finished {
		return
	}
	s.once.Do(func() {
		s.unsub()
		s.mu.Lock()
		ctx, path := s.ctx, s.path
		s.mu.Unlock()
		if ctx == nil {
			ctx = context.Background()
		}
		go func() {
			defer close(s.done)
			s.result = s.uploader.UploadRecording(ctx, path)
			Report(s.notifier, s.result)
		}()
	})
}

// Report maps an upload outcome to a user-facing notification.
func Report(n notify.Notifier, r UploadResult) {
	switch v := r.(type) {
	case UploadSuccess:
		if v.Response != nil && v.Response.IsProcessing() {
			n.Success("Recording uploaded, processing started")
			return
		}
		n.Success("Recording uploaded successfully!")
	case LocalSave:
		n.Notice("Recording saved locally (server unavailable): " + v.FilePath)
	case UploadError:
		n.Error(v.Error())
	default:
		n.Error("Unknown upload result")
	}
}
